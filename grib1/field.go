package grib1

// Field is a decoded grid of values in storage order.
// Values are row-major: Vals[j*Nx + i].
type Field struct {
	Nx, Ny int
	Vals   []float64
}

// At returns the value at column i, row j.
func (f *Field) At(i, j int) float64 { return f.Vals[j*f.Nx+i] }

// Rows returns the values as Ny slices of Nx, sharing storage with Vals.
func (f *Field) Rows() [][]float64 {
	rows := make([][]float64, f.Ny)
	for j := range rows {
		rows[j] = f.Vals[j*f.Nx : (j+1)*f.Nx]
	}
	return rows
}

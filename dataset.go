package hsafgrib

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DataID identifies a dataset by product name, e.g. "h03B".
type DataID struct {
	Name string
}

// DatasetAttrs are the attributes of a loaded dataset: the message
// metadata plus the observation window.
type DatasetAttrs struct {
	Metadata
	StandardName string
	StartTime    time.Time
	EndTime      time.Time
}

// DataArray is a 2-D dataset with named dimensions.
type DataArray struct {
	Name string
	// Values holds Shape[0] rows of Shape[1] values; missing points are NaN.
	Values []float64
	Shape  [2]int
	Dims   [2]string
	Attrs  DatasetAttrs
	// Area is set by Reader.Load; GetDataset leaves it nil.
	Area *AreaDefinition
}

// At returns the value at row y, column x.
func (d *DataArray) At(y, x int) float64 { return d.Values[y*d.Shape[1]+x] }

// Rows returns the values as Shape[0] slices sharing storage with Values.
func (d *DataArray) Rows() [][]float64 {
	rows := make([][]float64, d.Shape[0])
	for y := range rows {
		rows[y] = d.Values[y*d.Shape[1] : (y+1)*d.Shape[1]]
	}
	return rows
}

// Valid returns the number of non-NaN values.
func (d *DataArray) Valid() int {
	n := 0
	for _, v := range d.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// GetDataset returns the values of the file's first message as dataset id.
// The product name must occur in the file name, ignoring case, else the
// error is ErrWrongProduct. Points equal to the message's missingValue
// become NaN. Accumulated products (h05, h05B) start accumulation-hours
// before their analysis time; instantaneous ones start and end at it.
func (h *FileHandler) GetDataset(id DataID, info DatasetInfo) (*DataArray, error) {
	if !containsProduct(filepath.Base(h.filename), id.Name) {
		return nil, fmt.Errorf("%w: %s has no %s data", ErrWrongProduct, h.filename, id.Name)
	}

	var da *DataArray
	err := h.withMessage("dataset", 1, func(msg Message) error {
		md, err := h.readMetadata(msg)
		if err != nil {
			return err
		}
		fill, err := floatKey(msg, "missingValue")
		if err != nil {
			return err
		}
		vals, nx, ny, err := msg.Values()
		if err != nil {
			return err
		}
		if len(vals) != nx*ny {
			return fmt.Errorf("message holds %d values for a %dx%d grid", len(vals), nx, ny)
		}

		out := make([]float64, len(vals))
		for i, v := range vals {
			if v == fill {
				v = math.NaN()
			}
			out[i] = v
		}
		if msg.ValidKey("jScansPositively") {
			if jpos, err := intKey(msg, "jScansPositively"); err == nil && jpos == 1 {
				flipRows(out, nx, ny)
			}
		}

		da = &DataArray{
			Name:   id.Name,
			Values: out,
			Shape:  [2]int{ny, nx},
			Dims:   [2]string{"y", "x"},
			Attrs: DatasetAttrs{
				Metadata:     md,
				StandardName: info.StandardName,
				EndTime:      md.DataTime,
				StartTime:    md.DataTime,
			},
		}
		return nil
	})
	if err != nil {
		h.metrics.decodeError("dataset")
		return nil, fmt.Errorf("%s: dataset %s: %w", h.filename, id.Name, err)
	}

	if info.Accumulated || isAccumulated(id.Name) {
		if hours, ok := h.accumulationHours(); ok {
			da.Attrs.StartTime = da.Attrs.EndTime.Add(-time.Duration(hours) * time.Hour)
		} else {
			h.log.Warn("accumulation period not found in file name, using analysis time as start",
				"product", id.Name)
		}
	}
	h.metrics.datasetLoaded(foldProduct(id.Name))
	h.log.Debug("loaded dataset",
		"product", id.Name,
		"start_time", da.Attrs.StartTime,
		"end_time", da.Attrs.EndTime,
		"valid", da.Valid())
	return da, nil
}

// flipRows reverses the row order of a row-major nx×ny grid in place.
func flipRows(vals []float64, nx, ny int) {
	for top, bottom := 0, ny-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := vals[top*nx : (top+1)*nx]
		b := vals[bottom*nx : (bottom+1)*nx]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}

// accumSuffix matches the accumulation period of accumulated products:
// h05_20190603_1645_03_fdk.grb → "03".
var accumSuffix = regexp.MustCompile(`_(\d{2})_[^_]+\.grb$`)

// accumulationHours returns the accumulation period of the file, from the
// parsed file name fields when present, else from the file name suffix.
func (h *FileHandler) accumulationHours() (int, bool) {
	switch v := h.filenameInfo["accum_time"].(type) {
	case int:
		return v, true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
	}
	if m := accumSuffix.FindStringSubmatch(filepath.Base(h.filename)); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

// foldProduct case-folds a product identifier: "H03B" and "h03B" name the
// same product.
func foldProduct(s string) string { return cases.Fold().String(s) }

// containsProduct reports whether filename mentions product, ignoring case,
// so a dataset requested as "H03B" is served by h03B_*.grb files.
func containsProduct(filename, product string) bool {
	return product != "" && strings.Contains(foldProduct(filename), foldProduct(product))
}

// isAccumulated reports whether product is one of the accumulated
// precipitation products. The match ignores case: "H05B" is accumulated, so
// its start time moves back by the accumulation period, and a file name
// without one logs a warning.
func isAccumulated(product string) bool {
	switch foldProduct(product) {
	case "h05", "h05b":
		return true
	}
	return false
}

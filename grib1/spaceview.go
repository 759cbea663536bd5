package grib1

import "math"

// Earth model used for space-view grids. GRIB1 has no way to encode the
// MSG reference ellipsoid, so the H-SAF products assume it.
const (
	msgEquatorialRadius = 6378140.0
	msgPolarRadius      = 6356755.0

	// GRIB1 code table 7 earth shapes.
	sphereRadius      = 6367470.0
	iau1965Equatorial = 6378160.0
	iau1965Polar      = 6356775.0
)

// SpaceView holds GDS type 90 parameters: the image plane of a
// geostationary imager seen from altitude Nr Earth radii.
type SpaceView struct {
	Nx, Ny      int
	Lap, Lop    float64 // sub-satellite point, degrees
	Dx, Dy      float64 // apparent Earth diameter, grid lengths
	Xp, Yp      float64 // sub-satellite point, grid lengths
	Orientation float64 // degrees
	Nr          float64 // camera altitude from Earth centre, Earth radii
	Xo, Yo      int
	ScanMode    byte
	A, B        float64 // ellipsoid semi-axes, metres
}

// H returns the satellite height above the equator in metres.
func (g *SpaceView) H() float64 { return g.A * (g.Nr - 1) }

// StepX returns the scan angle per column in radians.
func (g *SpaceView) StepX() float64 { return 2 * math.Asin(1/g.Nr) / g.Dx }

// StepY returns the scan angle per row in radians.
func (g *SpaceView) StepY() float64 { return 2 * math.Asin(1/g.Nr) / g.Dy }

// ProjParams returns the PROJ parameters of the grid: geos over the
// equator, nsper otherwise.
func (g *SpaceView) ProjParams() ProjParams {
	proj := "geos"
	if g.Lap != 0 {
		proj = "nsper"
	}
	return ProjParams{Proj: proj, A: g.A, B: g.B, Lat0: g.Lap, Lon0: g.Lop, H: g.H()}
}

// angles returns the scan angles (radians, x east-positive, y
// north-positive) of the centre of pixel (i, j) in storage order.
func (g *SpaceView) angles(i, j int) (x, y float64) {
	col := float64(i) + 0.5
	row := float64(j) + 0.5
	if g.ScanMode&ScanINegative != 0 {
		x = (g.Xp - col) * g.StepX()
	} else {
		x = (col - g.Xp) * g.StepX()
	}
	if g.ScanMode&ScanJPositive != 0 {
		y = (row - (float64(g.Ny) - g.Yp)) * g.StepY()
	} else {
		y = (g.Yp - row) * g.StepY()
	}
	return
}

// indices maps scan angles back to fractional storage indices.
func (g *SpaceView) indices(x, y float64) (fi, fj float64) {
	if g.ScanMode&ScanINegative != 0 {
		fi = g.Xp - x/g.StepX() - 0.5
	} else {
		fi = x/g.StepX() + g.Xp - 0.5
	}
	if g.ScanMode&ScanJPositive != 0 {
		fj = y/g.StepY() + float64(g.Ny) - g.Yp - 0.5
	} else {
		fj = g.Yp - y/g.StepY() - 0.5
	}
	return
}

// IJToLatLon maps grid indices to geodetic (lat°N, lon°E signed).
// Pixels that look past the Earth's limb return NaN.
func (g *SpaceView) IJToLatLon(i, j int) (lat, lon float64) {
	x, y := g.angles(i, j)
	rs := g.A * g.Nr
	k := (g.A * g.A) / (g.B * g.B)
	cx, sx := math.Cos(x), math.Sin(x)
	cy, sy := math.Cos(y), math.Sin(y)

	den := cy*cy + k*sy*sy
	sa := (rs*cx*cy)*(rs*cx*cy) - den*(rs*rs-g.A*g.A)
	if sa < 0 {
		return math.NaN(), math.NaN()
	}
	sn := (rs*cx*cy - math.Sqrt(sa)) / den
	px := rs - sn*cx*cy
	py := sn * sx * cy
	pz := sn * sy

	lat = toDeg(math.Atan(k * pz / math.Hypot(px, py)))
	lon = NormLon(g.Lop + toDeg(math.Atan2(py, px)))
	return
}

// LatLonToIJ maps (lat°N, lon°E) to the nearest grid indices. ok is false
// when the point is not visible from the satellite.
func (g *SpaceView) LatLonToIJ(lat, lon float64) (i, j int, ok bool) {
	x, y, ok := ScanAngles(lat, lon, g.Lop, g.A, g.B, g.H())
	if !ok {
		return 0, 0, false
	}
	fi, fj := g.indices(x, y)
	return int(math.Round(fi)), int(math.Round(fj)), true
}

// ScanAngles returns the scan angles (radians, x east-positive, y
// north-positive) under which a geostationary satellite at height h above
// (0°, lon0) sees (lat, lon) on the ellipsoid with semi-axes a and b.
// ok is false when the point is hidden behind the limb.
func ScanAngles(lat, lon, lon0, a, b, h float64) (x, y float64, ok bool) {
	rs := a + h
	e2 := (a*a - b*b) / (a * a)
	dlon := toRad(NormLon(lon - lon0))
	clat := math.Atan((b * b) / (a * a) * math.Tan(toRad(lat)))
	rl := b / math.Sqrt(1-e2*math.Cos(clat)*math.Cos(clat))

	px := rl * math.Cos(clat) * math.Cos(dlon)
	py := rl * math.Cos(clat) * math.Sin(dlon)
	pz := rl * math.Sin(clat)

	// Visible only when the surface normal faces the satellite.
	if (rs-px)*px/(a*a)-py*py/(a*a)-pz*pz/(b*b) <= 0 {
		return 0, 0, false
	}

	r1 := rs - px
	rn := math.Sqrt(r1*r1 + py*py + pz*pz)
	return math.Atan(py / r1), math.Asin(pz / rn), true
}

// Lookup returns the value nearest to (lat, lon) from row-major vals, or
// NaN when the point is off the disk or outside the grid.
func (g *SpaceView) Lookup(lat, lon float64, vals []float64) float64 {
	i, j, ok := g.LatLonToIJ(lat, lon)
	if !ok || i < 0 || i >= g.Nx || j < 0 || j >= g.Ny {
		return math.NaN()
	}
	return vals[j*g.Nx+i]
}

// LatLonGrid holds GDS type 0 parameters (regular latitude/longitude).
type LatLonGrid struct {
	Ni, Nj   int
	La1, Lo1 float64 // first grid point, degrees
	La2, Lo2 float64 // last grid point, degrees
	Di, Dj   float64 // increments, degrees
	ScanMode byte
}

// IJToLatLon maps grid indices to (lat°N, lon°E signed).
func (g *LatLonGrid) IJToLatLon(i, j int) (lat, lon float64) {
	if g.ScanMode&ScanINegative != 0 {
		lon = g.Lo1 - float64(i)*g.Di
	} else {
		lon = g.Lo1 + float64(i)*g.Di
	}
	if g.ScanMode&ScanJPositive != 0 {
		lat = g.La1 + float64(j)*g.Dj
	} else {
		lat = g.La1 - float64(j)*g.Dj
	}
	return lat, NormLon(lon)
}

// helpers
func toRad(d float64) float64 { return d * math.Pi / 180 }
func toDeg(r float64) float64 { return r * 180 / math.Pi }

// NormLon wraps a longitude into -180..+180.
func NormLon(lon float64) float64 {
	if lon > 180 || lon < -180 {
		lon = math.Mod(lon+180, 360)
		if lon < 0 {
			lon += 360
		}
		lon -= 180
	}
	return lon
}

package hsafgrib

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/geal-ai/hsafgrib/grib1"
)

// AreaDefinition describes a projected grid: the projection, the number of
// pixels and the outer edges of the corner pixels in projection metres
// (lower-left x, lower-left y, upper-right x, upper-right y).
type AreaDefinition struct {
	AreaID      string
	Description string
	ProjID      string
	ProjParams  map[string]any
	Width       int
	Height      int
	AreaExtent  [4]float64
}

// areaFromMessage derives the area of a space-view message. The scan angle
// of one pixel is 2·asin(1/Nr)/dx (resp. dy); multiplied by the satellite
// height it gives the pixel size in geos projection metres. The
// sub-satellite point sits Xp columns from the left edge and Yp rows from
// the top edge.
func areaFromMessage(msg Message) (*AreaDefinition, error) {
	pp := maps.Clone(msg.ProjParams())
	h, ok := toFloat(pp["h"])
	if !ok {
		return nil, errors.New(`projection parameters carry no satellite height "h"`)
	}

	nr, err := floatKey(msg, "NrInRadiusOfEarth")
	if err != nil {
		return nil, err
	}
	dx, err := floatKey(msg, "dx")
	if err != nil {
		return nil, err
	}
	dy, err := floatKey(msg, "dy")
	if err != nil {
		return nil, err
	}
	xp, err := floatKey(msg, "XpInGridLengths")
	if err != nil {
		return nil, err
	}
	yp, err := floatKey(msg, "YpInGridLengths")
	if err != nil {
		return nil, err
	}
	nx, err := intKey(msg, "Nx")
	if err != nil {
		return nil, err
	}
	ny, err := intKey(msg, "Ny")
	if err != nil {
		return nil, err
	}
	if nr <= 1 || dx <= 0 || dy <= 0 || nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("degenerate space view: Nr=%g dx=%g dy=%g Nx=%d Ny=%d", nr, dx, dy, nx, ny)
	}

	rx := 2 * math.Asin(1/nr) / dx
	ry := 2 * math.Asin(1/nr) / dy
	x0 := -xp
	x1 := float64(nx) - xp
	y0 := -(float64(ny) - yp)
	y1 := yp

	return &AreaDefinition{
		AreaID:      "hsaf_region",
		Description: "A region from H-SAF",
		ProjID:      "geos",
		ProjParams:  pp,
		Width:       nx,
		Height:      ny,
		AreaExtent:  [4]float64{x0 * rx * h, y0 * ry * h, x1 * rx * h, y1 * ry * h},
	}, nil
}

// PixelSizeX returns the pixel width in projection units.
func (a *AreaDefinition) PixelSizeX() float64 {
	return (a.AreaExtent[2] - a.AreaExtent[0]) / float64(a.Width)
}

// PixelSizeY returns the pixel height in projection units.
func (a *AreaDefinition) PixelSizeY() float64 {
	return (a.AreaExtent[3] - a.AreaExtent[1]) / float64(a.Height)
}

// ProjectionX returns the x coordinate of each column's pixel centre,
// west to east.
func (a *AreaDefinition) ProjectionX() []float64 {
	px := a.PixelSizeX()
	xs := make([]float64, a.Width)
	for i := range xs {
		xs[i] = a.AreaExtent[0] + (float64(i)+0.5)*px
	}
	return xs
}

// ProjectionY returns the y coordinate of each row's pixel centre, north
// to south.
func (a *AreaDefinition) ProjectionY() []float64 {
	py := a.PixelSizeY()
	ys := make([]float64, a.Height)
	for j := range ys {
		ys[j] = a.AreaExtent[3] - (float64(j)+0.5)*py
	}
	return ys
}

// ProjString renders the projection parameters as a PROJ string, "proj"
// first and the rest sorted by name.
func (a *AreaDefinition) ProjString() string {
	var sb strings.Builder
	if p, ok := a.ProjParams["proj"]; ok {
		fmt.Fprintf(&sb, "+proj=%v", p)
	}
	for _, k := range slices.Sorted(maps.Keys(a.ProjParams)) {
		if k == "proj" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		v := a.ProjParams[k]
		if f, ok := toFloat(v); ok {
			fmt.Fprintf(&sb, "+%s=%s", k, strconv.FormatFloat(f, 'f', -1, 64))
		} else {
			fmt.Fprintf(&sb, "+%s=%v", k, v)
		}
	}
	return sb.String()
}

// Pixel returns the column and row of the pixel containing (lat, lon).
// ok is false for non-geos areas, for points the satellite cannot see and
// for points outside the area.
func (a *AreaDefinition) Pixel(lat, lon float64) (col, row int, ok bool) {
	if a.ProjParams["proj"] != "geos" {
		return 0, 0, false
	}
	var p [4]float64
	for i, k := range []string{"a", "b", "h", "lon_0"} {
		v, ok := toFloat(a.ProjParams[k])
		if !ok {
			return 0, 0, false
		}
		p[i] = v
	}
	ax, ay, visible := grib1.ScanAngles(lat, lon, p[3], p[0], p[1], p[2])
	if !visible {
		return 0, 0, false
	}
	x, y := ax*p[2], ay*p[2]
	col = int(math.Floor((x - a.AreaExtent[0]) / a.PixelSizeX()))
	row = int(math.Floor((a.AreaExtent[3] - y) / a.PixelSizeY()))
	if col < 0 || col >= a.Width || row < 0 || row >= a.Height {
		return 0, 0, false
	}
	return col, row, true
}

package grib1

import (
	"strconv"
	"strings"
)

// ProjParams are the PROJ parameters describing a message's grid.
type ProjParams struct {
	Proj string
	A, B float64
	Lat0 float64
	Lon0 float64
	H    float64 // satellite height, geos/nsper only
}

// Map returns the parameters keyed by their PROJ names.
func (p ProjParams) Map() map[string]any {
	m := map[string]any{
		"proj":  p.Proj,
		"a":     p.A,
		"b":     p.B,
		"lat_0": p.Lat0,
		"lon_0": p.Lon0,
	}
	if p.H != 0 {
		m["h"] = p.H
	}
	return m
}

// String renders a PROJ string, e.g.
// "+proj=geos +lon_0=0 +h=35785830.098 +a=6378140 +b=6356755 +units=m +no_defs".
func (p ProjParams) String() string {
	var sb strings.Builder
	sb.WriteString("+proj=" + p.Proj)
	if p.Proj != "geos" && p.Proj != "longlat" {
		sb.WriteString(" +lat_0=" + ftoa(p.Lat0))
	}
	sb.WriteString(" +lon_0=" + ftoa(p.Lon0))
	if p.H != 0 {
		sb.WriteString(" +h=" + ftoa(p.H))
	}
	sb.WriteString(" +a=" + ftoa(p.A) + " +b=" + ftoa(p.B))
	if p.Proj != "longlat" {
		sb.WriteString(" +units=m")
	}
	sb.WriteString(" +no_defs")
	return sb.String()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

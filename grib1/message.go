package grib1

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrKeyNotFound is returned for keys the message does not define.
var ErrKeyNotFound = errors.New("grib1: key not found")

// Message is one decoded GRIB1 message.
type Message struct {
	Indicator    Indicator
	PDS          ProductDefinition
	GDS          *GridDescription
	BDS          BinaryData
	MissingValue float64

	bitmap []byte
	raw    []byte
	offset int64
}

// Offset returns the byte offset of the message within its file.
func (m *Message) Offset() int64 { return m.offset }

// Raw returns the encoded message bytes.
func (m *Message) Raw() []byte { return m.raw }

// Parameter returns the code table 2 entry for the message.
func (m *Message) Parameter() Parameter {
	return lookupParameter(m.PDS.Centre, m.PDS.Table2Version, m.PDS.Parameter)
}

type keyFunc func(m *Message) (any, error)

func spaceView(f func(sv *SpaceView) any) keyFunc {
	return func(m *Message) (any, error) {
		if m.GDS.SpaceView == nil {
			return nil, fmt.Errorf("%w: grid is not space view", ErrKeyNotFound)
		}
		return f(m.GDS.SpaceView), nil
	}
}

func latLon(f func(ll *LatLonGrid) any) keyFunc {
	return func(m *Message) (any, error) {
		if m.GDS.LatLon == nil {
			return nil, fmt.Errorf("%w: grid is not regular_ll", ErrKeyNotFound)
		}
		return f(m.GDS.LatLon), nil
	}
}

func stat(f func(vals []float64) float64) keyFunc {
	return func(m *Message) (any, error) {
		field, err := m.Values()
		if err != nil {
			return nil, err
		}
		present := make([]float64, 0, len(field.Vals))
		for _, v := range field.Vals {
			if v != m.MissingValue {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			return m.MissingValue, nil
		}
		return f(present), nil
	}
}

func value(f func(m *Message) any) keyFunc {
	return func(m *Message) (any, error) { return f(m), nil }
}

// keys maps ecCodes key names to their accessors.
var keys = map[string]keyFunc{
	"edition":                     value(func(m *Message) any { return int(m.Indicator.Edition) }),
	"totalLength":                 value(func(m *Message) any { return m.Indicator.TotalLength }),
	"table2Version":               value(func(m *Message) any { return int(m.PDS.Table2Version) }),
	"centre":                      value(func(m *Message) any { return int(m.PDS.Centre) }),
	"subCentre":                   value(func(m *Message) any { return int(m.PDS.SubCentre) }),
	"generatingProcessIdentifier": value(func(m *Message) any { return int(m.PDS.GeneratingProcess) }),
	"gridDefinition":              value(func(m *Message) any { return int(m.PDS.GridDefinition) }),
	"indicatorOfParameter":        value(func(m *Message) any { return int(m.PDS.Parameter) }),
	"indicatorOfTypeOfLevel":      value(func(m *Message) any { return int(m.PDS.LevelType) }),
	"level":                       value(func(m *Message) any { return int(m.PDS.Level) }),
	"yearOfCentury":               value(func(m *Message) any { return m.PDS.YearOfCentury }),
	"century":                     value(func(m *Message) any { return m.PDS.Century }),
	"dataDate":                    value(func(m *Message) any { return m.PDS.DataDate() }),
	"dataTime":                    value(func(m *Message) any { return m.PDS.DataTime() }),
	"unitOfTimeRange":             value(func(m *Message) any { return int(m.PDS.UnitOfTimeRange) }),
	"P1":                          value(func(m *Message) any { return int(m.PDS.P1) }),
	"P2":                          value(func(m *Message) any { return int(m.PDS.P2) }),
	"timeRangeIndicator":          value(func(m *Message) any { return int(m.PDS.TimeRangeIndicator) }),
	"stepRange":                   value(func(m *Message) any { return stepRange(&m.PDS) }),
	"decimalScaleFactor":          value(func(m *Message) any { return m.PDS.DecimalScale }),
	"modelName":                   value(func(m *Message) any { return "unknown" }),
	"shortName":                   value(func(m *Message) any { return m.Parameter().ShortName }),
	"name":                        value(func(m *Message) any { return m.Parameter().Name }),
	"units":                       value(func(m *Message) any { return m.Parameter().Units }),
	"cfName":                      value(func(m *Message) any { return m.Parameter().CFName }),
	"centreDescription": func(m *Message) (any, error) {
		d := centreDescription(m.PDS.Centre)
		if d == "" {
			return nil, fmt.Errorf("%w: centre %d has no description", ErrKeyNotFound, m.PDS.Centre)
		}
		return d, nil
	},

	"gridType":               value(func(m *Message) any { return gridType(m.GDS.Type) }),
	"dataRepresentationType": value(func(m *Message) any { return int(m.GDS.Type) }),
	"Nx":                     value(func(m *Message) any { return m.GDS.Nx }),
	"Ny":                     value(func(m *Message) any { return m.GDS.Ny }),
	"numberOfDataPoints":     value(func(m *Message) any { return m.GDS.Nx * m.GDS.Ny }),
	"iScansNegatively":       value(func(m *Message) any { return flag(m.GDS.ScanMode, ScanINegative) }),
	"jScansPositively":       value(func(m *Message) any { return flag(m.GDS.ScanMode, ScanJPositive) }),
	"jPointsAreConsecutive":  value(func(m *Message) any { return flag(m.GDS.ScanMode, ScanJConsecutive) }),
	"earthIsOblate":          value(func(m *Message) any { return flag(m.GDS.ResFlags, resFlagEarthOblate) }),

	"latitudeOfSubSatellitePointInDegrees":  spaceView(func(sv *SpaceView) any { return sv.Lap }),
	"longitudeOfSubSatellitePointInDegrees": spaceView(func(sv *SpaceView) any { return sv.Lop }),
	"dx":                                    spaceView(func(sv *SpaceView) any { return sv.Dx }),
	"dy":                                    spaceView(func(sv *SpaceView) any { return sv.Dy }),
	"XpInGridLengths":                       spaceView(func(sv *SpaceView) any { return sv.Xp }),
	"YpInGridLengths":                       spaceView(func(sv *SpaceView) any { return sv.Yp }),
	"NrInRadiusOfEarth":                     spaceView(func(sv *SpaceView) any { return sv.Nr }),
	"orientationOfTheGridInDegrees":         spaceView(func(sv *SpaceView) any { return sv.Orientation }),
	"Xo":                                    spaceView(func(sv *SpaceView) any { return sv.Xo }),
	"Yo":                                    spaceView(func(sv *SpaceView) any { return sv.Yo }),

	"Ni":                                 latLon(func(ll *LatLonGrid) any { return ll.Ni }),
	"Nj":                                 latLon(func(ll *LatLonGrid) any { return ll.Nj }),
	"latitudeOfFirstGridPointInDegrees":  latLon(func(ll *LatLonGrid) any { return ll.La1 }),
	"longitudeOfFirstGridPointInDegrees": latLon(func(ll *LatLonGrid) any { return ll.Lo1 }),
	"latitudeOfLastGridPointInDegrees":   latLon(func(ll *LatLonGrid) any { return ll.La2 }),
	"longitudeOfLastGridPointInDegrees":  latLon(func(ll *LatLonGrid) any { return ll.Lo2 }),
	"iDirectionIncrementInDegrees":       latLon(func(ll *LatLonGrid) any { return ll.Di }),
	"jDirectionIncrementInDegrees":       latLon(func(ll *LatLonGrid) any { return ll.Dj }),

	"bitmapPresent":      value(func(m *Message) any { return boolInt(m.bitmap != nil) }),
	"missingValue":       value(func(m *Message) any { return m.MissingValue }),
	"bitsPerValue":       value(func(m *Message) any { return m.BDS.BitsPerValue }),
	"binaryScaleFactor":  value(func(m *Message) any { return m.BDS.BinaryScale }),
	"referenceValue":     value(func(m *Message) any { return m.BDS.Reference }),
	"integerPointValues": value(func(m *Message) any { return flag(m.BDS.Flags, bdsFlagIntegerData) }),
	"numberOfValues": value(func(m *Message) any {
		if m.bitmap == nil {
			return m.GDS.Nx * m.GDS.Ny
		}
		return countSetBits(m.bitmap, m.GDS.Nx*m.GDS.Ny)
	}),
	"numberOfMissing": value(func(m *Message) any {
		if m.bitmap == nil {
			return 0
		}
		total := m.GDS.Nx * m.GDS.Ny
		return total - countSetBits(m.bitmap, total)
	}),
	"minimum": stat(func(v []float64) float64 {
		lo := math.Inf(1)
		for _, x := range v {
			lo = math.Min(lo, x)
		}
		return lo
	}),
	"maximum": stat(func(v []float64) float64 {
		hi := math.Inf(-1)
		for _, x := range v {
			hi = math.Max(hi, x)
		}
		return hi
	}),
	"average": stat(func(v []float64) float64 {
		var sum float64
		for _, x := range v {
			sum += x
		}
		return sum / float64(len(v))
	}),
}

// Keys lists the key names the decoder understands, sorted.
func Keys() []string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of an ecCodes-style key. Integer keys are int,
// real keys float64, text keys string.
func (m *Message) Get(key string) (any, error) {
	f, ok := keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return f(m)
}

// ValidKey reports whether key is defined for this message.
func (m *Message) ValidKey(key string) bool {
	f, ok := keys[key]
	if !ok {
		return false
	}
	if key == "minimum" || key == "maximum" || key == "average" {
		return true
	}
	_, err := f(m)
	return err == nil
}

// Int returns an integer key.
func (m *Message) Int(key string) (int, error) {
	v, err := m.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("grib1: key %q is %T, not an integer", key, v)
}

// Float returns a numeric key as float64.
func (m *Message) Float(key string) (float64, error) {
	v, err := m.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("grib1: key %q is %T, not numeric", key, v)
}

// String returns a text key.
func (m *Message) String(key string) (string, error) {
	v, err := m.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("grib1: key %q is %T, not a string", key, v)
	}
	return s, nil
}

// ProjParams returns the projection of the message's grid.
func (m *Message) ProjParams() ProjParams {
	switch {
	case m.GDS.SpaceView != nil:
		return m.GDS.SpaceView.ProjParams()
	case m.GDS.ResFlags&resFlagEarthOblate != 0:
		return ProjParams{Proj: "longlat", A: iau1965Equatorial, B: iau1965Polar}
	default:
		return ProjParams{Proj: "longlat", A: sphereRadius, B: sphereRadius}
	}
}

// LatLons returns per-point latitudes and longitudes in the same order as
// Values. Space-view points beyond the limb are NaN.
func (m *Message) LatLons() (lats, lons []float64, err error) {
	nx, ny := m.GDS.Nx, m.GDS.Ny
	lats = make([]float64, nx*ny)
	lons = make([]float64, nx*ny)
	var at func(i, j int) (float64, float64)
	switch {
	case m.GDS.SpaceView != nil:
		at = m.GDS.SpaceView.IJToLatLon
	case m.GDS.LatLon != nil:
		at = m.GDS.LatLon.IJToLatLon
	default:
		return nil, nil, fmt.Errorf("grid type %d has no coordinates", m.GDS.Type)
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			lats[j*nx+i], lons[j*nx+i] = at(i, j)
		}
	}
	return lats, lons, nil
}

func gridType(t byte) string {
	switch t {
	case GridLatLon:
		return "regular_ll"
	case GridSpaceView:
		return "space_view"
	}
	return "unknown"
}

// stepRange renders the forecast step the way ecCodes does: "P1" for
// instants, "P1-P2" for accumulations and averages.
func stepRange(p *ProductDefinition) string {
	switch p.TimeRangeIndicator {
	case 2, 3, 4, 5:
		return fmt.Sprintf("%d-%d", p.P1, p.P2)
	case 10:
		return fmt.Sprintf("%d", int(p.P1)<<8|int(p.P2))
	}
	return fmt.Sprintf("%d", p.P1)
}

func flag(b, mask byte) int { return boolInt(b&mask != 0) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

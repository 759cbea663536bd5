package grib1

import (
	"encoding/binary"
	"fmt"
)

// Indicator is the 8-byte GRIB1 indicator section.
type Indicator struct {
	TotalLength int
	Edition     byte
}

// ProductDefinition holds the fields of the PDS (section 1).
type ProductDefinition struct {
	Table2Version      byte
	Centre             byte
	GeneratingProcess  byte
	GridDefinition     byte
	HasGDS             bool
	HasBMS             bool
	Parameter          byte
	LevelType          byte
	Level              uint16
	YearOfCentury      int
	Month, Day         int
	Hour, Minute       int
	UnitOfTimeRange    byte
	P1, P2             byte
	TimeRangeIndicator byte
	NumberInAverage    uint16
	NumberMissing      byte
	Century            int
	SubCentre          byte
	DecimalScale       int
}

// Year returns the four-digit reference year.
// GRIB1 stores year 2000 as century 20, year-of-century 100.
func (p *ProductDefinition) Year() int {
	return (p.Century-1)*100 + p.YearOfCentury
}

// DataDate returns the reference date as YYYYMMDD.
func (p *ProductDefinition) DataDate() int {
	return p.Year()*10000 + p.Month*100 + p.Day
}

// DataTime returns the reference time as HHMM.
func (p *ProductDefinition) DataTime() int {
	return p.Hour*100 + p.Minute
}

// GridDescription holds the GDS (section 2). Exactly one of SpaceView and
// LatLon is set, depending on Type.
type GridDescription struct {
	NV        byte
	PVL       byte
	Type      byte
	Nx, Ny    int
	ResFlags  byte
	ScanMode  byte
	SpaceView *SpaceView
	LatLon    *LatLonGrid
}

// Grid representation types understood by the decoder.
const (
	GridLatLon    = 0
	GridSpaceView = 90
)

// Scanning mode flags (GRIB1 code table 8).
const (
	ScanINegative       = 0x80
	ScanJPositive       = 0x40
	ScanJConsecutive    = 0x20
	resFlagEarthOblate  = 0x40
	pdsFlagGDS          = 0x80
	pdsFlagBMS          = 0x40
	bdsFlagHarmonic     = 0x80
	bdsFlagComplex      = 0x40
	bdsFlagIntegerData  = 0x20
	bdsFlagAdditionalFl = 0x10
)

// BinaryData holds the BDS (section 4) header and its packed payload.
type BinaryData struct {
	Flags        byte
	UnusedBits   int
	BinaryScale  int
	Reference    float64
	BitsPerValue int
	data         []byte
}

// Input sanity limits, well above any real product.
const (
	maxGridDim     = 20000
	maxTotalPoints = 1 << 24
	maxBitWidth    = 64
)

// parseIndicator decodes the indicator section at the start of b.
func parseIndicator(b []byte) (Indicator, error) {
	if len(b) < 8 {
		return Indicator{}, fmt.Errorf("indicator: need 8 bytes, got %d", len(b))
	}
	if string(b[0:4]) != "GRIB" {
		return Indicator{}, fmt.Errorf("indicator: missing GRIB magic: %q", b[0:4])
	}
	ind := Indicator{
		TotalLength: int(uint24(b[4:7])),
		Edition:     b[7],
	}
	if ind.Edition != 1 {
		return Indicator{}, fmt.Errorf("indicator: edition %d not supported (only 1)", ind.Edition)
	}
	return ind, nil
}

// sectionAt returns the section starting at off and the offset of the next
// one. GRIB1 sections carry a 3-byte length and no section number; their
// order is fixed and announced by the PDS flags.
func sectionAt(buf []byte, off int, name string) ([]byte, int, error) {
	if off < 0 || off+3 > len(buf) {
		return nil, 0, fmt.Errorf("%s at %d: header out of bounds (buf=%d)", name, off, len(buf))
	}
	sLen := int(uint24(buf[off : off+3]))
	if sLen < 4 {
		return nil, 0, fmt.Errorf("%s at %d: invalid length %d", name, off, sLen)
	}
	end := off + sLen
	if end > len(buf) {
		return nil, 0, fmt.Errorf("%s at %d: length %d overflows buffer %d", name, off, sLen, len(buf))
	}
	return buf[off:end], end, nil
}

// parsePDS decodes section 1.
func parsePDS(sec []byte) (ProductDefinition, error) {
	if len(sec) < 28 {
		return ProductDefinition{}, fmt.Errorf("pds: too short (%d bytes)", len(sec))
	}
	p := ProductDefinition{
		Table2Version:      sec[3],
		Centre:             sec[4],
		GeneratingProcess:  sec[5],
		GridDefinition:     sec[6],
		HasGDS:             sec[7]&pdsFlagGDS != 0,
		HasBMS:             sec[7]&pdsFlagBMS != 0,
		Parameter:          sec[8],
		LevelType:          sec[9],
		Level:              binary.BigEndian.Uint16(sec[10:12]),
		YearOfCentury:      int(sec[12]),
		Month:              int(sec[13]),
		Day:                int(sec[14]),
		Hour:               int(sec[15]),
		Minute:             int(sec[16]),
		UnitOfTimeRange:    sec[17],
		P1:                 sec[18],
		P2:                 sec[19],
		TimeRangeIndicator: sec[20],
		NumberInAverage:    binary.BigEndian.Uint16(sec[21:23]),
		NumberMissing:      sec[23],
		Century:            int(sec[24]),
		SubCentre:          sec[25],
		DecimalScale:       int(int16sm(sec[26], sec[27])),
	}
	if p.Month < 1 || p.Month > 12 || p.Day < 1 || p.Day > 31 || p.Hour > 23 || p.Minute > 59 {
		return ProductDefinition{}, fmt.Errorf("pds: invalid reference time %02d-%02d %02d:%02d",
			p.Month, p.Day, p.Hour, p.Minute)
	}
	return p, nil
}

// parseGDS decodes section 2 for the supported grid types.
func parseGDS(sec []byte) (GridDescription, error) {
	if len(sec) < 6 {
		return GridDescription{}, fmt.Errorf("gds: too short (%d bytes)", len(sec))
	}
	g := GridDescription{NV: sec[3], PVL: sec[4], Type: sec[5]}
	switch g.Type {
	case GridSpaceView:
		if len(sec) < 38 {
			return GridDescription{}, fmt.Errorf("gds: space view too short (%d bytes)", len(sec))
		}
		g.Nx = int(binary.BigEndian.Uint16(sec[6:8]))
		g.Ny = int(binary.BigEndian.Uint16(sec[8:10]))
		g.ResFlags = sec[16]
		g.ScanMode = sec[27]
		sv := &SpaceView{
			Nx:          g.Nx,
			Ny:          g.Ny,
			Lap:         float64(int24sm(sec[10:13])) / 1e3,
			Lop:         float64(int24sm(sec[13:16])) / 1e3,
			Dx:          float64(uint24(sec[17:20])),
			Dy:          float64(uint24(sec[20:23])),
			Xp:          float64(binary.BigEndian.Uint16(sec[23:25])),
			Yp:          float64(binary.BigEndian.Uint16(sec[25:27])),
			ScanMode:    g.ScanMode,
			Orientation: float64(int24sm(sec[28:31])) / 1e3,
			Nr:          float64(uint24(sec[31:34])) / 1e6,
			Xo:          int(binary.BigEndian.Uint16(sec[34:36])),
			Yo:          int(binary.BigEndian.Uint16(sec[36:38])),
			A:           msgEquatorialRadius,
			B:           msgPolarRadius,
		}
		if sv.Nr <= 1 {
			return GridDescription{}, fmt.Errorf("gds: camera altitude Nr=%g must exceed one Earth radius", sv.Nr)
		}
		if sv.Dx <= 0 || sv.Dy <= 0 {
			return GridDescription{}, fmt.Errorf("gds: apparent Earth diameter %gx%g must be positive", sv.Dx, sv.Dy)
		}
		g.SpaceView = sv
	case GridLatLon:
		if len(sec) < 28 {
			return GridDescription{}, fmt.Errorf("gds: lat/lon too short (%d bytes)", len(sec))
		}
		g.Nx = int(binary.BigEndian.Uint16(sec[6:8]))
		g.Ny = int(binary.BigEndian.Uint16(sec[8:10]))
		g.ResFlags = sec[16]
		g.ScanMode = sec[27]
		ll := &LatLonGrid{
			Ni:       g.Nx,
			Nj:       g.Ny,
			La1:      float64(int24sm(sec[10:13])) / 1e3,
			Lo1:      float64(int24sm(sec[13:16])) / 1e3,
			La2:      float64(int24sm(sec[17:20])) / 1e3,
			Lo2:      float64(int24sm(sec[20:23])) / 1e3,
			ScanMode: g.ScanMode,
		}
		di := binary.BigEndian.Uint16(sec[23:25])
		dj := binary.BigEndian.Uint16(sec[25:27])
		ll.Di, ll.Dj = increments(ll, di, dj)
		g.LatLon = ll
	default:
		return GridDescription{}, fmt.Errorf("gds: unsupported data representation type %d (supported: 0, 90)", g.Type)
	}
	if g.Nx <= 0 || g.Nx > maxGridDim || g.Ny <= 0 || g.Ny > maxGridDim {
		return GridDescription{}, fmt.Errorf("gds: invalid grid dimensions %dx%d (max %d)", g.Nx, g.Ny, maxGridDim)
	}
	if total := g.Nx * g.Ny; total > maxTotalPoints {
		return GridDescription{}, fmt.Errorf("gds: %dx%d grid has %d points, exceeds maximum %d", g.Nx, g.Ny, total, maxTotalPoints)
	}
	return g, nil
}

// increments returns the lat/lon grid increments in degrees, deriving them
// from the corner points when the GDS marks them as missing (all ones).
func increments(ll *LatLonGrid, di, dj uint16) (float64, float64) {
	var dI, dJ float64
	if di != 0xFFFF {
		dI = float64(di) / 1e3
	} else if ll.Ni > 1 {
		dI = abs(ll.Lo2-ll.Lo1) / float64(ll.Ni-1)
	}
	if dj != 0xFFFF {
		dJ = float64(dj) / 1e3
	} else if ll.Nj > 1 {
		dJ = abs(ll.La2-ll.La1) / float64(ll.Nj-1)
	}
	return dI, dJ
}

// parseBMS decodes section 3 and returns the bitmap bytes.
func parseBMS(sec []byte) ([]byte, error) {
	if len(sec) < 6 {
		return nil, fmt.Errorf("bms: too short (%d bytes)", len(sec))
	}
	if table := binary.BigEndian.Uint16(sec[4:6]); table != 0 {
		return nil, fmt.Errorf("bms: predefined bitmap %d not supported", table)
	}
	return sec[6:], nil
}

// parseBDS decodes the section 4 header.
func parseBDS(sec []byte) (BinaryData, error) {
	if len(sec) < 11 {
		return BinaryData{}, fmt.Errorf("bds: too short (%d bytes)", len(sec))
	}
	b := BinaryData{
		Flags:        sec[3] & 0xF0,
		UnusedBits:   int(sec[3] & 0x0F),
		BinaryScale:  int(int16sm(sec[4], sec[5])),
		Reference:    ibmFloat32(binary.BigEndian.Uint32(sec[6:10])),
		BitsPerValue: int(sec[10]),
		data:         sec[11:],
	}
	if b.Flags&bdsFlagHarmonic != 0 {
		return BinaryData{}, fmt.Errorf("bds: spherical harmonic coefficients not supported")
	}
	if b.Flags&bdsFlagComplex != 0 {
		return BinaryData{}, fmt.Errorf("bds: complex/second-order packing not supported")
	}
	if b.BitsPerValue > maxBitWidth {
		return BinaryData{}, fmt.Errorf("bds: bits per value %d exceeds %d", b.BitsPerValue, maxBitWidth)
	}
	return b, nil
}

// uint24 decodes a 3-byte big-endian unsigned integer.
func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// int24sm decodes a 3-byte sign-magnitude integer (MSB is the sign).
func int24sm(b []byte) int32 {
	v := int32(uint24(b) & 0x7FFFFF)
	if b[0]&0x80 != 0 {
		return -v
	}
	return v
}

// int16sm decodes a 2-byte sign-magnitude integer.
func int16sm(hi, lo byte) int16 {
	v := int16(hi&0x7F)<<8 | int16(lo)
	if hi&0x80 != 0 {
		return -v
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

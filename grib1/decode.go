package grib1

import (
	"errors"
	"fmt"
)

// DefaultMissingValue is the value written to bitmap-masked points,
// matching the ecCodes default.
const DefaultMissingValue = 9999.0

// ErrTruncated reports a message shorter than its indicator claims.
var ErrTruncated = errors.New("grib1: truncated message")

// DecodeMessage decodes the headers of one GRIB1 message. The packed data
// stays in raw and is unpacked by Values.
func DecodeMessage(raw []byte) (*Message, error) {
	ind, err := parseIndicator(raw)
	if err != nil {
		return nil, err
	}
	if ind.TotalLength < 8+28+11+4 {
		return nil, fmt.Errorf("indicator: total length %d too small", ind.TotalLength)
	}
	if ind.TotalLength > len(raw) {
		return nil, fmt.Errorf("%w: indicator says %d bytes, have %d", ErrTruncated, ind.TotalLength, len(raw))
	}
	raw = raw[:ind.TotalLength]
	if string(raw[len(raw)-4:]) != "7777" {
		return nil, fmt.Errorf("missing 7777 end marker")
	}
	body := raw[:len(raw)-4]

	m := &Message{Indicator: ind, MissingValue: DefaultMissingValue, raw: raw}

	sec, off, err := sectionAt(body, 8, "pds")
	if err != nil {
		return nil, err
	}
	if m.PDS, err = parsePDS(sec); err != nil {
		return nil, err
	}

	if !m.PDS.HasGDS {
		return nil, fmt.Errorf("predefined grid %d not supported (no GDS)", m.PDS.GridDefinition)
	}
	if sec, off, err = sectionAt(body, off, "gds"); err != nil {
		return nil, err
	}
	gds, err := parseGDS(sec)
	if err != nil {
		return nil, err
	}
	m.GDS = &gds

	if m.PDS.HasBMS {
		if sec, off, err = sectionAt(body, off, "bms"); err != nil {
			return nil, err
		}
		if m.bitmap, err = parseBMS(sec); err != nil {
			return nil, err
		}
		if len(m.bitmap)*8 < gds.Nx*gds.Ny {
			return nil, fmt.Errorf("bms: %d bytes cannot cover %dx%d grid", len(m.bitmap), gds.Nx, gds.Ny)
		}
	}

	if sec, _, err = sectionAt(body, off, "bds"); err != nil {
		return nil, err
	}
	if m.BDS, err = parseBDS(sec); err != nil {
		return nil, err
	}
	return m, nil
}

// Values unpacks the message's grid. Points masked by the bitmap hold
// MissingValue. The result is re-ordered to row-major when the file stores
// columns consecutively.
func (m *Message) Values() (*Field, error) {
	nx, ny := m.GDS.Nx, m.GDS.Ny
	total := nx * ny

	n := total
	if m.bitmap != nil {
		n = countSetBits(m.bitmap, total)
	}
	vals, err := unpackSimple(m.BDS, m.PDS.DecimalScale, n)
	if err != nil {
		return nil, fmt.Errorf("bds: %w", err)
	}
	if m.bitmap != nil {
		if vals, err = expandBitmap(vals, m.bitmap, total, m.MissingValue); err != nil {
			return nil, err
		}
	}

	if m.GDS.ScanMode&ScanJConsecutive != 0 {
		rowMajor := make([]float64, total)
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				rowMajor[j*nx+i] = vals[i*ny+j]
			}
		}
		vals = rowMajor
	}
	return &Field{Nx: nx, Ny: ny, Vals: vals}, nil
}

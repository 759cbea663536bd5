// Package gribtest builds synthetic GRIB edition 1 messages for tests.
package gribtest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Grid representation types.
const (
	GridLatLon    = 0
	GridSpaceView = 90
)

// Message describes a GRIB1 message: one grid of packed values with its
// product definition.
type Message struct {
	Centre, Table, Param byte
	Year, Month, Day     int
	Hour, Minute         int
	P1, P2, TimeRange    byte
	DecimalScale         int

	Grid     byte // GridSpaceView or GridLatLon
	Nx, Ny   int
	ScanMode byte
	ResFlags byte

	// space view
	Lap, Lop int32 // millidegrees
	Dx, Dy   uint32
	Xp, Yp   uint16
	Nr       uint32 // Earth radii × 1e6

	// lat/lon, millidegrees
	La1, Lo1, La2, Lo2 int32
	Di, Dj             uint16

	// Bitmap, when non-nil, is written as a BMS.
	Bitmap []byte

	BinaryScale int
	Ref         float64
	NBits       int
	Packed      []uint64
}

// HSAF returns an h03B-like 4x3 rain-rate message on a space-view grid
// centred on the sub-satellite point, carrying the packed values 0..11 at
// 0.01 resolution.
func HSAF() Message {
	packed := make([]uint64, 12)
	for i := range packed {
		packed[i] = uint64(i)
	}
	return Message{
		Centre: 80, Table: 2, Param: 59,
		Year: 2019, Month: 6, Day: 3, Hour: 16, Minute: 45,
		DecimalScale: 2,
		Grid:         GridSpaceView,
		Nx:           4,
		Ny:           3,
		Dx:           3622,
		Dy:           3610,
		Xp:           2,
		Yp:           2,
		Nr:           6610700,
		NBits:        8,
		Packed:       packed,
	}
}

// Encode returns the message in GRIB1 wire format.
func (m Message) Encode() []byte {
	pds := make([]byte, 28)
	PutUint24(pds[0:3], 28)
	pds[3] = m.Table
	pds[4] = m.Centre
	pds[5] = 1
	pds[6] = 255
	pds[7] = 0x80
	if m.Bitmap != nil {
		pds[7] |= 0x40
	}
	pds[8] = m.Param
	pds[9] = 1
	century := (m.Year-1)/100 + 1
	pds[12] = byte(m.Year - (century-1)*100)
	pds[13] = byte(m.Month)
	pds[14] = byte(m.Day)
	pds[15] = byte(m.Hour)
	pds[16] = byte(m.Minute)
	pds[17] = 1
	pds[18] = m.P1
	pds[19] = m.P2
	pds[20] = m.TimeRange
	pds[24] = byte(century)
	PutInt16SM(pds[26:28], m.DecimalScale)

	var gds []byte
	switch m.Grid {
	case GridSpaceView:
		gds = make([]byte, 44)
		PutUint24(gds[0:3], 44)
		gds[4] = 255
		gds[5] = GridSpaceView
		binary.BigEndian.PutUint16(gds[6:8], uint16(m.Nx))
		binary.BigEndian.PutUint16(gds[8:10], uint16(m.Ny))
		PutInt24SM(gds[10:13], m.Lap)
		PutInt24SM(gds[13:16], m.Lop)
		gds[16] = m.ResFlags
		PutUint24(gds[17:20], m.Dx)
		PutUint24(gds[20:23], m.Dy)
		binary.BigEndian.PutUint16(gds[23:25], m.Xp)
		binary.BigEndian.PutUint16(gds[25:27], m.Yp)
		gds[27] = m.ScanMode
		PutUint24(gds[31:34], m.Nr)
	default:
		gds = make([]byte, 32)
		PutUint24(gds[0:3], 32)
		gds[4] = 255
		gds[5] = GridLatLon
		binary.BigEndian.PutUint16(gds[6:8], uint16(m.Nx))
		binary.BigEndian.PutUint16(gds[8:10], uint16(m.Ny))
		PutInt24SM(gds[10:13], m.La1)
		PutInt24SM(gds[13:16], m.Lo1)
		gds[16] = m.ResFlags
		PutInt24SM(gds[17:20], m.La2)
		PutInt24SM(gds[20:23], m.Lo2)
		binary.BigEndian.PutUint16(gds[23:25], m.Di)
		binary.BigEndian.PutUint16(gds[25:27], m.Dj)
		gds[27] = m.ScanMode
	}

	var bms []byte
	if m.Bitmap != nil {
		bms = make([]byte, 6+len(m.Bitmap))
		PutUint24(bms[0:3], uint32(len(bms)))
		bms[3] = byte(len(m.Bitmap)*8 - m.Nx*m.Ny)
		copy(bms[6:], m.Bitmap)
	}

	data, unused := PackBits(m.Packed, m.NBits)
	bds := make([]byte, 11+len(data))
	PutUint24(bds[0:3], uint32(len(bds)))
	bds[3] = byte(unused)
	PutInt16SM(bds[4:6], m.BinaryScale)
	binary.BigEndian.PutUint32(bds[6:10], IBM(m.Ref))
	bds[10] = byte(m.NBits)
	copy(bds[11:], data)

	msg := bytes.Join([][]byte{{'G', 'R', 'I', 'B', 0, 0, 0, 1}, pds, gds, bms, bds, []byte("7777")}, nil)
	PutUint24(msg[4:7], uint32(len(msg)))
	return msg
}

// PackBits packs vals MSB-first at nBits each and returns the bytes and the
// number of padding bits in the last byte.
func PackBits(vals []uint64, nBits int) ([]byte, int) {
	total := len(vals) * nBits
	data := make([]byte, (total+7)/8)
	pos := 0
	for _, v := range vals {
		for b := nBits - 1; b >= 0; b-- {
			bit := (v >> uint(b)) & 1
			data[pos/8] |= byte(bit) << uint(7-pos%8)
			pos++
		}
	}
	return data, len(data)*8 - total
}

// IBM encodes f as an IBM System/360 single-precision float.
func IBM(f float64) uint32 {
	if f == 0 {
		return 0
	}
	var sign uint32
	if f < 0 {
		sign = 0x80000000
		f = -f
	}
	exp := 64
	for f >= 1 {
		f /= 16
		exp++
	}
	for f < 1.0/16 {
		f *= 16
		exp--
	}
	mant := uint32(math.Round(f * (1 << 24)))
	if mant == 1<<24 {
		mant >>= 4
		exp++
	}
	return sign | uint32(exp)<<24 | mant
}

// PutUint24 writes v as a 3-byte big-endian integer.
func PutUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// PutInt24SM writes v as a 3-byte sign-magnitude integer.
func PutInt24SM(b []byte, v int32) {
	neg := v < 0
	if neg {
		v = -v
	}
	PutUint24(b, uint32(v))
	if neg {
		b[0] |= 0x80
	}
}

// PutInt16SM writes v as a 2-byte sign-magnitude integer.
func PutInt16SM(b []byte, v int) {
	neg := v < 0
	if neg {
		v = -v
	}
	binary.BigEndian.PutUint16(b, uint16(v))
	if neg {
		b[0] |= 0x80
	}
}

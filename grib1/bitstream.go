package grib1

import (
	"encoding/binary"
	"fmt"
)

// bitReader reads packed unsigned integers out of a BDS payload.
// Bits are consumed MSB-first within each byte, as GRIB1 packs them.
type bitReader struct {
	buf []byte
	pos int // bit offset into buf
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

// remaining returns the number of unread bits.
func (r *bitReader) remaining() int { return len(r.buf)*8 - r.pos }

// read consumes n bits (0 ≤ n ≤ 64). A short buffer is an error; corrupt
// files must never make the decoder panic.
func (r *bitReader) read(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bitReader: invalid width %d", n)
	}
	if n > r.remaining() {
		return 0, fmt.Errorf("bitReader: read %d bits at pos %d overflows buffer (%d bytes)",
			n, r.pos, len(r.buf))
	}
	end := r.pos + n
	if r.pos%8 == 0 {
		off := r.pos / 8
		switch n {
		case 8:
			r.pos = end
			return uint64(r.buf[off]), nil
		case 16:
			r.pos = end
			return uint64(binary.BigEndian.Uint16(r.buf[off:])), nil
		case 24:
			r.pos = end
			return uint64(r.buf[off])<<16 | uint64(r.buf[off+1])<<8 | uint64(r.buf[off+2]), nil
		case 32:
			r.pos = end
			return uint64(binary.BigEndian.Uint32(r.buf[off:])), nil
		case 64:
			r.pos = end
			return binary.BigEndian.Uint64(r.buf[off:]), nil
		}
	}
	var v uint64
	for i := r.pos; i < end; i++ {
		bit := (r.buf[i/8] >> (7 - uint(i%8))) & 1
		v = v<<1 | uint64(bit)
	}
	r.pos = end
	return v, nil
}

// bytePos returns the byte holding the next unread bit.
func (r *bitReader) bytePos() int { return r.pos / 8 }

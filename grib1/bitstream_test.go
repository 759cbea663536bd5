package grib1

import "testing"

func TestBitReaderReadZeroBits(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	v, err := r.read(0)
	if err != nil {
		t.Fatalf("read(0) error: %v", err)
	}
	if v != 0 || r.pos != 0 {
		t.Errorf("read(0): got %d at pos %d, want 0 at pos 0", v, r.pos)
	}
}

// TestBitReaderMSBFirst checks that bits leave each byte high bit first.
func TestBitReaderMSBFirst(t *testing.T) {
	// 0xAB = 0b10101011
	r := newBitReader([]byte{0xAB})
	want := []uint64{1, 0, 1, 0, 1, 0, 1, 1}
	for i, w := range want {
		v, err := r.read(1)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if v != w {
			t.Errorf("step %d: got %d, want %d", i, v, w)
		}
	}
}

func TestBitReaderCrossesBytes(t *testing.T) {
	// 0000 0001 | 1000 0000 → first 10 bits = 0000000110 = 6
	r := newBitReader([]byte{0x01, 0x80})
	v, err := r.read(10)
	if err != nil {
		t.Fatalf("read(10): %v", err)
	}
	if v != 6 {
		t.Errorf("read(10): got %d, want 6", v)
	}
}

func TestBitReaderAlignedFastPaths(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10, 0x11}
	r := newBitReader(buf)
	cases := []struct {
		bits int
		want uint64
	}{
		{8, 0x01},
		{16, 0x0203},
		{24, 0x040506},
		{32, 0x0708090A},
		{8, 0x0B},
		{24, 0x0C0D0E},
	}
	for i, tc := range cases {
		v, err := r.read(tc.bits)
		if err != nil {
			t.Fatalf("case %d read(%d): %v", i, tc.bits, err)
		}
		if v != tc.want {
			t.Errorf("case %d read(%d): got 0x%X, want 0x%X", i, tc.bits, v, tc.want)
		}
	}
	if r.bytePos() != 14 {
		t.Errorf("bytePos: got %d, want 14", r.bytePos())
	}
	if r.remaining() != 24 {
		t.Errorf("remaining: got %d, want 24", r.remaining())
	}
}

func TestBitReaderRead64Bits(t *testing.T) {
	r := newBitReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	v, err := r.read(64)
	if err != nil {
		t.Fatalf("read(64): %v", err)
	}
	if v != 0x0102030405060708 {
		t.Errorf("read(64): got 0x%016X", v)
	}
}

// TestBitReaderPackedTwelveBits reads the 12-bit widths common in H-SAF
// rain-rate products: two values in three bytes.
func TestBitReaderPackedTwelveBits(t *testing.T) {
	// 0xABC, 0x123 → 1010 1011 1100 0001 0010 0011
	r := newBitReader([]byte{0xAB, 0xC1, 0x23})
	for i, want := range []uint64{0xABC, 0x123} {
		v, err := r.read(12)
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if v != want {
			t.Errorf("value %d: got 0x%X, want 0x%X", i, v, want)
		}
	}
}

func TestBitReaderOverflowReturnsError(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	if _, err := r.read(9); err == nil {
		t.Error("read(9) from 1-byte buffer: expected error, got nil")
	}
	if _, err := newBitReader(nil).read(1); err == nil {
		t.Error("read(1) from empty buffer: expected error, got nil")
	}
}

func TestBitReaderInvalidWidth(t *testing.T) {
	r := newBitReader(make([]byte, 16))
	if _, err := r.read(65); err == nil {
		t.Error("read(65): expected error, got nil")
	}
	if _, err := r.read(-1); err == nil {
		t.Error("read(-1): expected error, got nil")
	}
}

package grib1

import (
	"math"
	"testing"

	"github.com/geal-ai/hsafgrib/internal/gribtest"
)

func TestIBMFloat32(t *testing.T) {
	cases := []struct {
		bits uint32
		want float64
	}{
		{0x00000000, 0},
		{0x80000000, 0}, // negative zero
		{0x41100000, 1.0},
		{0xC276A000, -118.625},
		{0x42640000, 100.0},
		{0x40800000, 0.5},
	}
	for _, tc := range cases {
		if got := ibmFloat32(tc.bits); got != tc.want {
			t.Errorf("ibmFloat32(0x%08X) = %g, want %g", tc.bits, got, tc.want)
		}
	}
}

// TestIBMRoundTrip checks the test encoder against the decoder for values
// exactly representable in both formats.
func TestIBMRoundTrip(t *testing.T) {
	for _, f := range []float64{1, -1, 0.15625, 273, -118.625, 65536, 1.0 / 256} {
		if got := ibmFloat32(gribtest.IBM(f)); got != f {
			t.Errorf("round trip %g: got %g (bits 0x%08X)", f, got, gribtest.IBM(f))
		}
	}
}

func TestUnpackSimpleScales(t *testing.T) {
	// X = 1, 2, 3 at 4 bits; Y = (10 + X·2^1) / 10^1
	b := BinaryData{Reference: 10, BinaryScale: 1, BitsPerValue: 4, UnusedBits: 4, data: []byte{0x12, 0x30}}
	got, err := unpackSimple(b, 1, 3)
	if err != nil {
		t.Fatalf("unpackSimple: %v", err)
	}
	want := []float64{1.2, 1.4, 1.6}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("value %d: got %g, want %g", i, got[i], want[i])
		}
	}
}

func TestUnpackSimpleNegativeScales(t *testing.T) {
	// E = -2, D = -1: Y = (0 + X/4) · 10
	b := BinaryData{BinaryScale: -2, BitsPerValue: 8, data: []byte{4, 8}}
	got, err := unpackSimple(b, -1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 10 || got[1] != 20 {
		t.Errorf("got %v, want [10 20]", got)
	}
}

func TestUnpackSimpleConstantField(t *testing.T) {
	b := BinaryData{Reference: 5, BitsPerValue: 0}
	got, err := unpackSimple(b, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != 0.5 {
			t.Errorf("value %d: got %g, want 0.5", i, v)
		}
	}
}

func TestUnpackSimpleShortPayload(t *testing.T) {
	b := BinaryData{BitsPerValue: 4, data: []byte{0x12, 0x34}}
	if _, err := unpackSimple(b, 0, 5); err == nil {
		t.Fatal("20 bits from a 16-bit payload: expected error")
	}
	// Unused bits shrink the budget.
	b.UnusedBits = 4
	if _, err := unpackSimple(b, 0, 4); err == nil {
		t.Fatal("16 bits from 12 usable: expected error")
	}
	if _, err := unpackSimple(b, 0, -1); err == nil {
		t.Fatal("negative count: expected error")
	}
}

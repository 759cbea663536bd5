package grib1

import (
	"fmt"
	"math"
)

// ibmFloat32 decodes an IBM System/360 single-precision float, the encoding
// GRIB1 uses for the BDS reference value: sign bit, 7-bit base-16 exponent
// biased by 64, 24-bit fraction.
func ibmFloat32(bits uint32) float64 {
	if bits&0x7FFFFFFF == 0 {
		return 0
	}
	sign := 1.0
	if bits&0x80000000 != 0 {
		sign = -1
	}
	exp := int((bits>>24)&0x7F) - 64
	mant := float64(bits&0x00FFFFFF) / (1 << 24)
	return sign * mant * math.Pow(16, float64(exp))
}

// unpackSimple decodes n grid-point values packed with GRIB1 simple packing.
// Unpacking formula: Y = (R + X × 2^E) / 10^D
func unpackSimple(b BinaryData, decimalScale, n int) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("simple packing: negative value count %d", n)
	}
	scaleE := math.Ldexp(1.0, b.BinaryScale)
	scaleD := math.Pow(10, float64(decimalScale))

	if b.BitsPerValue == 0 {
		out := make([]float64, n)
		v := b.Reference / scaleD
		for i := range out {
			out[i] = v
		}
		return out, nil
	}

	// Check before allocating: n comes from the GDS and may be hostile.
	avail := len(b.data)*8 - b.UnusedBits
	if need := int64(n) * int64(b.BitsPerValue); need > int64(avail) {
		return nil, fmt.Errorf("simple packing: %d values of %d bits need %d bits, section holds %d",
			n, b.BitsPerValue, need, avail)
	}

	out := make([]float64, n)
	br := newBitReader(b.data)
	for i := range out {
		x, err := br.read(b.BitsPerValue)
		if err != nil {
			return nil, fmt.Errorf("simple packing: value %d: %w", i, err)
		}
		out[i] = (b.Reference + scaleE*float64(x)) / scaleD
	}
	return out, nil
}

package grib1

import "fmt"

// expandBitmap scatters packed values (one per set bit) over a grid of
// totalPoints, writing fill where the bitmap bit is 0.
//
// The BMS bitmap is MSB-first: bit 7 of byte 0 is grid point 0.
func expandBitmap(vals []float64, bitmap []byte, totalPoints int, fill float64) ([]float64, error) {
	if len(bitmap)*8 < totalPoints {
		return nil, fmt.Errorf("bitmap: %d bytes cannot cover %d points", len(bitmap), totalPoints)
	}
	if set := countSetBits(bitmap, totalPoints); set != len(vals) {
		return nil, fmt.Errorf("bitmap: %d set bits but %d packed values", set, len(vals))
	}

	out := make([]float64, totalPoints)
	vi := 0
	for i := range out {
		if bitmapBit(bitmap, i) {
			out[i] = vals[vi]
			vi++
			continue
		}
		out[i] = fill
	}
	return out, nil
}

// bitmapBit reports whether grid point i carries data.
func bitmapBit(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return (bitmap[byteIdx]>>uint(7-(i%8)))&1 == 1
}

// countSetBits counts data points among the first totalPoints bits.
func countSetBits(bitmap []byte, totalPoints int) int {
	n := 0
	for i := 0; i < totalPoints; i++ {
		if bitmapBit(bitmap, i) {
			n++
		}
	}
	return n
}

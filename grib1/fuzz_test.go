package grib1

import (
	"testing"

	"github.com/geal-ai/hsafgrib/internal/gribtest"
)

// FuzzDecodeMessage feeds arbitrary bytes to DecodeMessage and, when the
// headers decode, to every accessor. Nothing may panic.
// Run with: go test -fuzz=FuzzDecodeMessage -fuzztime=60s ./grib1
func FuzzDecodeMessage(f *testing.F) {
	bitmapped := gribtest.HSAF()
	bitmapped.Bitmap = []byte{0xAA, 0xA0}
	bitmapped.Packed = bitmapped.Packed[:6]

	latlon := gribtest.Message{
		Year: 2019, Month: 1, Day: 1,
		Grid: GridLatLon, Nx: 3, Ny: 2,
		La1: 10000, Lo1: 0, La2: 9000, Lo2: 2000,
		Di: 1000, Dj: 1000,
		NBits: 4, Packed: []uint64{1, 2, 3, 4, 5, 6},
	}

	seeds := [][]byte{
		gribtest.HSAF().Encode(),
		bitmapped.Encode(),
		latlon.Encode(),
		[]byte("GRIB\x00\x00\x00\x01"),
		[]byte("GRIB"),
		{},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		m, err := DecodeMessage(data)
		if err != nil {
			return
		}
		_, _ = m.Values()
		_, _, _ = m.LatLons()
		_ = m.ProjParams().String()
		for _, k := range Keys() {
			_, _ = m.Get(k)
		}
	})
}

// FuzzOpenBytes checks the message scanner against arbitrary files.
func FuzzOpenBytes(f *testing.F) {
	f.Add(twoMessages())
	f.Add([]byte("GRIBGRIBGRIB"))
	f.Add([]byte{})
	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := OpenBytes("fuzz.grb", data)
		if err != nil {
			return
		}
		if file.Messages() == 0 {
			t.Fatal("OpenBytes returned a file with no messages")
		}
		_ = file.Close()
	})
}

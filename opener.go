package hsafgrib

import (
	"github.com/geal-ai/hsafgrib/grib1"
)

// Opener opens GRIB files. The file handler reaches the bytes only through
// an Opener, so any GRIB library can sit underneath it.
type Opener interface {
	Open(filename string) (File, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(filename string) (File, error)

// Open calls f(filename).
func (f OpenerFunc) Open(filename string) (File, error) { return f(filename) }

// File is an open GRIB file: an ordered sequence of messages.
type File interface {
	// Messages returns the number of messages in the file.
	Messages() int
	// Message returns message n, counting from 1.
	Message(n int) (Message, error)
	Close() error
}

// Message is one GRIB message answering ecCodes-style key lookups.
type Message interface {
	Get(key string) (any, error)
	ValidKey(key string) bool
	// Values returns the decoded grid, row-major, with its dimensions.
	Values() (vals []float64, nx, ny int, err error)
	// ProjParams returns the PROJ parameters of the grid, keyed by their
	// PROJ names ("proj", "a", "b", "lat_0", "lon_0", "h").
	ProjParams() map[string]any
}

// Grib1Opener opens files with the native GRIB edition 1 decoder.
var Grib1Opener Opener = OpenerFunc(openGrib1)

func openGrib1(filename string) (File, error) {
	f, err := grib1.Open(filename)
	if err != nil {
		return nil, err
	}
	return grib1File{f}, nil
}

type grib1File struct{ f *grib1.File }

func (g grib1File) Messages() int { return g.f.Messages() }
func (g grib1File) Close() error  { return g.f.Close() }

func (g grib1File) Message(n int) (Message, error) {
	m, err := g.f.Message(n)
	if err != nil {
		return nil, err
	}
	return grib1Message{m}, nil
}

type grib1Message struct{ m *grib1.Message }

func (g grib1Message) Get(key string) (any, error) { return g.m.Get(key) }
func (g grib1Message) ValidKey(key string) bool    { return g.m.ValidKey(key) }
func (g grib1Message) ProjParams() map[string]any  { return g.m.ProjParams().Map() }

func (g grib1Message) Values() ([]float64, int, int, error) {
	f, err := g.m.Values()
	if err != nil {
		return nil, 0, 0, err
	}
	return f.Vals, f.Nx, f.Ny, nil
}

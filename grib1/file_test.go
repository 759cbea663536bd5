package grib1

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/geal-ai/hsafgrib/internal/gribtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoMessages returns a rain-rate message followed by an accumulation
// message, with junk before and between them.
func twoMessages() []byte {
	acc := gribtest.HSAF()
	acc.Param = 61
	acc.TimeRange, acc.P1, acc.P2 = 4, 0, 3
	return slices.Concat([]byte("HDR\x00"), gribtest.HSAF().Encode(), []byte("\n\n"), acc.Encode())
}

func TestOpenBytesSkipsJunk(t *testing.T) {
	f, err := OpenBytes("h05B_20190603_1645_03_fdk.grb", twoMessages())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "h05B_20190603_1645_03_fdk.grb", f.Name())
	require.Equal(t, 2, f.Messages())

	m1, err := f.Message(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), m1.Offset())
	name, _ := m1.String("shortName")
	assert.Equal(t, "irrate", name)

	m2, err := f.Message(2)
	require.NoError(t, err)
	assert.Equal(t, int64(4+len(m1.Raw())+2), m2.Offset())
	name, _ = m2.String("shortName")
	assert.Equal(t, "tp", name)
}

func TestFileMessageIndex(t *testing.T) {
	f, err := OpenBytes("x.grb", twoMessages())
	require.NoError(t, err)

	for _, n := range []int{0, -1, 3} {
		_, err := f.Message(n)
		assert.ErrorIs(t, err, ErrMessageIndex, "message %d", n)
	}
}

func TestFileAll(t *testing.T) {
	f, err := OpenBytes("x.grb", twoMessages())
	require.NoError(t, err)

	var seen []int
	for n, m := range f.All() {
		require.NotNil(t, m)
		seen = append(seen, n)
	}
	assert.Equal(t, []int{1, 2}, seen)

	seen = seen[:0]
	for n := range f.All() {
		seen = append(seen, n)
		break
	}
	assert.Equal(t, []int{1}, seen)
}

func TestFileClose(t *testing.T) {
	f, err := OpenBytes("x.grb", twoMessages())
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err = f.Message(1)
	assert.ErrorIs(t, err, ErrClosed)
	for range f.All() {
		t.Fatal("All yielded after Close")
	}
}

func TestOpenBytesErrors(t *testing.T) {
	_, err := OpenBytes("empty.grb", []byte("no messages here"))
	assert.ErrorIs(t, err, ErrNoMessages)

	raw := twoMessages()
	_, err = OpenBytes("cut.grb", raw[:len(raw)-20])
	assert.ErrorIs(t, err, ErrTruncated)
	assert.ErrorContains(t, err, "message 2")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h03B_20190603_1645_fdk.grb")
	require.NoError(t, os.WriteFile(path, gribtest.HSAF().Encode(), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "h03B_20190603_1645_fdk.grb", f.Name())
	assert.Equal(t, 1, f.Messages())

	_, err = Open(filepath.Join(t.TempDir(), "missing.grb"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// Package grib1 decodes GRIB edition 1 files: grid-point data with simple
// packing on space-view (geostationary) and regular lat/lon grids.
package grib1

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// maxFileBytes caps the size of a file read into memory. H-SAF full-disk
// products are a few tens of MB.
const maxFileBytes = 512 << 20

// Errors returned by File.
var (
	ErrClosed       = errors.New("grib1: file closed")
	ErrMessageIndex = errors.New("grib1: message index out of range")
	ErrNoMessages   = errors.New("grib1: no GRIB messages found")
)

// File is an ordered set of GRIB1 messages read from one file.
type File struct {
	name   string
	msgs   []*Message
	closed bool
}

// Open reads and indexes every message in the file at path.
func Open(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.Size() > maxFileBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds limit %d", path, st.Size(), maxFileBytes)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return OpenBytes(filepath.Base(path), raw)
}

// OpenBytes indexes the messages in raw. Bytes between messages are
// skipped, as ecCodes does.
func OpenBytes(name string, raw []byte) (*File, error) {
	f := &File{name: name}
	off := 0
	for {
		i := bytes.Index(raw[off:], []byte("GRIB"))
		if i < 0 {
			break
		}
		start := off + i
		m, err := DecodeMessage(raw[start:])
		if err != nil {
			return nil, fmt.Errorf("%s: message %d at offset %d: %w", name, len(f.msgs)+1, start, err)
		}
		m.offset = int64(start)
		f.msgs = append(f.msgs, m)
		off = start + m.Indicator.TotalLength
	}
	if len(f.msgs) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoMessages)
	}
	return f, nil
}

// Name returns the base name the file was opened with.
func (f *File) Name() string { return f.name }

// Messages returns the number of messages in the file.
func (f *File) Messages() int { return len(f.msgs) }

// Message returns message n, counting from 1.
func (f *File) Message(n int) (*Message, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if n < 1 || n > len(f.msgs) {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrMessageIndex, n, len(f.msgs))
	}
	return f.msgs[n-1], nil
}

// All iterates over the messages in file order with their 1-based index.
func (f *File) All() iter.Seq2[int, *Message] {
	return func(yield func(int, *Message) bool) {
		if f.closed {
			return
		}
		for i, m := range f.msgs {
			if !yield(i+1, m) {
				return
			}
		}
	}
}

// Close releases the file's messages. Closing twice is a no-op.
func (f *File) Close() error {
	f.closed = true
	f.msgs = nil
	return nil
}

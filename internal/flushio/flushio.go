// Package flushio provides writers whose output may be held back until a
// Flush, along with a way to fan one out to several.
package flushio

import (
	"bufio"
	"bytes"
	"io"
	"io/ioutil"
	"strings"
)

// WriteFlusher is an io.Writer that may buffer until flushed.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// NewWriteFlusher returns w if it is a WriteFlusher already; in-memory
// buffers and ioutil.Discard get a no-op Flush, while any other writer is
// wrapped in a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case WriteFlusher:
		return impl
	case *bytes.Buffer, *strings.Builder:
		return unbuffered{w}
	}
	if w == ioutil.Discard {
		return unbuffered{w}
	}
	return bufio.NewWriter(w)
}

type unbuffered struct{ io.Writer }

func (unbuffered) Flush() error { return nil }

// Tee returns a WriteFlusher that writes to, and flushes, all of wfs in
// order; nil entries are skipped and nested tees are flattened.
func Tee(wfs ...WriteFlusher) WriteFlusher {
	var all tee
	for _, wf := range wfs {
		switch impl := wf.(type) {
		case nil:
		case tee:
			all = append(all, impl...)
		default:
			all = append(all, wf)
		}
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

type tee []WriteFlusher

// Write writes p to every writer, returning the first error encountered.
func (t tee) Write(p []byte) (int, error) {
	var err error
	for _, wf := range t {
		n, werr := wf.Write(p)
		if werr == nil && n < len(p) {
			werr = io.ErrShortWrite
		}
		if err == nil {
			err = werr
		}
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (t tee) Flush() (err error) {
	for _, wf := range t {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

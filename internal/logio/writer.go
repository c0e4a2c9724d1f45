package logio

import (
	"bytes"
	"sync"
)

// Writer splits everything written to it into lines, passing each to Logf
// with Prefix before it. Close passes along any final unterminated line.
type Writer struct {
	Logf   func(mess string, args ...interface{})
	Prefix string

	mu   sync.Mutex
	part []byte
}

func (lw *Writer) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	n := len(p)
	for {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			lw.part = append(lw.part, p...)
			return n, nil
		}
		if len(lw.part) > 0 {
			lw.emit(append(lw.part, p[:i]...))
			lw.part = lw.part[:0]
		} else {
			lw.emit(p[:i])
		}
		p = p[i+1:]
	}
}

// Close flushes any partial line.
func (lw *Writer) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if len(lw.part) > 0 {
		lw.emit(lw.part)
		lw.part = nil
	}
	return nil
}

func (lw *Writer) emit(line []byte) {
	lw.Logf("%s%s", lw.Prefix, line)
}

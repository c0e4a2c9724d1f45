// Package logio provides leveled line logging for commands, and a writer
// that turns a byte stream back into logged lines.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gitlab.com/variadico/lctime"
)

// Logger writes leveled lines to an output stream, which defaults to
// os.Stderr, and remembers any error logged so that a command can exit
// non-zero.
type Logger struct {
	// TimeFormat, if set, is a strftime format for a timestamp prefixed to
	// every line.
	TimeFormat string

	// Now overrides time.Now for timestamps.
	Now func() time.Time

	mu       sync.Mutex
	out      io.Writer
	buf      bytes.Buffer
	exitCode int
}

// SetOutput changes the logger's output stream.
func (log *Logger) SetOutput(out io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.out = out
}

// ExitCode returns 1 if any error was logged, 2 if the output itself failed,
// and 0 otherwise.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Errorf logs an ERROR line, after which ExitCode is non-zero.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.exitCode == 0 {
		log.exitCode = 1
	}
	log.printf("ERROR", mess, args)
}

// Printf logs a line at the given level; level may be empty.
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.printf(level, mess, args)
}

// Leveledf returns a printf-style function that logs at level.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) {
		log.Printf(level, mess, args...)
	}
}

func (log *Logger) printf(level, mess string, args []interface{}) {
	log.buf.Reset()
	if log.TimeFormat != "" {
		now := time.Now
		if log.Now != nil {
			now = log.Now
		}
		log.buf.WriteString(lctime.Strftime(log.TimeFormat, now()))
		log.buf.WriteByte(' ')
	}
	if level != "" {
		log.buf.WriteString(level)
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}

	out := log.out
	if out == nil {
		out = os.Stderr
	}
	if _, err := log.buf.WriteTo(out); err != nil {
		log.exitCode = 2
	}
}

package logio_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/goforth/internal/logio"
)

func TestLogger(t *testing.T) {
	var out strings.Builder
	log := logio.Logger{
		TimeFormat: "%Y-%m-%d",
		Now:        func() time.Time { return time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC) },
	}
	log.SetOutput(&out)

	log.Printf("INFO", "hello %v", "world")
	log.Leveledf("TRACE")("no args %v")
	assert.Equal(t, 0, log.ExitCode())
	log.Errorf("bad thing\n")
	log.Printf("", "plain")

	assert.Equal(t, strings.Join([]string{
		"2021-03-04 INFO: hello world",
		"2021-03-04 TRACE: no args %v",
		"2021-03-04 ERROR: bad thing",
		"2021-03-04 plain",
		"",
	}, "\n"), out.String())
	assert.Equal(t, 1, log.ExitCode())
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, fmt.Errorf("nope") }

func TestLogger_outputFailure(t *testing.T) {
	var log logio.Logger
	log.SetOutput(failWriter{})
	log.Errorf("lost")
	assert.Equal(t, 2, log.ExitCode())
}

func TestWriter(t *testing.T) {
	var lines []string
	lw := &logio.Writer{
		Prefix: "> ",
		Logf: func(mess string, args ...interface{}) {
			lines = append(lines, fmt.Sprintf(mess, args...))
		},
	}
	fmt.Fprint(lw, "one\ntw")
	fmt.Fprint(lw, "o\n\nthr")
	fmt.Fprint(lw, "ee")
	assert.Equal(t, []string{"> one", "> two", "> "}, lines)
	assert.NoError(t, lw.Close())
	assert.Equal(t, []string{"> one", "> two", "> ", "> three"}, lines)
	assert.NoError(t, lw.Close())
	assert.Len(t, lines, 4)
}

package flushio_test

import (
	"bufio"
	"bytes"
	"errors"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goforth/internal/flushio"
)

type failWriter struct{ err error }

func (fw failWriter) Write(p []byte) (int, error) { return 0, fw.err }

func TestNewWriteFlusher(t *testing.T) {
	var sb strings.Builder
	wf := flushio.NewWriteFlusher(&sb)
	_, err := wf.Write([]byte("now"))
	require.NoError(t, err)
	assert.Equal(t, "now", sb.String(), "buffers are written through")

	bw := bufio.NewWriter(&sb)
	assert.Equal(t, flushio.WriteFlusher(bw), flushio.NewWriteFlusher(bw))

	assert.NoError(t, flushio.NewWriteFlusher(ioutil.Discard).Flush())

	var out bytes.Buffer
	wf = flushio.NewWriteFlusher(struct{ *bytes.Buffer }{&out})
	_, err = wf.Write([]byte("later"))
	require.NoError(t, err)
	assert.Equal(t, "", out.String(), "other writers are buffered")
	require.NoError(t, wf.Flush())
	assert.Equal(t, "later", out.String())
}

func TestTee(t *testing.T) {
	var a, b strings.Builder
	wa, wb := flushio.NewWriteFlusher(&a), flushio.NewWriteFlusher(&b)
	assert.Equal(t, wa, flushio.Tee(nil, wa), "a single writer is returned as is")

	var c bytes.Buffer
	wc := bufio.NewWriter(&c)
	tee := flushio.Tee(flushio.Tee(wa, wb), wc)
	n, err := tee.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
	assert.Equal(t, "", c.String())
	require.NoError(t, tee.Flush())
	assert.Equal(t, "hello", c.String())

	errFail := errors.New("nope")
	tee = flushio.Tee(flushio.NewWriteFlusher(failWriter{errFail}), wa)
	wf := flushio.Tee(tee, wb)
	_, err = wf.Write([]byte("!"))
	require.NoError(t, err, "write is buffered")
	assert.Equal(t, errFail, wf.Flush())
	assert.Equal(t, "hello!", a.String(), "later writers still receive output")
	assert.Equal(t, "hello!", b.String())
}

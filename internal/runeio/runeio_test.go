package runeio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/goforth/internal/runeio"
)

func TestAppendANSIRune(t *testing.T) {
	for _, tc := range []struct {
		r   rune
		out string
	}{
		{'a', "a"},
		{'\n', "\n"},
		{0x85, "\r\n"},
		{0x9b, "\x1b["},
		{0x9c, "\x1b\\"},
		{'é', "é"},
		{'世', "世"},
	} {
		assert.Equal(t, tc.out, string(runeio.AppendANSIRune(nil, tc.r)), "rune %U", tc.r)
	}
}

func TestControlSequences(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, runeio.ClearScreen(&sb))
	assert.Equal(t, "\x1b[H\x1b[2J", sb.String())

	sb.Reset()
	require.NoError(t, runeio.MoveCursor(&sb, 0, 0))
	require.NoError(t, runeio.MoveCursor(&sb, 9, 4))
	assert.Equal(t, "\x1b[1;1H\x1b[5;10H", sb.String())

	sb.Reset()
	n, err := runeio.WriteANSIRune(&sb, 0x85)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestParseChar(t *testing.T) {
	for _, tc := range []struct {
		tok string
		c   byte
	}{
		{`'a'`, 'a'},
		{`'"'`, '"'},
		{`'\''`, '\''},
		{`'\n'`, '\n'},
		{`'\x7f'`, 0x7f},
		{`'é'`, 0xe9},
		{"<ESC>", 0x1b},
		{"<nul>", 0},
		{"<SP>", ' '},
		{"<DEL>", 0x7f},
		{"^[", 0x1b},
		{"^@", 0},
		{"^?", 0x7f},
	} {
		c, err := runeio.ParseChar(tc.tok)
		if assert.NoError(t, err, "%v", tc.tok) {
			assert.Equal(t, tc.c, c, "%v", tc.tok)
		}
	}

	for _, tok := range []string{"", "a", "''", "'ab'", "'世'", "<>", "<BOGUS>", "^a", "^"} {
		_, err := runeio.ParseChar(tok)
		assert.Error(t, err, "%q", tok)
	}
}

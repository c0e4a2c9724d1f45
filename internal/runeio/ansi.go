// Package runeio writes runes and terminal control sequences to ANSI
// terminals, and parses the character literals used in Forth source.
package runeio

import (
	"io"
	"strconv"
	"unicode/utf8"
)

// AppendANSIRune appends the encoding of r to buf: C1 controls take their
// 7-bit escape form, NEL becomes CR LF, and anything else is plain UTF-8.
func AppendANSIRune(buf []byte, r rune) []byte {
	switch {
	case r < utf8.RuneSelf:
		return append(buf, byte(r))
	case r == 0x85:
		return append(buf, '\r', '\n')
	case r <= 0x9f:
		return append(buf, 0x1b, byte(r)^0xc0)
	}
	var tmp [utf8.UTFMax]byte
	n := utf8.EncodeRune(tmp[:], r)
	return append(buf, tmp[:n]...)
}

// WriteANSIRune writes r encoded by AppendANSIRune.
func WriteANSIRune(w io.Writer, r rune) (int, error) {
	var tmp [utf8.UTFMax]byte
	return w.Write(AppendANSIRune(tmp[:0], r))
}

const csi = '\u009b'

// ClearScreen homes the cursor and erases the display.
func ClearScreen(w io.Writer) error {
	buf := make([]byte, 0, 8)
	buf = AppendANSIRune(buf, csi)
	buf = append(buf, 'H')
	buf = AppendANSIRune(buf, csi)
	buf = append(buf, '2', 'J')
	_, err := w.Write(buf)
	return err
}

// MoveCursor positions the cursor at column x of row y, both counted from 0.
func MoveCursor(w io.Writer, x, y int) error {
	buf := make([]byte, 0, 16)
	buf = AppendANSIRune(buf, csi)
	buf = strconv.AppendInt(buf, int64(y)+1, 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(x)+1, 10)
	buf = append(buf, 'H')
	_, err := w.Write(buf)
	return err
}

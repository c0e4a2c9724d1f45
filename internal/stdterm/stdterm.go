// Package stdterm provides the goforth terminal, line, and key input over the
// process's standard streams.
package stdterm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
	"golang.org/x/text/encoding/charmap"

	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/flushio"
	"github.com/jcorbin/goforth/internal/runeio"
)

// Charsets names the supported single byte character sets; Forth characters
// are bytes in the chosen set, transcoded to and from UTF-8 at the terminal.
var Charsets = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp437":        charmap.CodePage437,
}

var errNotTerminal = errors.New("not a terminal")

// Terminal implements the goforth Terminal, LineInput, and KeyInput
// interfaces. When in is an interactive terminal, ACCEPT gets line editing
// and history; otherwise lines are simply read from it.
type Terminal struct {
	in  *os.File
	out flushio.WriteFlusher
	cm  *charmap.Charmap

	interactive bool
	editor      *term.Terminal
	lines       fileinput.Input
	key         [1]byte
}

// Open creates a Terminal over the given streams; charset may be empty, or
// "utf-8", to pass bytes through unchanged.
func Open(in, out *os.File, charset string) (*Terminal, error) {
	t := &Terminal{
		in:          in,
		out:         flushio.NewWriteFlusher(out),
		interactive: term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())),
	}
	switch cs := strings.ToLower(charset); cs {
	case "", "utf-8", "utf8":
	default:
		cm, ok := Charsets[cs]
		if !ok {
			return nil, fmt.Errorf("unsupported charset %q", charset)
		}
		t.cm = cm
	}
	if t.interactive {
		t.editor = term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, "")
	} else {
		t.lines.Queue = []io.Reader{in}
	}
	return t, nil
}

// Interactive returns true if both streams are a terminal.
func (t *Terminal) Interactive() bool { return t.interactive }

// Width returns the width of the output terminal, or 0 if unknown.
func (t *Terminal) Width() int {
	if !t.interactive {
		return 0
	}
	w, _, err := term.GetSize(int(t.in.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Type writes bytes, decoding them from the charset if any; control
// characters are written in their 7-bit ANSI form.
func (t *Terminal) Type(p []byte) error {
	if t.cm == nil {
		_, err := t.out.Write(p)
		return err
	}
	for _, c := range p {
		if _, err := runeio.WriteANSIRune(t.out, t.cm.DecodeByte(c)); err != nil {
			return err
		}
	}
	return nil
}

// CR writes a line feed.
func (t *Terminal) CR() error {
	_, err := t.out.Write([]byte{'\n'})
	return err
}

// Flush flushes any buffered output.
func (t *Terminal) Flush() error { return t.out.Flush() }

// Page clears the screen.
func (t *Terminal) Page() error { return runeio.ClearScreen(t.out) }

// AtXY moves the cursor to column x of row y, counting from 0.
func (t *Terminal) AtXY(x, y int) error { return runeio.MoveCursor(t.out, x, y) }

// Accept reads a line into buf, encoding it into the charset if any.
func (t *Terminal) Accept(buf []byte) (int, error) {
	if !t.interactive {
		n, err := t.lines.Accept(buf)
		if err != nil || t.cm == nil {
			return n, err
		}
		return t.encode(buf, string(buf[:n])), nil
	}

	if err := t.out.Flush(); err != nil {
		return 0, err
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return 0, err
	}
	line, err := t.editor.ReadLine()
	if rerr := term.Restore(int(t.in.Fd()), state); err == nil {
		err = rerr
	}
	if err != nil {
		return 0, err
	}
	if t.cm == nil {
		return copy(buf, line), nil
	}
	return t.encode(buf, line), nil
}

// encode writes s into buf in the charset, mapping unrepresentable runes to
// the charset's replacement byte.
func (t *Terminal) encode(buf []byte, s string) int {
	n := 0
	for _, r := range s {
		if n >= len(buf) {
			break
		}
		c, ok := t.cm.EncodeRune(r)
		if !ok {
			c = '?'
		}
		buf[n] = c
		n++
	}
	return n
}

// Key reads a single byte, in raw mode when interactive.
func (t *Terminal) Key() (byte, error) {
	if err := t.out.Flush(); err != nil {
		return 0, err
	}
	if t.interactive {
		state, err := term.MakeRaw(int(t.in.Fd()))
		if err != nil {
			return 0, err
		}
		defer term.Restore(int(t.in.Fd()), state)
	}
	if _, err := io.ReadFull(t.in, t.key[:]); err != nil {
		return 0, err
	}
	c := t.key[0]
	if t.cm != nil && c >= utf8.RuneSelf {
		// a terminal speaking UTF-8 sends a multi byte sequence; collect it
		// into one charset byte
		seq := []byte{c}
		for !utf8.FullRune(seq) && len(seq) < utf8.UTFMax {
			if _, err := io.ReadFull(t.in, t.key[:]); err != nil {
				return 0, err
			}
			seq = append(seq, t.key[0])
		}
		r, _ := utf8.DecodeRune(seq)
		if enc, ok := t.cm.EncodeRune(r); ok {
			c = enc
		} else {
			c = '?'
		}
	}
	return c, nil
}

// KeyReady reports whether Key would not block.
func (t *Terminal) KeyReady() (bool, error) {
	return pollReadable(t.in)
}

// Close flushes output; the streams themselves are left open.
func (t *Terminal) Close() error { return t.out.Flush() }

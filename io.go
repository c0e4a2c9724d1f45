package goforth

import (
	"github.com/jcorbin/goforth/internal/flushio"
	"github.com/jcorbin/goforth/internal/runeio"
)

// writerTerminal is a Terminal over a plain output stream, rendering PAGE
// and AT-XY as ANSI control sequences.
type writerTerminal struct{ out flushio.WriteFlusher }

func (wt writerTerminal) Type(p []byte) error {
	_, err := wt.out.Write(p)
	return err
}

func (wt writerTerminal) CR() error           { return wt.Type([]byte{'\n'}) }
func (wt writerTerminal) Flush() error        { return wt.out.Flush() }
func (wt writerTerminal) Page() error         { return runeio.ClearScreen(wt.out) }
func (wt writerTerminal) AtXY(x, y int) error { return runeio.MoveCursor(wt.out, x, y) }

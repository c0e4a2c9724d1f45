// Package fileinput reads lines through a queue of input streams, keeping
// track of where each line came from.
package fileinput

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Location names a line in an Input stream.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Input reads lines from each stream in Queue until all run dry; Last holds
// the most recently returned line.
type Input struct {
	Queue []io.Reader
	Last  Location
	Text  []byte

	cur  io.Reader
	br   *bufio.Reader
	next Location
}

// Accept reads the next line into buf, returning how many bytes it stored.
// The line terminator, and any carriage return before it, is not stored;
// bytes past len(buf) are dropped. A final unterminated line is still
// returned, and io.EOF only once every stream is exhausted.
func (in *Input) Accept(buf []byte) (int, error) {
	for {
		if in.br == nil && !in.nextIn() {
			return 0, io.EOF
		}
		line, err := in.br.ReadSlice('\n')
		for err == bufio.ErrBufferFull {
			// keep reading to the end of an overlong line, retaining its head
			in.Text = append(in.Text[:0], line...)
			var more []byte
			more, err = in.br.ReadSlice('\n')
			line = append(in.Text, more...)
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if err == io.EOF {
			in.closeIn()
			if len(line) == 0 {
				continue
			}
		}
		line = bytes.TrimSuffix(line, []byte{'\n'})
		line = bytes.TrimSuffix(line, []byte{'\r'})
		in.Text = append(in.Text[:0], line...)
		in.Last = in.next
		in.next.Line++
		return copy(buf, in.Text), nil
	}
}

func (in *Input) closeIn() {
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.cur, in.br = nil, nil
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	in.cur = in.Queue[0]
	in.Queue = in.Queue[1:]
	in.br = bufio.NewReader(in.cur)
	in.next = Location{Name: nameOf(in.cur), Line: 1}
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

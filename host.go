package goforth

import (
	"io"
	"time"
)

// Terminal is the output side of a VM: TYPE, EMIT and CR write through it.
// A Terminal may additionally implement Pager and Cursor; words that need an
// unimplemented capability throw -21.
type Terminal interface {
	Type(p []byte) error
	CR() error
}

// Pager is implemented by terminals that can clear the screen for PAGE.
type Pager interface {
	Page() error
}

// Cursor is implemented by terminals that can position the cursor for AT-XY.
type Cursor interface {
	AtXY(x, y int) error
}

// LineInput is the source of terminal input lines, as read by ACCEPT, QUERY,
// and REFILL. Accept reads at most len(buf) bytes, not including any line
// terminator; it returns io.EOF once no further lines are available.
//
// A LineInput may additionally implement KeyInput and ExtendedKeyInput.
type LineInput interface {
	Accept(buf []byte) (int, error)
}

// KeyInput provides single character input for KEY and KEY?.
type KeyInput interface {
	Key() (byte, error)
	KeyReady() (bool, error)
}

// ExtendedKeyInput provides keyboard events for EKEY, EKEY? and EKEY>CHAR.
type ExtendedKeyInput interface {
	EKey() (uint32, error)
	EKeyReady() (bool, error)
	EKeyToChar(ek uint32) (c byte, ok bool)
}

// FileAccess is a Forth file access method, as given by R/O W/O R/W and BIN.
type FileAccess uint32

// File access method bits.
const (
	FileRead   FileAccess = 1
	FileWrite  FileAccess = 2
	FileBinary FileAccess = 8
)

// FileSystem backs the file access words.
type FileSystem interface {
	OpenFile(name string, fam FileAccess, create bool) (File, error)
	Remove(name string) error
}

// File is an open file handle; FLUSH-FILE calls Sync() error when the file
// provides it.
type File interface {
	io.ReadWriteSeeker
	io.Closer
}

// Clock provides time to MS and TIME&DATE.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// ExternalFunc is a host supplied primitive; it operates on the VM stacks
// (see Push and Pop) and returns 0 on success, or a code to THROW.
type ExternalFunc func(vm *VM) int32

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

package goforth

import (
	"errors"
	"io"
	"strings"
	"time"
)

// character I/O and other host services

var errNoInput = errors.New("no input source")

type flusher interface{ Flush() error }

func init() {
	opTable[opAccept] = func(vm *VM) {
		n := vm.pop()
		addr := vm.pop()
		m, err := vm.accept(addr, n)
		throwIf(err != nil, ThrowCharIO)
		vm.push(uint32(m))
	}
	opTable[opKey] = (*VM).key
	opTable[opKeyQ] = (*VM).keyReady
	opTable[opEKey] = (*VM).ekey
	opTable[opEKeyQ] = (*VM).ekeyReady
	opTable[opEKeyToChar] = (*VM).ekeyToChar

	opTable[opType] = func(vm *VM) {
		n := vm.pop()
		vm.typeBytes(vm.mem.load(vm.pop(), n))
	}
	opTable[opEmit] = func(vm *VM) { vm.typeBytes([]byte{byte(vm.pop())}) }
	opTable[opCR] = func(vm *VM) { vm.cr() }
	opTable[opPage] = (*VM).page
	opTable[opAtXY] = (*VM).atXY
	opTable[opDump] = (*VM).dump
	opTable[opMS] = func(vm *VM) { vm.clock.Sleep(time.Duration(vm.pop()) * time.Millisecond) }
	opTable[opTimeDate] = (*VM).timeDate
}

func (vm *VM) flushOutput() error {
	if fl, ok := vm.term.(flusher); ok {
		return fl.Flush()
	}
	return nil
}

// accept reads a line of input into memory at addr, flushing any pending
// output first. A partial final line is returned without error.
func (vm *VM) accept(addr, n uint32) (int, error) {
	if vm.input == nil {
		return 0, errNoInput
	}
	if err := vm.flushOutput(); err != nil {
		return 0, err
	}
	buf := make([]byte, n)
	m, err := vm.input.Accept(buf)
	if m > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		vm.logf("input", "accept failed: %v", err)
		return 0, err
	}
	vm.mem.stor(addr, buf[:m])
	vm.col = 0
	return m, nil
}

func (vm *VM) typeBytes(p []byte) {
	if err := vm.term.Type(p); err != nil {
		throw(ThrowCharIO)
	}
	if i := strings.LastIndexByte(string(p), '\n'); i >= 0 {
		vm.col = len(p) - i - 1
	} else {
		vm.col += len(p)
	}
}

func (vm *VM) typeString(s string) { vm.typeBytes([]byte(s)) }

func (vm *VM) cr() {
	if err := vm.term.CR(); err != nil {
		throw(ThrowCharIO)
	}
	vm.col = 0
}

func (vm *VM) page() {
	pg, ok := vm.term.(Pager)
	throwIf(!ok, ThrowUnsupported)
	throwIf(pg.Page() != nil, ThrowCharIO)
	vm.col = 0
}

// ( x y -- )
func (vm *VM) atXY() {
	y := int(int32(vm.pop()))
	x := int(int32(vm.pop()))
	cur, ok := vm.term.(Cursor)
	throwIf(!ok, ThrowUnsupported)
	throwIf(cur.AtXY(x, y) != nil, ThrowCharIO)
	vm.col = x
}

func (vm *VM) keyInput() KeyInput {
	throwIf(vm.keys == nil, ThrowUnsupported)
	throwIf(vm.flushOutput() != nil, ThrowCharIO)
	return vm.keys
}

func (vm *VM) extendedKeyInput() ExtendedKeyInput {
	throwIf(vm.ekeys == nil, ThrowUnsupported)
	throwIf(vm.flushOutput() != nil, ThrowCharIO)
	return vm.ekeys
}

func (vm *VM) key() {
	c, err := vm.keyInput().Key()
	throwIf(err != nil, ThrowCharIO)
	vm.push(uint32(c))
}

func (vm *VM) keyReady() {
	ok, err := vm.keyInput().KeyReady()
	throwIf(err != nil, ThrowCharIO)
	vm.pushFlag(ok)
}

func (vm *VM) ekey() {
	ek, err := vm.extendedKeyInput().EKey()
	throwIf(err != nil, ThrowCharIO)
	vm.push(ek)
}

func (vm *VM) ekeyReady() {
	ok, err := vm.extendedKeyInput().EKeyReady()
	throwIf(err != nil, ThrowCharIO)
	vm.pushFlag(ok)
}

// ( u -- u false | char true )
func (vm *VM) ekeyToChar() {
	if c, ok := vm.extendedKeyInput().EKeyToChar(vm.peek(0)); ok {
		vm.poke(0, uint32(c))
		vm.push(True)
	} else {
		vm.push(False)
	}
}

// ( -- +n1 +n2 +n3 +n4 +n5 +n6 )
func (vm *VM) timeDate() {
	t := vm.clock.Now()
	vm.push(uint32(t.Second()))
	vm.push(uint32(t.Minute()))
	vm.push(uint32(t.Hour()))
	vm.push(uint32(t.Day()))
	vm.push(uint32(t.Month()))
	vm.push(uint32(t.Year()))
}

// dump prints memory as rows of eight bytes: address, hex bytes, and the
// printable characters.
//
// ( addr u -- )
func (vm *VM) dump() {
	n := vm.pop()
	addr := vm.pop()
	if n == 0 {
		return
	}
	data := vm.mem.load(addr, n)
	var chars [8]byte
	var sb strings.Builder
	for i, c := range data {
		if i%8 == 0 {
			if i > 0 {
				sb.Write(chars[:])
				vm.typeString(sb.String())
				sb.Reset()
			}
			vm.cr()
			sb.WriteString(formatUnsigned(addr+uint32(i), 16, 8))
			sb.WriteString(" : ")
			for j := range chars {
				chars[j] = ' '
			}
		}
		if c > 31 && c < 128 {
			chars[i%8] = c
		} else {
			chars[i%8] = '.'
		}
		sb.WriteByte(digitChar(uint32(c >> 4)))
		sb.WriteByte(digitChar(uint32(c & 0xf)))
		sb.WriteByte(' ')
	}
	cnt := len(data) % 8
	if cnt == 0 {
		cnt = 8
	}
	sb.WriteString(strings.Repeat("   ", 8-cnt))
	sb.Write(chars[:cnt])
	vm.typeString(sb.String())
	vm.cr()
}

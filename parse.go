package goforth

import "io"

// input source state and the parsing primitives

func init() {
	opTable[opParse] = func(vm *VM) {
		addr, n := vm.parse(byte(vm.pop()))
		vm.push(addr)
		vm.push(n)
	}
	opTable[opParseWord] = func(vm *VM) {
		addr, n := vm.parseWord(' ')
		vm.push(addr)
		vm.push(n)
	}
	opTable[opWord] = (*VM).word

	opTable[opSource] = func(vm *VM) {
		vm.push(vm.sysvar(sysSourceAddr))
		vm.push(vm.sysvar(sysSourceLen))
	}
	opTable[opSourceStore] = func(vm *VM) {
		vm.setSysvar(sysSourceLen, vm.pop())
		vm.setSysvar(sysSourceAddr, vm.pop())
	}
	opTable[opToIn] = sysvarOp(sysToIn)
	opTable[opBlk] = sysvarOp(sysBlk)
	opTable[opNumTIB] = sysvarOp(sysNumTIB)
	opTable[opSourceIDAddr] = sysvarOp(sysSourceID)
	opTable[opLineNumber] = sysvarOp(sysLineNumber)
	opTable[opBase] = sysvarOp(sysBase)
	opTable[opState] = sysvarOp(sysState)
	opTable[opTIB] = func(vm *VM) { vm.push(vm.layout.tib) }

	opTable[opQuery] = func(vm *VM) {
		if _, err := vm.query(); err != nil {
			throw(ThrowCharIO)
		}
	}
	opTable[opRefill] = func(vm *VM) { vm.pushFlag(vm.refill()) }
	opTable[opSaveInput] = (*VM).saveInput
	opTable[opRestoreInput] = (*VM).restoreInput
}

func sysvarOp(i uint32) func(vm *VM) {
	return func(vm *VM) { vm.push(vm.layout.sysAddr(i)) }
}

// isSpace matches the C locale white space class.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDelim(c, delim byte) bool {
	if delim == ' ' {
		return isSpace(c)
	}
	return c == delim
}

// parse scans from >IN up to the next delimiter, consuming it if present; a
// space delimiter matches any white space.
func (vm *VM) parse(delim byte) (addr, n uint32) {
	src, srcLen, in := vm.sysvar(sysSourceAddr), vm.sysvar(sysSourceLen), vm.sysvar(sysToIn)
	if in >= srcLen {
		return src + srcLen, 0
	}
	addr = src + in
	for in+n < srcLen && !isDelim(vm.mem.cfetch(addr+n), delim) {
		n++
	}
	in += n
	if in < srcLen {
		in++
	}
	vm.setSysvar(sysToIn, in)
	return addr, n
}

// parseWord skips leading delimiters before parsing.
func (vm *VM) parseWord(delim byte) (addr, n uint32) {
	src, srcLen, in := vm.sysvar(sysSourceAddr), vm.sysvar(sysSourceLen), vm.sysvar(sysToIn)
	for in < srcLen && isDelim(vm.mem.cfetch(src+in), delim) {
		in++
	}
	vm.setSysvar(sysToIn, in)
	return vm.parse(delim)
}

// ( char -- c-addr )
func (vm *VM) word() {
	addr, n := vm.parseWord(byte(vm.pop()))
	throwIf(n > maxNameLen, ThrowParseOverflow)
	buf := align(vm.dp()) + wordBufOffset
	throwIf(buf+1+n > vm.dpMax(), ThrowDictOverflow)
	name := vm.mem.load(addr, n)
	vm.mem.cstore(buf, byte(n))
	vm.mem.stor(buf+1, name)
	vm.push(buf)
}

// query reads a line of terminal input into the TIB and makes it the input
// source.
func (vm *VM) query() (int, error) {
	vm.setSysvar(sysBlk, 0)
	vm.setSysvar(sysSourceID, 0)
	vm.setSysvar(sysSourceAddr, vm.layout.tib)
	vm.setSysvar(sysSourceLen, 0)
	vm.setSysvar(sysToIn, 0)
	n, err := vm.accept(vm.layout.tib, tibSize)
	if err != nil {
		vm.setSysvar(sysNumTIB, 0)
		return n, err
	}
	vm.setSysvar(sysNumTIB, uint32(n))
	vm.setSysvar(sysSourceLen, uint32(n))
	return n, nil
}

func (vm *VM) refill() bool {
	switch vm.sysvar(sysSourceID) {
	case 0:
		_, err := vm.query()
		return err == nil
	case True:
		return false
	}
	if !vm.refillFile() {
		return false
	}
	vm.setSysvar(sysLineNumber, vm.sysvar(sysLineNumber)+1)
	return true
}

// ( -- xn ... x1 n )
func (vm *VM) saveInput() {
	throwIf(vm.sysvar(sysBlk) != 0, ThrowUnsupported)
	vm.push(vm.sysvar(sysToIn))
	if id := vm.sysvar(sysSourceID); id == 0 || id == True {
		vm.push(1)
		return
	}
	vm.push(vm.sysvar(sysLineNumber))
	vm.push(vm.sysvar(sysFilePosLo))
	vm.push(vm.sysvar(sysFilePosHi))
	vm.push(4)
}

// ( xn ... x1 n -- flag )
func (vm *VM) restoreInput() {
	throwIf(vm.sysvar(sysBlk) != 0, ThrowUnsupported)
	n := vm.peek(0)
	id := vm.sysvar(sysSourceID)
	fromFile := id != 0 && id != True

	switch {
	case !fromFile && n == 1:
		vm.setSysvar(sysToIn, vm.peek(1))
		vm.drop(1)
		vm.poke(0, 0)

	case fromFile && n == 4:
		pos := int64(dcell(vm.peek(1), vm.peek(2)))
		line, in := vm.peek(3), vm.peek(4)
		vm.drop(4)
		ok := false
		if of := vm.files.get(id); of != nil {
			if _, err := of.Seek(pos, io.SeekStart); err == nil {
				ok = vm.refillFile()
			}
		}
		if ok {
			vm.setSysvar(sysLineNumber, line)
			vm.setSysvar(sysToIn, in)
		}
		vm.poke(0, flag(!ok))

	default:
		vm.drop(n)
		vm.poke(0, True)
	}
}

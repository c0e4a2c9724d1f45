package goforth

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// VM is a Forth virtual machine; see New for construction.
// A VM is not safe for concurrent use.
type VM struct {
	logfn    func(mess string, args ...interface{})
	logWidth int

	mem    memory
	layout layout
	image  imageRefs
	err    error

	// registers; sp and rp are cell indices into region 0, grow downward
	ip, w, xt uint32
	sp, rp    uint32

	redispatch bool
	done       bool
	doneErr    error

	stackCheck bool
	config     vmConfig

	term     Terminal
	input    LineInput
	keys     KeyInput
	ekeys    ExtendedKeyInput
	fs       FileSystem
	files    fileTable
	clock    Clock
	external []ExternalFunc
	col      int

	closers []io.Closer
}

type vmConfig struct {
	dictCells   uint32
	stackCells  uint32
	rstackCells uint32
	orderSlots  uint32
	userCells   uint32
	heapLimit   uint
	termWidth   int
	trace       bool
	externs     []externDef
}

var defaultConfig = vmConfig{
	dictCells:   32 * 1024,
	stackCells:  256,
	rstackCells: 256,
	orderSlots:  16,
	userCells:   64,
	termWidth:   80,
}

// opTable maps opcodes to their implementation; filled by init functions,
// keeping each primitive family in its own file.
var opTable [opMax]func(vm *VM)

const ctxCheckInterval = 1024

func (vm *VM) cell(ix uint32) uint32 {
	throwIf(ix >= uint32(len(vm.mem.cells)), ThrowInvalidAddress)
	return vm.mem.cells[ix]
}

func (vm *VM) setCell(ix, v uint32) {
	throwIf(ix >= uint32(len(vm.mem.cells)), ThrowInvalidAddress)
	vm.mem.cells[ix] = v
}

func (vm *VM) sysvar(i uint32) uint32       { return vm.mem.cells[vm.layout.sys+i] }
func (vm *VM) setSysvar(i uint32, v uint32) { vm.mem.cells[vm.layout.sys+i] = v }

// inner runs the dispatch loop until BYE, an uncaught THROW, a fatal error,
// or context cancellation.
func (vm *VM) inner(ctx context.Context) error {
	vm.done, vm.doneErr = false, nil
	for n := 1; !vm.done; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		vm.step()
	}
	return vm.doneErr
}

// step performs one iteration of the dispatch loop; a fault raised by a
// primitive is converted into a THROW of its code, dispatched on the next
// iteration without advancing ip.
func (vm *VM) step() {
	defer func() {
		if e := recover(); e != nil {
			code, ok := thrownCode(e)
			if !ok {
				panic(e)
			}
			vm.raise(code)
		}
	}()

	if vm.stackCheck {
		vm.checkStacks()
	}
	if vm.sysvar(sysTrace) != 0 {
		vm.traceExec()
	}

	tok := Token(vm.xt)
	if !tok.IsPrimitive() {
		vm.w = tok.Index()
		vm.xt = vm.cell(vm.w)
		return
	}

	op := tok.Op()
	var fn func(vm *VM)
	if op < opMax {
		fn = opTable[op]
	}
	if fn == nil {
		vm.halt(UnknownOpcodeError{tok, vm.w})
	}
	if vm.logfn != nil {
		vm.logf("exec", "@%v %v -- s:%v r:%v", vm.w, vm.tokenName(vm.xt), vm.Stack(), vm.rstack())
	}

	vm.redispatch = false
	fn(vm)
	if vm.done || vm.redispatch {
		return
	}
	vm.w = vm.ip
	vm.ip++
	vm.xt = vm.cell(vm.w)
}

// raise synthesizes a THROW, as if the current token had been THROW with
// code on the data stack.
func (vm *VM) raise(code ThrowCode) {
	vm.logf("throw", "%v handler:%#x", code, vm.sysvar(sysHandler))
	if !vm.inStackBounds(vm.sp - 1) {
		vm.sp = vm.layout.sp0
	}
	vm.sp--
	vm.mem.cells[vm.sp] = uint32(code)
	vm.xt = uint32(PrimToken(opThrow, 0))
	vm.redispatch = true
}

// inStackBounds reports whether ix is a data stack cell, guards included.
func (vm *VM) inStackBounds(ix uint32) bool {
	return ix >= vm.layout.spMin-guardCells && ix < vm.layout.sp0+guardCells
}

func (vm *VM) checkStacks() {
	var code ThrowCode
	switch {
	case vm.sp < vm.layout.spMin:
		code = ThrowStackOverflow
	case vm.sp > vm.layout.sp0:
		code = ThrowStackUnderflow
	case vm.rp < vm.layout.rpMin:
		code = ThrowRStackOverflow
	case vm.rp > vm.layout.rp0:
		code = ThrowRStackUnderflow
	default:
		return
	}
	if !vm.inStackBounds(vm.sp) {
		vm.sp = vm.layout.sp0 - 1
	}
	vm.mem.cells[vm.sp] = uint32(code)
	vm.w = 0
	vm.xt = uint32(PrimToken(opThrow, 0))
}

// stop ends the dispatch loop, saving registers for resumption.
func (vm *VM) stop(err error) {
	vm.done = true
	vm.doneErr = err
}

func (vm *VM) traceExec() {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%08X]:%08X ", vm.w, vm.xt)
	sb.WriteString(vm.tokenName(vm.xt))
	sb.WriteByte(' ')
	if err := vm.term.Type([]byte(sb.String())); err != nil {
		vm.setSysvar(sysTrace, 0)
		throw(ThrowCharIO)
	}
	vm.col += sb.Len()
	vm.dotS()
}

//// stacks

func (vm *VM) push(v uint32) {
	vm.sp--
	vm.mem.cells[vm.sp] = v
}

func (vm *VM) pop() uint32 {
	v := vm.mem.cells[vm.sp]
	vm.sp++
	return v
}

// peek returns the i-th data stack item, 0 being the top.
func (vm *VM) peek(i uint32) uint32    { return vm.mem.cells[vm.sp+i] }
func (vm *VM) poke(i uint32, v uint32) { vm.mem.cells[vm.sp+i] = v }
func (vm *VM) drop(n uint32)           { vm.sp += n }

func (vm *VM) pushFlag(b bool) { vm.push(flag(b)) }

func (vm *VM) rpush(v uint32) {
	vm.rp--
	vm.mem.cells[vm.rp] = v
}

func (vm *VM) rpop() uint32 {
	v := vm.mem.cells[vm.rp]
	vm.rp++
	return v
}

func (vm *VM) rpeek(i uint32) uint32    { return vm.mem.cells[vm.rp+i] }
func (vm *VM) rpoke(i uint32, v uint32) { vm.mem.cells[vm.rp+i] = v }

// rstack returns a copy of the return stack, bottom first.
func (vm *VM) rstack() []uint32 {
	return stackCopy(vm.mem.cells, vm.rp, vm.layout.rp0)
}

func stackCopy(cells []uint32, top, base uint32) []uint32 {
	if top >= base || base > uint32(len(cells)) {
		return []uint32{}
	}
	vals := make([]uint32, 0, base-top)
	for i := base; i > top; i-- {
		vals = append(vals, cells[i-1])
	}
	return vals
}

//// dictionary pointer

func (vm *VM) dp() uint32      { return vm.mem.cells[dpCell] }
func (vm *VM) dpMax() uint32   { return vm.mem.cells[dpMaxCell] }
func (vm *VM) setDP(dp uint32) { vm.mem.cells[dpCell] = dp }
func (vm *VM) here() uint32    { return vm.dp() / CellSize }
func (vm *VM) unused() uint32  { return vm.dpMax() - vm.dp() }

func (vm *VM) checkRoom(n uint32) {
	throwIf(uint64(vm.dpMax()) <= uint64(vm.dp())+uint64(n), ThrowDictOverflow)
}

// comma appends a cell at DP, which must be aligned.
func (vm *VM) comma(v uint32) {
	vm.checkRoom(CellSize)
	dp := vm.dp()
	vm.mem.store(dp, v)
	vm.setDP(dp + CellSize)
}

func (vm *VM) ccomma(c byte) {
	vm.checkRoom(1)
	dp := vm.dp()
	vm.mem.cstore(dp, c)
	vm.setDP(dp + 1)
}

func (vm *VM) alignDP() { vm.setDP(align(vm.dp())) }

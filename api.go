package goforth

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jcorbin/goforth/internal/panicerr"
)

// New creates a VM with its bootstrap dictionary laid down, ready to Run or
// Execute. Any error building the image is returned by the first of those.
func New(opts ...VMOption) *VM {
	vm := &VM{config: defaultConfig}
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	vm.err = vm.init()
	return vm
}

// minDictCells leaves room for the bootstrap image and a little more.
const minDictCells = 4096

func (vm *VM) init() error {
	cfg := vm.config
	if cfg.dictCells < minDictCells {
		cfg.dictCells = minDictCells
	}
	if cfg.dictCells > indexMask/CellSize {
		return errors.New("dictionary too large to address")
	}
	vm.layout = newLayout(cfg.dictCells, cfg.userCells, cfg.orderSlots, cfg.stackCells, cfg.rstackCells)
	vm.mem.cells = make([]uint32, vm.layout.cells)
	vm.mem.heap.Base = (vm.mem.end() + heapAlign) &^ (heapAlign - 1)
	vm.mem.heap.Align = CellSize
	vm.mem.heap.Limit = cfg.heapLimit
	vm.sp, vm.rp = vm.layout.sp0, vm.layout.rp0

	if err := vm.buildImage(); err != nil {
		return err
	}
	for _, def := range cfg.externs {
		if _, err := vm.defineExternal(def.name, def.fn); err != nil {
			return err
		}
	}
	if cfg.trace {
		vm.setSysvar(sysTrace, True)
	}
	return nil
}

func (vm *VM) ready() error {
	if vm.err != nil {
		return vm.err
	}
	if vm.mem.cells == nil {
		return errNoImage
	}
	return nil
}

// Run resets both stacks and runs the QUIT loop over the VM's input until
// BYE, or until input runs out; either of which is a clean stop.
func (vm *VM) Run(ctx context.Context) error {
	if err := vm.ready(); err != nil {
		return err
	}
	vm.sp, vm.rp = vm.layout.sp0, vm.layout.rp0
	err := vm.Execute(ctx, vm.image.quit)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Execute runs a single execution token to completion, returning nil once it
// returns or executes BYE. An exception that escapes every CATCH frame is
// returned as its ThrowCode; the return stack and handler are then reset, but
// the data stack is left as THROW found it.
func (vm *VM) Execute(ctx context.Context, xt uint32) error {
	if err := vm.ready(); err != nil {
		return err
	}
	rp, handler := vm.rp, vm.sysvar(sysHandler)
	vm.ip, vm.w, vm.xt = 0, 0, xt
	err := panicerr.Recover("VM", func() error {
		return vm.inner(ctx)
	})

	var code ThrowCode
	if errors.As(err, &code) {
		vm.rp = rp
		vm.setSysvar(sysHandler, handler)
	}
	var halt haltError
	if errors.As(err, &halt) && halt.error != nil {
		err = halt.error
	}
	return err
}

// Interpret evaluates a line of Forth source, as EVALUATE would.
func (vm *VM) Interpret(ctx context.Context, line string) error {
	return vm.executeWithString(ctx, vm.image.evaluate, line)
}

// Include interprets the named file, as INCLUDED would.
func (vm *VM) Include(ctx context.Context, name string) error {
	return vm.executeWithString(ctx, vm.image.included, name)
}

// executeWithString copies s into a transient heap region, then executes xt
// with ( c-addr u ) on the stack.
func (vm *VM) executeWithString(ctx context.Context, xt uint32, s string) error {
	if err := vm.ready(); err != nil {
		return err
	}
	n := uint32(len(s))
	addr, err := vm.mem.heap.Alloc(n)
	if err != nil {
		return err
	}
	defer vm.mem.heap.Free(addr)
	if n > 0 {
		buf, err := vm.mem.heap.Slice(addr, n)
		if err != nil {
			return err
		}
		copy(buf, s)
	}
	if err := vm.Push(addr, n); err != nil {
		return err
	}
	return vm.Execute(ctx, xt)
}

// guard runs f, returning any THROW it raises as an error.
func (vm *VM) guard(f func()) (err error) {
	if err := vm.ready(); err != nil {
		return err
	}
	defer func() {
		if e := recover(); e != nil {
			code, ok := thrownCode(e)
			if !ok {
				panic(e)
			}
			err = code
		}
	}()
	f()
	return nil
}

// Lookup finds a word by name through the search order, returning its xt and
// whether it is immediate.
func (vm *VM) Lookup(name string) (xt uint32, immediate bool, err error) {
	err = vm.guard(func() {
		hdr := vm.findWord([]byte(name))
		throwIf(hdr == notFound, ThrowUndefined)
		xt = xtOf(hdr)
		immediate = vm.headerFlags(hdr)&flagImmediate != 0
	})
	return xt, immediate, err
}

// Push pushes values onto the data stack, the last becoming the top.
func (vm *VM) Push(vals ...uint32) error {
	return vm.guard(func() {
		throwIf(vm.sp < vm.layout.spMin+uint32(len(vals)), ThrowStackOverflow)
		for _, v := range vals {
			vm.push(v)
		}
	})
}

// Pop removes and returns the top of the data stack.
func (vm *VM) Pop() (v uint32, err error) {
	err = vm.guard(func() {
		throwIf(vm.sp >= vm.layout.sp0, ThrowStackUnderflow)
		v = vm.pop()
	})
	return v, err
}

// Stack returns a copy of the data stack, bottom first.
func (vm *VM) Stack() []uint32 {
	return stackCopy(vm.mem.cells, vm.sp, vm.layout.sp0)
}

// Depth returns the number of cells on the data stack.
func (vm *VM) Depth() int {
	if vm.sp > vm.layout.sp0 {
		return 0
	}
	return int(vm.layout.sp0 - vm.sp)
}

// SEE decompiles the named word.
func (vm *VM) SEE(name string) (string, error) {
	xt, _, err := vm.Lookup(name)
	if err != nil {
		return "", err
	}
	var lines []string
	err = vm.guard(func() { lines = vm.see(xt) })
	return strings.Join(lines, "\n"), err
}

// RegisterExternal defines a word in the current wordlist that calls fn,
// returning its xt.
func (vm *VM) RegisterExternal(name string, fn ExternalFunc) (uint32, error) {
	if err := vm.ready(); err != nil {
		return 0, err
	}
	return vm.defineExternal(name, fn)
}

type externDef struct {
	name string
	fn   ExternalFunc
}

func (vm *VM) defineExternal(name string, fn ExternalFunc) (xt uint32, err error) {
	if fn == nil {
		return 0, errors.New("nil external function")
	}
	err = vm.guard(func() {
		xt = vm.createWord([]byte(name))
		vm.comma(uint32(PrimToken(opDoExtern, 0)))
		vm.comma(uint32(len(vm.external)))
		vm.linkLatest(headerOf(xt))
		vm.external = append(vm.external, fn)
	})
	return xt, err
}

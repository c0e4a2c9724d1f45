package goforth

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/jcorbin/goforth/internal/fileinput"
	"github.com/jcorbin/goforth/internal/flushio"
)

// VMOption configures a VM under construction, see New.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withInput(bytes.NewReader(nil)),
	withOutput(ioutil.Discard),
	withClock(realClock{}),
	withStackCheck(true),
)

// VMOptions combines any number of options into one; nil options are
// ignored, and later options override earlier ones.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

// WithDictCells sets the size of the dictionary in cells.
func WithDictCells(n uint32) VMOption { return dictCellsOption(n) }

// WithStackCells sets the data stack depth in cells.
func WithStackCells(n uint32) VMOption { return stackCellsOption(n) }

// WithReturnStackCells sets the return stack depth in cells.
func WithReturnStackCells(n uint32) VMOption { return rstackCellsOption(n) }

// WithSearchOrderSlots sets the maximum number of wordlists in the search order.
func WithSearchOrderSlots(n uint32) VMOption { return orderSlotsOption(n) }

// WithUserVariables sets the number of cells reserved for USER variables.
func WithUserVariables(n uint32) VMOption { return userCellsOption(n) }

// WithHeapLimit bounds the total size of ALLOCATEd memory; 0 is unlimited.
func WithHeapLimit(limit uint) VMOption { return heapLimitOption(limit) }

// WithTerminalWidth sets the column at which WORDS wraps its output.
func WithTerminalWidth(width int) VMOption { return termWidthOption(width) }

// WithStackCheck enables or disables stack bounds checking before each
// instruction; it is on by default.
func WithStackCheck(check bool) VMOption { return withStackCheck(check) }

// WithTrace enables the execution trace from the start, as TRACE-ON would.
func WithTrace(trace bool) VMOption { return traceOption(trace) }

// WithTerminal sets the terminal that receives all output.
func WithTerminal(term Terminal) VMOption { return terminalOption{term} }

// WithOutput sends output to w through a plain, writer backed, terminal.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output to w, in addition to any writer set by WithOutput.
func WithTee(w io.Writer) VMOption { return teeOption{w} }

// WithInput reads input lines from r.
func WithInput(r io.Reader) VMOption { return withInput(r) }

// WithLineInput sets the source of input lines; KeyInput and
// ExtendedKeyInput are also picked up from it when implemented.
func WithLineInput(in LineInput) VMOption { return lineInputOption{in} }

// WithKeyInput sets the source of KEY and KEY?.
func WithKeyInput(keys KeyInput) VMOption { return keyInputOption{keys} }

// WithFileSystem enables the file access words over fs.
func WithFileSystem(fs FileSystem) VMOption { return fileSystemOption{fs} }

// WithClock sets the clock used by MS and TIME&DATE.
func WithClock(clock Clock) VMOption { return withClock(clock) }

// WithExternal defines an external primitive once the dictionary is built.
func WithExternal(name string, fn ExternalFunc) VMOption { return externDef{name, fn} }

// WithCloser adds a resource to be closed along with the VM.
func WithCloser(cl io.Closer) VMOption { return closerOption{cl} }

// WithLogf enables debug logging through the given printf-style function.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }

type dictCellsOption uint32
type stackCellsOption uint32
type rstackCellsOption uint32
type orderSlotsOption uint32
type userCellsOption uint32
type heapLimitOption uint
type termWidthOption int
type withStackCheck bool
type traceOption bool

func (n dictCellsOption) apply(vm *VM)   { vm.config.dictCells = uint32(n) }
func (n stackCellsOption) apply(vm *VM)  { vm.config.stackCells = uint32(n) }
func (n rstackCellsOption) apply(vm *VM) { vm.config.rstackCells = uint32(n) }
func (n orderSlotsOption) apply(vm *VM)  { vm.config.orderSlots = uint32(n) }
func (n userCellsOption) apply(vm *VM)   { vm.config.userCells = uint32(n) }
func (n heapLimitOption) apply(vm *VM)   { vm.config.heapLimit = uint(n) }
func (n termWidthOption) apply(vm *VM)   { vm.config.termWidth = int(n) }
func (b withStackCheck) apply(vm *VM)    { vm.stackCheck = bool(b) }
func (b traceOption) apply(vm *VM)       { vm.config.trace = bool(b) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) { vm.logfn = logfn }

type terminalOption struct{ Terminal }
type teeOption struct{ io.Writer }
type lineInputOption struct{ LineInput }
type keyInputOption struct{ KeyInput }
type fileSystemOption struct{ FileSystem }
type closerOption struct{ io.Closer }

type clockOption struct{ Clock }

func withClock(clock Clock) clockOption { return clockOption{clock} }

func (o terminalOption) apply(vm *VM) {
	vm.flushOutput()
	vm.term = o.Terminal
}

func withOutput(w io.Writer) terminalOption {
	return terminalOption{writerTerminal{flushio.NewWriteFlusher(w)}}
}

func (o teeOption) apply(vm *VM) {
	out := flushio.NewWriteFlusher(o.Writer)
	if wt, ok := vm.term.(writerTerminal); ok {
		out = flushio.Tee(wt.out, out)
	}
	vm.term = writerTerminal{out}
}

func withInput(r io.Reader) lineInputOption {
	return lineInputOption{&fileinput.Input{Queue: []io.Reader{r}}}
}

func (o lineInputOption) apply(vm *VM) {
	vm.input = o.LineInput
	if keys, ok := o.LineInput.(KeyInput); ok {
		vm.keys = keys
	}
	if ekeys, ok := o.LineInput.(ExtendedKeyInput); ok {
		vm.ekeys = ekeys
	}
}

func (o keyInputOption) apply(vm *VM) {
	vm.keys = o.KeyInput
	if ekeys, ok := o.KeyInput.(ExtendedKeyInput); ok {
		vm.ekeys = ekeys
	}
}

func (o fileSystemOption) apply(vm *VM) { vm.fs = o.FileSystem }
func (o clockOption) apply(vm *VM)      { vm.clock = o.Clock }
func (o closerOption) apply(vm *VM)     { vm.closers = append(vm.closers, o.Closer) }
func (def externDef) apply(vm *VM)      { vm.config.externs = append(vm.config.externs, def) }

package goforth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcorbin/goforth/internal/runeio"
)

// imageRefs locates the parts of the bootstrap image that the runtime itself
// needs to reach.
type imageRefs struct {
	rootWID  uint32
	forthWID uint32
	widLink  uint32
	userUsed uint32
	userMax  uint32

	quit      uint32
	interpret uint32
	evaluate  uint32
	included  uint32
	catch     uint32
}

// imageBuilder lays down dictionary entries directly into the cell array.
//
// Colon bodies are written as a small source text, assembled word by word:
//   - numbers and character literals ('x' or <NAME>) compile as literals;
//   - IF ELSE THEN BEGIN WHILE UNTIL AGAIN REPEAT are resolved here, as the
//     immediate words of the same name would;
//   - ['] name compiles name as a literal xt;
//   - [COMPILE] name compiles a call to name, even if it is immediate;
//   - S" text" compiles a string literal;
//   - lowercase builder constants (orig, dest, do-sys, colon-sys, ...) are
//     literals of the corresponding control flow tags and masks;
//   - any other name compiles a reference to an earlier entry, or else to a
//     primitive by its opcode name.
type imageBuilder struct {
	vm    *VM
	at    uint32
	limit uint32
	wid   uint32
	xts   map[string]uint32
	ctl   []uint32
	err   error
}

var builderConsts = map[string]uint32{
	"orig":       sysOrig,
	"dest":       sysDest,
	"do-sys":     sysDo,
	"colon-sys":  sysColon,
	"~sysidmask": sysTagMask,
	"immflag":    flagImmediate,
	"lenmask":    flagLenMask,
	"parammax":   paramMax,
	"maxname":    maxNameLen,
}

var opByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opMax)
	for op := Opcode(0); op < opMax; op++ {
		if name := opNames[op]; name != "" {
			m[name] = op
		}
	}
	return m
}()

func newImageBuilder(vm *VM) *imageBuilder {
	return &imageBuilder{
		vm:    vm,
		at:    dpMaxCell + 1,
		limit: vm.layout.dictCells,
		xts:   make(map[string]uint32, 512),
	}
}

func (b *imageBuilder) fail(mess string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf("image @%v: %v", b.at, fmt.Sprintf(mess, args...))
	}
}

func (b *imageBuilder) cell(v uint32) {
	if b.at >= b.limit {
		if b.err == nil {
			b.err = errImageSpace
		}
		return
	}
	b.vm.mem.cells[b.at] = v
	b.at++
}

func (b *imageBuilder) op(op Opcode, param int) { b.cell(uint32(PrimToken(op, param))) }

func (b *imageBuilder) lit(v uint32) {
	for _, c := range Literal(v) {
		b.cell(c)
	}
}

// wordlist lays down a new, empty, wordlist; it is chained to the wordlist
// under construction, if any.
func (b *imageBuilder) wordlist() uint32 {
	wid := b.at
	b.cell(0)
	b.cell(b.wid)
	b.cell(b.wid)
	return wid
}

// entry lays down a named header in the current wordlist, returning its xt.
func (b *imageBuilder) entry(name string, flags uint32) uint32 {
	n := uint32(len(name))
	if n == 0 || n > maxNameLen {
		b.fail("invalid name %q", name)
		return 0
	}
	for i := uint32(0); i < cellsFor(n); i++ {
		var c uint32
		for j := uint32(0); j < CellSize && i*CellSize+j < n; j++ {
			c |= uint32(name[i*CellSize+j]) << (8 * j)
		}
		b.cell(c)
	}
	hdr := b.at
	b.cell(b.vm.mem.cells[b.wid])
	b.cell(n | flags)
	if b.err == nil {
		b.vm.mem.cells[b.wid] = hdr
	}
	xt := xtOf(hdr)
	b.xts[name] = xt
	return xt
}

// prim binds a name to a single primitive token; compiling it lays down the
// token itself.
func (b *imageBuilder) prim(name string, op Opcode, param int, flags uint32) uint32 {
	xt := b.entry(name, flags|flagToken)
	b.op(op, param)
	return xt
}

// constant lays down a doconst word, returning the cell index of its value.
func (b *imageBuilder) constant(name string, v uint32, flags uint32) uint32 {
	b.entry(name, flags)
	b.op(opDoConst, 0)
	at := b.at
	b.cell(v)
	return at
}

func (b *imageBuilder) variable(name string, v uint32) uint32 {
	b.entry(name, 0)
	b.op(opDoVar, 0)
	at := b.at
	b.cell(v)
	return at
}

// colon lays down a colon definition assembled from src.
func (b *imageBuilder) colon(name string, flags uint32, src string) uint32 {
	xt := b.entry(name, flags)
	b.op(opNest, 0)
	b.assemble(name, src)
	b.op(opUnnest, 0)
	if len(b.ctl) > 0 {
		b.fail("%v: unresolved control flow %v", name, b.ctl)
		b.ctl = b.ctl[:0]
	}
	return xt
}

// ref returns the cell that compiles a reference to name.
func (b *imageBuilder) ref(name string) (uint32, bool) {
	if xt, ok := b.xts[name]; ok {
		return b.translate(xt), true
	}
	if op, ok := opByName[name]; ok {
		return uint32(PrimToken(op, 0)), true
	}
	return 0, false
}

// translate mirrors COMPILE, over the cells laid down so far.
func (b *imageBuilder) translate(xt uint32) uint32 {
	if b.vm.mem.cells[xt-1]&flagToken != 0 {
		return b.vm.mem.cells[xt]
	}
	return xt
}

func (b *imageBuilder) assemble(name, src string) {
	for src != "" {
		var tok string
		tok, src = nextBuilderToken(src)
		switch tok {
		case "":
			continue

		case "IF":
			b.ctl = append(b.ctl, b.at)
			b.op(opZBranch, 0)
		case "ELSE":
			orig := b.popCtl(name)
			b.ctl = append(b.ctl, b.at)
			b.op(opBranch, 0)
			b.patch(orig, b.at)
		case "THEN":
			b.patch(b.popCtl(name), b.at)
		case "BEGIN":
			b.ctl = append(b.ctl, b.at)
		case "WHILE":
			dest := b.popCtl(name)
			b.ctl = append(b.ctl, b.at, dest)
			b.op(opZBranch, 0)
		case "UNTIL":
			b.branchTo(opZBranch, b.popCtl(name))
		case "AGAIN":
			b.branchTo(opBranch, b.popCtl(name))
		case "REPEAT":
			dest := b.popCtl(name)
			orig := b.popCtl(name)
			b.branchTo(opBranch, dest)
			b.patch(orig, b.at)

		case `S"`:
			var s string
			if i := strings.IndexByte(src, '"'); i >= 0 {
				s, src = src[:i], src[i+1:]
			} else {
				b.fail("%v: unterminated string", name)
				s, src = src, ""
			}
			b.op(opStrLit, len(s))
			for i := 0; i < len(s); i += CellSize {
				var c uint32
				for j := 0; j < CellSize && i+j < len(s); j++ {
					c |= uint32(s[i+j]) << (8 * j)
				}
				b.cell(c)
			}

		case "[']", "[COMPILE]":
			var target string
			target, src = nextBuilderToken(src)
			if tok == "[']" {
				c, ok := b.ref(target)
				if !ok {
					b.fail("%v: undefined %q", name, target)
				}
				b.op(opXTLit, 0)
				b.cell(c)
			} else if xt, ok := b.xts[target]; ok {
				b.cell(xt)
			} else {
				b.fail("%v: undefined %q", name, target)
			}

		default:
			if v, ok := builderConsts[tok]; ok {
				b.lit(v)
			} else if c, ok := b.ref(tok); ok {
				b.cell(c)
			} else if n, err := strconv.ParseInt(tok, 0, 64); err == nil {
				b.lit(uint32(n))
			} else if c, err := runeio.ParseChar(tok); err == nil {
				b.lit(uint32(c))
			} else {
				b.fail("%v: undefined %q", name, tok)
			}
		}
	}
}

func (b *imageBuilder) popCtl(name string) uint32 {
	if len(b.ctl) == 0 {
		b.fail("%v: control flow mismatch", name)
		return b.at
	}
	i := len(b.ctl) - 1
	ix := b.ctl[i]
	b.ctl = b.ctl[:i]
	return ix
}

// patch resolves the forward branch at orig to land on dest.
func (b *imageBuilder) patch(orig, dest uint32) {
	if b.err == nil {
		b.vm.mem.cells[orig] |= (dest - (orig + 1)) & paramMask
	}
}

// branchTo lays down a backward branch to dest.
func (b *imageBuilder) branchTo(op Opcode, dest uint32) {
	b.op(op, int(int32(dest-(b.at+1))))
}

func nextBuilderToken(src string) (tok, rest string) {
	src = strings.TrimLeft(src, " \t\n")
	if i := strings.IndexAny(src, " \t\n"); i >= 0 {
		return src[:i], src[i+1:]
	}
	return src, ""
}

// finish records the final dictionary pointer.
func (b *imageBuilder) finish() error {
	if b.err != nil {
		return b.err
	}
	b.vm.mem.cells[dpCell] = b.at * CellSize
	b.vm.mem.cells[dpMaxCell] = b.limit * CellSize
	return nil
}

package goforth

import (
	"fmt"
	"strings"
)

// decompiler, word listing, environment queries, and error reporting

func init() {
	opTable[opSee] = func(vm *VM) { vm.typeLines(vm.see(vm.pop())) }
	opTable[opDotName] = func(vm *VM) { vm.typeString(vm.tokenName(vm.pop())) }
	opTable[opWords] = (*VM).words
	opTable[opEnvironmentQ] = (*VM).environmentQ
	opTable[opDotError] = func(vm *VM) { vm.printError(ThrowCode(int32(vm.pop()))) }
	opTable[opAbortMsg] = func(vm *VM) { vm.push(vm.layout.sysAddr(sysAbortLen)) }
}

func (vm *VM) typeLines(lines []string) {
	for _, line := range lines {
		vm.typeString(line)
		vm.cr()
	}
}

// tokenName names a primitive token or a dictionary word; it never faults,
// since it serves tracing and logging of arbitrary cells.
func (vm *VM) tokenName(tok uint32) (name string) {
	if Token(tok).IsPrimitive() {
		return Token(tok).Bare().String()
	}
	defer func() {
		if e := recover(); e != nil {
			name = fmt.Sprintf("@%d", tok)
		}
	}()
	if name = vm.xtName(tok); name == "" {
		name = "noname@" + formatUnsigned(tok, 16, 8)
	}
	return name
}

// see decompiles the definition of xt.
func (vm *VM) see(xt uint32) []string {
	if Token(xt).IsPrimitive() {
		return []string{"Primitive: " + vm.tokenName(xt)}
	}
	name := vm.tokenName(xt)
	code := Token(vm.cell(xt))
	if !code.IsPrimitive() {
		return []string{fmt.Sprintf(" ' %v SYNONYM %v", vm.tokenName(uint32(code)), name)}
	}

	if vm.headerFlags(headerOf(xt))&flagToken != 0 {
		return []string{"Primitive: " + code.String()}
	}

	base := vm.sysvar(sysBase)
	switch code.Op() {
	case opNest:
		head := ": " + name
		if vm.headerFlags(headerOf(xt))&flagLenMask == 0 {
			head = ":NONAME"
		}
		return append(append([]string{head}, vm.seeBody(xt+1)...), ";")

	case opDoVar:
		return []string{"VARIABLE " + name}

	case opDoConst:
		return []string{formatSigned(vm.cell(xt+1), base) + " CONSTANT " + name}

	case opDoUser:
		return []string{"USER " + name}

	case opDoExtern:
		return []string{fmt.Sprintf("%v External-primitive[ %v ]", name, formatSigned(vm.cell(xt+1), base))}

	case opDoCreate:
		lines := []string{"CREATE " + name, "..."}
		behavior := vm.cell(xt + 1)
		if Token(behavior).IsPrimitive() {
			ix := xt + 1
			return append(lines, vm.seeSymbol(&ix))
		}
		if Token(vm.cell(behavior)).Bare() != PrimToken(opNest, 0) {
			return append(lines, "???")
		}
		lines = append(lines, "DOES>")
		return append(append(lines, vm.seeBody(behavior+1)...), ";")
	}
	return []string{vm.tokenName(uint32(code)) + " ???"}
}

// seeBody renders one line per compiled symbol up to the closing unnest.
func (vm *VM) seeBody(ix uint32) (lines []string) {
	for ix < vm.layout.dictCells {
		if tok := Token(vm.cell(ix)); tok.IsPrimitive() && tok.Op() == opUnnest {
			break
		}
		lines = append(lines, vm.seeSymbol(&ix))
	}
	return lines
}

func (vm *VM) seeSymbol(ix *uint32) string {
	tok := Token(vm.cell(*ix))
	*ix++
	if !tok.IsPrimitive() {
		return vm.tokenName(uint32(tok))
	}
	base := vm.sysvar(sysBase)
	switch op := tok.Op(); op {
	case opUSLit:
		return formatUnsigned(uint32(tok.Param()), base, 1)
	case opSSLit:
		return formatSigned(uint32(tok.SParam()), base)
	case opLit:
		v := vm.cell(*ix)
		*ix++
		return formatSigned(v, base)
	case opXTLit:
		v := vm.cell(*ix)
		*ix++
		return "['] " + vm.tokenName(v)
	case opStrLit:
		n := uint32(tok.Param())
		s := vm.mem.cstring(*ix*CellSize, n)
		*ix += cellsFor(n)
		return `S" ` + s + `"`
	case opImmPlus:
		if off := tok.SParam(); off < 0 {
			return formatSigned(uint32(-off), base) + " -"
		}
		return formatSigned(uint32(tok.SParam()), base) + " +"
	case opBranch, opZBranch, opDo, opQDo, opLoop, opPlusLoop:
		off := tok.SParam()
		sign := ""
		if off >= 0 {
			sign = "+"
		}
		return op.String() + " " + sign + formatSigned(uint32(off), base)
	}
	return vm.tokenName(uint32(tok))
}

// words lists the first wordlist in the search order, wrapping at the
// terminal width.
func (vm *VM) words() {
	vm.cr()
	cnt := vm.sysvar(sysOrderCount)
	if cnt > 0 {
		for _, hdr := range vm.wordlistHeaders(vm.cell(vm.orderSlot(cnt))) {
			name := vm.headerName(hdr)
			if vm.config.termWidth-vm.col <= len(name) {
				vm.cr()
			}
			vm.typeBytes(append(name, ' '))
		}
	}
	vm.cr()
}

// ( c-addr u -- false | i*x true )
func (vm *VM) environmentQ() {
	n := vm.pop()
	query := vm.mem.load(vm.pop(), n)
	is := func(name string) bool { return equalFold(query, []byte(name)) }
	switch {
	case is("CORE"), is("CORE-EXT"):
		vm.push(False)
	case is("/COUNTED-STRING"), is("MAX-CHAR"):
		vm.push(255)
	case is("/HOLD"):
		vm.push(numBufSize)
	case is("/PAD"):
		vm.push(padSize)
	case is("ADDRESS-UNIT-BITS"):
		vm.push(8)
	case is("MAX-N"):
		vm.push(True >> 1)
	case is("MAX-U"):
		vm.push(True)
	case is("MAX-D"):
		vm.push(True)
		vm.push(True >> 1)
	case is("MAX-UD"):
		vm.push(True)
		vm.push(True)
	case is("RETURN-STACK-CELLS"):
		vm.push(vm.layout.rstackCells())
	case is("STACK-CELLS"):
		vm.push(vm.layout.stackCells())
	default:
		vm.push(False)
		return
	}
	vm.push(True)
}

// printError renders a THROW code along with where in the input it arose;
// an ABORT" message is printed once, then cleared.
func (vm *VM) printError(code ThrowCode) {
	if code == 0 || code == ThrowAbort {
		return
	}
	abortLen := vm.sysvar(sysAbortLen)
	if code == ThrowAbortQuote && abortLen == 0 {
		return
	}

	var sb strings.Builder
	if name := vm.sourceFileName(); name != "" {
		fmt.Fprintf(&sb, "%v: %v, ", name, vm.sysvar(sysLineNumber))
	}
	fmt.Fprintf(&sb, "%v Error: %v ", vm.sysvar(sysToIn), int32(code))
	if code == ThrowAbortQuote {
		sb.WriteString(vm.mem.cstring(vm.sysvar(sysAbortAddr), abortLen))
		vm.setSysvar(sysAbortAddr, 0)
		vm.setSysvar(sysAbortLen, 0)
	} else {
		sb.WriteString(code.Message())
	}
	vm.typeString(sb.String())
	vm.cr()
}

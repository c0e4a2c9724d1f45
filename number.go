package goforth

import "strings"

// number conversion and formatted output

func init() {
	opTable[opProcessNumber] = (*VM).processNumberOp
	opTable[opToNumber] = (*VM).toNumber

	opTable[opLessHash] = func(vm *VM) { vm.setSysvar(sysHold, vm.layout.numBuf+numBufSize) }
	opTable[opHash] = (*VM).hash
	opTable[opHashGreater] = func(vm *VM) {
		hold := vm.sysvar(sysHold)
		vm.poke(1, hold)
		vm.poke(0, vm.layout.numBuf+numBufSize-hold)
	}
	opTable[opHold] = func(vm *VM) { vm.hold(byte(vm.pop())) }

	opTable[opHDot] = func(vm *VM) { vm.typeString(formatUnsigned(vm.pop(), 16, 8) + " ") }
	opTable[opUDot] = func(vm *VM) { vm.typeString(formatUnsigned(vm.pop(), vm.sysvar(sysBase), 1) + " ") }
	opTable[opDot] = func(vm *VM) { vm.typeString(formatSigned(vm.pop(), vm.sysvar(sysBase)) + " ") }
	opTable[opDotR] = func(vm *VM) { vm.dotR(true) }
	opTable[opUDotR] = func(vm *VM) { vm.dotR(false) }
	opTable[opDotS] = (*VM).dotS
}

func digitValue(c byte) uint32 {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0')
	case 'a' <= c && c <= 'z':
		return uint32(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return uint32(c-'A') + 10
	}
	return 255
}

func digitChar(v uint32) byte {
	if v < 10 {
		return byte(v) + '0'
	}
	return byte(v-10) + 'A'
}

// processNumber converts text in the given base, returning a double cell
// value and whether the text marked it as double with a '.'. An optional
// sign leads, and a 0x prefix forces hexadecimal.
func processNumber(text []byte, base uint32) (d uint64, double, ok bool) {
	neg := false
	if len(text) > 0 {
		switch text[0] {
		case '-':
			neg = true
			text = text[1:]
		case '+':
			text = text[1:]
		}
	}
	if len(text) > 2 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		base = 16
		text = text[2:]
	}
	digits := 0
	for _, c := range text {
		if c == '.' {
			double = true
			continue
		}
		v := digitValue(c)
		if v >= base {
			return 0, false, false
		}
		d = d*uint64(base) + uint64(v)
		digits++
	}
	if digits == 0 {
		return 0, false, false
	}
	if neg {
		d = -d
	}
	return d, double, true
}

// ( c-addr u -- n 0 | d 1 )
func (vm *VM) processNumberOp() {
	n := vm.pop()
	text := vm.mem.load(vm.pop(), n)
	d, double, ok := processNumber(text, vm.sysvar(sysBase))
	throwIf(!ok, ThrowInvalidNumber)
	if double {
		vm.pushDouble(d)
		vm.push(1)
	} else {
		vm.push(uint32(d))
		vm.push(0)
	}
}

// ( ud1 c-addr1 u1 -- ud2 c-addr2 u2 )
func (vm *VM) toNumber() {
	base := uint64(vm.sysvar(sysBase))
	d := vm.double(2)
	n, addr := vm.peek(0), vm.peek(1)
	for ; n > 0; n, addr = n-1, addr+1 {
		v := uint64(digitValue(vm.mem.cfetch(addr)))
		if v >= base {
			break
		}
		d = d*base + v
	}
	vm.setDouble(2, d)
	vm.poke(1, addr)
	vm.poke(0, n)
}

// ( ud1 -- ud2 )
func (vm *VM) hash() {
	base := uint64(vm.sysvar(sysBase))
	throwIf(base == 0, ThrowDivByZero)
	d := vm.double(0)
	vm.hold(digitChar(uint32(d % base)))
	vm.setDouble(0, d/base)
}

func (vm *VM) hold(c byte) {
	at := vm.sysvar(sysHold)
	throwIf(at <= vm.layout.numBuf || at > vm.layout.numBuf+numBufSize, ThrowPictureOverflow)
	at--
	vm.mem.cstore(at, c)
	vm.setSysvar(sysHold, at)
}

// formatUnsigned renders v in base, zero padded to width digits; bases below
// 2 format as decimal.
func formatUnsigned(v, base uint32, width int) string {
	if base < 2 {
		base = 10
	}
	var buf [32]byte
	i := len(buf)
	for {
		i--
		buf[i] = digitChar(v % base)
		v /= base
		if v == 0 {
			break
		}
	}
	for len(buf)-i < width && i > 0 {
		i--
		buf[i] = '0'
	}
	return string(buf[i:])
}

func formatSigned(v, base uint32) string {
	if n := int32(v); n < 0 {
		return "-" + formatUnsigned(uint32(-n), base, 1)
	}
	return formatUnsigned(v, base, 1)
}

// ( n width -- )
func (vm *VM) dotR(signed bool) {
	width := int(int32(vm.pop()))
	v := vm.pop()
	var s string
	if signed {
		s = formatSigned(v, vm.sysvar(sysBase))
	} else {
		s = formatUnsigned(v, vm.sysvar(sysBase), 1)
	}
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	vm.typeString(s)
}

// dotS prints the stack depth and contents, deepest first.
func (vm *VM) dotS() {
	var sb strings.Builder
	stack := vm.Stack()
	sb.WriteByte('[')
	sb.WriteString(formatUnsigned(uint32(len(stack)), 10, 1))
	sb.WriteString("] ")
	base := vm.sysvar(sysBase)
	for _, v := range stack {
		sb.WriteString(formatSigned(v, base))
		sb.WriteByte(' ')
	}
	vm.typeString(sb.String())
	vm.cr()
}

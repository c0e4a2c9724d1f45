package goforth

import "math/bits"

// single and double cell arithmetic; doubles are ( lo hi ), high cell on top

func init() {
	opTable[opPlus] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a + b }) }
	opTable[opMinus] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a - b }) }
	opTable[opStar] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a * b }) }
	opTable[opAnd] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a & b }) }
	opTable[opOr] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a | b }) }
	opTable[opXor] = func(vm *VM) { vm.binop(func(a, b uint32) uint32 { return a ^ b }) }
	opTable[opLShift] = func(vm *VM) { vm.binop(shiftLeft) }
	opTable[opRShift] = func(vm *VM) { vm.binop(shiftRight) }
	opTable[opMinimum] = func(vm *VM) {
		vm.binop(func(a, b uint32) uint32 {
			if int32(b) < int32(a) {
				return b
			}
			return a
		})
	}
	opTable[opMaximum] = func(vm *VM) {
		vm.binop(func(a, b uint32) uint32 {
			if int32(b) > int32(a) {
				return b
			}
			return a
		})
	}
	opTable[opInvert] = func(vm *VM) { vm.poke(0, ^vm.peek(0)) }
	opTable[opNegate] = func(vm *VM) { vm.poke(0, -vm.peek(0)) }
	opTable[opAbs] = func(vm *VM) {
		if v := vm.peek(0); int32(v) < 0 {
			vm.poke(0, -v)
		}
	}
	opTable[op2Star] = func(vm *VM) { vm.poke(0, vm.peek(0)<<1) }
	opTable[op2Slash] = func(vm *VM) { vm.poke(0, uint32(int32(vm.peek(0))>>1)) }
	opTable[opCells] = func(vm *VM) { vm.poke(0, vm.peek(0)*CellSize) }
	opTable[opImmPlus] = func(vm *VM) { vm.poke(0, vm.peek(0)+uint32(Token(vm.xt).SParam())) }

	opTable[opSlash] = func(vm *VM) {
		q, _ := divmod(vm.peek(1), vm.pop())
		vm.poke(0, q)
	}
	opTable[opMod] = func(vm *VM) {
		_, r := divmod(vm.peek(1), vm.pop())
		vm.poke(0, r)
	}
	opTable[opSlashMod] = func(vm *VM) {
		q, r := divmod(vm.peek(1), vm.peek(0))
		vm.poke(1, r)
		vm.poke(0, q)
	}
	opTable[opStarSlash] = func(vm *VM) {
		q, _ := starSlashMod(vm.peek(2), vm.peek(1), vm.peek(0))
		vm.drop(2)
		vm.poke(0, q)
	}
	opTable[opStarSlashMod] = func(vm *VM) {
		q, r := starSlashMod(vm.peek(2), vm.peek(1), vm.peek(0))
		vm.drop(1)
		vm.poke(1, r)
		vm.poke(0, q)
	}
	opTable[opUMStar] = func(vm *VM) {
		hi, lo := bits.Mul32(vm.peek(1), vm.peek(0))
		vm.poke(1, lo)
		vm.poke(0, hi)
	}
	opTable[opMStar] = func(vm *VM) {
		hi, lo := dsplit(uint64(int64(int32(vm.peek(1))) * int64(int32(vm.peek(0)))))
		vm.poke(1, lo)
		vm.poke(0, hi)
	}
	opTable[opMPlus] = func(vm *VM) {
		n := vm.pop()
		vm.setDouble(0, vm.double(0)+uint64(int64(int32(n))))
	}
	opTable[opUMSlashMod] = (*VM).umSlashMod

	opTable[opDPlus] = func(vm *VM) {
		d2 := vm.double(0)
		vm.drop(2)
		vm.setDouble(0, vm.double(0)+d2)
	}
	opTable[opDMinus] = func(vm *VM) {
		d2 := vm.double(0)
		vm.drop(2)
		vm.setDouble(0, vm.double(0)-d2)
	}
	opTable[opDNegate] = func(vm *VM) { vm.dnegate() }
	opTable[opDAbs] = func(vm *VM) {
		if int32(vm.peek(0)) < 0 {
			vm.dnegate()
		}
	}
	opTable[opD2Star] = func(vm *VM) { vm.setDouble(0, vm.double(0)<<1) }
	opTable[opD2Slash] = func(vm *VM) { vm.setDouble(0, uint64(int64(vm.double(0))>>1)) }
	opTable[opDMin] = func(vm *VM) { vm.dpick(func(d1, d2 int64) bool { return d2 < d1 }) }
	opTable[opDMax] = func(vm *VM) { vm.dpick(func(d1, d2 int64) bool { return d2 > d1 }) }
	opTable[opDLess] = func(vm *VM) {
		d2 := int64(vm.double(0))
		d1 := int64(vm.double(2))
		vm.drop(3)
		vm.poke(0, flag(d1 < d2))
	}
	opTable[opDULess] = func(vm *VM) {
		d2 := vm.double(0)
		d1 := vm.double(2)
		vm.drop(3)
		vm.poke(0, flag(d1 < d2))
	}
	opTable[opDEqual] = func(vm *VM) {
		eq := vm.peek(0) == vm.peek(2) && vm.peek(1) == vm.peek(3)
		vm.drop(3)
		vm.poke(0, flag(eq))
	}

	opTable[opEqual] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return a == b }) }
	opTable[opNotEqual] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return a != b }) }
	opTable[opLess] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return int32(a) < int32(b) }) }
	opTable[opGreater] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return int32(a) > int32(b) }) }
	opTable[opULess] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return a < b }) }
	opTable[opUGreater] = func(vm *VM) { vm.compare(func(a, b uint32) bool { return a > b }) }
	opTable[opZeroEqual] = func(vm *VM) { vm.poke(0, flag(vm.peek(0) == 0)) }
	opTable[opZeroNotEqual] = func(vm *VM) { vm.poke(0, flag(vm.peek(0) != 0)) }
	opTable[opZeroLess] = func(vm *VM) { vm.poke(0, flag(int32(vm.peek(0)) < 0)) }
	opTable[opZeroGreater] = func(vm *VM) { vm.poke(0, flag(int32(vm.peek(0)) > 0)) }
}

// binop applies ( a b -- f(a, b) ).
func (vm *VM) binop(f func(a, b uint32) uint32) {
	b := vm.pop()
	vm.poke(0, f(vm.peek(0), b))
}

func (vm *VM) compare(f func(a, b uint32) bool) {
	b := vm.pop()
	vm.poke(0, flag(f(vm.peek(0), b)))
}

func shiftLeft(a, n uint32) uint32 {
	if n >= 32 {
		return 0
	}
	return a << n
}

func shiftRight(a, n uint32) uint32 {
	if n >= 32 {
		return 0
	}
	return a >> n
}

// double reads the double cell whose high half is at stack position i.
func (vm *VM) double(i uint32) uint64 { return dcell(vm.peek(i), vm.peek(i+1)) }

func (vm *VM) setDouble(i uint32, d uint64) {
	hi, lo := dsplit(d)
	vm.poke(i, hi)
	vm.poke(i+1, lo)
}

func (vm *VM) pushDouble(d uint64) {
	hi, lo := dsplit(d)
	vm.push(lo)
	vm.push(hi)
}

func (vm *VM) popDouble() uint64 {
	d := vm.double(0)
	vm.drop(2)
	return d
}

func (vm *VM) dnegate() { vm.setDouble(0, -vm.double(0)) }

// dpick keeps d2 over d1 when better(d1, d2).
func (vm *VM) dpick(better func(d1, d2 int64) bool) {
	d2 := vm.double(0)
	vm.drop(2)
	if better(int64(vm.double(0)), int64(d2)) {
		vm.setDouble(0, d2)
	}
}

// divmod is truncating signed division.
func divmod(a, b uint32) (q, r uint32) {
	throwIf(b == 0, ThrowDivByZero)
	n, d := int32(a), int32(b)
	return uint32(n / d), uint32(n % d)
}

func starSlashMod(a, b, c uint32) (q, r uint32) {
	throwIf(c == 0, ThrowDivByZero)
	p := int64(int32(a)) * int64(int32(b))
	d := int64(int32(c))
	qq := p / d
	throwIf(qq != int64(int32(qq)), ThrowOutOfRange)
	return uint32(qq), uint32(p % d)
}

// ( ud u -- ur uq )
func (vm *VM) umSlashMod() {
	u := vm.pop()
	throwIf(u == 0, ThrowDivByZero)
	hi, lo := vm.peek(0), vm.peek(1)
	throwIf(hi >= u, ThrowOutOfRange)
	q, r := bits.Div32(hi, lo, u)
	vm.poke(1, r)
	vm.poke(0, q)
}

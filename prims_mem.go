package goforth

import "bytes"

// memory access, dictionary space, and compiler support primitives

func init() {
	opTable[opFetch] = func(vm *VM) { vm.poke(0, vm.mem.fetch(vm.peek(0))) }
	opTable[opStore] = func(vm *VM) {
		addr := vm.pop()
		vm.mem.store(addr, vm.pop())
	}
	opTable[opCFetch] = func(vm *VM) { vm.poke(0, uint32(vm.mem.cfetch(vm.peek(0)))) }
	opTable[opCStore] = func(vm *VM) {
		addr := vm.pop()
		vm.mem.cstore(addr, byte(vm.pop()))
	}
	opTable[opPlusStore] = func(vm *VM) {
		addr := vm.pop()
		vm.mem.store(addr, vm.mem.fetch(addr)+vm.pop())
	}
	opTable[op2Fetch] = func(vm *VM) {
		addr := vm.peek(0)
		x2 := vm.mem.fetch(addr)
		vm.poke(0, vm.mem.fetch(addr+CellSize))
		vm.push(x2)
	}
	opTable[op2Store] = func(vm *VM) {
		addr := vm.pop()
		vm.mem.store(addr, vm.pop())
		vm.mem.store(addr+CellSize, vm.pop())
	}
	opTable[opCMove] = (*VM).cmove
	opTable[opCMoveUp] = (*VM).cmoveUp
	opTable[opMove] = (*VM).move
	opTable[opFill] = func(vm *VM) {
		c := byte(vm.pop())
		n := vm.pop()
		vm.mem.fill(vm.pop(), n, c)
	}
	opTable[opCompare] = (*VM).compareStrings

	opTable[opAlign] = func(vm *VM) { vm.alignDP() }
	opTable[opAligned] = func(vm *VM) { vm.poke(0, align(vm.peek(0))) }
	opTable[opAllot] = (*VM).allot
	opTable[opHere] = func(vm *VM) { vm.push(vm.dp()) }
	opTable[opPad] = func(vm *VM) { vm.push(align(vm.dp()) + padOffset) }
	opTable[opHereIx] = func(vm *VM) { vm.push(vm.here()) }
	opTable[opUnused] = func(vm *VM) { vm.push(vm.unused()) }
	opTable[opComma] = func(vm *VM) { vm.comma(vm.pop()) }
	opTable[opCComma] = func(vm *VM) { vm.ccomma(byte(vm.pop())) }
	opTable[opCompileComma] = func(vm *VM) { vm.comma(vm.translateToken(vm.pop())) }
	opTable[opLiteral] = func(vm *VM) { vm.compileLiteral(vm.pop()) }
	opTable[opLatest] = func(vm *VM) { vm.push(vm.sysvar(sysCurrent) * CellSize) }
	opTable[opDefining] = func(vm *VM) { vm.push(vm.layout.sysAddr(sysDefining)) }
	opTable[opTrace] = func(vm *VM) { vm.push(vm.layout.sysAddr(sysTrace)) }
	opTable[opResolveBranch] = (*VM).resolveBranch
	opTable[opIxToAddress] = func(vm *VM) { vm.poke(0, vm.peek(0)*CellSize) }
	opTable[opToBody] = (*VM).toBody
	opTable[opUserAllot] = (*VM).userAllot

	opTable[opAllocate] = (*VM).allocate
	opTable[opResize] = (*VM).resize
	opTable[opFree] = (*VM).free
}

// ( src dst n -- )
func (vm *VM) moveArgs() (src, dst, n uint32) {
	n = vm.pop()
	dst = vm.pop()
	src = vm.pop()
	return src, dst, n
}

// cmove copies bytes from low addresses to high, one at a time, so that an
// overlapping destination above the source sees propagated bytes.
func (vm *VM) cmove() {
	src, dst, n := vm.moveArgs()
	for i := uint32(0); i < n; i++ {
		vm.mem.cstore(dst+i, vm.mem.cfetch(src+i))
	}
}

func (vm *VM) cmoveUp() {
	src, dst, n := vm.moveArgs()
	for i := n; i > 0; i-- {
		vm.mem.cstore(dst+i-1, vm.mem.cfetch(src+i-1))
	}
}

func (vm *VM) move() {
	src, dst, n := vm.moveArgs()
	vm.mem.stor(dst, vm.mem.load(src, n))
}

// ( a1 n1 a2 n2 -- n )
func (vm *VM) compareStrings() {
	n2 := vm.pop()
	a2 := vm.pop()
	n1 := vm.pop()
	a1 := vm.peek(0)
	c := bytes.Compare(vm.mem.load(a1, n1), vm.mem.load(a2, n2))
	vm.poke(0, uint32(int32(c)))
}

func (vm *VM) allot() {
	n := vm.pop()
	dp := vm.dp()
	next := dp + n
	if int32(n) >= 0 {
		vm.checkRoom(n)
	} else {
		throwIf(next > dp, ThrowDictOverflow)
	}
	vm.setDP(next)
}

// translateToken unwraps an xt whose definition is a single primitive token,
// so that compiling it lays down the token itself rather than a call.
func (vm *VM) translateToken(xt uint32) uint32 {
	if Token(xt).IsPrimitive() || xt < 2 {
		return xt
	}
	if vm.cell(xt-1)&flagToken != 0 {
		return vm.cell(xt)
	}
	return xt
}

func (vm *VM) compileLiteral(v uint32) {
	vm.checkRoom(2 * CellSize)
	for _, c := range Literal(v) {
		vm.comma(c)
	}
}

// resolveBranch patches the parameter of the branch at orig to reach dest;
// the sys id tags carried by control flow stack items are ignored.
//
// ( orig dest -- )
func (vm *VM) resolveBranch() {
	dest := vm.pop() & sysIDMask
	orig := vm.pop() & sysIDMask
	vm.setCell(orig, vm.cell(orig)|branchOffset(orig, dest))
}

// branchOffset encodes the cell distance from the branch at orig to dest,
// throwing if it does not fit a signed token parameter.
func branchOffset(orig, dest uint32) uint32 {
	off := int64(dest) - int64(orig) - 1
	throwIf(int64(int16(off)) != off, ThrowOutOfRange)
	return uint32(off) & paramMask
}

func (vm *VM) toBody() {
	xt := vm.peek(0)
	throwIf(Token(xt).IsPrimitive() || vm.cell(xt) != uint32(PrimToken(opDoCreate, 0)), ThrowNotCreated)
	vm.poke(0, (xt+2)*CellSize)
}

// ( n -- ix )
func (vm *VM) userAllot() {
	up, limit := vm.image.userUsed, vm.image.userMax
	n := vm.peek(0)
	have := vm.cell(up)
	throwIf(uint64(have)+uint64(n) > uint64(vm.cell(limit)), ThrowDictOverflow)
	vm.poke(0, have)
	vm.setCell(up, have+n)
}

//// heap

// ( u -- addr ior )
func (vm *VM) allocate() {
	addr, err := vm.mem.heap.Alloc(vm.pop())
	vm.push(addr)
	vm.push(heapIOR(err, ThrowAllocate))
}

// ( addr u -- addr2 ior )
func (vm *VM) resize() {
	size := vm.pop()
	addr := vm.pop()
	addr2, err := vm.mem.heap.Resize(addr, size)
	vm.push(addr2)
	vm.push(heapIOR(err, ThrowResize))
}

// ( addr -- ior )
func (vm *VM) free() {
	err := vm.mem.heap.Free(vm.pop())
	vm.push(heapIOR(err, ThrowFree))
}

func heapIOR(err error, code ThrowCode) uint32 {
	if err != nil {
		return uint32(code)
	}
	return 0
}

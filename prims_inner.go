package goforth

// inner interpreter, control flow, and return stack primitives

func init() {
	opTable[opNOP] = func(vm *VM) {}
	opTable[opBranch] = (*VM).branch
	opTable[opZBranch] = (*VM).zbranch
	opTable[opXTLit] = (*VM).lit
	opTable[opLit] = (*VM).lit
	opTable[opUSLit] = func(vm *VM) { vm.push(uint32(Token(vm.xt).Param())) }
	opTable[opSSLit] = func(vm *VM) { vm.push(uint32(Token(vm.xt).SParam())) }
	opTable[opStrLit] = (*VM).strlit
	opTable[opNest] = (*VM).nest
	opTable[opUnnest] = (*VM).unnest
	opTable[opExit] = (*VM).unnest
	opTable[opDoVar] = func(vm *VM) { vm.push((vm.w + 1) * CellSize) }
	opTable[opDoConst] = func(vm *VM) { vm.push(vm.cell(vm.w + 1)) }
	opTable[opDoCreate] = (*VM).docreate
	opTable[opDoUser] = (*VM).douser
	opTable[opDoExtern] = (*VM).doextern
	opTable[opExecute] = (*VM).execute
	opTable[opThrow] = (*VM).throw
	opTable[opBye] = func(vm *VM) { vm.stop(nil) }

	opTable[opDo] = (*VM).do
	opTable[opQDo] = (*VM).qdo
	opTable[opUnloop] = func(vm *VM) { vm.rp += 3 }
	opTable[opLeave] = func(vm *VM) { vm.ip = vm.rpeek(2); vm.rp += 3 }
	opTable[opI] = func(vm *VM) { vm.push(vm.rpeek(0)) }
	opTable[opJ] = func(vm *VM) { vm.push(vm.rpeek(3)) }
	opTable[opLoop] = (*VM).loop
	opTable[opPlusLoop] = (*VM).plusLoop

	opTable[opToR] = func(vm *VM) { vm.rpush(vm.pop()) }
	opTable[opRFrom] = func(vm *VM) { vm.push(vm.rpop()) }
	opTable[opRFetch] = func(vm *VM) { vm.push(vm.rpeek(0)) }
	opTable[op2ToR] = (*VM).twoToR
	opTable[op2RFrom] = (*VM).twoRFrom
	opTable[op2RFetch] = func(vm *VM) { vm.push(vm.rpeek(1)); vm.push(vm.rpeek(0)) }
	opTable[opNToR] = (*VM).nToR
	opTable[opNRFrom] = (*VM).nRFrom
	opTable[opSP0] = func(vm *VM) { vm.push(vm.layout.sp0 * CellSize) }
	opTable[opSPFetch] = func(vm *VM) { vm.push(vm.sp * CellSize) }
	opTable[opSPStore] = func(vm *VM) { vm.sp = cellIndex(vm.pop()) }
	opTable[opRP0] = func(vm *VM) { vm.push(vm.layout.rp0 * CellSize) }
	opTable[opRPFetch] = func(vm *VM) { vm.push(vm.rp * CellSize) }
	opTable[opRPStore] = func(vm *VM) { vm.rp = cellIndex(vm.pop()) }
	opTable[opHandler] = func(vm *VM) { vm.push(vm.layout.sysAddr(sysHandler)) }
}

func cellIndex(addr uint32) uint32 {
	throwIf(addr%CellSize != 0, ThrowAlignment)
	return addr / CellSize
}

func (vm *VM) branch() { vm.ip += uint32(Token(vm.xt).SParam()) }

func (vm *VM) zbranch() {
	if vm.pop() == 0 {
		vm.ip += uint32(Token(vm.xt).SParam())
	}
}

func (vm *VM) lit() {
	vm.push(vm.cell(vm.ip))
	vm.ip++
}

func (vm *VM) strlit() {
	n := uint32(Token(vm.xt).Param())
	vm.push(vm.ip * CellSize)
	vm.push(n)
	vm.ip += cellsFor(n)
}

func (vm *VM) nest() {
	vm.rpush(vm.ip)
	vm.ip = vm.w + 1
}

func (vm *VM) unnest() { vm.ip = vm.rpop() }

func (vm *VM) docreate() {
	vm.push((vm.w + 2) * CellSize)
	vm.xt = vm.cell(vm.w + 1)
	vm.redispatch = true
}

func (vm *VM) douser() {
	i := uint32(Token(vm.xt).Param())
	throwIf(i >= vm.layout.userCells, ThrowInvalidAddress)
	vm.push((vm.layout.user + i) * CellSize)
}

func (vm *VM) doextern() {
	i := vm.cell(vm.w + 1)
	if i >= uint32(len(vm.external)) || vm.external[i] == nil {
		throw(ThrowUnsupported)
	}
	if code := vm.external[i](vm); code != 0 {
		throw(ThrowCode(code))
	}
}

func (vm *VM) execute() {
	vm.xt = vm.pop()
	vm.redispatch = true
}

// throw implements THROW: a non-zero code unwinds to the handler frame laid
// down by CATCH (previous handler, saved sp, return ip), or stops the VM
// with the code left on the stack when no handler is installed.
func (vm *VM) throw() {
	code := vm.peek(0)
	if code == 0 {
		vm.drop(1)
		return
	}
	handler := vm.sysvar(sysHandler)
	if handler == 0 {
		if vm.sp < vm.layout.spMin || vm.sp >= vm.layout.sp0 {
			// a stack fault leaves nowhere sane to keep the code
			vm.sp = vm.layout.sp0 - 1
			vm.poke(0, code)
		}
		vm.stop(ThrowCode(int32(code)))
		return
	}
	vm.rp = cellIndex(handler)
	vm.setSysvar(sysHandler, vm.rpop())
	vm.sp = cellIndex(vm.rpop())
	vm.poke(0, code)
	vm.ip = vm.rpop()
}

//// loops; a frame is rp[0] index, rp[1] limit, rp[2] exit address

func (vm *VM) do() {
	after := vm.ip + uint32(Token(vm.xt).SParam())
	vm.rp -= 3
	vm.rpoke(0, vm.pop())
	vm.rpoke(1, vm.pop())
	vm.rpoke(2, after)
}

func (vm *VM) qdo() {
	if vm.peek(0) != vm.peek(1) {
		vm.do()
		return
	}
	vm.drop(2)
	vm.ip += uint32(Token(vm.xt).SParam())
}

func (vm *VM) loop() {
	i := vm.rpeek(0) + 1
	if i == vm.rpeek(1) {
		vm.rp += 3
		return
	}
	vm.rpoke(0, i)
	vm.ip += uint32(Token(vm.xt).SParam())
}

// plusLoop continues while the index, relative to the limit, still has the
// opposite sign to the step; this terminates loops in either direction, even
// when the step skips over the limit.
func (vm *VM) plusLoop() {
	step := vm.pop()
	i := vm.rpeek(0) + step
	vm.rpoke(0, i)
	if int32((i-vm.rpeek(1))^step) < 0 {
		vm.ip += uint32(Token(vm.xt).SParam())
		return
	}
	vm.rp += 3
}

func (vm *VM) twoToR() {
	x2 := vm.pop()
	x1 := vm.pop()
	vm.rpush(x1)
	vm.rpush(x2)
}

func (vm *VM) twoRFrom() {
	x2 := vm.rpop()
	x1 := vm.rpop()
	vm.push(x1)
	vm.push(x2)
}

func (vm *VM) nToR() {
	n := vm.pop()
	throwIf(n > vm.layout.rstackCells(), ThrowRStackOverflow)
	for i := n; i > 0; i-- {
		vm.rpush(vm.peek(i - 1))
	}
	vm.drop(n)
	vm.rpush(n)
}

func (vm *VM) nRFrom() {
	n := vm.rpop()
	throwIf(n > vm.layout.stackCells(), ThrowStackOverflow)
	for i := n; i > 0; i-- {
		vm.push(vm.rpeek(i - 1))
	}
	vm.rp += n
	vm.push(n)
}

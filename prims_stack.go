package goforth

func init() {
	opTable[opDrop] = func(vm *VM) { vm.drop(1) }
	opTable[opDup] = func(vm *VM) { vm.push(vm.peek(0)) }
	opTable[opQDup] = func(vm *VM) {
		if v := vm.peek(0); v != 0 {
			vm.push(v)
		}
	}
	opTable[opNip] = func(vm *VM) { v := vm.pop(); vm.poke(0, v) }
	opTable[opTuck] = (*VM).tuck
	opTable[opRot] = (*VM).rot
	opTable[opRoll] = (*VM).roll
	opTable[opPick] = func(vm *VM) { vm.poke(0, vm.peek(vm.peek(0)+1)) }
	opTable[opOver] = func(vm *VM) { vm.push(vm.peek(1)) }
	opTable[opSwap] = func(vm *VM) { vm.swapN(0, 1) }
	opTable[op2Rot] = (*VM).twoRot
	opTable[op2Dup] = func(vm *VM) { vm.push(vm.peek(1)); vm.push(vm.peek(1)) }
	opTable[op2Drop] = func(vm *VM) { vm.drop(2) }
	opTable[op2Over] = func(vm *VM) { vm.push(vm.peek(3)); vm.push(vm.peek(3)) }
	opTable[op2Swap] = func(vm *VM) { vm.swapN(0, 2); vm.swapN(1, 3) }
}

func (vm *VM) swapN(i, j uint32) {
	a, b := vm.peek(i), vm.peek(j)
	vm.poke(i, b)
	vm.poke(j, a)
}

// ( a b -- b a b )
func (vm *VM) tuck() {
	b := vm.peek(0)
	vm.swapN(0, 1)
	vm.push(b)
}

// ( a b c -- b c a )
func (vm *VM) rot() {
	a, b, c := vm.peek(2), vm.peek(1), vm.peek(0)
	vm.poke(2, b)
	vm.poke(1, c)
	vm.poke(0, a)
}

// ( xu xu-1 ... x0 u -- xu-1 ... x0 xu )
func (vm *VM) roll() {
	u := vm.pop()
	throwIf(u >= vm.layout.stackCells(), ThrowStackUnderflow)
	xu := vm.peek(u)
	for i := u; i > 0; i-- {
		vm.poke(i, vm.peek(i-1))
	}
	vm.poke(0, xu)
}

// ( x1 x2 x3 x4 x5 x6 -- x3 x4 x5 x6 x1 x2 )
func (vm *VM) twoRot() {
	x1, x2 := vm.peek(5), vm.peek(4)
	for i := uint32(5); i > 1; i-- {
		vm.poke(i, vm.peek(i-2))
	}
	vm.poke(1, x1)
	vm.poke(0, x2)
}

package goforth

// A word is laid down as its name bytes (cell padded), followed by a two
// cell header: link (index of the previous header in its wordlist, 0 ends
// the list) and flags. The xt is the cell after the header.
//
// A wordlist is three cells: latest header, parent wordlist, and a link
// chaining all wordlists together; its wid is the index of its first cell.

// header flags
const (
	flagImmediate = 0x80000000
	flagToken     = 0x20000000
	flagLenMask   = 0xFFFF
)

// maxNameLen bounds definition names, as for counted strings.
const maxNameLen = 255

// notFound is the search sentinel; index 0 only ever terminates a list.
const notFound = ^uint32(0)

func headerOf(xt uint32) uint32 { return xt - 2 }
func xtOf(hdr uint32) uint32    { return hdr + 2 }

func (vm *VM) headerFlags(hdr uint32) uint32 { return vm.cell(hdr + 1) }

// headerName returns the name bytes of the given header.
func (vm *VM) headerName(hdr uint32) []byte {
	n := vm.headerFlags(hdr) & flagLenMask
	return vm.mem.load(hdr*CellSize-align(n), n)
}

// xtName returns the name of an xt, or "" if it is anonymous or not a word.
func (vm *VM) xtName(xt uint32) string {
	if xt < 2 || xt >= vm.layout.dictCells {
		return ""
	}
	return string(vm.headerName(headerOf(xt)))
}

// searchWordlist walks the list under wid looking for name, ignoring ASCII
// case, returning the matching header index or notFound.
func (vm *VM) searchWordlist(wid uint32, name []byte) uint32 {
	n := uint32(len(name))
	for hdr, limit := vm.cell(wid), vm.layout.dictCells; hdr != 0 && limit > 0; limit-- {
		if vm.headerFlags(hdr)&flagLenMask == n && equalFold(vm.headerName(hdr), name) {
			return hdr
		}
		hdr = vm.cell(hdr)
	}
	return notFound
}

// findWord searches each wordlist in order, first to last, and finally the
// root wordlist.
func (vm *VM) findWord(name []byte) uint32 {
	order := vm.layout.order + vm.layout.orderSlots
	for cnt := vm.sysvar(sysOrderCount); cnt > 0; cnt-- {
		if hdr := vm.searchWordlist(vm.cell(order-cnt), name); hdr != notFound {
			return hdr
		}
	}
	return vm.searchWordlist(vm.image.rootWID, name)
}

// pushFound renders a search result as ( 0 | xt 1 | xt -1 ).
func (vm *VM) pushFound(hdr uint32) {
	if hdr == notFound {
		vm.push(0)
		return
	}
	vm.push(xtOf(hdr))
	if vm.headerFlags(hdr)&flagImmediate != 0 {
		vm.push(1)
	} else {
		vm.push(True)
	}
}

func equalFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if lowerASCII(a[i]) != lowerASCII(b[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

//// search order primitives

func init() {
	opTable[opSearchWordlist] = func(vm *VM) {
		wid := vm.pop()
		n := vm.pop()
		addr := vm.pop()
		vm.pushFound(vm.searchWordlist(wid, vm.mem.load(addr, n)))
	}
	opTable[opFindWord] = func(vm *VM) {
		n := vm.pop()
		addr := vm.pop()
		vm.pushFound(vm.findWord(vm.mem.load(addr, n)))
	}
	opTable[opOnly] = (*VM).only
	opTable[opAlso] = (*VM).also
	opTable[opGetOrder] = (*VM).getOrder
	opTable[opSetOrder] = (*VM).setOrder
	opTable[opContext] = func(vm *VM) {
		vm.push((vm.layout.order + vm.layout.orderSlots - vm.sysvar(sysOrderCount)) * CellSize)
	}
	opTable[opCurrent] = func(vm *VM) { vm.push(vm.layout.sysAddr(sysCurrent)) }
}

// orderSlot returns the cell index of the i-th slot from the top; slot 1 is
// the last wordlist searched.
func (vm *VM) orderSlot(i uint32) uint32 { return vm.layout.order + vm.layout.orderSlots - i }

func (vm *VM) only() {
	root := vm.image.rootWID
	vm.setCell(vm.orderSlot(1), root)
	vm.setCell(vm.orderSlot(2), root)
	vm.setSysvar(sysOrderCount, 2)
}

func (vm *VM) also() {
	cnt := vm.sysvar(sysOrderCount)
	throwIf(cnt >= vm.layout.orderSlots, ThrowOrderOverflow)
	throwIf(cnt == 0, ThrowOrderUnderflow)
	cnt++
	vm.setSysvar(sysOrderCount, cnt)
	vm.setCell(vm.orderSlot(cnt), vm.cell(vm.orderSlot(cnt-1)))
}

// ( -- widn ... wid1 n )
func (vm *VM) getOrder() {
	cnt := vm.sysvar(sysOrderCount)
	for i := uint32(1); i <= cnt; i++ {
		vm.push(vm.cell(vm.orderSlot(i)))
	}
	vm.push(cnt)
}

// ( widn ... wid1 n -- )
func (vm *VM) setOrder() {
	n := vm.pop()
	if n == True {
		vm.only()
		return
	}
	throwIf(n > vm.layout.orderSlots, ThrowOrderOverflow)
	for i := n; i > 0; i-- {
		vm.setCell(vm.orderSlot(i), vm.pop())
	}
	vm.setSysvar(sysOrderCount, n)
}

// Order returns the search order as wids, first searched first.
func (vm *VM) Order() []uint32 {
	cnt := vm.sysvar(sysOrderCount)
	wids := make([]uint32, 0, cnt)
	for i := cnt; i > 0; i-- {
		wids = append(wids, vm.cell(vm.orderSlot(i)))
	}
	return wids
}

// wordlistHeaders returns the headers of a wordlist, latest first.
func (vm *VM) wordlistHeaders(wid uint32) []uint32 {
	var hdrs []uint32
	for hdr, limit := vm.cell(wid), vm.layout.dictCells; hdr != 0 && limit > 0; limit-- {
		hdrs = append(hdrs, hdr)
		hdr = vm.cell(hdr)
	}
	return hdrs
}

// createWord lays down a name and header at HERE, as CREATE-NAME does,
// returning the new xt; the word is not yet linked into its wordlist.
func (vm *VM) createWord(name []byte) uint32 {
	n := uint32(len(name))
	throwIf(n == 0, ThrowZeroName)
	throwIf(n > maxNameLen, ThrowNameTooLong)
	vm.alignDP()
	vm.checkRoom(align(n) + 2*CellSize)
	vm.mem.stor(vm.dp(), name)
	vm.setDP(vm.dp() + n)
	vm.alignDP()
	hdr := vm.here()
	vm.comma(vm.cell(vm.sysvar(sysCurrent)))
	vm.comma(n)
	return xtOf(hdr)
}

// linkLatest makes hdr the latest word of the current wordlist.
func (vm *VM) linkLatest(hdr uint32) { vm.setCell(vm.sysvar(sysCurrent), hdr) }

package goforth

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Dump writes a human readable description of the VM: its memory layout,
// stacks, search order, and every dictionary word with its compiled body.
func (vm *VM) Dump(w io.Writer) error {
	var buf bytes.Buffer
	dump := vmDumper{vm: vm, out: &buf}
	if err := vm.guard(dump.dump); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

type vmDumper struct {
	vm  *VM
	out *bytes.Buffer

	addrWidth int
	wids      map[uint32]string
	words     []uint32
}

func (dump *vmDumper) dump() {
	vm := dump.vm
	lay := vm.layout
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  dict: %v cells, here: %v, unused: %v bytes\n", lay.dictCells, vm.here(), vm.unused())
	fmt.Fprintf(dump.out, "  sys: @%v user: @%v order: @%v\n", lay.sys, lay.user, lay.order)
	fmt.Fprintf(dump.out, "  dstack: @%v-%v rstack: @%v-%v\n", lay.spMin, lay.sp0, lay.rpMin, lay.rp0)
	fmt.Fprintf(dump.out, "  tib: %#x pno: %#x fib: %#x heap: %#x\n", lay.tib, lay.numBuf, lay.fileBuf, vm.mem.heap.Base)

	dump.scanWords()
	dump.dumpOrder()
	dump.dumpStack()
	dump.dumpDict()
}

func (dump *vmDumper) dumpOrder() {
	fmt.Fprintf(dump.out, "  current: %v\n", dump.widName(dump.vm.sysvar(sysCurrent)))
	fmt.Fprintf(dump.out, "  order:")
	for _, wid := range dump.vm.Order() {
		fmt.Fprintf(dump.out, " %v", dump.widName(wid))
	}
	dump.out.WriteByte('\n')
}

func (dump *vmDumper) dumpStack() {
	fmt.Fprintf(dump.out, "  stack: %v\n", dump.vm.Stack())
	fmt.Fprintf(dump.out, "  rstack: %v\n", dump.vm.rstack())
}

func (dump *vmDumper) dumpDict() {
	vm := dump.vm
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(int(vm.here()))) + 1
	}
	fmt.Fprintf(dump.out, "# Dictionary\n")
	here := vm.here()
	for i, hdr := range dump.words {
		end := here
		if i+1 < len(dump.words) {
			next := dump.words[i+1]
			end = next - cellsFor(vm.headerFlags(next)&flagLenMask)
		}
		dump.formatWord(hdr, end)
	}
}

func (dump *vmDumper) formatWord(hdr, end uint32) {
	vm := dump.vm
	flags := vm.headerFlags(hdr)
	fmt.Fprintf(dump.out, "  @% *v : ", dump.addrWidth, xtOf(hdr))
	dump.out.Write(vm.headerName(hdr))
	if flags&flagImmediate != 0 {
		dump.out.WriteString(" immediate")
	}
	if flags&flagToken != 0 {
		dump.out.WriteString(" token")
	}
	for ix := xtOf(hdr); ix < end; {
		if name, ok := dump.wids[ix]; ok {
			fmt.Fprintf(dump.out, " wordlist(%v)", name)
			ix += 3
			continue
		}
		dump.out.WriteByte(' ')
		dump.out.WriteString(vm.seeSymbol(&ix))
	}
	dump.out.WriteByte('\n')
}

func (dump *vmDumper) widName(wid uint32) string {
	if name, ok := dump.wids[wid]; ok {
		return name
	}
	return "#" + strconv.Itoa(int(wid))
}

// scanWords collects every wordlist, chained from WID-LINK, and every header
// in them, sorted by address.
func (dump *vmDumper) scanWords() {
	vm := dump.vm
	dump.wids = make(map[uint32]string)
	dump.words = dump.words[:0]
	for wid, limit := vm.cell(vm.image.widLink), 64; wid != 0 && limit > 0; limit-- {
		switch wid {
		case vm.image.rootWID:
			dump.wids[wid] = "Root"
		case vm.image.forthWID:
			dump.wids[wid] = "FORTH"
		default:
			dump.wids[wid] = "#" + strconv.Itoa(int(wid))
		}
		dump.words = append(dump.words, vm.wordlistHeaders(wid)...)
		wid = vm.cell(wid + 2)
	}
	sort.Slice(dump.words, func(i, j int) bool { return dump.words[i] < dump.words[j] })
}

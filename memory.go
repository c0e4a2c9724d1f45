package goforth

import (
	"encoding/binary"

	"github.com/jcorbin/goforth/internal/mem"
)

// memory is the VM's byte addressed space: a linear cell array holding the
// dictionary and runtime context, followed by any heap regions.
// Every access is bounds checked, faulting with a THROW.
type memory struct {
	cells []uint32
	heap  mem.Arena
}

// heapAlign keeps heap bases well clear of the linear region.
const heapAlign = 0x10000

func (m *memory) end() uint32 { return uint32(len(m.cells)) * CellSize }

func (m *memory) fetch(addr uint32) uint32 {
	throwIf(addr%CellSize != 0, ThrowAlignment)
	if addr < m.end() {
		return m.cells[addr/CellSize]
	}
	return binary.LittleEndian.Uint32(m.heapSlice(addr, CellSize))
}

func (m *memory) store(addr, val uint32) {
	throwIf(addr%CellSize != 0, ThrowAlignment)
	if addr < m.end() {
		m.cells[addr/CellSize] = val
		return
	}
	binary.LittleEndian.PutUint32(m.heapSlice(addr, CellSize), val)
}

func (m *memory) cfetch(addr uint32) byte {
	if addr < m.end() {
		return byte(m.cells[addr/CellSize] >> (8 * (addr % CellSize)))
	}
	return m.heapSlice(addr, 1)[0]
}

func (m *memory) cstore(addr uint32, c byte) {
	if addr < m.end() {
		shift := 8 * (addr % CellSize)
		cell := &m.cells[addr/CellSize]
		*cell = *cell&^(0xff<<shift) | uint32(c)<<shift
		return
	}
	m.heapSlice(addr, 1)[0] = c
}

// load copies n bytes starting at addr.
func (m *memory) load(addr, n uint32) []byte {
	buf := make([]byte, n)
	m.loadInto(addr, buf)
	return buf
}

func (m *memory) loadInto(addr uint32, buf []byte) {
	n := uint32(len(buf))
	if n == 0 {
		return
	}
	if addr < m.end() {
		m.checkLinear(addr, n)
		for i := range buf {
			buf[i] = m.cfetch(addr + uint32(i))
		}
		return
	}
	copy(buf, m.heapSlice(addr, n))
}

// stor copies p into memory starting at addr.
func (m *memory) stor(addr uint32, p []byte) {
	n := uint32(len(p))
	if n == 0 {
		return
	}
	if addr < m.end() {
		m.checkLinear(addr, n)
		for i, c := range p {
			m.cstore(addr+uint32(i), c)
		}
		return
	}
	copy(m.heapSlice(addr, n), p)
}

func (m *memory) fill(addr, n uint32, c byte) {
	if n == 0 {
		return
	}
	if addr < m.end() {
		m.checkLinear(addr, n)
		for i := uint32(0); i < n; i++ {
			m.cstore(addr+i, c)
		}
		return
	}
	buf := m.heapSlice(addr, n)
	for i := range buf {
		buf[i] = c
	}
}

func (m *memory) checkLinear(addr, n uint32) {
	throwIf(uint64(addr)+uint64(n) > uint64(m.end()), ThrowInvalidAddress)
}

func (m *memory) heapSlice(addr, n uint32) []byte {
	buf, err := m.heap.Slice(addr, n)
	if err != nil {
		throw(ThrowInvalidAddress)
	}
	return buf
}

// cstring reads a byte string; used for names and host strings.
func (m *memory) cstring(addr, n uint32) string { return string(m.load(addr, n)) }

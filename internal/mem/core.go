package mem

import "fmt"

// regions provides the sorted base/size bookkeeping shared by any region
// oriented memory model.
type regions struct {
	bases []uint32
	sizes []uint32
}

// LimitError indicates that an allocation would exceed a configured limit.
type LimitError struct {
	Size uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded by %v of %v bytes", lim.Op, lim.Size)
}

// AddrError indicates that an operation named an address outside of any
// allocated region, or a span that crosses a region end.
type AddrError struct {
	Addr uint32
	Op   string
}

func (ae AddrError) Error() string {
	return fmt.Sprintf("invalid address for %v @%#x", ae.Op, ae.Addr)
}

// find returns the index of the last region whose base is <= addr, or -1.
func (m *regions) find(addr uint32) int {
	i, j := 0, len(m.bases)
	for i < j {
		h := int(uint(i+j) >> 1)
		if m.bases[h] <= addr {
			i = h + 1
		} else {
			j = h
		}
	}
	return i - 1
}

// contains returns the region index that fully covers [addr, addr+n), or -1.
func (m *regions) contains(addr, n uint32) int {
	i := m.find(addr)
	if i < 0 {
		return -1
	}
	if end := uint64(m.bases[i]) + uint64(m.sizes[i]); uint64(addr)+uint64(n) > end {
		return -1
	}
	return i
}

// gap finds the first hole of at least size bytes at or above lo, keeping a
// pad of at least one byte between neighbours so that region ends stay
// distinct; returns the chosen base and the insertion index.
func (m *regions) gap(lo, size, pad uint32) (base uint32, at int, ok bool) {
	base = lo
	for i := range m.bases {
		if uint64(base)+uint64(size)+uint64(pad) <= uint64(m.bases[i]) {
			return base, i, true
		}
		if end := m.bases[i] + m.sizes[i] + pad; end > base {
			base = align(end, pad)
		}
	}
	if uint64(base)+uint64(size) > 1<<32-1 {
		return 0, 0, false
	}
	return base, len(m.bases), true
}

func (m *regions) insert(at int, base, size uint32) {
	m.bases = append(m.bases, 0)
	m.sizes = append(m.sizes, 0)
	copy(m.bases[at+1:], m.bases[at:])
	copy(m.sizes[at+1:], m.sizes[at:])
	m.bases[at] = base
	m.sizes[at] = size
}

func (m *regions) remove(at int) {
	copy(m.bases[at:], m.bases[at+1:])
	copy(m.sizes[at:], m.sizes[at+1:])
	m.bases = m.bases[:len(m.bases)-1]
	m.sizes = m.sizes[:len(m.sizes)-1]
}

func align(n, to uint32) uint32 {
	if to <= 1 {
		return n
	}
	return (n + to - 1) / to * to
}

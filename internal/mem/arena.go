package mem

// DefaultAlign is the default alignment of Arena region bases.
const DefaultAlign = 8

// Arena implements a region-oriented byte memory, as used to back heap
// allocations that live outside of a fixed linear address space.
// Regions are placed first-fit at or above Base; freed address space may be
// reused by later allocations.
type Arena struct {
	// Base is the lowest address that any region may occupy.
	Base uint32

	// Align specifies the alignment of region bases, defaulting to DefaultAlign.
	Align uint32

	// Limit specifies a limit, past which the total size of all live regions
	// may not grow; zero means unlimited.
	Limit uint

	regions
	data [][]byte
	used uint
}

// Used returns the total number of bytes in all live regions.
func (m *Arena) Used() uint { return m.used }

// Len returns the number of live regions.
func (m *Arena) Len() int { return len(m.bases) }

// Alloc allocates a new zeroed region of size bytes, returning its base
// address; zero sized allocations still occupy one byte of address space so
// that every base is distinct.
func (m *Arena) Alloc(size uint32) (uint32, error) {
	if err := m.checkLimit(uint(size), "alloc"); err != nil {
		return 0, err
	}
	span := size
	if span == 0 {
		span = 1
	}
	base, at, ok := m.gap(m.Base, span, m.align())
	if !ok {
		return 0, LimitError{uint(size), "alloc"}
	}
	m.insert(at, base, span)
	m.data = append(m.data, nil)
	copy(m.data[at+1:], m.data[at:])
	m.data[at] = make([]byte, size, span)
	m.used += uint(size)
	return base, nil
}

// Resize changes the size of the region based at addr, returning its possibly
// new base address. Contents are preserved up to the lesser of the old and new
// sizes; any grown space is zeroed.
func (m *Arena) Resize(addr, size uint32) (uint32, error) {
	i := m.find(addr)
	if i < 0 || m.bases[i] != addr {
		return addr, AddrError{addr, "resize"}
	}
	old := uint32(len(m.data[i]))
	if size > old {
		if err := m.checkLimit(uint(size-old), "resize"); err != nil {
			return addr, err
		}
	}

	// grow or shrink in place when the next region leaves enough room
	limit := uint64(1<<32 - 1)
	if j := i + 1; j < len(m.bases) {
		limit = uint64(m.bases[j])
	}
	if span := maxSpan(size); uint64(addr)+uint64(span) < limit {
		buf := m.data[i]
		if size <= old {
			for k := range buf[size:] {
				buf[size+uint32(k)] = 0
			}
			buf = buf[:size]
		} else {
			buf = append(buf, make([]byte, size-old)...)
		}
		m.data[i] = buf
		m.sizes[i] = span
		m.used = m.used - uint(old) + uint(size)
		return addr, nil
	}

	naddr, err := m.Alloc(size)
	if err != nil {
		return addr, err
	}
	copy(m.data[m.find(naddr)], m.data[m.find(addr)])
	return naddr, m.Free(addr)
}

// Free releases the region based at addr.
func (m *Arena) Free(addr uint32) error {
	i := m.find(addr)
	if i < 0 || m.bases[i] != addr {
		return AddrError{addr, "free"}
	}
	m.used -= uint(len(m.data[i]))
	m.remove(i)
	copy(m.data[i:], m.data[i+1:])
	m.data[len(m.data)-1] = nil
	m.data = m.data[:len(m.data)-1]
	return nil
}

// Slice returns the live bytes [addr, addr+n) which must lie within a single
// region; the returned slice aliases arena memory.
func (m *Arena) Slice(addr, n uint32) ([]byte, error) {
	i := m.contains(addr, n)
	if i < 0 {
		return nil, AddrError{addr, "access"}
	}
	buf := m.data[i]
	off := addr - m.bases[i]
	if uint64(off)+uint64(n) > uint64(len(buf)) {
		return nil, AddrError{addr, "access"}
	}
	return buf[off : off+n], nil
}

// Contains returns true if addr lies within some live region.
func (m *Arena) Contains(addr uint32) bool {
	i := m.find(addr)
	return i >= 0 && addr-m.bases[i] < uint32(len(m.data[i]))
}

func (m *Arena) align() uint32 {
	if m.Align == 0 {
		return DefaultAlign
	}
	return m.Align
}

func (m *Arena) checkLimit(grow uint, op string) error {
	if m.Limit != 0 && m.used+grow > m.Limit {
		return LimitError{grow, op}
	}
	return nil
}

func maxSpan(size uint32) uint32 {
	if size == 0 {
		return 1
	}
	return size
}

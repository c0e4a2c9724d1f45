package mem

// ArenaDump provides data for testing.
type ArenaDump struct {
	Bases []uint32
	Sizes []uint32
	Data  [][]byte
}

// Dump arena data for testing.
func (m *Arena) Dump() (d ArenaDump) {
	d.Bases = m.bases
	d.Sizes = m.sizes
	d.Data = m.data
	return d
}

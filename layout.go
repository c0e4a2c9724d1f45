package goforth

// Region 0 is one cell array; the dictionary comes first, and is followed by
// the runtime context block that Forth code reaches through plain addresses.
//
//	[0, dictCells)          dictionary; cell 0 BYE, cell 1 DP, cell 2 DP-MAX
//	sys                     system variables, see sysBase..sysCount
//	user                    user variables
//	order                   search order slots, filled from the top down
//	dstack                  data stack with guard cells either side
//	rstack                  return stack with guard cells either side
//	tib, numBuf, fileBuf    byte buffers
type layout struct {
	dictCells  uint32
	sys        uint32
	user       uint32
	userCells  uint32
	order      uint32
	orderSlots uint32

	spMin, sp0 uint32
	rpMin, rp0 uint32

	tib     uint32
	numBuf  uint32
	fileBuf uint32

	cells uint32
}

// system variable cell offsets (from layout.sys)
const (
	sysBase = iota
	sysState
	sysToIn
	sysNumTIB
	sysBlk
	sysSourceID
	sysHandler
	sysLineNumber
	sysDefining
	sysTrace
	sysAbortLen
	sysAbortAddr
	sysCurrent
	sysSourceAddr
	sysSourceLen
	sysOrderCount
	sysHold
	sysFilePosLo
	sysFilePosHi
	sysCount
)

// fixed dictionary cells
const (
	dpCell    = 1
	dpMaxCell = 2
)

const (
	guardCells  = 8
	tibSize     = 256
	numBufSize  = 132
	fileBufSize = 256
	padSize     = 84

	// WORD leaves its counted string this far past HERE, and PAD follows it
	wordBufOffset = 16
	padOffset     = wordBufOffset + 1 + maxNameLen
)

func newLayout(dictCells, userCells, orderSlots, stackCells, rstackCells uint32) layout {
	var lay layout
	lay.dictCells = dictCells
	at := dictCells

	lay.sys = at
	at += sysCount

	lay.user = at
	lay.userCells = userCells
	at += userCells

	lay.order = at
	lay.orderSlots = orderSlots
	at += orderSlots

	at += guardCells
	lay.spMin = at
	at += stackCells
	lay.sp0 = at
	at += guardCells

	at += guardCells
	lay.rpMin = at
	at += rstackCells
	lay.rp0 = at
	at += guardCells

	lay.tib = at * CellSize
	at += cellsFor(tibSize)
	lay.numBuf = at * CellSize
	at += cellsFor(numBufSize)
	lay.fileBuf = at * CellSize
	at += cellsFor(fileBufSize)

	lay.cells = at
	return lay
}

func (lay layout) sysAddr(i uint32) uint32 { return (lay.sys + i) * CellSize }

func (lay layout) stackCells() uint32  { return lay.sp0 - lay.spMin }
func (lay layout) rstackCells() uint32 { return lay.rp0 - lay.rpMin }

package goforth

import "fmt"

// CellSize is the size of a cell in bytes; every stack slot, address, and
// dictionary entry is one cell.
const CellSize = 4

// Boolean flags as Forth sees them.
const (
	True  = ^uint32(0)
	False = uint32(0)
)

const (
	tokenBit   = 0x80000000
	opShift    = 16
	opMask     = 0x7FFF
	paramMask  = 0xFFFF
	indexMask  = 0x7FFFFFFF
	paramMax   = paramMask
	sysIDMask  = 0x00FFFFFF
	sysOrig    = 0x4F000000
	sysDest    = 0x44000000
	sysDo      = 0x4C000000
	sysColon   = 0x55aa4884
	sysTagMask = ^uint32(sysIDMask)
)

// Token is a single dictionary cell interpreted as an instruction: either an
// index of another dictionary cell to execute, or a primitive opcode with a
// 16-bit immediate parameter packed into the low bits.
type Token uint32

// IndexToken returns a call token for the given dictionary cell index.
func IndexToken(ix uint32) Token { return Token(ix & indexMask) }

// PrimToken packs an opcode and a 16-bit parameter; negative parameters are
// stored in two's complement.
func PrimToken(op Opcode, param int) Token {
	return Token(tokenBit | uint32(op&opMask)<<opShift | uint32(param)&paramMask)
}

// IsPrimitive returns true if the token encodes an opcode rather than an index.
func (tok Token) IsPrimitive() bool { return tok&tokenBit != 0 }

// Index returns the dictionary index of a call token.
func (tok Token) Index() uint32 { return uint32(tok) & indexMask }

// Op returns the opcode of a primitive token.
func (tok Token) Op() Opcode { return Opcode(uint32(tok) >> opShift & opMask) }

// Param returns the unsigned immediate parameter.
func (tok Token) Param() uint16 { return uint16(tok & paramMask) }

// SParam returns the sign extended immediate parameter.
func (tok Token) SParam() int32 { return int32(int16(tok & paramMask)) }

// Bare returns the token with its parameter cleared.
func (tok Token) Bare() Token { return tok &^ paramMask }

func (tok Token) String() string {
	if !tok.IsPrimitive() {
		return fmt.Sprintf("@%d", tok.Index())
	}
	if tok.Param() != 0 {
		return fmt.Sprintf("%v(%d)", tok.Op(), tok.SParam())
	}
	return tok.Op().String()
}

// Literal returns the shortest instruction sequence that pushes v: a single
// unsigned or signed packed literal when v fits in 16 bits, otherwise the lit
// opcode followed by the raw cell.
func Literal(v uint32) []uint32 {
	if v&paramMask == v {
		return []uint32{uint32(PrimToken(opUSLit, int(v)))}
	}
	if int32(int16(v)) == int32(v) {
		return []uint32{uint32(PrimToken(opSSLit, int(int16(v))))}
	}
	return []uint32{uint32(PrimToken(opLit, 0)), v}
}

// DecodeLiteral is the inverse of Literal, returning the value pushed by the
// given code and the number of cells consumed; ok is false if code does not
// start with a literal.
func DecodeLiteral(code []uint32) (v uint32, n int, ok bool) {
	if len(code) == 0 {
		return 0, 0, false
	}
	tok := Token(code[0])
	if !tok.IsPrimitive() {
		return 0, 0, false
	}
	switch tok.Op() {
	case opUSLit:
		return uint32(tok.Param()), 1, true
	case opSSLit:
		return uint32(tok.SParam()), 1, true
	case opLit, opXTLit:
		if len(code) < 2 {
			return 0, 0, false
		}
		return code[1], 2, true
	}
	return 0, 0, false
}

func align(n uint32) uint32 { return (n + CellSize - 1) &^ (CellSize - 1) }

func cellsFor(nbytes uint32) uint32 { return (nbytes + CellSize - 1) / CellSize }

func flag(b bool) uint32 {
	if b {
		return True
	}
	return False
}

// double-cell helpers; the high cell is on top of the stack
func dcell(hi, lo uint32) uint64      { return uint64(hi)<<32 | uint64(lo) }
func dsplit(d uint64) (hi, lo uint32) { return uint32(d >> 32), uint32(d) }

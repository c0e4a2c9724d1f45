package goforth

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ThrowCode is a Forth exception code, as passed to THROW; negative codes are
// reserved by the system, see throwMessages.
type ThrowCode int32

// System THROW codes used by the runtime itself.
const (
	ThrowAbort           ThrowCode = -1
	ThrowAbortQuote      ThrowCode = -2
	ThrowStackOverflow   ThrowCode = -3
	ThrowStackUnderflow  ThrowCode = -4
	ThrowRStackOverflow  ThrowCode = -5
	ThrowRStackUnderflow ThrowCode = -6
	ThrowDictOverflow    ThrowCode = -8
	ThrowInvalidAddress  ThrowCode = -9
	ThrowDivByZero       ThrowCode = -10
	ThrowOutOfRange      ThrowCode = -11
	ThrowUndefined       ThrowCode = -13
	ThrowZeroName        ThrowCode = -16
	ThrowPictureOverflow ThrowCode = -17
	ThrowParseOverflow   ThrowCode = -18
	ThrowNameTooLong     ThrowCode = -19
	ThrowUnsupported     ThrowCode = -21
	ThrowControlMismatch ThrowCode = -22
	ThrowAlignment       ThrowCode = -23
	ThrowInvalidNumber   ThrowCode = -24
	ThrowNotCreated      ThrowCode = -31
	ThrowFilePosition    ThrowCode = -36
	ThrowFileIO          ThrowCode = -37
	ThrowNoFile          ThrowCode = -38
	ThrowOrderOverflow   ThrowCode = -49
	ThrowOrderUnderflow  ThrowCode = -50
	ThrowCharIO          ThrowCode = -57
	ThrowConditional     ThrowCode = -58
	ThrowAllocate        ThrowCode = -59
	ThrowFree            ThrowCode = -60
	ThrowResize          ThrowCode = -61
)

const throwMessageTableSize = 61

var throwMessages = [throwMessageTableSize + 1]string{
	1:  "ABORT",
	2:  "aborted",
	3:  "stack overflow",
	4:  "stack underflow",
	5:  "return stack overflow",
	6:  "return stack underflow",
	7:  "do-loops nested too deeply during execution",
	8:  "dictionary overflow",
	9:  "invalid memory address",
	10: "division by zero",
	11: "result out of range",
	12: "argument type mismatch",
	13: "undefined word",
	14: "interpreting a compile-only word",
	15: "invalid FORGET",
	16: "attempt to use zero-length string as a name",
	17: "pictured numeric output string overflow",
	18: "parsed string overflow",
	19: "definition name too long",
	20: "write to a read-only location",
	21: "unsupported operation",
	22: "control structure mismatch",
	23: "address alignment exception",
	24: "invalid numeric argument",
	25: "return stack imbalance",
	26: "loop parameters unavailable",
	27: "invalid recursion",
	28: "user interrupt",
	29: "compiler nesting",
	30: "obsolescent feature",
	31: ">BODY used on non-CREATEd definition",
	32: "invalid name argument (e.g., TO xxx)",
	33: "block read exception",
	34: "block write exception",
	35: "invalid block number",
	36: "invalid file position",
	37: "file I/O exception",
	38: "non-existent file",
	39: "unexpected end of file",
	40: "invalid BASE for floating point conversion",
	41: "loss of precision",
	42: "floating-point divide by zero",
	43: "floating-point result out of range",
	44: "floating-point stack overflow",
	45: "floating-point stack underflow",
	46: "floating-point invalid argument",
	47: "compilation word list deleted",
	48: "invalid POSTPONE",
	49: "search-order overflow",
	50: "search-order underflow",
	51: "compilation word list changed",
	52: "control-flow stack overflow",
	53: "exception stack overflow",
	54: "floating-point underflow",
	55: "floating-point unidentified fault",
	56: "QUIT",
	57: "exception in sending or receiving a character",
	58: "[IF], [ELSE], or [THEN] exception",
	59: "ALLOCATE",
	60: "FREE",
	61: "RESIZE",
}

// Message returns the standard description of a system code, or "".
func (code ThrowCode) Message() string {
	if i := -int(code); i > 0 && i < len(throwMessages) {
		return throwMessages[i]
	}
	return ""
}

// ior returns the code as a cell, the form file words report it in.
func (code ThrowCode) ior() uint32 { return uint32(code) }

func (code ThrowCode) Error() string {
	if mess := code.Message(); mess != "" {
		return fmt.Sprintf("THROW %d: %v", int32(code), mess)
	}
	return fmt.Sprintf("THROW %d", int32(code))
}

// UnknownOpcodeError is a fatal error, returned when the inner interpreter
// decodes a primitive token with no implementation.
type UnknownOpcodeError struct {
	Token Token
	At    uint32
}

func (err UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown token %#08x @%v", uint32(err.Token), err.At)
}

var (
	errNoImage    = errors.New("dictionary image not built")
	errImageSpace = errors.New("dictionary too small for bootstrap image")
)

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

// throw unwinds the current primitive; the inner interpreter recovers the
// code and performs THROW with it.
func throw(code ThrowCode) { panic(code) }

func throwIf(cond bool, code ThrowCode) {
	if cond {
		panic(code)
	}
}

// thrownCode recovers a ThrowCode from a recovered panic value, mapping Go
// slice bounds faults to an invalid memory address.
func thrownCode(e interface{}) (ThrowCode, bool) {
	switch v := e.(type) {
	case ThrowCode:
		return v, true
	case runtime.Error:
		if mess := v.Error(); strings.Contains(mess, "index out of range") ||
			strings.Contains(mess, "slice bounds out of range") {
			return ThrowInvalidAddress, true
		}
	}
	return 0, false
}

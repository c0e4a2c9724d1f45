// Package goforth implements a small Forth system around a threaded code
// virtual machine.
//
// Every dictionary cell is a 32-bit Token: either the cell index of another
// definition to call, or, with the high bit set, a primitive opcode carrying a
// 16-bit immediate parameter. Packed parameters let a single cell hold a short
// literal, a branch offset, a string length, or a user variable index; the
// inner interpreter is a plain fetch, decode, dispatch loop over those cells.
//
// Memory is one byte addressed space. The dictionary, system variables, search
// order, both stacks and the input buffers all live in a single linear cell
// array, so that Forth code reaches all of them through ordinary addresses
// (SP@, HANDLER, >IN, and so on). ALLOCATEd memory lives in heap regions above
// that array.
//
// The bootstrap dictionary is laid down when a VM is created, see New. Most of
// the compiler and the outer interpreter (INTERPRET, EVALUATE, QUIT, CATCH,
// the control flow and defining words) are Forth colon definitions over a set
// of primitives; only the primitives are implemented in Go.
//
// Exceptions follow the standard CATCH and THROW model. A fault detected by a
// primitive (an invalid address, a stack underflow, a division by zero, ...) is
// thrown exactly as if the code had executed THROW; an exception that escapes
// every CATCH frame ends Execute with its ThrowCode as an error.
//
// The terminal, line input, key input, file system, and clock are all host
// provided through small interfaces, see VMOption; command goforth wires them
// to the process's terminal and file system.
package goforth

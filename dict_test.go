package goforth

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestVM_wordlists(t *testing.T) {
	vmTestCases{
		vmTest("private wordlist").
			interpret(
				`WORDLIST CONSTANT W`,
				`GET-ORDER W SWAP 1+ SET-ORDER DEFINITIONS`,
				`: HIDDEN 42 ;  HIDDEN`,
				`PREVIOUS DEFINITIONS`,
			).
			expectStack(42).
			expectNoWord("HIDDEN"),

		vmTest("search wordlist").
			interpret(
				`S" DUP" FORTH-WORDLIST SEARCH-WORDLIST NIP`,
				`S" IF" FORTH-WORDLIST SEARCH-WORDLIST NIP`,
				`S" DUP" WORDLIST SEARCH-WORDLIST`,
				`S" ONLY" FORTH-WORDLIST SEARCH-WORDLIST`,
			).
			expectStack(-1, 1, 0, 0),

		vmTest("order").
			interpret(`ORDER ONLY ORDER FORTH ORDER ALSO ORDER`).
			expectOutput("FORTH \nRoot Root \nFORTH Root \nFORTH FORTH Root \n"),

		vmTest("get order").
			interpret(`GET-ORDER`).
			do(func(ctx context.Context, vm *VM) error {
				if stack, order := vm.Stack(), vm.Order(); len(stack) != 2 || stack[0] != order[0] || stack[1] != 1 {
					return fmt.Errorf("unexpected GET-ORDER %v for order %v", stack, order)
				}
				return nil
			}),

		vmTest("set order only").
			interpret(`-1 SET-ORDER GET-ORDER NIP NIP`).
			expectStack(2),

		vmTest("root only").
			interpret(`0 SET-ORDER  FORTH-WORDLIST 1 SET-ORDER  1 2 +`).
			expectStack(3),

		vmTest("empty order").
			interpret(`0 SET-ORDER DUP`).
			expectError(ThrowUndefined),

		vmTest("order overflow").
			withOptions(WithSearchOrderSlots(4)).
			interpret(`ALSO ALSO ALSO ALSO`).
			expectError(ThrowOrderOverflow),

		vmTest("set order overflow").
			withOptions(WithSearchOrderSlots(2)).
			interpret(`1 2 3 3 SET-ORDER`).
			expectError(ThrowOrderOverflow),

		vmTest("previous underflow").
			interpret(`ONLY PREVIOUS PREVIOUS`).
			expectError(ThrowOrderUnderflow),

		vmTest("current").
			interpret(
				`WORDLIST DUP SET-CURRENT : LATE 7 ;`,
				`GET-CURRENT = FORTH-WORDLIST SET-CURRENT`,
			).
			expectStack(-1).
			expectNoWord("LATE"),

		vmTest("words").
			interpret(
				`WORDLIST CONSTANT W  GET-ORDER W SWAP 1+ SET-ORDER DEFINITIONS`,
				`: AA ; : BB ;  WORDS`,
			).
			expectOutput("\nBB AA \n"),

		vmTest("shadowing").
			interpret(
				`: GREET 1 ;`,
				`WORDLIST CONSTANT W  GET-ORDER W SWAP 1+ SET-ORDER DEFINITIONS`,
				`: GREET 2 ;  GREET`,
				`PREVIOUS GREET`,
			).
			expectStack(2, 1),

		vmTest("case insensitive").
			interpret(`: Mixed 5 ;  mixed MIXED`).
			expectStack(5, 5),

		vmTest("name too long").
			interpret(`: ` + strings.Repeat("X", maxNameLen+1) + ` ;`).
			expectError(ThrowNameTooLong),
	}.run(t)
}

package goforth

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestVM_arithmetic(t *testing.T) {
	vmTestCases{
		vmTest("add sub").interpret(`1 2 +  7 3 -`).expectStack(3, 4),
		vmTest("mul").interpret(`6 7 *  -3 5 *`).expectStack(42, -15),
		vmTest("div truncates").interpret(`-7 2 /  -7 2 MOD  7 2 /MOD`).expectStack(-3, -1, 1, 3),
		vmTest("div by zero").interpret(`1 0 /`).expectError(ThrowDivByZero),
		vmTest("mod by zero").interpret(`1 0 MOD`).expectError(ThrowDivByZero),
		vmTest("star slash").interpret(`2 3 4 */  2 3 4 */MOD`).expectStack(1, 2, 1),
		vmTest("star slash wide").interpret(`100000 100000 1000000 */`).expectStack(10000),
		vmTest("um star").interpret(`-1 -1 UM*`).expectStack(1, -2),
		vmTest("m star").interpret(`-3 4 M*`).expectStack(-12, -1),
		vmTest("um slash mod").interpret(`100 0 7 UM/MOD`).expectStack(2, 14),
		vmTest("um slash mod overflow").interpret(`0 7 7 UM/MOD`).expectError(ThrowOutOfRange),
		vmTest("m plus").interpret(`1 0 5 M+  0 0 -1 M+`).expectStack(6, 0, -1, -1),
		vmTest("min max").interpret(`1 2 MIN  3 4 MAX  -1 1 MIN`).expectStack(1, 4, -1),
		vmTest("shifts").interpret(`1 4 LSHIFT  256 4 RSHIFT  -1 1 RSHIFT  1 32 LSHIFT`).
			expectStack(16, 16, 2147483647, 0),
		vmTest("negate abs").interpret(`-5 ABS  5 NEGATE  5 ABS`).expectStack(5, -5, 5),
		vmTest("halve double").interpret(`-4 2/  3 2*`).expectStack(-2, 6),
		vmTest("logic").interpret(`12 10 AND  12 10 OR  12 10 XOR  0 INVERT`).expectStack(8, 14, 6, -1),
		vmTest("immediate plus").interpret(`5 1+  5 1-  5 CELL+  3 CELLS  7 CHAR+  7 CHARS`).
			expectStack(6, 4, 9, 12, 8, 7),
		vmTest("constants").interpret(`TRUE FALSE 0 1 BL`).expectStack(-1, 0, 0, 1, 32),
	}.run(t)
}

func TestVM_comparison(t *testing.T) {
	vmTestCases{
		vmTest("signed").interpret(`1 2 <  2 1 <  1 2 >  -1 0 <`).expectStack(-1, 0, 0, -1),
		vmTest("unsigned").interpret(`-1 0 U<  -1 0 U>  1 2 U<`).expectStack(0, -1, -1),
		vmTest("equality").interpret(`1 1 =  1 2 =  1 2 <>`).expectStack(-1, 0, -1),
		vmTest("zero").interpret(`0 0=  5 0<>  -3 0<  3 0>  0 0>`).expectStack(-1, -1, -1, -1, 0),
		vmTest("within").interpret(`5 1 10 WITHIN  10 1 10 WITHIN  0 1 10 WITHIN`).expectStack(-1, 0, 0),
	}.run(t)
}

func TestVM_doubles(t *testing.T) {
	vmTestCases{
		vmTest("double literals").interpret(`5.  -1.  1.000`).expectStack(5, 0, -1, -1, 1000, 0),
		vmTest("d plus minus").interpret(`1 0 2 0 D+  5. 7. D-`).expectStack(3, 0, -2, -1),
		vmTest("d shifts").interpret(`5. D2*  -6. D2/`).expectStack(10, 0, -3, -1),
		vmTest("dnegate dabs").interpret(`-1. DNEGATE  -9. DABS`).expectStack(1, 0, 9, 0),
		vmTest("d compare").interpret(`1. 2. D<  -1. 1. DU<  3. 3. D=`).expectStack(-1, 0, -1),
		vmTest("dmin dmax").interpret(`1. 2. DMAX  3. -4. DMIN`).expectStack(2, 0, -4, -1),
		vmTest("conversions").interpret(`3 S>D  -3 S>D  7. D>S`).expectStack(3, 0, -3, -1, 7),
		vmTest("d zero").interpret(`1 2 D0=  0 0 D0=  -1. D0<  1. D0<`).expectStack(0, -1, -1, 0),
		vmTest("carry").interpret(`-1 0 1 0 D+`).expectStack(0, 1),
	}.run(t)
}

func TestVM_stack(t *testing.T) {
	vmTestCases{
		vmTest("dup drop").interpret(`1 DUP 2 DROP`).expectStack(1, 1),
		vmTest("swap over").interpret(`1 2 SWAP OVER`).expectStack(2, 1, 2),
		vmTest("rot").interpret(`1 2 3 ROT`).expectStack(2, 3, 1),
		vmTest("roll").interpret(`1 2 3 2 ROLL  4 0 ROLL`).expectStack(2, 3, 1, 4),
		vmTest("pick").interpret(`10 20 30 1 PICK  0 PICK`).expectStack(10, 20, 30, 20, 20),
		vmTest("tuck nip").interpret(`1 2 TUCK  3 4 NIP`).expectStack(2, 1, 2, 4),
		vmTest("nip keeps third").interpret(`1 2 3 NIP`).expectStack(1, 3),
		vmTest("qdup").interpret(`0 ?DUP 1 ?DUP`).expectStack(0, 1, 1),
		vmTest("pairs").interpret(`1 2 3 4 2SWAP  2OVER`).expectStack(3, 4, 1, 2, 3, 4),
		vmTest("2dup 2drop").interpret(`1 2 2DUP 2DROP 2DUP`).expectStack(1, 2, 1, 2),
		vmTest("2rot").interpret(`1 2 3 4 5 6 2ROT`).expectStack(3, 4, 5, 6, 1, 2),
		vmTest("depth").interpret(`1 2 3 DEPTH`).expectStack(1, 2, 3, 3),
		vmTest("return stack").interpret(`: T 1 >R 2 >R R@ R> R> ; T`).expectStack(2, 2, 1),
		vmTest("2 return stack").interpret(`: T 1 2 2>R 2R@ 2R> ; T`).expectStack(1, 2, 1, 2),
		vmTest("n return stack").interpret(`: T 7 8 9 3 N>R 0 NR> ; T`).expectStack(0, 7, 8, 9, 3),
		vmTest("preloaded").withStack(4, 5).interpret(`+`).expectStack(9),
		vmTest("underflow").interpret(`DROP`).expectError(ThrowStackUnderflow),
		vmTest("overflow").interpret(`: INF BEGIN 1 AGAIN ; INF`).expectError(ThrowStackOverflow),
		vmTest("return overflow").interpret(`: INF BEGIN 1 >R AGAIN ; INF`).expectError(ThrowRStackOverflow),
	}.run(t)
}

func TestVM_control(t *testing.T) {
	vmTestCases{
		vmTest("if else").
			interpret(`: T IF 1 ELSE 2 THEN ;  0 T  5 T`).
			expectStack(2, 1),
		vmTest("until").
			interpret(`: CNT 0 BEGIN 1+ DUP 5 = UNTIL ; CNT`).
			expectStack(5),
		vmTest("while repeat").
			interpret(`: W 0 BEGIN DUP 3 < WHILE 1+ REPEAT ; W`).
			expectStack(3),
		vmTest("do loop").
			interpret(`: L 0 10 0 DO I + LOOP ; L`).
			expectStack(45),
		vmTest("plus loop up").
			interpret(`: L 0 10 0 DO I + 3 +LOOP ; L`).
			expectStack(18),
		vmTest("plus loop down").
			interpret(`: L 0 0 10 DO I + -1 +LOOP ; L`).
			expectStack(55),
		vmTest("qdo").
			interpret(`: Q 0 SWAP 0 ?DO 1+ LOOP ;  0 Q  3 Q`).
			expectStack(0, 3),
		vmTest("leave").
			interpret(`: LV 0 10 0 DO I 5 = IF LEAVE THEN 1+ LOOP ; LV`).
			expectStack(5),
		vmTest("unloop exit").
			interpret(`: UX 10 0 DO I 3 = IF I UNLOOP EXIT THEN LOOP 99 ; UX`).
			expectStack(3),
		vmTest("nested loops").
			interpret(`: NEST 0 3 0 DO 2 0 DO J 10 * I + + LOOP LOOP ; NEST`).
			expectStack(63),
		vmTest("case").
			interpret(`: C CASE 1 OF 10 ENDOF 2 OF 20 ENDOF 99 SWAP ENDCASE ;  1 C  2 C  3 C`).
			expectStack(10, 20, 99),
		vmTest("recurse").
			interpret(`: FACT DUP 1 > IF DUP 1- RECURSE * THEN ;  5 FACT`).
			expectStack(120),
		vmTest("exit").
			interpret(`: E 1 EXIT 2 ; E`).
			expectStack(1),
		vmTest("ahead").
			interpret(`: A 1 AHEAD 2 THEN 3 ; A`).
			expectStack(1, 3),
		vmTest("mismatch").
			interpret(`: BAD BEGIN THEN ;`).
			expectError(ThrowControlMismatch),
		vmTest("unterminated").
			interpret(`: BAD IF ;`).
			expectError(ThrowControlMismatch),
		vmTest("long forward branch").
			withOptions(WithDictCells(80 * 1024)).
			interpret(`: NEAR IF [ 32000 CELLS ALLOT ] THEN ;`).
			expectWord("NEAR", false),
		vmTest("forward branch out of range").
			withOptions(WithDictCells(80 * 1024)).
			interpret(`: FAR IF [ 40000 CELLS ALLOT ] THEN ;`).
			expectError(ThrowOutOfRange),
		vmTest("backward branch out of range").
			withOptions(WithDictCells(80 * 1024)).
			interpret(`: FAR BEGIN [ 40000 CELLS ALLOT ] AGAIN ;`).
			expectError(ThrowOutOfRange),
		vmTest("execute").
			interpret(`' DUP  3 SWAP EXECUTE`).
			expectStack(3, 3),
		vmTest("timeout").
			withTimeout(50 * time.Millisecond).
			interpret(`: SPIN BEGIN AGAIN ; SPIN`).
			expectError(context.DeadlineExceeded),
	}.run(t)
}

func TestVM_defining(t *testing.T) {
	vmTestCases{
		vmTest("colon").
			interpret(`: SQ DUP * ;  4 SQ`).
			expectStack(16).
			expectWord("SQ", false).
			expectWord("sq", false),
		vmTest("variable").
			interpret(`VARIABLE V  5 V !  V @  3 V +!  V @`).
			expectStack(5, 8),
		vmTest("constant").
			interpret(`10 CONSTANT TEN  TEN TEN +`).
			expectStack(20),
		vmTest("create").
			interpret(`CREATE TBL 1 , 2 , 3 ,  TBL CELL+ @  TBL 2 CELLS + @`).
			expectStack(2, 3),
		vmTest("create bytes").
			interpret(`CREATE B 65 C, 66 C, ALIGN  B C@ B CHAR+ C@`).
			expectStack(65, 66),
		vmTest("does").
			interpret(
				`: CONST CREATE , DOES> @ ;`,
				`7 CONST SEVEN  SEVEN`,
			).
			expectStack(7).
			expectSEE("SEVEN", "CREATE SEVEN", "...", "DOES>", "@", ";"),
		vmTest("does counter").
			interpret(
				`: COUNTER CREATE 0 , DOES> 1 OVER +! @ ;`,
				`COUNTER C1  C1 C1 C1`,
			).
			expectStack(1, 2, 3),
		vmTest("to body").
			interpret(`CREATE X 42 ,  ' X >BODY @`).
			expectStack(42),
		vmTest("to body not created").
			interpret(`' DUP >BODY`).
			expectError(ThrowNotCreated),
		vmTest("user").
			interpret(`USER U1 USER U2  U1 U2 <>  42 U1 !  U1 @`).
			expectStack(-1, 42),
		vmTest("user exhausted").
			interpret(`MAX-USER-VARIABLES 1+ USER-ALLOT`).
			expectError(ThrowDictOverflow),
		vmTest("noname").
			interpret(`:NONAME 6 7 * ;  EXECUTE`).
			expectStack(42),
		vmTest("immediate").
			interpret(`: X 1 ; IMMEDIATE  X`).
			expectStack(1).
			expectWord("X", true),
		vmTest("literal").
			interpret(`: LIT [ 3 4 + ] LITERAL ; LIT`).
			expectStack(7),
		vmTest("2literal").
			interpret(`: DL [ 5. ] 2LITERAL ; DL`).
			expectStack(5, 0),
		vmTest("compiled double").
			interpret(`: DL 123456789012. ; DL`).
			expectStack(-1097262572, 28),
		vmTest("postpone immediate").
			interpret(`: MYIF POSTPONE IF ; IMMEDIATE  : T MYIF 1 ELSE 2 THEN ;  0 T`).
			expectStack(2),
		vmTest("postpone normal").
			interpret(`: CDUP POSTPONE DUP ; IMMEDIATE  : T2 3 CDUP ; T2`).
			expectStack(3, 3),
		vmTest("tick").
			interpret(`: T ['] DUP ; 5 T EXECUTE`).
			expectStack(5, 5),
		vmTest("tick undefined").
			interpret(`' NOPE`).
			expectError(ThrowUndefined),
		vmTest("synonym").
			interpret(`SYNONYM PLUS +  2 3 PLUS  : SQ DUP * ;  SYNONYM SQUARE SQ  3 SQUARE`).
			expectStack(5, 9).
			expectSEE("SQUARE", " ' SQ SYNONYM SQUARE"),
		vmTest("synonym immediate").
			interpret(`SYNONYM MYTHEN THEN  : T IF 1 MYTHEN 2 ; 0 T`).
			expectStack(2).
			expectWord("MYTHEN", true),
		vmTest("redefine").
			interpret(`: DUP 1 ;  DUP`).
			expectOutput(" DUP is being redefined.\n").
			expectStack(1),
		vmTest("zero length name").
			interpret(`S" " CREATE-NAME`).
			expectError(ThrowZeroName),
		vmTest("unused shrinks").
			interpret(`UNUSED 10 CELLS ALLOT UNUSED -`).
			expectStack(40),
		vmTest("here").
			interpret(`HERE 3 ALLOT ALIGN HERE SWAP -`).
			expectStack(4),
		vmTest("dictionary overflow").
			interpret(`UNUSED ALLOT 1 ,`).
			expectError(ThrowDictOverflow),
		vmTest("engine version").
			interpret(`FORTH-ENGINE-VERSION`).
			expectStack(engineVersion),
	}.run(t)
}

func TestVM_exceptions(t *testing.T) {
	vmTestCases{
		vmTest("catch code").
			interpret(`: T 5 THROW ;  1 2 ' T CATCH`).
			expectStack(1, 2, 5),
		vmTest("catch none").
			interpret(`: OK 7 ; ' OK CATCH`).
			expectStack(7, 0),
		vmTest("zero throw").
			interpret(`0 THROW 1`).
			expectStack(1),
		vmTest("uncaught").
			interpret(`1 3 THROW`).
			expectError(ThrowCode(3)),
		vmTest("nested catch").
			interpret(`: IN 9 THROW ;  : OUT ['] IN CATCH 1+ THROW ;  ' OUT CATCH`).
			expectStack(10),
		vmTest("fault caught").
			interpret(`: T 1 0 / ;  ' T CATCH`).
			expectStack(-10),
		vmTest("bad address").
			interpret(`-4 @`).
			expectError(ThrowInvalidAddress),
		vmTest("misaligned").
			interpret(`HERE 1+ @`).
			expectError(ThrowAlignment),
		vmTest("abort").
			interpret(`ABORT`).
			expectError(ThrowAbort),
		vmTest("abort quote").
			interpret(`: AB ABORT" boom" ;  0 AB 1 AB`).
			expectError(ThrowAbortQuote),
		vmTest("abort quote caught").
			interpret(`: AB TRUE ABORT" boom" ;  : T ['] AB CATCH ;  1 T`).
			expectStack(1, -2),
		vmTest("undefined word").
			interpret(`1 2 nope`).
			expectOutput("\nnope ").
			expectError(ThrowUndefined),
		vmTest("interpret recovers").
			interpret(`: T 5 ;`).
			do(func(ctx context.Context, vm *VM) error {
				if err := vm.Interpret(ctx, "DROP"); err != ThrowStackUnderflow {
					return fmt.Errorf("expected stack underflow, got %v", err)
				}
				return vm.Interpret(ctx, "T T +")
			}).
			expectStack(10),
	}.run(t)
}

func TestVM_quit(t *testing.T) {
	vmTestCases{
		vmTest("empty").
			withInput("").
			expectOutput(" OK\n"),
		vmTest("lines").
			withInput("1 2 + .\n").
			expectOutput(" OK\n3  OK\n"),
		vmTest("no final newline").
			withInput("1 2 + .").
			expectOutput(" OK\n3  OK\n"),
		vmTest("multi line definition").
			withInput(lines(
				`: SQ`,
				`DUP * ;`,
				`4 SQ .`,
			)).
			expectOutput(" OK\n OK\n16  OK\n"),
		vmTest("error recovery").
			withInput(lines(
				`1 2 foo`,
				`DEPTH .`,
			)).
			expectOutput(lines(
				` OK`,
				``,
				`foo 7 Error: -13 undefined word`,
				` OK`,
				`0  OK`,
			)),
		vmTest("abort message").
			withInput(lines(
				`: AB ABORT" boom" ;`,
				`1 AB`,
			)).
			expectOutput(lines(
				` OK`,
				` OK`,
				`4 Error: -2 boom`,
				` OK`,
			)),
		vmTest("plain abort").
			withInput("ABORT\n").
			expectOutput(" OK\n OK\n"),
		vmTest("bye").
			withInput("1 . BYE\n2 .\n").
			expectOutput(" OK\n1 "),
		vmTest("evaluate").
			withInput(`S" 6 7 *" EVALUATE .` + "\n").
			expectOutput(" OK\n42  OK\n"),
		vmTest("evaluate restores source").
			withInput(`S" 1" EVALUATE 2` + "\n" + `.S` + "\n").
			expectOutput(" OK\n OK\n[2] 1 2 \n OK\n"),
		vmTest("refill and source").
			withInput(lines(
				`REFILL DROP SOURCE TYPE  SOURCE NIP >IN !`,
				`next line`,
			)).
			expectOutput(" OK\nnext line OK\n"),
		vmTest("comments").
			withInput(lines(
				`1 \ 2 3`,
				`( 4 ) 5 .S`,
			)).
			expectOutput(" OK\n OK\n[2] 1 5 \n OK\n"),
		vmTest("conditional compilation").
			withInput(lines(
				`0 [IF] 1 [IF] 2 [THEN] 3`,
				`[ELSE] 4 [THEN] .S`,
				`1 [IF] 10 [ELSE] 20 [THEN] .S`,
			)).
			expectOutput(" OK\n[1] 4 \n OK\n[2] 4 10 \n OK\n"),
	}.run(t)
}

func TestVM_parsing(t *testing.T) {
	vmTestCases{
		vmTest("char").interpret(`CHAR A  CHAR bc`).expectStack(65, 98),
		vmTest("bracket char").interpret(`: C [CHAR] B ; C`).expectStack(66),
		vmTest("string literal").interpret(`S" abc" SWAP DROP`).expectStack(3),
		vmTest("compiled string").
			interpret(`: S S" xyz" ; S TYPE`).
			expectOutput("xyz"),
		vmTest("word").
			interpret(`BL WORD hello COUNT TYPE`).
			expectOutput("hello"),
		vmTest("parse").
			interpret(`CHAR , PARSE a b, TYPE`).
			expectOutput("a b"),
		vmTest("parse word").
			interpret(`PARSE-WORD   spaced  NIP`).
			expectStack(6),
		vmTest("parse empty").
			interpret(`: PW PARSE-WORD NIP ; PW`).
			expectStack(0),
		vmTest("in").
			interpret(`>IN @  SOURCE NIP`).
			expectStack(4, 17),
		vmTest("number bases").
			interpret(`0x10 -0x10  HEX FF DECIMAL  2 BASE ! 101 DECIMAL`).
			expectStack(16, -16, 255, 5),
		vmTest("to number").
			interpret(`0 0 S" 123x" >NUMBER NIP`).
			expectStack(123, 0, 1),
		vmTest("defined").
			interpret(`[DEFINED] DUP [DEFINED] NOPE [UNDEFINED] NOPE`).
			expectStack(-1, 0, -1),
		vmTest("find").
			interpret(`BL WORD DUP FIND NIP  BL WORD NOPE FIND NIP  BL WORD IF FIND NIP`).
			expectStack(-1, 0, 1),
		vmTest("environment").
			interpret(`S" MAX-N" ENVIRONMENT?  S" NOPE" ENVIRONMENT?  S" ADDRESS-UNIT-BITS" ENVIRONMENT?`).
			expectStack(2147483647, -1, 0, 8, -1),
		vmTest("stack cells").
			withOptions(WithStackCells(64)).
			interpret(`S" STACK-CELLS" ENVIRONMENT? DROP`).
			expectStack(64),
	}.run(t)
}

func TestVM_fixtures(t *testing.T) {
	withSquares := []func(vmTestCase) vmTestCase{
		withVMFile("sq.fs", ": SQ DUP * ;\n: CUBE DUP SQ * ;\n"),
		expectVMWord("SQ", false),
	}
	vmTestCases{
		vmTest("square").
			apply(withSquares...).
			interpret(`S" sq.fs" INCLUDED 7 SQ`).
			expectStack(49),
		vmTest("cube").
			apply(withSquares...).
			apply(withVMStack(3)).
			interpret(`S" sq.fs" INCLUDED CUBE`).
			apply(expectVMStack(27)),
		vmTest("no squares").
			apply(withVMTimeout(time.Second), expectVMNoWord("SQ")).
			interpret(`1`).
			apply(expectVMUStack(1)),
	}.run(t)
}

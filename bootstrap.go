package goforth

// engineVersion is the value of FORTH-ENGINE-VERSION, 0.0.4.
const engineVersion = 0x00000004

// rootOps live in the ROOT wordlist, which is searched after every other.
var rootOps = map[Opcode]bool{
	opOnly:     true,
	opAlso:     true,
	opGetOrder: true,
	opSetOrder: true,
	opWords:    true,
}

// publicOp reports whether an opcode gets a dictionary entry under its own
// name; lowercase names are inner interpreter tokens, only laid down by
// compiling words.
func publicOp(op Opcode) bool {
	name := opNames[op]
	if name == "" || op == opNOP || rootOps[op] {
		return false
	}
	return name[0] < 'a' || name[0] > 'z'
}

// buildImage lays down the bootstrap dictionary: the ROOT and FORTH
// wordlists, every primitive under its name, and the high level words that
// make up the compiler and outer interpreter.
func (vm *VM) buildImage() error {
	b := newImageBuilder(vm)
	vm.mem.cells[0] = uint32(PrimToken(opBye, 0))

	root := b.wordlist()
	b.wid = root
	forth := b.wordlist()
	vm.image.rootWID = root
	vm.image.forthWID = forth

	//// ROOT

	b.constant("ROOT-WORDLIST", root, 0)
	for _, op := range []Opcode{opOnly, opAlso, opGetOrder, opSetOrder} {
		b.prim(opNames[op], op, 0, 0)
	}
	b.colon("PREVIOUS", 0, `GET-ORDER DUP 2 < IF -50 THROW THEN NIP 1 - SET-ORDER`)
	b.constant("FORTH-WORDLIST", forth, 0)
	b.colon("FORTH", 0, `FORTH-WORDLIST CONTEXT !`)
	b.colon("ORDER", 0, `GET-ORDER BEGIN DUP WHILE
		SWAP DUP FORTH-WORDLIST = IF DROP S" FORTH " TYPE
		ELSE DUP ROOT-WORDLIST = IF DROP S" Root " TYPE
		ELSE '#' EMIT H. THEN THEN
		1 - REPEAT DROP CR`)
	b.prim("WORDS", opWords, 0, 0)

	//// FORTH

	b.wid = forth
	b.constant("FORTH-ENGINE-VERSION", engineVersion, 0)
	vm.image.widLink = b.variable("WID-LINK", forth)
	vm.image.userMax = b.constant("MAX-USER-VARIABLES", vm.layout.userCells, 0)
	vm.image.userUsed = b.constant("USER-VARIABLES", 0, 0)

	b.prim("0", opUSLit, 0, 0)
	b.prim("1", opUSLit, 1, 0)
	b.prim("FALSE", opUSLit, 0, 0)
	b.prim("TRUE", opSSLit, -1, 0)
	b.prim("CELL+", opImmPlus, CellSize, 0)
	b.prim("1+", opImmPlus, 1, 0)
	b.prim("1-", opImmPlus, -1, 0)
	b.prim("CHAR+", opImmPlus, 1, 0)
	b.prim("CHARS", opNOP, 0, 0)
	b.prim("NOOP", opNOP, 0, 0)
	b.prim("[THEN]", opNOP, 0, flagImmediate)
	b.prim("D>S", opDrop, 0, 0)
	b.prim("CS-PICK", opPick, 0, 0)
	b.prim("CS-ROLL", opRoll, 0, 0)
	for op := Opcode(0); op < opMax; op++ {
		if !publicOp(op) {
			continue
		}
		var flags uint32
		if op == opLiteral {
			flags = flagImmediate
		}
		b.prim(opNames[op], op, 0, flags)
	}

	// wordlists
	b.colon("DEFINITIONS", 0, `CONTEXT @ CURRENT !`)
	b.colon("GET-CURRENT", 0, `CURRENT @`)
	b.colon("SET-CURRENT", 0, `CURRENT !`)
	b.colon("WORDLIST", 0, `ALIGN (HERE) 0 , CURRENT @ , WID-LINK @ , DUP WID-LINK !`)

	// odds and ends
	b.colon("ERASE", 0, `0 FILL`)
	b.colon("SOURCE-ID", 0, `(SOURCE-ID) @`)
	b.colon("TRACE-ON", 0, `TRUE (TRACE) !`)
	b.colon("TRACE-OFF", 0, `0 (TRACE) !`)
	b.colon("COUNT", 0, `DUP 1+ SWAP C@`)
	b.colon("FIND", 0, `DUP >R COUNT FIND-WORD DUP IF R> DROP ELSE R> SWAP THEN`)
	b.colon("IMMEDIATE", 0, `LATEST @ IX>ADDRESS CELL+ DUP @ immflag OR SWAP !`)
	b.colon("2LITERAL", flagImmediate, `SWAP LITERAL LITERAL`)
	b.colon("WITHIN", 0, `OVER - >R - R> U<`)
	b.colon("D0=", 0, `OR 0=`)
	b.colon("D0<", 0, `NIP 0<`)
	b.colon("S>D", 0, `DUP 0<`)
	b.colon("DEPTH", 0, `SP@ SP0 SWAP - 4 /`)
	b.colon("HEX", 0, `16 BASE !`)
	b.colon("DECIMAL", 0, `10 BASE !`)
	b.constant("BL", ' ', 0)
	b.colon("SPACE", 0, `BL EMIT`)
	b.colon("SPACES", 0, `BEGIN DUP 0> WHILE SPACE 1- REPEAT DROP`)
	b.colon("?", 0, `@ .`)
	b.colon("#S", 0, `BEGIN # 2DUP D0= UNTIL`)
	b.colon("SIGN", 0, `0< IF '-' HOLD THEN`)
	b.colon("D.", 0, `DUP >R DABS <# BL HOLD #S R> SIGN #> TYPE`)

	// compiler state and control flow
	b.colon("]", 0, `TRUE STATE !`)
	b.colon("[", flagImmediate, `0 STATE !`)
	b.colon(";", flagImmediate, `colon-sys <> -22 AND THROW
		['] unnest COMPILE,
		(DEFINING) @ ?DUP IF
			DUP 1+ IX>ADDRESS @ lenmask AND IF LATEST ! ELSE DROP THEN
		THEN
		0 STATE !`)
	b.colon("IF", flagImmediate, `(HERE) orig OR ['] 0branch COMPILE,`)
	b.colon("AHEAD", flagImmediate, `(HERE) orig OR ['] branch COMPILE,`)
	b.colon("THEN", flagImmediate, `DUP ~sysidmask AND orig <> -22 AND THROW (HERE) resolve-branch`)
	b.colon("ELSE", flagImmediate, `[COMPILE] AHEAD SWAP [COMPILE] THEN`)
	b.colon("BEGIN", flagImmediate, `(HERE) dest OR`)
	b.colon("WHILE", flagImmediate, `[COMPILE] IF SWAP`)
	b.colon("UNTIL", flagImmediate, `DUP ~sysidmask AND dest <> -22 AND THROW
		(HERE) ['] 0branch COMPILE, SWAP resolve-branch`)
	b.colon("AGAIN", flagImmediate, `DUP ~sysidmask AND dest <> -22 AND THROW
		(HERE) ['] branch COMPILE, SWAP resolve-branch`)
	b.colon("REPEAT", flagImmediate, `[COMPILE] AGAIN [COMPILE] THEN`)
	b.colon("DO", flagImmediate, `(HERE) do-sys OR ['] (DO) COMPILE,`)
	b.colon("?DO", flagImmediate, `(HERE) do-sys OR ['] (?DO) COMPILE,`)
	b.colon("LOOP", flagImmediate, `DUP ~sysidmask AND do-sys <> -22 AND THROW
		(HERE) ['] (LOOP) COMPILE, OVER 1+ resolve-branch (HERE) resolve-branch`)
	b.colon("+LOOP", flagImmediate, `DUP ~sysidmask AND do-sys <> -22 AND THROW
		(HERE) ['] (+LOOP) COMPILE, OVER 1+ resolve-branch (HERE) resolve-branch`)
	b.constant("CASE", 0, flagImmediate)
	b.colon("OF", flagImmediate, `1+ >R ['] OVER COMPILE, ['] = COMPILE, [COMPILE] IF ['] DROP COMPILE, R>`)
	b.colon("ENDOF", flagImmediate, `>R [COMPILE] ELSE R>`)
	b.colon("ENDCASE", flagImmediate, `['] DROP COMPILE, BEGIN ?DUP WHILE SWAP [COMPILE] THEN 1- REPEAT`)

	// parsing
	b.colon(`"`, 0, `'"' PARSE`)
	b.colon("CHAR", 0, `PARSE-WORD IF C@ ELSE DROP 0 THEN`)
	b.colon("(')", 0, `PARSE-WORD DUP 0= -16 AND THROW FIND-WORD ?DUP 0= -13 AND THROW`)
	b.colon("'", 0, `(') DROP`)
	b.colon("POSTPONE", flagImmediate, `(') -1 = IF
		['] xtlit COMPILE, COMPILE, ['] COMPILE, COMPILE,
		ELSE COMPILE, THEN`)
	b.colon("[CHAR]", flagImmediate, `CHAR LITERAL`)
	b.colon("[']", flagImmediate, `' ['] xtlit COMPILE, COMPILE,`)
	b.colon("SLITERAL", flagImmediate, `DUP parammax U> -18 AND THROW
		DUP ['] strlit OR COMPILE, HERE OVER ALLOT SWAP MOVE ALIGN`)
	b.colon(`S"`, flagImmediate, `" STATE @ IF [COMPILE] SLITERAL THEN`)
	b.colon(`."`, flagImmediate, `" STATE @ IF [COMPILE] SLITERAL ['] TYPE COMPILE, ELSE TYPE THEN`)
	b.colon(".(", flagImmediate, `')' PARSE TYPE`)
	b.colon("(", flagImmediate, `BEGIN ')' PARSE + SOURCE + U< 0= WHILE
		SOURCE-ID 0> IF REFILL 0= IF EXIT THEN ELSE EXIT THEN
		REPEAT`)
	b.colon(`\`, flagImmediate, `SOURCE >IN ! DROP`)
	b.colon("[ELSE]", flagImmediate, `1 BEGIN
		BEGIN PARSE-WORD DUP WHILE
			2DUP S" [IF]" COMPARE 0= IF 2DROP 1+
			ELSE 2DUP S" [ELSE]" COMPARE 0= IF 2DROP 1- DUP IF 1+ THEN
			ELSE S" [THEN]" COMPARE 0= IF 1- THEN
			THEN THEN
			?DUP 0= IF EXIT THEN
		REPEAT 2DROP
		REFILL 0= UNTIL DROP`)
	b.colon("[IF]", flagImmediate, `0= IF [COMPILE] [ELSE] THEN`)
	b.colon("[DEFINED]", flagImmediate, `PARSE-WORD DUP IF FIND-WORD DUP IF NIP THEN 0<> ELSE NIP THEN`)
	b.colon("[UNDEFINED]", flagImmediate, `[COMPILE] [DEFINED] 0=`)
	b.colon(`ABORT"`, flagImmediate, `[COMPILE] IF [COMPILE] S"
		['] (abort-msg) COMPILE, ['] 2! COMPILE,
		-2 LITERAL ['] THROW COMPILE,
		[COMPILE] THEN`)

	// defining words
	b.colon("CREATE-NAME", 0, `DUP 0= -16 AND THROW DUP maxname U> -19 AND THROW
		2DUP FIND-WORD IF DROP SPACE 2DUP TYPE S"  is being redefined." TYPE CR THEN
		ALIGN HERE OVER ALLOT SWAP DUP >R MOVE ALIGN
		(HERE) LATEST @ , R> ,`)
	b.colon("CREATE-NAME:", 0, `PARSE-WORD CREATE-NAME`)
	b.colon(":", 0, `CREATE-NAME: (DEFINING) ! colon-sys TRUE STATE ! ['] nest COMPILE,`)
	b.colon(":NONAME", 0, `ALIGN (HERE) (DEFINING) ! 0 , 0 ,
		(HERE) colon-sys TRUE STATE ! ['] nest COMPILE,`)
	b.colon("(does>)", 0, `LATEST @ 3 + IX>ADDRESS !`)
	b.colon("DOES>", flagImmediate, `['] xtlit COMPILE, ['] NOOP HERE >R COMPILE,
		['] (does>) COMPILE,
		(DEFINING) @ >R 0 (DEFINING) ! [COMPILE] ;
		:NONAME R> (DEFINING) ! SWAP R> !`)
	b.colon("RECURSE", flagImmediate, `(DEFINING) @ 2 + COMPILE,`)
	b.colon("CREATE", 0, `CREATE-NAME: ['] docreate COMPILE, ['] NOOP COMPILE, LATEST !`)
	b.colon("USER", 0, `CREATE-NAME: 1 USER-ALLOT ['] douser OR COMPILE, LATEST !`)
	b.colon("VARIABLE", 0, `CREATE-NAME: ['] dovar COMPILE, 0 , LATEST !`)
	b.colon("CONSTANT", 0, `CREATE-NAME: ['] doconst COMPILE, LATEST ! ,`)
	b.colon("SYNONYM", 0, `CREATE-NAME: >R (') SWAP COMPILE,
		1 = IF R@ IX>ADDRESS CELL+ DUP @ immflag OR SWAP ! THEN
		R> LATEST !`)
	b.colon("SEE", 0, `' (SEE)`)

	// outer interpreter
	vm.image.catch = b.colon("CATCH", 0, `SP@ >R HANDLER @ >R RP@ HANDLER !
		EXECUTE
		R> HANDLER ! R> DROP 0`)
	b.colon("ABORT", 0, `-1 THROW`)
	vm.image.interpret = b.colon("INTERPRET", 0, `BEGIN PARSE-WORD DUP WHILE
		2>R 2R@ FIND-WORD DUP IF
			STATE @ XOR IF EXECUTE ELSE COMPILE, THEN
		ELSE
			DROP 2R@ ['] PROCESS-NUMBER CATCH IF CR 2R@ TYPE SPACE -13 THROW THEN
			STATE @ IF IF SWAP LITERAL THEN LITERAL ELSE DROP THEN
		THEN
		2R> 2DROP
		REPEAT 2DROP`)
	vm.image.evaluate = b.colon("EVALUATE", 0, `SOURCE-ID >R SOURCE 2>R >IN @ >R SOURCE!
		BLK @ >R 0 BLK ! 0 >IN ! -1 (SOURCE-ID) !
		['] INTERPRET CATCH
		R> BLK ! R> >IN ! 2R> SOURCE! R> (SOURCE-ID) !
		THROW`)
	vm.image.quit = b.colon("QUIT", 0, `RP0 RP! 0 HANDLER ! 0 (SOURCE-ID) ! 0 BLK ! [COMPILE] [
		BEGIN
			STATE @ 0= IF S"  OK" TYPE CR THEN
			REFILL
		WHILE
			['] INTERPRET CATCH ?DUP IF .ERROR SP0 SP! QUIT THEN
		REPEAT BYE`)

	// files
	b.constant("R/O", uint32(FileRead), 0)
	b.constant("W/O", uint32(FileWrite), 0)
	b.constant("R/W", uint32(FileRead|FileWrite), 0)
	b.colon("BIN", 0, `8 OR`)
	b.colon("INCLUDE-FILE", 0, `DUP >R SAVE-INPUT N>R SOURCE 2>R
		(SOURCE-ID) @ >R BLK @ >R 0 BLK ! LINE-NUMBER @ >R 0 LINE-NUMBER !
		(SOURCE-ID) !
		BEGIN
			REFILL IF
				['] INTERPRET CATCH DUP IF DUP .ERROR THEN ?DUP
			ELSE 0 TRUE THEN
		UNTIL
		R> LINE-NUMBER ! R> BLK ! R> (SOURCE-ID) ! 2R> SOURCE!
		NR> RESTORE-INPUT -37 AND
		R> CLOSE-FILE
		ROT THROW THROW THROW`)
	vm.image.included = b.colon("INCLUDED", 0, `R/O OPEN-FILE THROW INCLUDE-FILE`)

	if err := b.finish(); err != nil {
		return err
	}
	vm.setSysvar(sysCurrent, forth)
	vm.setSysvar(sysBase, 10)
	vm.setCell(vm.orderSlot(1), forth)
	vm.setSysvar(sysOrderCount, 1)
	vm.logf("image", "built %v cells, %v free", b.at, b.limit-b.at)
	return nil
}

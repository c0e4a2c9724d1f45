package goforth

import "strconv"

// Opcode identifies a primitive; it occupies bits 16..30 of a Token.
type Opcode uint16

const (
	opNOP Opcode = iota

	// terminal input
	opAccept
	opKey
	opKeyQ
	opEKey
	opEKeyQ
	opEKeyToChar

	// dictionary space
	opAlign
	opAligned
	opAllot
	opHereIx
	opTrace
	opHere
	opPad
	opCompileComma
	opComma
	opCComma
	opImmPlus
	opCells
	opUnused
	opLatest
	opDefining
	opLiteral
	opResolveBranch
	opIxToAddress
	opToBody
	opUserAllot

	// data stack
	opDrop
	opDup
	opQDup
	opNip
	opTuck
	opRot
	opRoll
	opPick
	opOver
	opSwap
	op2Rot
	op2Dup
	op2Drop
	op2Over
	op2Swap

	// memory
	opCFetch
	opFetch
	opStore
	op2Fetch
	op2Store
	opCStore
	opPlusStore
	opCMove
	opCMoveUp
	opMove
	opFill
	opCompare

	// terminal output and host services
	opAtXY
	opPage
	opMS
	opTimeDate
	opCR
	opEmit
	opType
	opDump
	opExecute

	// search order
	opSearchWordlist
	opFindWord
	opWords
	opOnly
	opAlso
	opGetOrder
	opSetOrder
	opCurrent
	opContext

	// numeric output
	opHash
	opLessHash
	opHashGreater
	opHold
	opHDot
	opUDot
	opDotName
	opDot
	opDotR
	opUDotR
	opDotS

	// parsing and input sources
	opParse
	opParseWord
	opWord
	opProcessNumber
	opToNumber
	opBlk
	opTIB
	opNumTIB
	opRefill
	opQuery
	opSourceIDAddr
	opSource
	opSourceStore
	opLineNumber
	opToIn
	opSaveInput
	opRestoreInput
	opBase
	opState

	// arithmetic
	opPlus
	opMinus
	opSlash
	opStar
	opMod
	opSlashMod
	opStarSlash
	opStarSlashMod
	opUMStar
	opMStar
	opMPlus
	opUMSlashMod
	opNegate
	opAbs
	opMinimum
	opMaximum
	opLShift
	opRShift
	op2Star
	op2Slash
	opD2Star
	opD2Slash
	opDNegate
	opDAbs
	opDMin
	opDMax
	opDPlus
	opDMinus
	opDLess
	opDULess
	opDEqual
	opAnd
	opOr
	opXor
	opInvert

	// comparison
	opEqual
	opNotEqual
	opLess
	opGreater
	opULess
	opUGreater
	opZeroEqual
	opZeroNotEqual
	opZeroLess
	opZeroGreater

	// return stack
	opToR
	opRFrom
	opRFetch
	op2ToR
	op2RFrom
	op2RFetch
	opNToR
	opNRFrom
	opSP0
	opSPFetch
	opSPStore
	opRP0
	opRPFetch
	opRPStore

	// exceptions and system
	opThrow
	opHandler
	opAbortMsg
	opDotError
	opBye
	opEnvironmentQ
	opSee

	// loops
	opDo
	opQDo
	opUnloop
	opLeave
	opI
	opJ
	opLoop
	opPlusLoop

	// files
	opCreateFile
	opOpenFile
	opCloseFile
	opFlushFile
	opDeleteFile
	opRepositionFile
	opFilePosition
	opFileSize
	opReadFile
	opReadLine
	opWriteFile
	opWriteLine

	// heap
	opAllocate
	opResize
	opFree

	// inner interpreter
	opBranch
	opZBranch
	opXTLit
	opLit
	opUSLit
	opSSLit
	opStrLit
	opNest
	opUnnest
	opExit
	opDoVar
	opDoConst
	opDoCreate
	opDoUser
	opDoExtern

	opMax
)

var opNames = [opMax]string{
	opNOP:        "NOOP",
	opAccept:     "ACCEPT",
	opKey:        "KEY",
	opKeyQ:       "KEY?",
	opEKey:       "EKEY",
	opEKeyQ:      "EKEY?",
	opEKeyToChar: "EKEY>CHAR",

	opAlign:         "ALIGN",
	opAligned:       "ALIGNED",
	opAllot:         "ALLOT",
	opHereIx:        "(HERE)",
	opTrace:         "(TRACE)",
	opHere:          "HERE",
	opPad:           "PAD",
	opCompileComma:  "COMPILE,",
	opComma:         ",",
	opCComma:        "C,",
	opImmPlus:       "imm+",
	opCells:         "CELLS",
	opUnused:        "UNUSED",
	opLatest:        "LATEST",
	opDefining:      "(DEFINING)",
	opLiteral:       "LITERAL",
	opResolveBranch: "resolve-branch",
	opIxToAddress:   "IX>ADDRESS",
	opToBody:        ">BODY",
	opUserAllot:     "USER-ALLOT",

	opDrop:  "DROP",
	opDup:   "DUP",
	opQDup:  "?DUP",
	opNip:   "NIP",
	opTuck:  "TUCK",
	opRot:   "ROT",
	opRoll:  "ROLL",
	opPick:  "PICK",
	opOver:  "OVER",
	opSwap:  "SWAP",
	op2Rot:  "2ROT",
	op2Dup:  "2DUP",
	op2Drop: "2DROP",
	op2Over: "2OVER",
	op2Swap: "2SWAP",

	opCFetch:    "C@",
	opFetch:     "@",
	opStore:     "!",
	op2Fetch:    "2@",
	op2Store:    "2!",
	opCStore:    "C!",
	opPlusStore: "+!",
	opCMove:     "CMOVE",
	opCMoveUp:   "CMOVE>",
	opMove:      "MOVE",
	opFill:      "FILL",
	opCompare:   "COMPARE",

	opAtXY:     "AT-XY",
	opPage:     "PAGE",
	opMS:       "MS",
	opTimeDate: "TIME&DATE",
	opCR:       "CR",
	opEmit:     "EMIT",
	opType:     "TYPE",
	opDump:     "DUMP",
	opExecute:  "EXECUTE",

	opSearchWordlist: "SEARCH-WORDLIST",
	opFindWord:       "FIND-WORD",
	opWords:          "WORDS",
	opOnly:           "ONLY",
	opAlso:           "ALSO",
	opGetOrder:       "GET-ORDER",
	opSetOrder:       "SET-ORDER",
	opCurrent:        "CURRENT",
	opContext:        "CONTEXT",

	opHash:        "#",
	opLessHash:    "<#",
	opHashGreater: "#>",
	opHold:        "HOLD",
	opHDot:        "H.",
	opUDot:        "U.",
	opDotName:     ".NAME",
	opDot:         ".",
	opDotR:        ".R",
	opUDotR:       "U.R",
	opDotS:        ".S",

	opParse:         "PARSE",
	opParseWord:     "PARSE-WORD",
	opWord:          "WORD",
	opProcessNumber: "PROCESS-NUMBER",
	opToNumber:      ">NUMBER",
	opBlk:           "BLK",
	opTIB:           "TIB",
	opNumTIB:        "#TIB",
	opRefill:        "REFILL",
	opQuery:         "QUERY",
	opSourceIDAddr:  "(SOURCE-ID)",
	opSource:        "SOURCE",
	opSourceStore:   "SOURCE!",
	opLineNumber:    "LINE-NUMBER",
	opToIn:          ">IN",
	opSaveInput:     "SAVE-INPUT",
	opRestoreInput:  "RESTORE-INPUT",
	opBase:          "BASE",
	opState:         "STATE",

	opPlus:         "+",
	opMinus:        "-",
	opSlash:        "/",
	opStar:         "*",
	opMod:          "MOD",
	opSlashMod:     "/MOD",
	opStarSlash:    "*/",
	opStarSlashMod: "*/MOD",
	opUMStar:       "UM*",
	opMStar:        "M*",
	opMPlus:        "M+",
	opUMSlashMod:   "UM/MOD",
	opNegate:       "NEGATE",
	opAbs:          "ABS",
	opMinimum:      "MIN",
	opMaximum:      "MAX",
	opLShift:       "LSHIFT",
	opRShift:       "RSHIFT",
	op2Star:        "2*",
	op2Slash:       "2/",
	opD2Star:       "D2*",
	opD2Slash:      "D2/",
	opDNegate:      "DNEGATE",
	opDAbs:         "DABS",
	opDMin:         "DMIN",
	opDMax:         "DMAX",
	opDPlus:        "D+",
	opDMinus:       "D-",
	opDLess:        "D<",
	opDULess:       "DU<",
	opDEqual:       "D=",
	opAnd:          "AND",
	opOr:           "OR",
	opXor:          "XOR",
	opInvert:       "INVERT",

	opEqual:        "=",
	opNotEqual:     "<>",
	opLess:         "<",
	opGreater:      ">",
	opULess:        "U<",
	opUGreater:     "U>",
	opZeroEqual:    "0=",
	opZeroNotEqual: "0<>",
	opZeroLess:     "0<",
	opZeroGreater:  "0>",

	opToR:      ">R",
	opRFrom:    "R>",
	opRFetch:   "R@",
	op2ToR:     "2>R",
	op2RFrom:   "2R>",
	op2RFetch:  "2R@",
	opNToR:     "N>R",
	opNRFrom:   "NR>",
	opSP0:      "SP0",
	opSPFetch:  "SP@",
	opSPStore:  "SP!",
	opRP0:      "RP0",
	opRPFetch:  "RP@",
	opRPStore:  "RP!",
	opThrow:    "THROW",
	opHandler:  "HANDLER",
	opAbortMsg: "(abort-msg)",
	opDotError: ".ERROR",
	opBye:      "BYE",

	opEnvironmentQ: "ENVIRONMENT?",
	opSee:          "(SEE)",

	opDo:       "(DO)",
	opQDo:      "(?DO)",
	opUnloop:   "UNLOOP",
	opLeave:    "LEAVE",
	opI:        "I",
	opJ:        "J",
	opLoop:     "(LOOP)",
	opPlusLoop: "(+LOOP)",

	opCreateFile:     "CREATE-FILE",
	opOpenFile:       "OPEN-FILE",
	opCloseFile:      "CLOSE-FILE",
	opFlushFile:      "FLUSH-FILE",
	opDeleteFile:     "DELETE-FILE",
	opRepositionFile: "REPOSITION-FILE",
	opFilePosition:   "FILE-POSITION",
	opFileSize:       "FILE-SIZE",
	opReadFile:       "READ-FILE",
	opReadLine:       "READ-LINE",
	opWriteFile:      "WRITE-FILE",
	opWriteLine:      "WRITE-LINE",

	opAllocate: "ALLOCATE",
	opResize:   "RESIZE",
	opFree:     "FREE",

	opBranch:   "branch",
	opZBranch:  "0branch",
	opXTLit:    "xtlit",
	opLit:      "lit",
	opUSLit:    "uslit",
	opSSLit:    "sslit",
	opStrLit:   "strlit",
	opNest:     "nest",
	opUnnest:   "unnest",
	opExit:     "EXIT",
	opDoVar:    "dovar",
	opDoConst:  "doconst",
	opDoCreate: "docreate",
	opDoUser:   "douser",
	opDoExtern: "doextern",
}

func (op Opcode) String() string {
	if op < opMax {
		if name := opNames[op]; name != "" {
			return name
		}
	}
	return "op" + strconv.Itoa(int(op))
}

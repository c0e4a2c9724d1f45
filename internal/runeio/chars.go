package runeio

import (
	"fmt"
	"strconv"
	"strings"
)

// c0Names are the ASCII mnemonics for control codes 0x00 through 0x1f.
var c0Names = [...]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ParseChar parses a single byte character literal. Accepted forms are a
// quoted character with Go escapes like 'x' or '\n', a bracketed mnemonic
// like <ESC> or <SP>, and a caret form like ^[ or ^?.
func ParseChar(tok string) (byte, error) {
	n := len(tok)
	switch {
	case n >= 3 && tok[0] == '\'' && tok[n-1] == '\'':
		r, _, tail, err := strconv.UnquoteChar(tok[1:n-1], '\'')
		if err == nil && tail == "" && r <= 0xff {
			return byte(r), nil
		}

	case n == 2 && tok[0] == '^':
		if c := tok[1]; c == '?' {
			return 0x7f, nil
		} else if c >= '@' && c <= '_' {
			return c ^ 0x40, nil
		}

	case n > 2 && tok[0] == '<' && tok[n-1] == '>':
		name := strings.ToUpper(tok[1 : n-1])
		switch name {
		case "SP":
			return ' ', nil
		case "DEL":
			return 0x7f, nil
		}
		for i, cn := range c0Names {
			if cn == name {
				return byte(i), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid character literal %q", tok)
}

package condition

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokString
	tokOperator
	tokLParen
	tokRParen
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokWord:
		return "word"
	case tokString:
		return "quoted string"
	case tokOperator:
		return "operator"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "end of condition"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError reports where a condition stopped making sense.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

func isOperatorRune(r rune) bool {
	return r == '=' || r == '!' || r == '<' || r == '>'
}

func isWordRune(r rune) bool {
	return !unicode.IsSpace(r) && !isOperatorRune(r) && r != '(' && r != ')' && r != '"' && r != '\''
}

// lex appends the tokens of src to buf, reusing its storage.
func lex(buf []token, src string) ([]token, error) {
	buf = buf[:0]
	runes := []rune(src)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			buf = append(buf, token{tokLParen, "(", i})
			i++
		case r == ')':
			buf = append(buf, token{tokRParen, ")", i})
			i++
		case r == '"' || r == '\'':
			start := i
			i++
			var sb strings.Builder
			for i < len(runes) && runes[i] != r {
				sb.WriteRune(runes[i])
				i++
			}
			if i == len(runes) {
				return buf, &SyntaxError{start, "unterminated quoted value"}
			}
			i++
			buf = append(buf, token{tokString, sb.String(), start})
		case isOperatorRune(r):
			start := i
			op := string(r)
			if i+1 < len(runes) && runes[i+1] == '=' {
				op += "="
				i++
			}
			i++
			if _, ok := operators[op]; !ok {
				return buf, &SyntaxError{start, fmt.Sprintf("unknown operator %q", op)}
			}
			buf = append(buf, token{tokOperator, op, start})
		default:
			start := i
			for i < len(runes) && isWordRune(runes[i]) {
				i++
			}
			buf = append(buf, token{tokWord, string(runes[start:i]), start})
		}
	}
	return append(buf, token{tokEOF, "", len(runes)}), nil
}

// Package condition parses the display conditions attached to survey items.
//
// A condition compares earlier items with literal values and combines the
// comparisons with "and"/"or" and parentheses:
//
//	(q1 == 1) and (q2 != SKIPPED or q3 >= 10)
//
// Parsing only extracts which items are referenced and with which
// (operator, value) pairs. Legality of the values is up to the caller.
package condition

import (
	"fmt"
	"strings"
	"sync"
)

type Operator string

const (
	Equal        Operator = "=="
	NotEqual     Operator = "!="
	Less         Operator = "<"
	Greater      Operator = ">"
	LessEqual    Operator = "<="
	GreaterEqual Operator = ">="
)

var operators = map[string]Operator{
	"==": Equal,
	"!=": NotEqual,
	"<":  Less,
	">":  Greater,
	"<=": LessEqual,
	">=": GreaterEqual,
}

// IsEquality reports whether op only tests (in)equality.
func (op Operator) IsEquality() bool {
	return op == Equal || op == NotEqual
}

// Pair is one comparison against a referenced item.
type Pair struct {
	Op    Operator
	Value string
}

// Result maps each referenced item id to its comparisons. IDs keeps first
// appearance order.
type Result struct {
	ids   []string
	pairs map[string][]Pair
}

func (r Result) IDs() []string {
	return append([]string(nil), r.ids...)
}

func (r Result) Pairs(id string) []Pair {
	return append([]Pair(nil), r.pairs[id]...)
}

func (r *Result) add(id string, p Pair) {
	if r.pairs == nil {
		r.pairs = map[string][]Pair{}
	}
	if _, ok := r.pairs[id]; !ok {
		r.ids = append(r.ids, id)
	}
	r.pairs[id] = append(r.pairs[id], p)
}

// Parser holds a token buffer reused across calls. A Parser must not be
// used by two goroutines at once.
type Parser struct {
	toks []token
	pos  int
}

func New() *Parser {
	return &Parser{toks: make([]token, 0, 32)}
}

func (p *Parser) Parse(src string) (Result, error) {
	var err error
	p.toks, err = lex(p.toks, src)
	if err != nil {
		return Result{}, err
	}
	p.pos = 0

	var res Result
	if err = p.expr(&res); err != nil {
		return Result{}, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return Result{}, &SyntaxError{t.pos, fmt.Sprintf("unexpected %s %q", t.kind, t.text)}
	}
	return res, nil
}

func (p *Parser) peek() token {
	return p.toks[p.pos]
}

func (p *Parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func isConnective(t token) bool {
	if t.kind != tokWord {
		return false
	}
	w := strings.ToLower(t.text)
	return w == "and" || w == "or"
}

// expr := term { ("and" | "or") term }
func (p *Parser) expr(res *Result) error {
	if err := p.term(res); err != nil {
		return err
	}
	for isConnective(p.peek()) {
		p.next()
		if err := p.term(res); err != nil {
			return err
		}
	}
	return nil
}

// term := "(" expr ")" | id operator value
func (p *Parser) term(res *Result) error {
	t := p.next()
	switch {
	case t.kind == tokLParen:
		if err := p.expr(res); err != nil {
			return err
		}
		if c := p.next(); c.kind != tokRParen {
			return &SyntaxError{c.pos, fmt.Sprintf("expected ')', found %s", c.kind)}
		}
		return nil
	case t.kind == tokWord && !isConnective(t):
		op := p.next()
		if op.kind != tokOperator {
			return &SyntaxError{op.pos, fmt.Sprintf("expected operator after %q, found %s", t.text, op.kind)}
		}
		v := p.next()
		if v.kind != tokWord && v.kind != tokString {
			return &SyntaxError{v.pos, fmt.Sprintf("expected value after %q, found %s", op.text, v.kind)}
		}
		res.add(t.text, Pair{Op: operators[op.text], Value: v.text})
		return nil
	default:
		return &SyntaxError{t.pos, fmt.Sprintf("expected comparison, found %s", t.kind)}
	}
}

var shared = struct {
	sync.Mutex
	parser *Parser
}{parser: New()}

// Parse runs src through the shared parser. Callers are serialised, the
// lock is held for exactly one parse.
func Parse(src string) (Result, error) {
	shared.Lock()
	defer shared.Unlock()
	return shared.parser.Parse(src)
}

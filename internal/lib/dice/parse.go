package dice

import (
	"fmt"
	"strconv"
	"strings"
)

type node interface{}

type numberNode struct {
	value int
}

type keepMode int

const (
	keepAll keepMode = iota
	keepHighest
	keepLowest
)

type diceNode struct {
	count int
	sides int
	keep  keepMode
	keepN int

	// filled by the evaluator
	rolls []int
	kept  []bool
}

type unaryNode struct {
	operand node
}

type binaryNode struct {
	op          byte
	left, right node
}

type parenNode struct {
	inner node
}

type parser struct {
	src string
	pos int
}

// parse returns the expression tree and the trailing comment.
func parse(input string) (node, string, error) {
	p := &parser{src: strings.TrimSpace(input)}
	if p.src == "" {
		return nil, "", fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	n, err := p.expr()
	if err != nil {
		return nil, "", err
	}

	rest := p.src[p.pos:]
	if rest == "" {
		return n, "", nil
	}
	if rest[0] != ' ' && rest[0] != '\t' && rest[0] != '#' {
		return nil, "", fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, rest[0], p.pos+1)
	}

	comment := strings.TrimSpace(rest)
	comment = strings.TrimSpace(strings.TrimPrefix(comment, "#"))
	return n, comment, nil
}

func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}

	for {
		save := p.pos
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			p.pos = save
			return left, nil
		}
		p.pos++

		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}

	for {
		save := p.pos
		p.skipSpaces()
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			p.pos = save
			return left, nil
		}
		p.pos++

		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) factor() (node, error) {
	p.skipSpaces()
	c, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrSyntax)
	}

	switch {
	case c == '-':
		p.pos++
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &unaryNode{operand: operand}, nil
	case c == '(':
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		p.skipSpaces()
		if c, ok := p.peek(); !ok || c != ')' {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrSyntax)
		}
		p.pos++
		return &parenNode{inner: inner}, nil
	case c == 'd' || c == 'D':
		return p.dice(1)
	case isDigit(c):
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if c, ok := p.peek(); ok && (c == 'd' || c == 'D') && p.digitAt(p.pos+1) {
			return p.dice(n)
		}
		return &numberNode{value: n}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, c, p.pos+1)
	}
}

// dice parses "dM[khK|klK]" with the cursor on the 'd'.
func (p *parser) dice(count int) (node, error) {
	p.pos++
	if !p.digitAt(p.pos) {
		return nil, fmt.Errorf("%w: missing die size at position %d", ErrSyntax, p.pos+1)
	}
	sides, err := p.number()
	if err != nil {
		return nil, err
	}
	if count < 1 || sides < 1 {
		return nil, fmt.Errorf("%w: dice need a positive count and size", ErrSyntax)
	}
	if count > maxDiceCount || sides > maxDiceSides {
		return nil, fmt.Errorf("%w: %dd%d", ErrTooManyDice, count, sides)
	}

	d := &diceNode{count: count, sides: sides}

	rest := strings.ToLower(p.src[p.pos:])
	if (strings.HasPrefix(rest, "kh") || strings.HasPrefix(rest, "kl")) && p.digitAt(p.pos+2) {
		if rest[1] == 'h' {
			d.keep = keepHighest
		} else {
			d.keep = keepLowest
		}
		p.pos += 2
		keepN, err := p.number()
		if err != nil {
			return nil, err
		}
		if keepN < 1 {
			return nil, fmt.Errorf("%w: must keep at least one die", ErrSyntax)
		}
		d.keepN = keepN
	}

	return d, nil
}

func (p *parser) number() (int, error) {
	start := p.pos
	for p.digitAt(p.pos) {
		p.pos++
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrSyntax, p.src[start:p.pos])
	}
	return n, nil
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) digitAt(i int) bool {
	return i < len(p.src) && isDigit(p.src[i])
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

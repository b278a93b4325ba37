package xlquery

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Condition is a parsed row filter. It is one of *Logical, *Not, *Comparison,
// *Like or *In.
type Condition interface {
	String() string
	condition()
}

// Operand is one side of a comparison: a table column or a literal.
type Operand struct {
	Column   string
	Literal  string
	IsColumn bool
}

func (o Operand) String() string {
	if o.IsColumn {
		return "[" + o.Column + "]"
	}
	return quoteLiteral(o.Literal)
}

// Logical joins two conditions with AND or OR.
type Logical struct {
	Op          string // "AND" or "OR"
	Left, Right Condition
}

// Not negates a condition.
type Not struct {
	Expr Condition
}

// Comparison compares two operands with =, <>, <, <=, > or >=.
type Comparison struct {
	Op          string
	Left, Right Operand
}

// Like matches an operand against a pattern with leading/trailing wildcards.
type Like struct {
	Operand Operand
	Pattern string
	Negate  bool
}

// In tests an operand against a literal set.
type In struct {
	Operand Operand
	Values  []string
	Negate  bool
}

func (*Logical) condition()    {}
func (*Not) condition()        {}
func (*Comparison) condition() {}
func (*Like) condition()       {}
func (*In) condition()         {}

func (c *Logical) String() string {
	return "(" + c.Left.String() + " " + c.Op + " " + c.Right.String() + ")"
}

func (c *Not) String() string { return "NOT " + c.Expr.String() }

func (c *Comparison) String() string {
	return c.Left.String() + " " + c.Op + " " + c.Right.String()
}

func (c *Like) String() string {
	op := " LIKE "
	if c.Negate {
		op = " NOT LIKE "
	}
	return c.Operand.String() + op + quoteLiteral(c.Pattern)
}

func (c *In) String() string {
	quoted := make([]string, len(c.Values))
	for i, v := range c.Values {
		quoted[i] = quoteLiteral(v)
	}
	op := " IN ("
	if c.Negate {
		op = " NOT IN ("
	}
	return c.Operand.String() + op + strings.Join(quoted, ", ") + ")"
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Columns returns the column names a condition refers to, in first-use order.
func Columns(c Condition) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(o Operand) {
		if o.IsColumn && !seen[o.Column] {
			seen[o.Column] = true
			out = append(out, o.Column)
		}
	}
	var walk func(Condition)
	walk = func(c Condition) {
		switch c := c.(type) {
		case *Logical:
			walk(c.Left)
			walk(c.Right)
		case *Not:
			walk(c.Expr)
		case *Comparison:
			add(c.Left)
			add(c.Right)
		case *Like:
			add(c.Operand)
		case *In:
			add(c.Operand)
		}
	}
	walk(c)
	return out
}

type tokenType int

const (
	tEOF tokenType = iota
	tIdent
	tString
	tNumber
	tSymbol
	tKeyword
)

type token struct {
	typ tokenType
	val string
	pos int
}

// lexCondition splits condition text into tokens.
func lexCondition(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '\'' || r == '"':
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < len(rs) {
				if rs[i] == r {
					// A doubled quote is an escaped quote.
					if i+1 < len(rs) && rs[i+1] == r {
						b.WriteRune(r)
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				b.WriteRune(rs[i])
				i++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated string at %d", ErrConditionParse, start)
			}
			toks = append(toks, token{tString, b.String(), start})
		case r == '[':
			start := i
			end := i + 1
			for end < len(rs) && rs[end] != ']' {
				end++
			}
			if end >= len(rs) {
				return nil, fmt.Errorf("%w: unterminated column name at %d", ErrConditionParse, start)
			}
			toks = append(toks, token{tIdent, string(rs[i+1 : end]), start})
			i = end + 1
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			i++
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			toks = append(toks, token{tNumber, string(rs[start:i]), start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			word := string(rs[start:i])
			switch up := strings.ToUpper(word); up {
			case "AND", "OR", "NOT", "LIKE", "IN":
				toks = append(toks, token{tKeyword, up, start})
			default:
				toks = append(toks, token{tIdent, word, start})
			}
		default:
			start := i
			switch r {
			case '(', ')', ',':
				i++
				toks = append(toks, token{tSymbol, string(r), start})
			case '=', '<', '>', '!':
				i++
				op := string(r)
				if i < len(rs) {
					next := rs[i]
					if (r == '<' && (next == '=' || next == '>')) || (r == '>' && next == '=') ||
						(r == '!' && next == '=') || (r == '=' && next == '=') {
						op += string(next)
						i++
					}
				}
				if op == "!" {
					return nil, fmt.Errorf("%w: unexpected '!' at %d", ErrConditionParse, start)
				}
				toks = append(toks, token{tSymbol, op, start})
			default:
				return nil, fmt.Errorf("%w: unexpected character %q at %d", ErrConditionParse, r, start)
			}
		}
	}
	return append(toks, token{typ: tEOF, pos: len(rs)}), nil
}

type conditionParser struct {
	toks []token
	pos  int
}

// ParseCondition parses filter text such as "ID>'30' and Used='No'".
// AND binds tighter than OR.
func ParseCondition(text string) (Condition, error) {
	toks, err := lexCondition(text)
	if err != nil {
		return nil, err
	}
	p := &conditionParser{toks: toks}
	if p.cur().typ == tEOF {
		return nil, fmt.Errorf("%w: empty condition", ErrConditionParse)
	}
	c, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().typ != tEOF {
		return nil, p.errf("unexpected %q", p.cur().val)
	}
	return c, nil
}

func (p *conditionParser) cur() token { return p.toks[p.pos] }

func (p *conditionParser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *conditionParser) isKeyword(kw string) bool {
	return p.cur().typ == tKeyword && p.cur().val == kw
}

func (p *conditionParser) isSymbol(sym string) bool {
	return p.cur().typ == tSymbol && p.cur().val == sym
}

func (p *conditionParser) errf(format string, a ...any) error {
	return fmt.Errorf("%w: near position %d: %s", ErrConditionParse, p.cur().pos, fmt.Sprintf(format, a...))
}

func (p *conditionParser) parseOr() (Condition, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *conditionParser) parseAnd() (Condition, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Logical{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *conditionParser) parseNot() (Condition, error) {
	if p.isKeyword("NOT") {
		p.next()
		c, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Not{Expr: c}, nil
	}
	return p.parsePredicate()
}

func (p *conditionParser) parsePredicate() (Condition, error) {
	if p.isSymbol("(") {
		p.next()
		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.isSymbol(")") {
			return nil, p.errf("expected ')'")
		}
		p.next()
		return c, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	negate := false
	if p.isKeyword("NOT") {
		negate = true
		p.next()
		if !p.isKeyword("LIKE") && !p.isKeyword("IN") {
			return nil, p.errf("expected LIKE or IN after NOT")
		}
	}

	switch {
	case p.isKeyword("LIKE"):
		p.next()
		if p.cur().typ != tString {
			return nil, p.errf("LIKE needs a quoted pattern")
		}
		pattern := p.cur().val
		p.next()
		return &Like{Operand: left, Pattern: pattern, Negate: negate}, nil
	case p.isKeyword("IN"):
		p.next()
		values, err := p.parseLiteralList()
		if err != nil {
			return nil, err
		}
		return &In{Operand: left, Values: values, Negate: negate}, nil
	}

	if p.cur().typ != tSymbol {
		return nil, p.errf("expected comparison operator")
	}
	op := p.cur().val
	switch op {
	case "=", "==":
		op = "="
	case "<>", "!=":
		op = "<>"
	case "<", "<=", ">", ">=":
	default:
		return nil, p.errf("unknown operator %q", op)
	}
	p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Comparison{Op: op, Left: left, Right: right}, nil
}

func (p *conditionParser) parseOperand() (Operand, error) {
	t := p.cur()
	switch t.typ {
	case tIdent:
		p.next()
		return Operand{Column: t.val, IsColumn: true}, nil
	case tString:
		p.next()
		return Operand{Literal: t.val}, nil
	case tNumber:
		if _, err := strconv.ParseFloat(t.val, 64); err != nil {
			return Operand{}, p.errf("malformed number %q", t.val)
		}
		p.next()
		return Operand{Literal: t.val}, nil
	case tEOF:
		return Operand{}, p.errf("unexpected end of condition")
	}
	return Operand{}, p.errf("unexpected %q", t.val)
}

func (p *conditionParser) parseLiteralList() ([]string, error) {
	if !p.isSymbol("(") {
		return nil, p.errf("IN needs a parenthesised list")
	}
	p.next()
	var values []string
	for {
		t := p.cur()
		if t.typ != tString && t.typ != tNumber {
			return nil, p.errf("IN list accepts literals only")
		}
		values = append(values, t.val)
		p.next()
		if p.isSymbol(",") {
			p.next()
			continue
		}
		if p.isSymbol(")") {
			p.next()
			return values, nil
		}
		return nil, p.errf("expected ',' or ')' in IN list")
	}
}

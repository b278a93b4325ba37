package xlquery

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// conditionEvaluator runs parsed conditions as expr programs. A condition is
// rendered against the table's column positions, compiled once and run per
// record.
type conditionEvaluator struct {
	cache sync.Map // rendered source → compiled *vm.Program
}

func newConditionEvaluator() *conditionEvaluator {
	return &conditionEvaluator{}
}

// compile renders cond for the given column labels and compiles it.
func (e *conditionEvaluator) compile(cond Condition, columns []string) (*vm.Program, error) {
	var b strings.Builder
	if err := render(&b, cond, columns); err != nil {
		return nil, err
	}
	src := b.String()
	if cached, ok := e.cache.Load(src); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(src, expr.Env(recordEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %w", ErrConditionParse, cond, err)
	}
	e.cache.Store(src, program)
	return program, nil
}

// matches runs a compiled condition against one record.
func (e *conditionEvaluator) matches(program *vm.Program, values []string) (bool, error) {
	out, err := expr.Run(program, recordEnv(values))
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition evaluated to %T, expected bool", out)
	}
	return b, nil
}

// recordEnv is the environment a condition runs in: the record values plus
// the comparison helpers the rendered source calls.
func recordEnv(values []string) map[string]any {
	if values == nil {
		values = []string{}
	}
	return map[string]any{
		"row":      values,
		"cmpText":  compareValues,
		"likeText": likeMatch,
		"inSet":    oneOf,
	}
}

func render(b *strings.Builder, cond Condition, columns []string) error {
	switch c := cond.(type) {
	case *Logical:
		b.WriteByte('(')
		if err := render(b, c.Left, columns); err != nil {
			return err
		}
		if c.Op == "AND" {
			b.WriteString(" and ")
		} else {
			b.WriteString(" or ")
		}
		if err := render(b, c.Right, columns); err != nil {
			return err
		}
		b.WriteByte(')')
	case *Not:
		b.WriteString("not (")
		if err := render(b, c.Expr, columns); err != nil {
			return err
		}
		b.WriteByte(')')
	case *Comparison:
		op := c.Op
		switch op {
		case "=":
			op = "=="
		case "<>":
			op = "!="
		}
		b.WriteString("(cmpText(")
		if err := renderOperand(b, c.Left, columns); err != nil {
			return err
		}
		b.WriteString(", ")
		if err := renderOperand(b, c.Right, columns); err != nil {
			return err
		}
		fmt.Fprintf(b, ") %s 0)", op)
	case *Like:
		if c.Negate {
			b.WriteString("not ")
		}
		b.WriteString("likeText(")
		if err := renderOperand(b, c.Operand, columns); err != nil {
			return err
		}
		b.WriteString(", ")
		b.WriteString(strconv.Quote(c.Pattern))
		b.WriteByte(')')
	case *In:
		if c.Negate {
			b.WriteString("not ")
		}
		b.WriteString("inSet(")
		if err := renderOperand(b, c.Operand, columns); err != nil {
			return err
		}
		b.WriteString(", [")
		for i, v := range c.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(v))
		}
		b.WriteString("])")
	default:
		return fmt.Errorf("%w: unsupported condition node %T", ErrConditionParse, cond)
	}
	return nil
}

func renderOperand(b *strings.Builder, o Operand, columns []string) error {
	if !o.IsColumn {
		b.WriteString(strconv.Quote(o.Literal))
		return nil
	}
	for i, name := range columns {
		if name == o.Column {
			fmt.Fprintf(b, "row[%d]", i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown column %q", ErrConditionParse, o.Column)
}

// compareValues orders two cell texts: numerically when both parse as
// numbers, otherwise as case-insensitive text with surrounding blanks ignored.
func compareValues(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// likeMatch supports '*' and '%' wildcards at either end of the pattern.
func likeMatch(s, pattern string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	p, prefix, suffix := splitWildcards(strings.ToLower(pattern))
	switch {
	case prefix && suffix:
		return strings.Contains(s, p)
	case prefix:
		return strings.HasSuffix(s, p)
	case suffix:
		return strings.HasPrefix(s, p)
	}
	return s == p
}

// splitWildcards strips one leading and one trailing wildcard from pattern.
func splitWildcards(pattern string) (core string, prefix, suffix bool) {
	isWild := func(c byte) bool { return c == '*' || c == '%' }
	core = pattern
	if prefix = len(core) > 0 && isWild(core[0]); prefix {
		core = core[1:]
	}
	if suffix = len(core) > 0 && isWild(core[len(core)-1]); suffix {
		core = core[:len(core)-1]
	}
	return core, prefix, suffix
}

func oneOf(s string, set []any) bool {
	for _, v := range set {
		if compareValues(s, fmt.Sprint(v)) == 0 {
			return true
		}
	}
	return false
}

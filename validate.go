package xlquery

import (
	"fmt"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Condition will fail at runtime
	SeverityWarning                 // Condition may select unexpected rows
)

// ValidationIssue represents a single problem found in a condition.
type ValidationIssue struct {
	Severity Severity
	Message  string
}

// String formats the issue as "[ERROR] message" or "[WARN] message".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s", sev, v.Message)
}

// ValidateCondition checks a row condition against a sheet's headings without
// evaluating any rows. A non-nil error means the workbook or sheet could not
// be read at all.
func ValidateCondition(file, sheet, condition string, opts ...Option) ([]ValidationIssue, error) {
	return NewQuerier(opts...).ValidateCondition(file, sheet, condition)
}

// ValidateCondition opens the sheet and performs static checks on condition.
func (q *Querier) ValidateCondition(file, sheet, condition string) ([]ValidationIssue, error) {
	store, err := q.opts.openStore(file, ModeRead)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", file, err)
	}
	defer store.Close()

	sh, err := store.Sheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", file, err)
	}
	t, err := BuildTable(sh)
	if err != nil {
		return nil, fmt.Errorf("validate %s!%s: %w", file, sheet, err)
	}
	return checkCondition(t.Columns, condition), nil
}

// checkCondition runs every static check against the given column labels.
func checkCondition(columns []string, condition string) []ValidationIssue {
	cond, err := ParseCondition(condition)
	if err != nil {
		return []ValidationIssue{{Severity: SeverityError, Message: err.Error()}}
	}

	var issues []ValidationIssue
	issues = append(issues, validateColumns(columns, cond)...)
	issues = append(issues, validatePredicates(cond)...)
	return issues
}

// validateColumns reports unknown columns and columns whose label repeats in
// the header, where only the leftmost one is ever compared.
func validateColumns(columns []string, cond Condition) []ValidationIssue {
	count := make(map[string]int, len(columns))
	for _, c := range columns {
		count[c]++
	}
	var issues []ValidationIssue
	for _, name := range Columns(cond) {
		switch n := count[name]; {
		case n == 0:
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("unknown column %q", name),
			})
		case n > 1:
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("column %q appears %d times in the header; the leftmost is used", name, n),
			})
		}
	}
	return issues
}

// validatePredicates flags comparisons that do not depend on the row and LIKE
// patterns with wildcards in the middle, which match literally.
func validatePredicates(cond Condition) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(Condition)
	walk = func(c Condition) {
		switch c := c.(type) {
		case *Logical:
			walk(c.Left)
			walk(c.Right)
		case *Not:
			walk(c.Expr)
		case *Comparison:
			if !c.Left.IsColumn && !c.Right.IsColumn {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("comparison %s has no column and is constant", c),
				})
			}
		case *Like:
			if core, _, _ := splitWildcards(c.Pattern); strings.ContainsAny(core, "*%") {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("LIKE pattern %q: wildcards are only honoured at the ends", c.Pattern),
				})
			}
		}
	}
	walk(cond)
	return issues
}

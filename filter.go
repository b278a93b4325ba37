package xlquery

import (
	"fmt"
	"strings"
)

// MatchPolicy decides which filter matches a read returns.
type MatchPolicy int

const (
	// FirstMatchOnly returns only the first matching row in document order,
	// however many rows satisfy the condition.
	FirstMatchOnly MatchPolicy = iota
)

func (p MatchPolicy) String() string {
	if p == FirstMatchOnly {
		return "FirstMatchOnly"
	}
	return "Unknown"
}

// Table is a tabular view of a sheet: the first row supplies column labels,
// every later row one record.
type Table struct {
	Columns []string
	Records []Record
}

// Record is one data row aligned to the table columns by cell position.
type Record struct {
	Offset RowOffset
	Number RowNumber
	Values []string
}

// BuildTable snapshots a sheet as a table. Records shorter than the header are
// padded with empty strings; cells beyond the header width are dropped.
func BuildTable(sheet *Sheet) (*Table, error) {
	t := &Table{}
	if len(sheet.Rows) == 0 {
		return t, nil
	}
	cols, err := sheet.DecodeRow(sheet.Rows[0])
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t.Columns = cols

	t.Records = make([]Record, 0, len(sheet.Rows)-1)
	for i, row := range sheet.Rows[1:] {
		values := make([]string, len(cols))
		for j, c := range row.Cells {
			if j >= len(cols) {
				break
			}
			v, err := sheet.Decode(c)
			if err != nil {
				return nil, err
			}
			values[j] = v
		}
		t.Records = append(t.Records, Record{
			Offset: RowOffset(i + 1),
			Number: row.Number,
			Values: values,
		})
	}
	return t, nil
}

// ColumnIndex returns the position of the first column with the label, or -1.
func (t *Table) ColumnIndex(label string) int {
	for i, c := range t.Columns {
		if c == label {
			return i
		}
	}
	return -1
}

// Project returns the values of rec for the given labels, each trimmed. With
// no labels every value is returned as stored.
func (t *Table) Project(rec Record, labels []string) ([]string, error) {
	if len(labels) == 0 {
		out := make([]string, len(rec.Values))
		copy(out, rec.Values)
		return out, nil
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		i := t.ColumnIndex(l)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrHeadingNotFound, l)
		}
		out = append(out, strings.TrimSpace(rec.Values[i]))
	}
	return out, nil
}

// FilterEngine evaluates row conditions against tables.
type FilterEngine struct {
	eval *conditionEvaluator
}

// NewFilterEngine returns an engine with an empty compiled-condition cache.
func NewFilterEngine() *FilterEngine {
	return &FilterEngine{eval: newConditionEvaluator()}
}

// Evaluate returns every record satisfying conditionText, in row order.
// An empty result is not an error here.
func (e *FilterEngine) Evaluate(t *Table, conditionText string) ([]Record, error) {
	cond, err := ParseCondition(conditionText)
	if err != nil {
		return nil, err
	}
	program, err := e.eval.compile(cond, t.Columns)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range t.Records {
		ok, err := e.eval.matches(program, rec.Values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rec.Number, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Select evaluates the condition and applies the match policy, returning the
// chosen record and its projected values. No match yields ErrNoMatch.
func (e *FilterEngine) Select(t *Table, conditionText string, labels []string, policy MatchPolicy) (Record, []string, error) {
	if policy != FirstMatchOnly {
		return Record{}, nil, fmt.Errorf("unsupported match policy %s", policy)
	}
	matches, err := e.Evaluate(t, conditionText)
	if err != nil {
		return Record{}, nil, err
	}
	if len(matches) == 0 {
		return Record{}, nil, fmt.Errorf("%w: %s", ErrNoMatch, conditionText)
	}
	rec := matches[0]
	values, err := t.Project(rec, labels)
	if err != nil {
		return Record{}, nil, err
	}
	return rec, values, nil
}

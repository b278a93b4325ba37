package xlquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultMarker prefixes explicit row and column references ("#3", "#B").
const DefaultMarker = "#"

// ColumnRef is either an explicit column letter or a heading to resolve
// against the header row.
type ColumnRef struct {
	Letter  string // set for explicit references, upper case
	Heading string // set for heading references
}

// ParseColumnRef parses "#B" or "#2" as explicit columns; anything else is
// a heading. The heading text is kept verbatim.
func ParseColumnRef(s, marker string) (ColumnRef, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	body, explicit := strings.CutPrefix(s, marker)
	if !explicit {
		if s == "" {
			return ColumnRef{}, fmt.Errorf("%w: empty column reference", ErrInvalidAddress)
		}
		return ColumnRef{Heading: s}, nil
	}
	body = strings.TrimSpace(body)
	if n, err := strconv.Atoi(body); err == nil {
		letter, err := ColumnNumberToLetter(n)
		if err != nil {
			return ColumnRef{}, err
		}
		return ColumnRef{Letter: letter}, nil
	}
	if _, err := ColumnLetterToNumber(body); err != nil {
		return ColumnRef{}, err
	}
	return ColumnRef{Letter: strings.ToUpper(body)}, nil
}

// Explicit reports whether the reference names a column directly.
func (c ColumnRef) Explicit() bool {
	return c.Letter != ""
}

// Resolve returns the column letter, scanning the sheet header for headings.
func (c ColumnRef) Resolve(sheet *Sheet) (string, error) {
	if c.Explicit() {
		return c.Letter, nil
	}
	return sheet.ResolveHeading(c.Heading)
}

// resolveLenient resolves like Resolve but lets a heading that is missing from
// the header fall back to being read as a bare column letter ("C=5").
func (c ColumnRef) resolveLenient(sheet *Sheet) (string, error) {
	letter, err := c.Resolve(sheet)
	if err == nil || !errors.Is(err, ErrHeadingNotFound) {
		return letter, err
	}
	if _, lerr := ColumnLetterToNumber(c.Heading); lerr == nil {
		return strings.ToUpper(c.Heading), nil
	}
	return "", err
}

// Label returns the table column label the reference selects. Explicit
// columns map to the header text at that position.
func (c ColumnRef) Label(t *Table) (string, error) {
	if !c.Explicit() {
		return c.Heading, nil
	}
	n, err := ColumnLetterToNumber(c.Letter)
	if err != nil {
		return "", err
	}
	if n > len(t.Columns) {
		return "", fmt.Errorf("%w: column %s beyond the %d table columns", ErrInvalidAddress, c.Letter, len(t.Columns))
	}
	return t.Columns[n-1], nil
}

func (c ColumnRef) String() string {
	if c.Explicit() {
		return DefaultMarker + c.Letter
	}
	return c.Heading
}

// RowRef is either an explicit ordinal ("#3") or a filter condition.
type RowRef struct {
	Ordinal   int
	Condition string
}

// ParseRowRef parses a row reference. Whether the ordinal is read as a row
// number or a row offset is decided by the operation using it.
func ParseRowRef(s, marker string) (RowRef, error) {
	if marker == "" {
		marker = DefaultMarker
	}
	body, explicit := strings.CutPrefix(strings.TrimSpace(s), marker)
	if !explicit {
		if strings.TrimSpace(s) == "" {
			return RowRef{}, fmt.Errorf("%w: empty row reference", ErrInvalidAddress)
		}
		return RowRef{Condition: s}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil || n < 0 {
		return RowRef{}, fmt.Errorf("%w: row reference %q", ErrInvalidAddress, s)
	}
	return RowRef{Ordinal: n}, nil
}

// Explicit reports whether the reference is an ordinal.
func (r RowRef) Explicit() bool {
	return r.Condition == ""
}

// Number reads the ordinal as a stored row number.
func (r RowRef) Number() (RowNumber, error) {
	if r.Ordinal < 1 {
		return 0, fmt.Errorf("%w: row number %d", ErrInvalidAddress, r.Ordinal)
	}
	return RowNumber(r.Ordinal), nil
}

// Offset reads the ordinal as a document-order offset. Row updates address
// rows this way, so "#3" there is the fourth row visited.
func (r RowRef) Offset() RowOffset {
	return RowOffset(r.Ordinal)
}

// splitList splits a separated list, trimming each item. An all-blank list
// yields nil.
func splitList(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

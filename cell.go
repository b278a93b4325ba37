package xlquery

import (
	"fmt"
	"strconv"
)

// ValueKind is the type tag a cell carries in the workbook.
type ValueKind int

const (
	KindLiteral ValueKind = iota
	KindNumber
	KindSharedText
	KindBoolean
)

// String returns a human-readable name for the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindLiteral:
		return "Literal"
	case KindNumber:
		return "Number"
	case KindSharedText:
		return "SharedText"
	case KindBoolean:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// CellValue is the raw stored value of a cell, tagged by kind. It is one of
// SharedText, Boolean, Number or Literal.
type CellValue interface {
	Kind() ValueKind
	Raw() string
}

// SharedText is an index into the workbook's shared text pool.
type SharedText int

// Boolean is a boolean flag as stored: "0" is false, anything else true.
type Boolean string

// Number is a numeric value kept as its stored text.
type Number string

// Literal is text stored in the cell itself.
type Literal string

func (SharedText) Kind() ValueKind { return KindSharedText }
func (Boolean) Kind() ValueKind    { return KindBoolean }
func (Number) Kind() ValueKind     { return KindNumber }
func (Literal) Kind() ValueKind    { return KindLiteral }

func (v SharedText) Raw() string { return strconv.Itoa(int(v)) }
func (v Boolean) Raw() string    { return string(v) }
func (v Number) Raw() string     { return string(v) }
func (v Literal) Raw() string    { return string(v) }

// TextResolver looks up shared text pool entries.
type TextResolver interface {
	SharedText(index int) (string, error)
}

// TextPool is a shared text pool. A nil pool means the workbook has none.
type TextPool []string

// SharedText returns the pooled text at index.
func (p TextPool) SharedText(index int) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: index %d but the workbook has no shared text pool", ErrCorruptSharedTextIndex, index)
	}
	if index < 0 || index >= len(p) {
		return "", fmt.Errorf("%w: index %d outside pool of %d", ErrCorruptSharedTextIndex, index, len(p))
	}
	return p[index], nil
}

// DecodeValue turns a raw cell value into the text the query layer works with.
// Booleans decode to "TRUE"/"FALSE"; numbers and literals pass through.
func DecodeValue(v CellValue, pool TextResolver) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case SharedText:
		if pool == nil {
			return "", fmt.Errorf("%w: index %d but no shared text pool", ErrCorruptSharedTextIndex, int(v))
		}
		return pool.SharedText(int(v))
	case Boolean:
		if v == "0" {
			return "FALSE", nil
		}
		return "TRUE", nil
	default:
		return v.Raw(), nil
	}
}

// valueFromXML maps an OOXML cell type attribute and raw value to a CellValue.
// Unknown types are kept as literals.
func valueFromXML(t, raw string) CellValue {
	switch t {
	case "s":
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return SharedText(-1)
		}
		return SharedText(idx)
	case "b":
		return Boolean(raw)
	case "", "n":
		if raw == "" {
			return Literal("")
		}
		return Number(raw)
	default:
		return Literal(raw)
	}
}

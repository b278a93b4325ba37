package xlquery

import "fmt"

// Cell is a single stored cell. Ref is the address exactly as the document
// records it.
type Cell struct {
	Ref   string
	Value CellValue
}

// Column returns the column letter part of the cell's own address.
func (c Cell) Column() string {
	return StripRowDigits(c.Ref)
}

// Row is a stored row with its cells in document order.
type Row struct {
	Number RowNumber
	Cells  []Cell
}

// Cell finds the cell whose address is in the given column.
func (r Row) Cell(column string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Column() == column {
			return c, true
		}
	}
	return Cell{}, false
}

// Sheet is a read snapshot of one worksheet taken when the store opened it.
type Sheet struct {
	Name string
	Rows []Row
	Pool TextResolver
}

// Decode decodes a cell value against the sheet's shared text pool.
func (s *Sheet) Decode(c Cell) (string, error) {
	v, err := DecodeValue(c.Value, s.Pool)
	if err != nil {
		return "", fmt.Errorf("cell %s: %w", c.Ref, err)
	}
	return v, nil
}

// DecodeRow decodes every cell of a row in document order.
func (s *Sheet) DecodeRow(r Row) ([]string, error) {
	out := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		v, err := s.Decode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Header returns the first row in document order.
func (s *Sheet) Header() (Row, bool) {
	if len(s.Rows) == 0 {
		return Row{}, false
	}
	return s.Rows[0], true
}

// ResolveHeading returns the column letter of the first header cell whose
// decoded text equals heading exactly.
func (s *Sheet) ResolveHeading(heading string) (string, error) {
	header, ok := s.Header()
	if !ok {
		return "", fmt.Errorf("%w: %q (sheet %q is empty)", ErrHeadingNotFound, heading, s.Name)
	}
	for _, c := range header.Cells {
		v, err := s.Decode(c)
		if err != nil {
			return "", err
		}
		if v == heading {
			return c.Column(), nil
		}
	}
	return "", fmt.Errorf("%w: %q in sheet %q", ErrHeadingNotFound, heading, s.Name)
}

// RowByNumber finds the row with the given stored row number.
func (s *Sheet) RowByNumber(n RowNumber) (Row, bool) {
	for _, r := range s.Rows {
		if r.Number == n {
			return r, true
		}
	}
	return Row{}, false
}

// RowAt returns the row visited at offset o in document order.
func (s *Sheet) RowAt(o RowOffset) (Row, bool) {
	if o < 0 || int(o) >= len(s.Rows) {
		return Row{}, false
	}
	return s.Rows[o], true
}

// CellText returns the decoded value at addr, or "" when no such cell exists.
func (s *Sheet) CellText(addr CellAddress) (string, error) {
	r, ok := s.RowByNumber(addr.Row)
	if !ok {
		return "", nil
	}
	c, ok := r.Cell(addr.Column)
	if !ok {
		return "", nil
	}
	return s.Decode(c)
}

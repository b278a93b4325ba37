package xlquery

import (
	"fmt"
	"strconv"
	"strings"
)

// OperationKind names one of the five request kinds.
type OperationKind int

const (
	OpReadCell OperationKind = iota
	OpReadRow
	OpReadAndUpdate
	OpAppend
	OpWriteCell
)

var operationNames = [...]string{"ReadCell", "ReadRow", "ReadAndUpdate", "Append", "WriteCell"}

// String returns the operation name, e.g. "ReadCell".
func (k OperationKind) String() string {
	if k < 0 || int(k) >= len(operationNames) {
		return "Unknown"
	}
	return operationNames[k]
}

// ParseOperationKind parses an operation name case-insensitively.
func ParseOperationKind(s string) (OperationKind, error) {
	for i, name := range operationNames {
		if strings.EqualFold(name, s) {
			return OperationKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// Request carries the string parameters of one operation as a calling
// framework hands them over. Unused fields are ignored.
type Request struct {
	Kind    OperationKind
	File    string
	Sheet   string
	Row     string // row-ref, or the row number for WriteCell
	Column  string // column-ref for ReadCell and WriteCell
	Columns string // column list for ReadRow and ReadAndUpdate
	Updates string // update list for ReadAndUpdate
	Values  string // value list for Append
	Value   string // value for WriteCell
}

// Response is what an operation reports back: values or a single error.
type Response struct {
	Values    []string  `json:"values,omitempty"`
	Updated   bool      `json:"updated,omitempty"`
	RowNumber RowNumber `json:"rowNumber,omitempty"`
	Success   bool      `json:"success"`
	Err       string    `json:"error,omitempty"`
}

// UpdateResult is the outcome of ReadAndUpdate.
type UpdateResult struct {
	Updated bool
	Offset  RowOffset
	Values  []string // the updated row read back, when columns were requested
}

// Querier runs operations against workbooks. Every operation opens the
// workbook, works on a fresh snapshot and closes it before returning.
type Querier struct {
	opts   *Options
	filter *FilterEngine
}

// NewQuerier creates a Querier with the given options.
func NewQuerier(opts ...Option) *Querier {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Querier{opts: o, filter: NewFilterEngine()}
}

// withSheet opens file, loads sheetName and runs fn. Any failure comes back
// as an *OperationError.
func (q *Querier) withSheet(op OperationKind, file, sheetName string, mode Mode, fn func(Store, *Sheet) error) error {
	q.opts.logger.Debug("operation start", "op", op.String(), "file", file, "sheet", sheetName, "mode", mode.String())
	store, err := q.opts.openStore(file, mode)
	if err != nil {
		return newOperationError(op, file, sheetName, err)
	}
	defer store.Close()

	sheet, err := store.Sheet(sheetName)
	if err != nil {
		return newOperationError(op, file, sheetName, err)
	}
	if err := fn(store, sheet); err != nil {
		return newOperationError(op, file, sheetName, err)
	}
	return nil
}

func (q *Querier) parseColumnList(columns string) ([]ColumnRef, error) {
	var refs []ColumnRef
	for _, item := range splitList(columns, q.opts.separator) {
		if item == "" {
			continue
		}
		ref, err := ParseColumnRef(item, q.opts.marker)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// selectRow filters the sheet and projects the chosen record onto refs.
func (q *Querier) selectRow(sheet *Sheet, condition string, refs []ColumnRef) (Record, []string, error) {
	t, err := BuildTable(sheet)
	if err != nil {
		return Record{}, nil, err
	}
	labels := make([]string, 0, len(refs))
	for _, ref := range refs {
		l, err := ref.Label(t)
		if err != nil {
			return Record{}, nil, err
		}
		labels = append(labels, l)
	}
	rec, values, err := q.filter.Select(t, condition, labels, q.opts.matchPolicy)
	if err != nil {
		return Record{}, nil, err
	}
	q.opts.logger.Debug("condition matched", "sheet", sheet.Name, "condition", condition, "row", int(rec.Number))
	return rec, values, nil
}

// rowValues reads refs out of one row; with no refs, the whole row.
func (q *Querier) rowValues(sheet *Sheet, row Row, refs []ColumnRef) ([]string, error) {
	if len(refs) == 0 {
		return sheet.DecodeRow(row)
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		letter, err := ref.Resolve(sheet)
		if err != nil {
			return nil, err
		}
		c, ok := row.Cell(letter)
		if !ok {
			out = append(out, "")
			continue
		}
		v, err := sheet.Decode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ReadCell reads one cell ("#3", "#B"), or the projected first row matching a
// condition when the row-ref is not explicit.
func (q *Querier) ReadCell(file, sheet, row, column string) ([]string, error) {
	var out []string
	err := q.withSheet(OpReadCell, file, sheet, ModeRead, func(_ Store, sh *Sheet) error {
		rref, err := ParseRowRef(row, q.opts.marker)
		if err != nil {
			return err
		}
		cref, err := ParseColumnRef(strings.TrimSpace(column), q.opts.marker)
		if err != nil {
			return err
		}
		if !rref.Explicit() {
			_, out, err = q.selectRow(sh, rref.Condition, []ColumnRef{cref})
			return err
		}
		n, err := rref.Number()
		if err != nil {
			return err
		}
		letter, err := cref.Resolve(sh)
		if err != nil {
			return err
		}
		v, err := sh.CellText(CellAddress{Column: letter, Row: n})
		if err != nil {
			return err
		}
		out = []string{v}
		return nil
	})
	return out, err
}

// ReadRow reads a row by row number, or the first row matching a condition.
// An empty column list returns every value of the row.
func (q *Querier) ReadRow(file, sheet, row, columns string) ([]string, error) {
	var out []string
	err := q.withSheet(OpReadRow, file, sheet, ModeRead, func(_ Store, sh *Sheet) error {
		rref, err := ParseRowRef(row, q.opts.marker)
		if err != nil {
			return err
		}
		refs, err := q.parseColumnList(columns)
		if err != nil {
			return err
		}
		if !rref.Explicit() {
			_, out, err = q.selectRow(sh, rref.Condition, refs)
			return err
		}
		n, err := rref.Number()
		if err != nil {
			return err
		}
		r, ok := sh.RowByNumber(n)
		if !ok {
			r = Row{Number: n}
		}
		out, err = q.rowValues(sh, r, refs)
		return err
	})
	return out, err
}

// ReadAndUpdate updates the cells of one row and, when columns are given,
// reads that row back. An explicit row-ref is a document-order offset here,
// so "#1" is the first row after the header.
func (q *Querier) ReadAndUpdate(file, sheet, row, columns, updates string) (UpdateResult, error) {
	var res UpdateResult
	err := q.withSheet(OpReadAndUpdate, file, sheet, ModeWrite, func(store Store, sh *Sheet) error {
		rref, err := ParseRowRef(row, q.opts.marker)
		if err != nil {
			return err
		}
		offset := rref.Offset()
		if !rref.Explicit() {
			rec, _, err := q.selectRow(sh, rref.Condition, nil)
			if err != nil {
				return err
			}
			offset = rec.Offset
		}
		ups, err := ParseUpdateList(updates, q.opts.separator, q.opts.marker, sh)
		if err != nil {
			return err
		}
		updated, err := NewMutator(store, q.opts.logger).UpdateRowCells(sh, offset, ups)
		if err != nil {
			return err
		}
		res.Updated = updated
		res.Offset = offset
		return nil
	})
	if err != nil || strings.TrimSpace(columns) == "" {
		return res, err
	}

	err = q.withSheet(OpReadAndUpdate, file, sheet, ModeRead, func(_ Store, sh *Sheet) error {
		refs, err := q.parseColumnList(columns)
		if err != nil {
			return err
		}
		r, ok := sh.RowAt(res.Offset)
		if !ok {
			r = Row{}
		}
		res.Values, err = q.rowValues(sh, r, refs)
		return err
	})
	return res, err
}

// Append adds a row holding the listed values and returns its row number.
func (q *Querier) Append(file, sheet, values string) (RowNumber, error) {
	var num RowNumber
	err := q.withSheet(OpAppend, file, sheet, ModeWrite, func(store Store, sh *Sheet) error {
		row, err := NewMutator(store, q.opts.logger).AppendRow(sh, splitList(values, q.opts.separator))
		if err != nil {
			return err
		}
		num = row.Number
		return nil
	})
	return num, err
}

// WriteCell writes value into the cell at row number row ("3" or "#3") and
// column-ref column, creating it when needed.
func (q *Querier) WriteCell(file, sheet, row, column, value string) (bool, error) {
	err := q.withSheet(OpWriteCell, file, sheet, ModeWrite, func(store Store, sh *Sheet) error {
		n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(row), q.opts.marker))
		if err != nil || n < 1 {
			return fmt.Errorf("%w: row number %q", ErrInvalidAddress, row)
		}
		cref, err := ParseColumnRef(strings.TrimSpace(column), q.opts.marker)
		if err != nil {
			return err
		}
		letter, err := cref.Resolve(sh)
		if err != nil {
			return err
		}
		return NewMutator(store, q.opts.logger).InsertOrUpdateCell(sh.Name, CellAddress{Column: letter, Row: RowNumber(n)}, Literal(value))
	})
	return err == nil, err
}

// Dispatch runs req and packages the outcome. It never panics: an internal
// fault is reported in Response.Err like any other failure.
func (q *Querier) Dispatch(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			err := newOperationError(req.Kind, req.File, req.Sheet, fmt.Errorf("internal fault: %v", r))
			q.opts.logger.Error("operation panicked", "op", req.Kind.String(), "panic", r)
			resp = Response{Err: err.Error()}
		}
	}()

	var err error
	switch req.Kind {
	case OpReadCell:
		resp.Values, err = q.ReadCell(req.File, req.Sheet, req.Row, req.Column)
	case OpReadRow:
		resp.Values, err = q.ReadRow(req.File, req.Sheet, req.Row, req.Columns)
	case OpReadAndUpdate:
		var res UpdateResult
		res, err = q.ReadAndUpdate(req.File, req.Sheet, req.Row, req.Columns, req.Updates)
		resp.Updated, resp.Values = res.Updated, res.Values
	case OpAppend:
		resp.RowNumber, err = q.Append(req.File, req.Sheet, req.Values)
	case OpWriteCell:
		_, err = q.WriteCell(req.File, req.Sheet, req.Row, req.Column, req.Value)
	default:
		err = newOperationError(req.Kind, req.File, req.Sheet, fmt.Errorf("unknown operation %d", int(req.Kind)))
	}
	if err != nil {
		return Response{Err: err.Error()}
	}
	resp.Success = true
	return resp
}

// ReadCell reads a cell with a default Querier.
func ReadCell(file, sheet, row, column string, opts ...Option) ([]string, error) {
	return NewQuerier(opts...).ReadCell(file, sheet, row, column)
}

// ReadRow reads a row with a default Querier.
func ReadRow(file, sheet, row, columns string, opts ...Option) ([]string, error) {
	return NewQuerier(opts...).ReadRow(file, sheet, row, columns)
}

// ReadAndUpdate updates a row with a default Querier.
func ReadAndUpdate(file, sheet, row, columns, updates string, opts ...Option) (UpdateResult, error) {
	return NewQuerier(opts...).ReadAndUpdate(file, sheet, row, columns, updates)
}

// Append appends a row with a default Querier.
func Append(file, sheet, values string, opts ...Option) (RowNumber, error) {
	return NewQuerier(opts...).Append(file, sheet, values)
}

// WriteCell writes a cell with a default Querier.
func WriteCell(file, sheet, row, column, value string, opts ...Option) (bool, error) {
	return NewQuerier(opts...).WriteCell(file, sheet, row, column, value)
}

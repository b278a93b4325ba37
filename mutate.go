package xlquery

import (
	"fmt"
	"log/slog"
	"strings"
)

// CellUpdate is a resolved column letter and the value to write there.
type CellUpdate struct {
	Column string
	Value  string
}

// ParseUpdateList parses "Name=Bob,Used=Yes" style lists. An item with '='
// names its column (a heading, a bare letter, or an explicit "#C"). A bare
// item takes the next positional column, counted from A over bare items only.
// Empty bare items consume their column without producing an update.
func ParseUpdateList(list, sep, marker string, sheet *Sheet) ([]CellUpdate, error) {
	var updates []CellUpdate
	next := 1
	for _, item := range splitList(list, sep) {
		name, value, named := strings.Cut(item, "=")
		if !named {
			letter, err := ColumnNumberToLetter(next)
			if err != nil {
				return nil, err
			}
			next++
			if item == "" {
				continue
			}
			updates = append(updates, CellUpdate{Column: letter, Value: item})
			continue
		}
		ref, err := ParseColumnRef(strings.TrimSpace(name), marker)
		if err != nil {
			return nil, fmt.Errorf("update %q: %w", item, err)
		}
		letter, err := ref.resolveLenient(sheet)
		if err != nil {
			return nil, fmt.Errorf("update %q: %w", item, err)
		}
		updates = append(updates, CellUpdate{Column: letter, Value: strings.TrimSpace(value)})
	}
	return updates, nil
}

// Mutator is the only component that changes a workbook. Every method either
// applies all of its writes and saves, or saves nothing.
type Mutator struct {
	store  Store
	logger *slog.Logger
}

// NewMutator returns a mutator writing through store.
func NewMutator(store Store, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = discardLogger()
	}
	return &Mutator{store: store, logger: logger}
}

// InsertOrUpdateCell sets the cell at addr, creating the row and cell when
// absent, and persists. Repeating the call leaves the same state.
func (m *Mutator) InsertOrUpdateCell(sheet string, addr CellAddress, value CellValue) error {
	if _, err := addr.ColumnNumber(); err != nil {
		return err
	}
	if addr.Row < 1 {
		return fmt.Errorf("%w: row number %d", ErrInvalidAddress, addr.Row)
	}
	if err := m.store.SetCell(sheet, addr, value); err != nil {
		return err
	}
	if err := m.store.Save(); err != nil {
		return err
	}
	m.logger.Debug("cell written", "sheet", sheet, "cell", addr.String(), "kind", value.Kind())
	return nil
}

// UpdateRowCells overwrites the existing cells of the row visited at offset
// whose column matches an update, marking them numeric. Missing cells are not
// created. It reports false without writing when the offset is never reached
// or no cell matched.
func (m *Mutator) UpdateRowCells(sheet *Sheet, offset RowOffset, updates []CellUpdate) (bool, error) {
	type edit struct {
		addr  CellAddress
		value CellValue
	}
	var edits []edit
	for i, row := range sheet.Rows {
		if RowOffset(i) != offset {
			continue
		}
		for _, c := range row.Cells {
			col := c.Column()
			for _, u := range updates {
				if u.Column != col {
					continue
				}
				addr, err := ParseCellAddress(c.Ref)
				if err != nil {
					return false, err
				}
				edits = append(edits, edit{addr: addr, value: Number(u.Value)})
			}
		}
		break
	}
	if len(edits) == 0 {
		m.logger.Debug("row update matched nothing", "sheet", sheet.Name, "offset", int(offset))
		return false, nil
	}

	for _, e := range edits {
		if err := m.store.SetCell(sheet.Name, e.addr, e.value); err != nil {
			return false, err
		}
	}
	if err := m.store.Save(); err != nil {
		return false, err
	}
	m.logger.Debug("row updated", "sheet", sheet.Name, "offset", int(offset), "cells", len(edits))
	return true, nil
}

// AppendRow adds a row numbered (existing row count)+1 with one literal cell
// per non-empty value. Empty values leave their column blank.
func (m *Mutator) AppendRow(sheet *Sheet, values []string) (Row, error) {
	row := Row{Number: RowNumber(len(sheet.Rows) + 1)}
	for i, v := range values {
		if v == "" {
			continue
		}
		addr, err := NewCellAddress(i+1, row.Number)
		if err != nil {
			return Row{}, err
		}
		row.Cells = append(row.Cells, Cell{Ref: addr.String(), Value: Literal(v)})
	}

	for _, c := range row.Cells {
		addr, err := ParseCellAddress(c.Ref)
		if err != nil {
			return Row{}, err
		}
		if err := m.store.SetCell(sheet.Name, addr, c.Value); err != nil {
			return Row{}, err
		}
	}
	if len(row.Cells) > 0 {
		if err := m.store.Save(); err != nil {
			return Row{}, err
		}
	}
	m.logger.Debug("row appended", "sheet", sheet.Name, "row", int(row.Number), "cells", len(row.Cells))
	return row, nil
}

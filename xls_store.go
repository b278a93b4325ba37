package xlquery

import (
	"fmt"
	"io"

	"github.com/extrame/xls"
)

// XLSStore serves legacy .xls workbooks. It is read-only and reports every
// cell as a literal, since the BIFF reader hands back formatted text.
type XLSStore struct {
	path   string
	wb     *xls.WorkBook
	closer io.Closer
}

// OpenXLSStore opens a legacy workbook. ModeWrite is refused.
func OpenXLSStore(path string, mode Mode) (*XLSStore, error) {
	if mode == ModeWrite {
		return nil, fmt.Errorf("%w: %q is a legacy workbook", ErrReadOnly, path)
	}
	wb, closer, err := xls.OpenWithCloser(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrStoreIO, path, err)
	}
	return &XLSStore{path: path, wb: wb, closer: closer}, nil
}

// SheetNames returns all sheet names.
func (s *XLSStore) SheetNames() []string {
	names := make([]string, 0, s.wb.NumSheets())
	for i := 0; i < s.wb.NumSheets(); i++ {
		if ws := s.wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	return names
}

// Sheet reads the named sheet. Blank cells are left out.
func (s *XLSStore) Sheet(name string) (*Sheet, error) {
	var ws *xls.WorkSheet
	for i := 0; i < s.wb.NumSheets(); i++ {
		if sh := s.wb.GetSheet(i); sh != nil && sh.Name == name {
			ws = sh
			break
		}
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	sd := &Sheet{Name: name}
	for i := 0; i <= int(ws.MaxRow); i++ {
		xr := ws.Row(i)
		if xr == nil {
			continue
		}
		row := Row{Number: RowNumber(i + 1)}
		for col := xr.FirstCol(); col <= xr.LastCol(); col++ {
			text := xr.Col(col)
			if text == "" {
				continue
			}
			addr, err := NewCellAddress(col+1, row.Number)
			if err != nil {
				return nil, err
			}
			row.Cells = append(row.Cells, Cell{Ref: addr.String(), Value: Literal(text)})
		}
		sd.Rows = append(sd.Rows, row)
	}
	return sd, nil
}

// SharedText always fails: values arrive already resolved.
func (s *XLSStore) SharedText(index int) (string, error) {
	return TextPool(nil).SharedText(index)
}

func (s *XLSStore) SetCell(sheet string, addr CellAddress, v CellValue) error {
	return fmt.Errorf("%w: set %s!%s in %q", ErrReadOnly, sheet, addr, s.path)
}

func (s *XLSStore) Save() error {
	return fmt.Errorf("%w: save %q", ErrReadOnly, s.path)
}

func (s *XLSStore) Close() error {
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrStoreIO, s.path, err)
	}
	return nil
}

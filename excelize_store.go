package xlquery

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelizeStore implements Store for xlsx workbooks. Writes go through
// excelize; reads come from the package as stored so cells keep their kind.
type ExcelizeStore struct {
	path string
	mode Mode
	file *excelize.File
	pkg  *packageReader
}

// OpenExcelizeStore opens an xlsx workbook.
func OpenExcelizeStore(path string, mode Mode) (*ExcelizeStore, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %w", ErrStoreIO, path, err)
	}
	pkg, err := openPackage(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: read package %q: %w", ErrStoreIO, path, err)
	}
	return &ExcelizeStore{path: path, mode: mode, file: f, pkg: pkg}, nil
}

// SheetNames returns all sheet names.
func (s *ExcelizeStore) SheetNames() []string {
	return s.file.GetSheetList()
}

// Sheet returns the named sheet. Names match exactly.
func (s *ExcelizeStore) Sheet(name string) (*Sheet, error) {
	if !s.hasSheet(name) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	sd, err := s.pkg.sheet(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrStoreIO, name, err)
	}
	return sd, nil
}

func (s *ExcelizeStore) hasSheet(name string) bool {
	for _, n := range s.file.GetSheetList() {
		if n == name {
			return true
		}
	}
	return false
}

// SharedText resolves an entry of the workbook's shared text pool.
func (s *ExcelizeStore) SharedText(index int) (string, error) {
	return s.pkg.pool.SharedText(index)
}

// SetCell writes v at addr, preserving the cell style. Literals are stored as
// shared text, numbers as untyped numeric cells.
func (s *ExcelizeStore) SetCell(sheet string, addr CellAddress, v CellValue) error {
	if s.mode != ModeWrite {
		return fmt.Errorf("%w: set %s!%s", ErrReadOnly, sheet, addr)
	}
	if !s.hasSheet(sheet) {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	cell := addr.String()
	styleID, _ := s.file.GetCellStyle(sheet, cell)

	var err error
	switch v := v.(type) {
	case Number:
		err = s.file.SetCellDefault(sheet, cell, string(v))
	case Boolean:
		err = s.file.SetCellBool(sheet, cell, v != "0")
	case SharedText:
		var text string
		if text, err = s.SharedText(int(v)); err == nil {
			err = s.file.SetCellStr(sheet, cell, text)
		}
	case nil:
		err = s.file.SetCellStr(sheet, cell, "")
	default:
		err = s.file.SetCellStr(sheet, cell, v.Raw())
	}
	if err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	if styleID > 0 {
		s.file.SetCellStyle(sheet, cell, cell, styleID)
	}
	return nil
}

// Save writes the workbook back to its path.
func (s *ExcelizeStore) Save() error {
	if s.mode != ModeWrite {
		return fmt.Errorf("%w: save %q", ErrReadOnly, s.path)
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrStoreIO, s.path, err)
	}
	return nil
}

// Close releases the workbook.
func (s *ExcelizeStore) Close() error {
	perr := s.pkg.Close()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("%w: close %q: %w", ErrStoreIO, s.path, err)
	}
	if perr != nil {
		return fmt.Errorf("%w: close %q: %w", ErrStoreIO, s.path, perr)
	}
	return nil
}

// File returns the underlying excelize file for advanced operations.
func (s *ExcelizeStore) File() *excelize.File {
	return s.file
}

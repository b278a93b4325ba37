package xlquery

import (
	"path/filepath"
	"strings"
)

// Mode selects how a workbook store is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

// String returns "read" or "write".
func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// Store is the workbook collaborator. A store is opened for one operation and
// closed before the operation returns.
type Store interface {
	// SheetNames lists sheet names in workbook order.
	SheetNames() []string
	// Sheet returns a snapshot of the named sheet as it was when opened.
	Sheet(name string) (*Sheet, error)
	// SharedText resolves a shared text pool entry.
	SharedText(index int) (string, error)
	// SetCell writes a value, creating the row and cell when absent.
	SetCell(sheet string, addr CellAddress, v CellValue) error
	// Save persists every SetCell made since opening.
	Save() error
	Close() error
}

// StoreOpener opens the workbook at path.
type StoreOpener func(path string, mode Mode) (Store, error)

// OpenStore picks a backend from the file extension: legacy ".xls" files are
// served read-only, everything else through excelize.
func OpenStore(path string, mode Mode) (Store, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return OpenXLSStore(path, mode)
	}
	return OpenExcelizeStore(path, mode)
}

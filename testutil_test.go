package xlquery

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// createPeopleWorkbook creates a workbook with one data sheet and returns its path.
// Layout of "People":
//
//	A1: "ID"   B1: "Name"   C1: "Used"
//	A2: 10     B2: "Alice"  C2: "Yes"
//	A3: 42     B3: "Bob"    C3: "No"
//	A4: 35     B4: "Carol"  C4: "No"
//
// A second sheet "Flags" holds a boolean column.
func createPeopleWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := "People"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	rows := [][]any{
		{"ID", "Name", "Used"},
		{10, "Alice", "Yes"},
		{42, "Bob", "No"},
		{35, "Carol", "No"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	_, err := f.NewSheet("Flags")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Flags", "A1", "Active"))
	require.NoError(t, f.SetCellValue("Flags", "A2", true))
	require.NoError(t, f.SetCellValue("Flags", "A3", false))

	path := filepath.Join(t.TempDir(), "people.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// createEmptyWorkbook creates a workbook whose only sheet "Sheet1" has no rows.
func createEmptyWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// readCell reads a cell straight through excelize, bypassing the query layer.
func readCell(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

// peopleSheet is the People layout as an in-memory snapshot, with the header
// and names held in a shared text pool.
func peopleSheet() *Sheet {
	return &Sheet{
		Name: "People",
		Pool: TextPool{"ID", "Name", "Used", "Alice", "Bob", "Carol", "Yes", "No"},
		Rows: []Row{
			{Number: 1, Cells: []Cell{{"A1", SharedText(0)}, {"B1", SharedText(1)}, {"C1", SharedText(2)}}},
			{Number: 2, Cells: []Cell{{"A2", Number("10")}, {"B2", SharedText(3)}, {"C2", SharedText(6)}}},
			{Number: 3, Cells: []Cell{{"A3", Number("42")}, {"B3", SharedText(4)}, {"C3", SharedText(7)}}},
			{Number: 4, Cells: []Cell{{"A4", Number("35")}, {"B4", SharedText(5)}, {"C4", SharedText(7)}}},
		},
	}
}

// memStore is an in-memory Store that records writes.
type memStore struct {
	sheets  map[string]*Sheet
	writes  []string // "Sheet!A1=value" in call order
	saves   int
	failSet bool
	closed  bool
}

func newMemStore(sheets ...*Sheet) *memStore {
	m := &memStore{sheets: make(map[string]*Sheet)}
	for _, s := range sheets {
		m.sheets[s.Name] = s
	}
	return m
}

func (m *memStore) SheetNames() []string {
	names := make([]string, 0, len(m.sheets))
	for n := range m.sheets {
		names = append(names, n)
	}
	return names
}

func (m *memStore) Sheet(name string) (*Sheet, error) {
	s, ok := m.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return s, nil
}

func (m *memStore) SharedText(index int) (string, error) {
	return TextPool(nil).SharedText(index)
}

func (m *memStore) SetCell(sheet string, addr CellAddress, v CellValue) error {
	if m.failSet {
		return fmt.Errorf("%w: injected", ErrStoreIO)
	}
	m.writes = append(m.writes, fmt.Sprintf("%s!%s=%s", sheet, addr, v.Raw()))
	return nil
}

func (m *memStore) Save() error {
	m.saves++
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

// opener returns a StoreOpener that always hands back m.
func (m *memStore) opener() StoreOpener {
	return func(string, Mode) (Store, error) { return m, nil }
}

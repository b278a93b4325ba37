package xlquery

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcelizeStore_ReadsKinds(t *testing.T) {
	path := createPeopleWorkbook(t)

	store, err := OpenExcelizeStore(path, ModeRead)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, []string{"People", "Flags"}, store.SheetNames())

	sheet, err := store.Sheet("People")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 4)

	header := sheet.Rows[0]
	assert.Equal(t, KindSharedText, header.Cells[0].Value.Kind())
	id, ok := sheet.Rows[1].Cell("A")
	require.True(t, ok)
	assert.Equal(t, Number("10"), id.Value)

	values, err := sheet.DecodeRow(sheet.Rows[2])
	require.NoError(t, err)
	assert.Equal(t, []string{"42", "Bob", "No"}, values)

	flags, err := store.Sheet("Flags")
	require.NoError(t, err)
	assert.Equal(t, KindBoolean, flags.Rows[1].Cells[0].Value.Kind())
	on, err := flags.Decode(flags.Rows[1].Cells[0])
	require.NoError(t, err)
	off, err := flags.Decode(flags.Rows[2].Cells[0])
	require.NoError(t, err)
	assert.Equal(t, "TRUE", on)
	assert.Equal(t, "FALSE", off)
}

func TestExcelizeStore_SheetNamesAreExact(t *testing.T) {
	store, err := OpenExcelizeStore(createPeopleWorkbook(t), ModeRead)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Sheet("people")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestExcelizeStore_ReadOnly(t *testing.T) {
	store, err := OpenExcelizeStore(createPeopleWorkbook(t), ModeRead)
	require.NoError(t, err)
	defer store.Close()

	err = store.SetCell("People", CellAddress{Column: "A", Row: 1}, Literal("x"))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, store.Save(), ErrReadOnly)
}

func TestExcelizeStore_SetCellAndSave(t *testing.T) {
	path := createPeopleWorkbook(t)

	store, err := OpenExcelizeStore(path, ModeWrite)
	require.NoError(t, err)
	require.NoError(t, store.SetCell("People", CellAddress{Column: "D", Row: 2}, Number("7")))
	require.NoError(t, store.SetCell("People", CellAddress{Column: "E", Row: 2}, Literal("hi")))
	require.NoError(t, store.SetCell("People", CellAddress{Column: "F", Row: 2}, Boolean("0")))
	require.NoError(t, store.SetCell("People", CellAddress{Column: "G", Row: 2}, Number("abc")))
	require.NoError(t, store.SetCell("People", CellAddress{Column: "H", Row: 2}, SharedText(1)))
	require.NoError(t, store.Save())
	require.NoError(t, store.Close())

	store, err = OpenExcelizeStore(path, ModeRead)
	require.NoError(t, err)
	defer store.Close()
	sheet, err := store.Sheet("People")
	require.NoError(t, err)

	row, ok := sheet.RowByNumber(2)
	require.True(t, ok)
	d, _ := row.Cell("D")
	assert.Equal(t, Number("7"), d.Value)
	f, _ := row.Cell("F")
	assert.Equal(t, KindBoolean, f.Value.Kind())

	values, err := sheet.DecodeRow(row)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "Alice", "Yes", "7", "hi", "FALSE", "abc", "Name"}, values)
}

func TestExcelizeStore_UnknownSheetWrite(t *testing.T) {
	store, err := OpenExcelizeStore(createPeopleWorkbook(t), ModeWrite)
	require.NoError(t, err)
	defer store.Close()

	err = store.SetCell("Nope", CellAddress{Column: "A", Row: 1}, Literal("x"))
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestOpenStore_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := OpenStore(filepath.Join(dir, "missing.xlsx"), ModeRead)
	assert.ErrorIs(t, err, ErrStoreIO)

	_, err = OpenStore(filepath.Join(dir, "legacy.XLS"), ModeWrite)
	assert.ErrorIs(t, err, ErrReadOnly)

	_, err = OpenStore(filepath.Join(dir, "missing.xls"), ModeRead)
	assert.ErrorIs(t, err, ErrStoreIO)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "read", ModeRead.String())
	assert.Equal(t, "write", ModeWrite.String())
}

// writePackage writes a minimal xlsx package with the given worksheet XML
// and no shared text part.
func writePackage(t *testing.T, sheetXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	parts := map[string]string{
		"xl/workbook.xml": `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
			`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/worksheets/sheet1.xml": sheetXML,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
	return path
}

func TestPackageReader_ImpliedReferences(t *testing.T) {
	path := writePackage(t, `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`+
		`<row r="2"><c><v>1</v></c><c t="inlineStr"><is><t>two</t></is></c></row>`+
		`<row><c r="C3" t="b"><v>0</v></c></row>`+
		`</sheetData></worksheet>`)

	pkg, err := openPackage(path)
	require.NoError(t, err)
	defer pkg.Close()

	sheet, err := pkg.sheet("Data")
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []Cell{{"A2", Number("1")}, {"B2", Literal("two")}}, sheet.Rows[0].Cells)
	assert.Equal(t, RowNumber(3), sheet.Rows[1].Number)
	assert.Equal(t, []Cell{{"C3", Boolean("0")}}, sheet.Rows[1].Cells)

	_, err = pkg.sheet("Other")
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestPackageReader_SharedTextWithoutPool(t *testing.T) {
	path := writePackage(t, `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`+
		`<row r="1"><c r="A1" t="s"><v>0</v></c></row>`+
		`</sheetData></worksheet>`)

	pkg, err := openPackage(path)
	require.NoError(t, err)
	defer pkg.Close()

	sheet, err := pkg.sheet("Data")
	require.NoError(t, err)
	_, err = sheet.Decode(sheet.Rows[0].Cells[0])
	assert.ErrorIs(t, err, ErrCorruptSharedTextIndex)
}

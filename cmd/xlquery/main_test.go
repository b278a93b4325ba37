package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/javajack/xlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func createWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ID", "Name"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "Alice"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{2, "Bob"}))
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReadCellCommand(t *testing.T) {
	path := createWorkbook(t)
	out, _, err := run(t, "read-cell", path, "Sheet1", "ID = 2", "Name")
	require.NoError(t, err)
	assert.Equal(t, "Bob\n", out)
}

func TestReadRowCommand_JSON(t *testing.T) {
	path := createWorkbook(t)
	out, _, err := run(t, "--json", "read-row", path, "Sheet1", "#2")
	require.NoError(t, err)

	var resp xlquery.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"1", "Alice"}, resp.Values)
}

func TestAppendAndUpdateCommands(t *testing.T) {
	path := createWorkbook(t)

	out, _, err := run(t, "append", path, "Sheet1", "3;Carol", "--sep", ";")
	require.NoError(t, err)
	assert.Equal(t, "row 4\n", out)

	out, _, err = run(t, "read-update", path, "Sheet1", "Name = 'Carol'", "ID=30", "ID")
	require.NoError(t, err)
	assert.Equal(t, "updated=true\n30\n", out)

	out, _, err = run(t, "write", path, "Sheet1", "5", "#B", "Dan")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestCommandFailureExits(t *testing.T) {
	path := createWorkbook(t)
	_, stderr, err := run(t, "read-cell", path, "Nope", "#1", "#A")
	require.Error(t, err)
	assert.Contains(t, stderr, "sheet not found")
}

func TestDescribeAndCheckCommands(t *testing.T) {
	path := createWorkbook(t)

	out, _, err := run(t, "describe", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sheet1 (3 rows)")

	out, _, err = run(t, "check", path, "Sheet1", "ID > 1")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, _, err = run(t, "check", path, "Sheet1", "Age > 1")
	require.Error(t, err)
	assert.Contains(t, out, `unknown column "Age"`)
}

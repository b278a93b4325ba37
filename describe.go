package xlquery

import (
	"fmt"
	"strings"
)

// Describe opens a workbook and returns a human-readable summary of its
// sheets. With an empty sheet name every sheet is described.
// Useful for finding headings and cell kinds before writing a query.
func Describe(file, sheet string, opts ...Option) (string, error) {
	return NewQuerier(opts...).Describe(file, sheet)
}

// Describe lists the workbook's sheets and, for each described sheet, its row
// count and every heading with its column letter and the kind of the cell
// below it.
func (q *Querier) Describe(file, sheet string) (string, error) {
	store, err := q.opts.openStore(file, ModeRead)
	if err != nil {
		return "", fmt.Errorf("describe %s: %w", file, err)
	}
	defer store.Close()

	names := store.SheetNames()
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s\n", file)
	fmt.Fprintf(&b, "Sheets: %s\n", strings.Join(names, ", "))

	if sheet != "" {
		names = []string{sheet}
	}
	for _, name := range names {
		sh, err := store.Sheet(name)
		if err != nil {
			return "", fmt.Errorf("describe %s: %w", file, err)
		}
		if err := describeSheet(&b, sh); err != nil {
			return "", fmt.Errorf("describe %s!%s: %w", file, name, err)
		}
	}
	return b.String(), nil
}

// describeSheet writes one sheet block:
//
//	Sheet1 (3 rows)
//	  A  ID    [Number]
//	  B  Name  [SharedText]
func describeSheet(b *strings.Builder, sh *Sheet) error {
	fmt.Fprintf(b, "%s (%d rows)\n", sh.Name, len(sh.Rows))
	header, ok := sh.Header()
	if !ok {
		return nil
	}
	var first Row
	if len(sh.Rows) > 1 {
		first = sh.Rows[1]
	}

	width := 0
	labels := make([]string, len(header.Cells))
	for i, c := range header.Cells {
		v, err := sh.Decode(c)
		if err != nil {
			return err
		}
		labels[i] = v
		width = max(width, len(v))
	}
	for i, c := range header.Cells {
		col := c.Column()
		kind := "-"
		if dc, ok := first.Cell(col); ok && dc.Value != nil {
			kind = dc.Value.Kind().String()
		}
		fmt.Fprintf(b, "  %-3s %-*s [%s]\n", col, width, labels[i], kind)
	}
	return nil
}

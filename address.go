package xlquery

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxColumns is the number of columns a worksheet can hold (A..XFD).
const MaxColumns = 16384

// RowNumber is the 1-based row number stored on a row ("12" in "B12").
type RowNumber int

// RowOffset is the 0-based position of a row when a sheet's rows are visited
// in document order. The header row of a table is offset 0.
type RowOffset int

// Offset converts a row number to the offset the row would have if the sheet
// stored every row from 1 upward without gaps. Sparse sheets break this.
func (n RowNumber) Offset() RowOffset {
	return RowOffset(n - 1)
}

// Number is the inverse of RowNumber.Offset, with the same contiguity caveat.
func (o RowOffset) Number() RowNumber {
	return RowNumber(o + 1)
}

// ColumnLetterToNumber converts a column letter to its 1-based ordinal.
// "A"→1, "Z"→26, "AA"→27, "XFD"→16384. Lower case letters are accepted.
func ColumnLetterToNumber(letter string) (int, error) {
	if letter == "" {
		return 0, fmt.Errorf("%w: empty column letter", ErrInvalidAddress)
	}
	n := 0
	for i := 0; i < len(letter); i++ {
		ch := letter[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: column letter %q is not alphabetic", ErrInvalidAddress, letter)
		}
		n = n*26 + int(ch-'A') + 1
		if n > MaxColumns {
			return 0, fmt.Errorf("%w: column %q beyond %d", ErrInvalidAddress, letter, MaxColumns)
		}
	}
	return n, nil
}

// ColumnNumberToLetter converts a 1-based column ordinal to its letter.
// Digits run 1..26 with no zero, so each step peels off (n-1) mod 26.
func ColumnNumberToLetter(n int) (string, error) {
	if n < 1 || n > MaxColumns {
		return "", fmt.Errorf("%w: column number %d outside 1..%d", ErrInvalidAddress, n, MaxColumns)
	}
	var buf [3]byte
	i := len(buf)
	for n > 0 {
		digit := (n - 1) % 26
		i--
		buf[i] = byte('A' + digit)
		n = (n - digit) / 26
	}
	return string(buf[i:]), nil
}

// StripRowDigits returns the leading alphabetic run of an address: "B12"→"B".
func StripRowDigits(address string) string {
	i := 0
	for i < len(address) && isAlpha(address[i]) {
		i++
	}
	return address[:i]
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// CellAddress identifies a cell by column letter and row number.
type CellAddress struct {
	Column string
	Row    RowNumber
}

// NewCellAddress builds an address from a 1-based column ordinal and row number.
func NewCellAddress(col int, row RowNumber) (CellAddress, error) {
	letter, err := ColumnNumberToLetter(col)
	if err != nil {
		return CellAddress{}, err
	}
	if row < 1 {
		return CellAddress{}, fmt.Errorf("%w: row number %d", ErrInvalidAddress, row)
	}
	return CellAddress{Column: letter, Row: row}, nil
}

// ParseCellAddress parses "B12" or "$B$12". The column is normalised to upper case.
func ParseCellAddress(s string) (CellAddress, error) {
	name := strings.ReplaceAll(strings.TrimSpace(s), "$", "")
	letter := StripRowDigits(name)
	if letter == "" || letter == name {
		return CellAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	if _, err := ColumnLetterToNumber(letter); err != nil {
		return CellAddress{}, err
	}
	row, err := strconv.Atoi(name[len(letter):])
	if err != nil || row < 1 {
		return CellAddress{}, fmt.Errorf("%w: row in %q", ErrInvalidAddress, s)
	}
	return CellAddress{Column: strings.ToUpper(letter), Row: RowNumber(row)}, nil
}

// String formats the address as "B12".
func (a CellAddress) String() string {
	return a.Column + strconv.Itoa(int(a.Row))
}

// ColumnNumber returns the 1-based ordinal of the address column.
func (a CellAddress) ColumnNumber() (int, error) {
	return ColumnLetterToNumber(a.Column)
}

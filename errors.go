package xlquery

import (
	"errors"
	"fmt"
)

// Error kinds reported by the query layer. Use errors.Is to test for them.
var (
	ErrInvalidAddress         = errors.New("invalid address")
	ErrHeadingNotFound        = errors.New("heading not found")
	ErrConditionParse         = errors.New("condition parse error")
	ErrSheetNotFound          = errors.New("sheet not found")
	ErrCorruptSharedTextIndex = errors.New("corrupt shared text index")
	ErrNoMatch                = errors.New("no row matches condition")
	ErrStoreIO                = errors.New("workbook store failure")
	ErrReadOnly               = errors.New("workbook opened read-only")
)

// OperationError is the single failure reported for a top-level operation.
type OperationError struct {
	Op    string
	File  string
	Sheet string
	Err   error
}

func (e *OperationError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.File, e.Err)
	}
	return fmt.Sprintf("%s %q sheet %q: %v", e.Op, e.File, e.Sheet, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func newOperationError(op OperationKind, file, sheet string, err error) *OperationError {
	return &OperationError{Op: op.String(), File: file, Sheet: sheet, Err: err}
}

package ccf

import (
	"errors"
	"fmt"
)

var (
	// ErrMagicMismatch indicates the input is not a CCF container.
	ErrMagicMismatch = errors.New("magic number mismatch")
	// ErrTruncated indicates the input ended before an expected field.
	ErrTruncated = errors.New("truncated input")
	// ErrInvalidUTF8 indicates a column name that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("column name is not valid UTF-8")
	// ErrNameTooLong indicates a column name longer than MaxNameLen bytes.
	ErrNameTooLong = errors.New("column name too long")
	// ErrUnsupportedType indicates a type tag missing from the registry.
	ErrUnsupportedType = errors.New("unsupported column type")
	// ErrRowCountMismatch indicates a column whose length differs from the table row count.
	ErrRowCountMismatch = errors.New("row count mismatch")
	// ErrTooManyColumns indicates more columns than the header can describe.
	ErrTooManyColumns = errors.New("too many columns")
	// ErrTooManyRows indicates more rows than the header can describe.
	ErrTooManyRows = errors.New("too many rows")
	// ErrInvalidOffset indicates a data offset inside the metadata region.
	ErrInvalidOffset = errors.New("invalid data offset")
	// ErrIncompleteWrite indicates Close was called before every block was written.
	ErrIncompleteWrite = errors.New("incomplete write")
	// ErrWriterState indicates a writer method called out of order.
	ErrWriterState = errors.New("invalid writer state")
	// ErrColumnNotFound indicates a lookup by name that matched no column.
	ErrColumnNotFound = errors.New("column not found")
)

// ColumnError reports a failure scoped to a single column.
type ColumnError struct {
	Index int
	Name  string
	Err   error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %d %q: %v", e.Index, e.Name, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

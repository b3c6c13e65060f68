// Package errs defines the sentinel errors returned by statfile packages.
//
// Every failure aborts the current build, write or read. Callers classify
// failures with errors.Is against the sentinels below; errors tied to one
// column are wrapped in a *ColumnError that names it.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for an unknown target extension, or a
	// known one with no registered codec. It is reported before any file is opened.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnsupportedSource is returned when the input does not expose ordered,
	// named, random-accessible columns.
	ErrUnsupportedSource = errors.New("unsupported table source")

	// ErrUnsupportedType is returned when a column element type has no storage mapping.
	ErrUnsupportedType = errors.New("unsupported column element type")

	// ErrLabelConflict is returned when one value-label name is registered with two different dictionaries.
	ErrLabelConflict = errors.New("value label name is not unique")

	// ErrCodec wraps any failure reported by a format codec.
	ErrCodec = errors.New("codec error")

	// ErrDuplicateColumn is returned when two source columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrInvalidColumnName is returned for an empty column name.
	ErrInvalidColumnName = errors.New("invalid column name")

	// ErrColumnLength is returned when a column's length differs from the table's row count.
	ErrColumnLength = errors.New("column length does not match row count")

	// ErrFrozen is returned when a frozen value-label registry is mutated.
	ErrFrozen = errors.New("value label registry is frozen")

	// ErrInvalidLabelCode is returned for a value-label code that is neither an integer nor a single character.
	ErrInvalidLabelCode = errors.New("invalid value label code")

	// ErrInvalidDatetime is returned when a format string is not a date/time format of the target extension.
	ErrInvalidDatetime = errors.New("invalid date/time format")

	// ErrInvalidOption is returned when a configuration option receives an unusable argument.
	ErrInvalidOption = errors.New("invalid option")
)

// ColumnError attaches the offending column to an error.
type ColumnError struct {
	Index int
	Name  string
	Err   error
}

// NewColumnError wraps err with the column position and name.
func NewColumnError(index int, name string, err error) *ColumnError {
	return &ColumnError{Index: index, Name: name, Err: err}
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// Codec wraps an error reported by a codec so that both ErrCodec and the
// original error match with errors.Is. A nil err returns nil.
func Codec(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrCodec, op, err)
}

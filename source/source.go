// Package source defines the tabular input protocol consumed by the table
// builder, and an in-memory implementation built from Go slices.
//
// A Source exposes ordered, named, random-accessible columns. Optional
// interfaces refine a column:
//
//   - Pooled: reference-pool (dictionary) encoding, codes plus a code → value pool
//   - Labeled: explicit value labels attached to the column
//   - FixedWidth: a string column with a declared fixed width
//
// A Source may also implement Metadata to seed file- and column-level
// metadata (labels, notes, formats, value-label names).
package source

import (
	"reflect"

	"github.com/arloliu/statfile/labels"
)

// Metadata keys looked up through the Metadata interface.
const (
	KeyFileLabel    = "file_label"
	KeyTableName    = "table_name"
	KeyNotes        = "notes"
	KeyLabel        = "label"
	KeyFormat       = "format"
	KeyValueLabel   = "vallabel"
	KeyMeasure      = "measure"
	KeyAlignment    = "alignment"
	KeyDisplayWidth = "display_width"
)

// Source is the generic tabular input.
type Source interface {
	// ColumnNames returns the column names in column order.
	ColumnNames() []string
	// NumRows returns the number of rows.
	NumRows() int
	// Column returns the column at index i.
	Column(i int) (Column, error)
}

// Column is a homogeneous sequence with an explicit missing marker per element.
type Column interface {
	Len() int
	// ElemType returns the type of non-missing elements.
	ElemType() reflect.Type
	IsNull(i int) bool
	// Value returns element i; it is only meaningful when IsNull(i) is false.
	Value(i int) any
}

// Pooled is a reference-pool encoded column. Value(i) returns the pooled
// value of row i; Ref(i) returns its code.
type Pooled interface {
	Column
	labels.Pool
	// RefType returns the Go type of the codes.
	RefType() reflect.Type
	Ref(i int) int64
}

// Labeled is a column carrying explicit value labels.
type Labeled interface {
	Column
	ValueLabels() *labels.Dict
	// LabelName returns the requested dictionary name, or "" for the default.
	LabelName() string
}

// FixedWidth is a string column stored with a declared width in bytes.
type FixedWidth interface {
	Column
	FixedWidth() int
}

// Metadata is an optional key/value metadata surface.
type Metadata interface {
	FileMetadata(key string) (string, bool)
	ColumnMetadata(col int, key string) (string, bool)
}

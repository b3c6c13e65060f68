package table

import (
	"slices"
	"time"

	"github.com/arloliu/statfile/endian"
	"github.com/arloliu/statfile/format"
)

// DefaultEncoding is the text encoding recorded for newly built tables.
const DefaultEncoding = "UTF-8"

// FileMeta is the file-level metadata of a table.
//
// RowCount and ColumnCount are always recomputed from the data when a table
// is built; values supplied by the caller are ignored.
type FileMeta struct {
	RowCount    int
	ColumnCount int
	Ext         format.Extension
	// Version is the target format version. Zero means the format has none.
	Version   int
	FileLabel string
	// TableName is only written by formats whose policy supports it.
	TableName string
	Notes     []string

	CreationTime time.Time
	ModifiedTime time.Time
	Encoding     string
	Is64Bit      bool
	// Compression records the stream compression the file was written or read with.
	Compression format.CompressionType
	Endianness  endian.Order
}

func (m FileMeta) clone() FileMeta {
	m.Notes = slices.Clone(m.Notes)
	return m
}

// ColumnMeta is the resolved metadata of one column.
type ColumnMeta struct {
	Label  string
	Format string
	Type   format.StorageType
	// ValueLabel names the registry dictionary attached to the column, or "" for none.
	ValueLabel   string
	StorageWidth int
	DisplayWidth int
	Measure      format.Measure
	Alignment    format.Alignment
}

// ColumnOverride carries caller-supplied column metadata. Nil fields leave
// the value from the source (or the previous table) in place.
type ColumnOverride struct {
	Label        *string
	Format       *string
	ValueLabel   *string
	DisplayWidth *int
	Measure      *format.Measure
	Alignment    *format.Alignment
}

// Merge returns o with every field set in other replacing its counterpart.
func (o ColumnOverride) Merge(other ColumnOverride) ColumnOverride {
	if other.Label != nil {
		o.Label = other.Label
	}
	if other.Format != nil {
		o.Format = other.Format
	}
	if other.ValueLabel != nil {
		o.ValueLabel = other.ValueLabel
	}
	if other.DisplayWidth != nil {
		o.DisplayWidth = other.DisplayWidth
	}
	if other.Measure != nil {
		o.Measure = other.Measure
	}
	if other.Alignment != nil {
		o.Alignment = other.Alignment
	}

	return o
}

// displayWidth returns the presentation width for a column of the given
// storage width: at least format.MinDisplayWidth and never below storage.
func displayWidth(storage, requested int) int {
	return max(storage, requested, format.MinDisplayWidth)
}

// Package table builds the normalized intermediate representation handed to
// format codecs.
//
// A Table holds canonical columns, file-level metadata, one ColumnMeta per
// column and a frozen value-label registry. Every format-dependent decision
// (storage type, string width, date/time encoding, value-label naming) is
// made while the table is built, so a codec only copies what it finds.
//
// Tables are created by Build from any source.Source, by Rebuild from an
// existing table retargeted to another extension, or by Assemble from the
// parts a decoder produced. A Table is immutable once returned.
package table

import (
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/statfile/datetime"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/source"
)

// Table is the immutable intermediate representation of one data file.
type Table struct {
	names      []string
	index      map[string]int
	cols       []Column
	meta       []ColumnMeta
	file       FileMeta
	registry   *labels.Registry
	hasMissing []bool
}

var _ source.Source = (*Table)(nil)

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	return slices.Clone(t.names)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.file.RowCount
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.cols)
}

// Column returns column i as a source column.
func (t *Table) Column(i int) (source.Column, error) {
	if i < 0 || i >= len(t.cols) {
		return nil, fmt.Errorf("%w: column index %d out of range", errs.ErrUnsupportedSource, i)
	}

	return t.cols[i], nil
}

// Data returns the canonical column at index i. It panics when i is out of range.
func (t *Table) Data(i int) Column {
	return t.cols[i]
}

// Lookup returns the position of the named column.
func (t *Table) Lookup(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// ColumnMeta returns the metadata of column i. It panics when i is out of range.
func (t *Table) ColumnMeta(i int) ColumnMeta {
	return t.meta[i]
}

// FileMeta returns a copy of the file-level metadata.
func (t *Table) FileMeta() FileMeta {
	return t.file.clone()
}

// Labels returns the frozen value-label registry.
func (t *Table) Labels() *labels.Registry {
	return t.registry
}

// ValueLabels returns the dictionary attached to column i, if any.
func (t *Table) ValueLabels(i int) (*labels.Dict, bool) {
	name := t.meta[i].ValueLabel
	if name == "" {
		return nil, false
	}

	return t.registry.Lookup(name)
}

// HasMissing reports the has-missing flag of column i. The flag is
// informational; codecs never consult it when writing.
func (t *Table) HasMissing(i int) bool {
	return t.hasMissing[i]
}

// HasMissingFlags returns a copy of all has-missing flags in column order.
func (t *Table) HasMissingFlags() []bool {
	return slices.Clone(t.hasMissing)
}

// Times decodes column i into times using its format string.
//
// The column must be a numeric column whose format is a date/time format of
// the table's extension. Missing elements decode to the zero Time.
func (t *Table) Times(i int) ([]time.Time, error) {
	if i < 0 || i >= len(t.cols) {
		return nil, fmt.Errorf("%w: column index %d out of range", errs.ErrUnsupportedSource, i)
	}

	layout := t.meta[i].Format
	if datetime.Classify(t.file.Ext, layout) == datetime.KindNone {
		return nil, errs.NewColumnError(i, t.names[i],
			fmt.Errorf("%w: %q is not a date/time format for %s", errs.ErrInvalidDatetime, layout, t.file.Ext))
	}

	col := t.cols[i]
	values := make([]float64, col.Len())
	for r := range values {
		if col.IsMissing(r) {
			values[r] = nan
			continue
		}
		x, err := toReal[float64](col.Value(r))
		if err != nil {
			return nil, errs.NewColumnError(i, t.names[i], err)
		}
		values[r] = x
	}

	out, err := datetime.FromNumeric(t.file.Ext, layout, values)
	if err != nil {
		return nil, errs.NewColumnError(i, t.names[i], err)
	}

	return out, nil
}

func (t *Table) String() string {
	return fmt.Sprintf("table.Table(%s v%d, %d rows x %d columns, %d value labels)",
		t.file.Ext, t.file.Version, t.file.RowCount, len(t.cols), t.registry.Len())
}

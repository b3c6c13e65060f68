package table

import (
	"fmt"
	"slices"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/internal/collision"
	"github.com/arloliu/statfile/labels"
)

// Parts is what a decoder produces when reading a file.
type Parts struct {
	Names   []string
	Columns []Column
	// Meta is parallel to Columns. Type is taken from the column data.
	Meta   []ColumnMeta
	File   FileMeta
	Labels *labels.Registry
}

// Assemble validates decoded parts and returns the table they describe.
//
// Counts are recomputed, display widths are raised to at least the storage
// width and format.MinDisplayWidth, and the has-missing flags are computed
// from the data. A value-label name with no dictionary in p.Labels is
// cleared. The parts are copied; p can be reused.
func Assemble(p Parts) (*Table, error) {
	policy, ok := format.Lookup(p.File.Ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, p.File.Ext)
	}
	if len(p.Names) != len(p.Columns) || len(p.Meta) != len(p.Columns) {
		return nil, fmt.Errorf("%w: %d names, %d columns, %d metadata records",
			errs.ErrUnsupportedSource, len(p.Names), len(p.Columns), len(p.Meta))
	}

	registry := labels.NewRegistry()
	if p.Labels != nil {
		registry = p.Labels.Clone()
	}

	tracker := collision.NewTracker(len(p.Names))
	cols := make([]Column, len(p.Columns))
	metas := make([]ColumnMeta, len(p.Columns))
	hasMissing := make([]bool, len(p.Columns))
	for i, name := range p.Names {
		if _, err := tracker.Track(name); err != nil {
			return nil, errs.NewColumnError(i, name, err)
		}

		col := p.Columns[i]
		if col == nil {
			return nil, errs.NewColumnError(i, name, fmt.Errorf("%w: nil column", errs.ErrUnsupportedSource))
		}
		if col.Len() != p.Columns[0].Len() {
			return nil, errs.NewColumnError(i, name,
				fmt.Errorf("%w: %d rows, want %d", errs.ErrColumnLength, col.Len(), p.Columns[0].Len()))
		}

		cm := p.Meta[i]
		cm.Type = col.Type()
		cm.DisplayWidth = displayWidth(cm.StorageWidth, cm.DisplayWidth)
		if cm.ValueLabel != "" && !registry.Has(cm.ValueLabel) {
			cm.ValueLabel = ""
		}

		cols[i] = col.clone()
		metas[i] = cm
		hasMissing[i] = col.MissingCount() > 0
	}
	registry.Freeze()

	file := p.File.clone()
	file.Ext = policy.Ext
	file.ColumnCount = len(cols)
	file.RowCount = 0
	if len(cols) > 0 {
		file.RowCount = cols[0].Len()
	}
	if file.Encoding == "" {
		file.Encoding = DefaultEncoding
	}
	if file.Compression == 0 {
		file.Compression = format.CompressionNone
	}

	t := &Table{
		names:      slices.Clone(p.Names),
		index:      make(map[string]int, len(p.Names)),
		cols:       cols,
		meta:       metas,
		file:       file,
		registry:   registry,
		hasMissing: hasMissing,
	}
	for i, name := range t.names {
		t.index[name] = i
	}

	return t, nil
}

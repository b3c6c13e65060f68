package table

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/statfile/datetime"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/scalar"
	"github.com/arloliu/statfile/source"
)

// resolver runs the per-column decision procedure for one target extension.
// It owns the registry of the table under construction.
type resolver struct {
	policy     format.Policy
	registry   *labels.Registry
	autoLabels bool
	log        *zap.Logger
}

// resolveSource converts a source column into a canonical column and its metadata.
//
// The decision sequence:
//  1. storage type: the code type for a pooled column taking the derived-label
//     path, the mapped element type otherwise
//  2. date/time columns are encoded as doubles and get a date/time format
//  3. storage width from the data, the declared fixed width or the format policy
//  4. display width, at least format.MinDisplayWidth
//  5. measure and alignment from metadata, unknown by default
//  6. value labels: explicit, then derived, then none
func (r *resolver) resolveSource(name string, col source.Column, ov ColumnOverride) (Column, ColumnMeta, error) {
	cm := ColumnMeta{
		Label:     deref(ov.Label),
		Measure:   derefOr(ov.Measure, format.MeasureUnknown),
		Alignment: derefOr(ov.Alignment, format.AlignUnknown),
	}
	requested := deref(ov.ValueLabel)
	n := col.Len()

	var explicit *labels.Dict
	if lc, ok := col.(source.Labeled); ok && lc.ValueLabels() != nil {
		explicit = lc.ValueLabels()
		if lc.LabelName() != "" {
			requested = lc.LabelName()
		}
	}

	pooled, isPooled := col.(source.Pooled)
	kind := datetime.KindOf(col.ElemType())

	var (
		data Column
		err  error
	)
	switch {
	case explicit == nil && isPooled && r.autoLabels:
		data, err = r.resolvePooled(name, pooled, requested, &cm)
	case kind != datetime.KindNone:
		cm.Format = r.timeFormat(kind, deref(ov.Format))
		data, err = encodeTimes(r.policy.Ext, cm.Format, n, present(col))
	default:
		var typ format.StorageType
		typ, err = scalar.MapType(col.ElemType())
		if err != nil {
			return nil, cm, err
		}
		cm.Format = deref(ov.Format)
		data, err = materialize(typ, n, present(col))
	}
	if err != nil {
		return nil, cm, err
	}
	cm.Type = data.Type()

	if explicit != nil {
		cm.ValueLabel, err = r.registry.AssignColumn(name, requested, explicit)
		if err != nil {
			return nil, cm, err
		}
	} else if cm.ValueLabel == "" {
		cm.ValueLabel = r.keepRequested(name, requested)
	}

	cm.StorageWidth = r.storageWidth(col, data)
	cm.DisplayWidth = displayWidth(cm.StorageWidth, deref(ov.DisplayWidth))
	r.checkWidth(name, cm)

	return data, cm, nil
}

// resolvePooled writes the pool codes and registers labels derived from the pool.
func (r *resolver) resolvePooled(name string, p source.Pooled, requested string, cm *ColumnMeta) (Column, error) {
	typ, err := codeType(p)
	if err != nil {
		return nil, err
	}

	data, err := materialize(typ, p.Len(), func(i int) (any, bool) {
		if p.IsNull(i) {
			return nil, false
		}
		return p.Ref(i), true
	})
	if err != nil {
		return nil, err
	}

	dict, err := labels.Derive(p)
	if err != nil {
		return nil, err
	}
	cm.ValueLabel, err = r.registry.AssignColumn(name, requested, dict)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// codeType returns the integer storage type for the codes of p: the mapped
// ref type, widened until every pool code fits.
func codeType(p source.Pooled) (format.StorageType, error) {
	typ, err := scalar.MapType(p.RefType())
	if err != nil {
		return 0, err
	}

	for k := range p.PoolSize() {
		code, _ := p.PoolEntry(k)
		switch {
		case code < math.MinInt32 || code > math.MaxInt32:
			return 0, fmt.Errorf("%w: pool code %d does not fit in %s", errs.ErrUnsupportedType, code, format.TypeInt32)
		case code < math.MinInt16 || code > math.MaxInt16:
			typ = max(typ, format.TypeInt32)
		case code < math.MinInt8 || code > math.MaxInt8:
			typ = max(typ, format.TypeInt16)
		}
	}

	return typ, nil
}

// keepRequested returns requested when the registry already holds a
// dictionary under it, and clears it otherwise. Labels registered by an
// earlier column or seeded through WithValueLabels both count.
func (r *resolver) keepRequested(column, requested string) string {
	if requested == "" {
		return ""
	}
	if r.registry.Has(requested) {
		return requested
	}

	r.log.Warn("value label name cleared, no labels registered under it",
		zap.String("column", column), zap.String("value_label", requested))

	return ""
}

// timeFormat picks the format of a date/time column. An explicit format is
// kept when it is a date/time format of the target extension.
func (r *resolver) timeFormat(kind datetime.Kind, explicit string) string {
	if explicit != "" && datetime.Classify(r.policy.Ext, explicit) != datetime.KindNone {
		return explicit
	}
	if kind == datetime.KindDate {
		return r.policy.DateFormat
	}

	return r.policy.DatetimeFormat
}

// storageWidth computes the on-disk width of a column. col may be nil when
// the declared width of the original source column is unknown.
func (r *resolver) storageWidth(col source.Column, data Column) int {
	switch data.Type() { //nolint: exhaustive
	case format.TypeString:
		if fw, ok := col.(source.FixedWidth); ok {
			return fw.FixedWidth()
		}
		return maxByteLen(data)
	case format.TypeDouble:
		if r.policy.ExplicitDoubleWidth {
			return format.DoubleWidth
		}
	}

	return 0
}

func (r *resolver) checkWidth(column string, cm ColumnMeta) {
	if cm.Type == format.TypeString && cm.StorageWidth > r.policy.MaxStringWidth {
		r.log.Warn("string column wider than the target format allows",
			zap.String("column", column),
			zap.Int("width", cm.StorageWidth),
			zap.Int("max_width", r.policy.MaxStringWidth),
			zap.String("ext", string(r.policy.Ext)))
	}
}

// present adapts a source column to a getter, treating nil pointers as missing.
func present(col source.Column) getter {
	return func(i int) (any, bool) {
		if col.IsNull(i) {
			return nil, false
		}
		v := col.Value(i)
		if _, ok := unwrap(v); !ok {
			return nil, false
		}

		return v, true
	}
}

// encodeTimes converts date/time values into numeric offsets. Zero times are missing.
func encodeTimes(ext format.Extension, layout string, n int, get getter) (Column, error) {
	return fill(n, func(i int) (any, bool) {
		v, ok := get(i)
		if !ok {
			return nil, false
		}
		t, isTime := datetime.AsTime(v)
		switch {
		case !isTime:
			return v, true
		case t.IsZero():
			return nil, false
		default:
			return t, true
		}
	}, func(v any) (float64, error) {
		t, ok := v.(time.Time)
		if !ok {
			return 0, fmt.Errorf("%w: %T is not a date/time value", errs.ErrUnsupportedType, v)
		}

		return datetime.Encode(ext, layout, t)
	})
}

// metadataOverride reads the column metadata keys a source exposes.
func metadataOverride(md source.Metadata, col int, log *zap.Logger) ColumnOverride {
	var ov ColumnOverride
	if md == nil {
		return ov
	}

	if v, ok := md.ColumnMetadata(col, source.KeyLabel); ok {
		ov.Label = &v
	}
	if v, ok := md.ColumnMetadata(col, source.KeyFormat); ok && v != "" {
		ov.Format = &v
	}
	if v, ok := md.ColumnMetadata(col, source.KeyValueLabel); ok && v != "" {
		ov.ValueLabel = &v
	}
	if v, ok := md.ColumnMetadata(col, source.KeyMeasure); ok {
		if m, err := format.ParseMeasure(v); err == nil {
			ov.Measure = &m
		} else {
			log.Warn("ignoring column metadata", zap.Int("column", col), zap.Error(err))
		}
	}
	if v, ok := md.ColumnMetadata(col, source.KeyAlignment); ok {
		if a, err := format.ParseAlignment(v); err == nil {
			ov.Alignment = &a
		} else {
			log.Warn("ignoring column metadata", zap.Int("column", col), zap.Error(err))
		}
	}
	if v, ok := md.ColumnMetadata(col, source.KeyDisplayWidth); ok {
		if w, err := strconv.Atoi(v); err == nil && w >= 0 {
			ov.DisplayWidth = &w
		} else {
			log.Warn("ignoring column metadata", zap.Int("column", col),
				zap.String("key", source.KeyDisplayWidth), zap.String("value", v))
		}
	}

	return ov
}

func deref[T any](p *T) T {
	var zero T
	return derefOr(p, zero)
}

func derefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}

	return *p
}

package table

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/statfile/datetime"
	"github.com/arloliu/statfile/endian"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/internal/collision"
	"github.com/arloliu/statfile/internal/options"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/source"
)

var nan = math.NaN()

// Build creates a Table from src for the target extension.
//
// Columns are resolved in order. The source is never mutated: every column
// is copied, with date/time columns replaced by their numeric encoding.
// When src is already a *Table, Build is Rebuild.
//
// Parameters:
//   - src: ordered, named, random-accessible columns
//   - ext: target extension such as format.ExtDta
//   - opts: build options; value-label derivation from pooled columns is on
//
// Returns:
//   - *Table: the immutable table
//   - error: errs.ErrUnsupportedFormat, errs.ErrUnsupportedSource,
//     errs.ErrDuplicateColumn, errs.ErrColumnLength, errs.ErrUnsupportedType
//     or errs.ErrLabelConflict; column failures are wrapped in *errs.ColumnError
func Build(src source.Source, ext format.Extension, opts ...BuildOption) (*Table, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", errs.ErrUnsupportedSource)
	}
	if t, ok := src.(*Table); ok {
		return Rebuild(t, ext, opts...)
	}

	b, err := newBuilder(ext, opts, true)
	if err != nil {
		return nil, err
	}

	return b.fromSource(src)
}

// Rebuild retargets an existing table to ext.
//
// When the extension changes, the format version resets to the new
// extension's default and every column format string is cleared (see
// WithConvertTimes). String and 64-bit float widths are recomputed unless
// WithUpdateWidth(false) is given. Value labels are resolved again against
// the table's registry. Rebuild never derives labels, and WithAutoLabels(true)
// fails with errs.ErrInvalidOption. The input table is not modified.
func Rebuild(t *Table, ext format.Extension, opts ...BuildOption) (*Table, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", errs.ErrUnsupportedSource)
	}

	b, err := newBuilder(ext, opts, false)
	if err != nil {
		return nil, err
	}
	if b.autoLabels {
		return nil, fmt.Errorf("%w: value labels are not derived on rebuild", errs.ErrInvalidOption)
	}

	return b.fromTable(t)
}

type builder struct {
	cfg *buildConfig
	resolver
}

func newBuilder(ext format.Extension, opts []BuildOption, autoDefault bool) (*builder, error) {
	policy, ok := format.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
	}

	cfg := newBuildConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &builder{
		cfg: cfg,
		resolver: resolver{
			policy:     policy,
			autoLabels: derefOr(cfg.autoLabels, autoDefault),
			log:        cfg.logger.With(zap.String("ext", string(policy.Ext))),
		},
	}, nil
}

// seedLabels registers the dictionaries given through WithValueLabels.
func (b *builder) seedLabels(base *labels.Registry) error {
	b.registry = base
	for _, p := range b.cfg.presetLabels {
		if err := b.registry.Assign(p.name, p.dict); err != nil {
			return err
		}
	}

	return nil
}

func (b *builder) fromSource(src source.Source) (*Table, error) {
	if err := b.seedLabels(labels.NewRegistry()); err != nil {
		return nil, err
	}

	names := src.ColumnNames()
	tracker := collision.NewTracker(len(names))
	md, _ := src.(source.Metadata)

	cols := make([]Column, 0, len(names))
	metas := make([]ColumnMeta, 0, len(names))
	rows := -1
	for i, name := range names {
		if _, err := tracker.Track(name); err != nil {
			return nil, errs.NewColumnError(i, name, err)
		}

		col, err := src.Column(i)
		if err != nil {
			return nil, errs.NewColumnError(i, name, fmt.Errorf("%w: %w", errs.ErrUnsupportedSource, err))
		}
		if col == nil {
			return nil, errs.NewColumnError(i, name, fmt.Errorf("%w: nil column", errs.ErrUnsupportedSource))
		}
		if rows < 0 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, errs.NewColumnError(i, name,
				fmt.Errorf("%w: %d rows, want %d", errs.ErrColumnLength, col.Len(), rows))
		}

		ov := metadataOverride(md, i, b.log).Merge(b.cfg.overrides[name])
		data, cm, err := b.resolveSource(name, col, ov)
		if err != nil {
			return nil, errs.NewColumnError(i, name, err)
		}
		b.logColumn(i, name, cm)

		cols = append(cols, data)
		metas = append(metas, cm)
	}
	if err := b.checkOverrides(tracker); err != nil {
		return nil, err
	}

	file := b.fileMeta(sourceFileMeta(md), false)

	return b.finish(tracker.Names(), cols, metas, file, nil)
}

func (b *builder) fromTable(t *Table) (*Table, error) {
	if err := b.seedLabels(t.registry.Clone()); err != nil {
		return nil, err
	}

	changed := t.file.Ext != b.policy.Ext
	tracker := collision.NewTracker(len(t.names))

	cols := make([]Column, len(t.cols))
	metas := make([]ColumnMeta, len(t.cols))
	for i, name := range t.names {
		if _, err := tracker.Track(name); err != nil {
			return nil, errs.NewColumnError(i, name, err)
		}

		data, cm, err := b.retarget(t, i, changed)
		if err != nil {
			return nil, errs.NewColumnError(i, name, err)
		}
		b.logColumn(i, name, cm)

		cols[i] = data
		metas[i] = cm
	}
	if err := b.checkOverrides(tracker); err != nil {
		return nil, err
	}

	file := b.fileMeta(t.file, true)

	return b.finish(tracker.Names(), cols, metas, file, t.hasMissing)
}

// retarget resolves column i of an existing table for the builder's extension.
func (b *builder) retarget(t *Table, i int, changed bool) (Column, ColumnMeta, error) {
	name := t.names[i]
	data := t.cols[i].clone()
	cm := t.meta[i]
	ov := b.cfg.overrides[name]

	if changed {
		kind := datetime.Classify(t.file.Ext, cm.Format)
		cm.Format = ""
		if b.cfg.convertTimes && kind != datetime.KindNone {
			times, err := t.Times(i)
			if err != nil {
				return nil, cm, err
			}
			cm.Format = b.timeFormat(kind, "")
			data, err = encodeTimes(b.policy.Ext, cm.Format, len(times), func(r int) (any, bool) {
				return times[r], true
			})
			if err != nil {
				return nil, cm, err
			}
			cm.Type = data.Type()
		}
	}

	if ov.Label != nil {
		cm.Label = *ov.Label
	}
	if ov.Format != nil {
		cm.Format = *ov.Format
	}
	if ov.Measure != nil {
		cm.Measure = *ov.Measure
	}
	if ov.Alignment != nil {
		cm.Alignment = *ov.Alignment
	}
	if ov.ValueLabel != nil {
		cm.ValueLabel = *ov.ValueLabel
	}
	cm.ValueLabel = b.keepRequested(name, cm.ValueLabel)

	requested := 0
	switch {
	case ov.DisplayWidth != nil:
		requested = *ov.DisplayWidth
	case !b.cfg.updateWidth:
		requested = cm.DisplayWidth
	}
	if b.cfg.updateWidth && (cm.Type == format.TypeString || cm.Type == format.TypeDouble) {
		cm.StorageWidth = b.storageWidth(nil, data)
	}
	cm.DisplayWidth = displayWidth(cm.StorageWidth, requested)
	b.checkWidth(name, cm)

	return data, cm, nil
}

// checkOverrides rejects column overrides naming no column of the table.
func (b *builder) checkOverrides(tracker *collision.Tracker) error {
	for name := range b.cfg.overrides {
		if tracker.Index(name) < 0 {
			return fmt.Errorf("%w: metadata override for unknown column %q", errs.ErrInvalidOption, name)
		}
	}

	return nil
}

// fileMeta layers the file metadata: base (from the source or the previous
// table), then WithFileMeta, then the individual file options.
func (b *builder) fileMeta(base FileMeta, rebuild bool) FileMeta {
	fm := base.clone()
	now := time.Now().UTC()

	if seed := b.cfg.fileMeta; seed != nil {
		keep := fm
		fm = seed.clone()
		if fm.FileLabel == "" {
			fm.FileLabel = keep.FileLabel
		}
		if fm.TableName == "" {
			fm.TableName = keep.TableName
		}
		if len(fm.Notes) == 0 {
			fm.Notes = keep.Notes
		}
		if fm.Ext == "" {
			fm.Ext = keep.Ext
			fm.Version = keep.Version
		}
	}
	if b.cfg.fileLabel != nil {
		fm.FileLabel = *b.cfg.fileLabel
	}
	if b.cfg.tableName != nil {
		fm.TableName = *b.cfg.tableName
	}
	if b.cfg.notesSet {
		fm.Notes = slices.Clone(b.cfg.notes)
	}
	if b.cfg.compression != 0 {
		fm.Compression = b.cfg.compression
	}
	if b.cfg.endianness != 0 {
		fm.Endianness = b.cfg.endianness
	}

	if format.Normalize(fm.Ext) != b.policy.Ext || fm.Version == 0 {
		fm.Version = b.policy.DefaultVersion
	}
	fm.Ext = b.policy.Ext

	if fm.CreationTime.IsZero() {
		fm.CreationTime = now
	}
	if rebuild || fm.ModifiedTime.IsZero() {
		fm.ModifiedTime = now
	}
	if fm.Encoding == "" {
		fm.Encoding = DefaultEncoding
	}
	if fm.Compression == 0 {
		fm.Compression = format.CompressionNone
	}
	if fm.Endianness == 0 {
		fm.Endianness = endian.Host()
	}
	if b.cfg.fileMeta == nil && !rebuild {
		fm.Is64Bit = true
	}
	if fm.TableName != "" && !b.policy.SupportsTableName {
		b.log.Debug("table name is not written by this format", zap.String("table_name", fm.TableName))
	}

	return fm
}

// finish freezes the registry, recomputes counts and returns the table.
func (b *builder) finish(names []string, cols []Column, metas []ColumnMeta, file FileMeta, prevMissing []bool) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	file.RowCount = rows
	file.ColumnCount = len(cols)

	hasMissing := b.hasMissing(len(cols), prevMissing)

	b.registry.Freeze()

	t := &Table{
		names:      slices.Clone(names),
		index:      make(map[string]int, len(names)),
		cols:       cols,
		meta:       metas,
		file:       file,
		registry:   b.registry,
		hasMissing: hasMissing,
	}
	for i, name := range t.names {
		t.index[name] = i
	}

	b.log.Debug("table built",
		zap.Int("version", file.Version),
		zap.Int("rows", file.RowCount),
		zap.Int("columns", file.ColumnCount),
		zap.Int("value_labels", b.registry.Len()))

	return t, nil
}

// hasMissing picks the has-missing flags: explicit flags of the right length,
// then the previous table's flags, then all true.
func (b *builder) hasMissing(n int, prev []bool) []bool {
	switch {
	case b.cfg.hasMissingSet && len(b.cfg.hasMissing) == n:
		return slices.Clone(b.cfg.hasMissing)
	case len(prev) == n && !b.cfg.hasMissingSet:
		return slices.Clone(prev)
	}

	if b.cfg.hasMissingSet {
		b.log.Warn("has-missing flags ignored, length does not match the column count",
			zap.Int("flags", len(b.cfg.hasMissing)), zap.Int("columns", n))
	}
	flags := make([]bool, n)
	for i := range flags {
		flags[i] = true
	}

	return flags
}

func (b *builder) logColumn(i int, name string, cm ColumnMeta) {
	b.log.Debug("column resolved",
		zap.Int("index", i),
		zap.String("name", name),
		zap.Stringer("type", cm.Type),
		zap.String("format", cm.Format),
		zap.Int("storage_width", cm.StorageWidth),
		zap.Int("display_width", cm.DisplayWidth),
		zap.String("value_label", cm.ValueLabel))
}

// sourceFileMeta reads file-level metadata keys from a source.
func sourceFileMeta(md source.Metadata) FileMeta {
	var fm FileMeta
	if md == nil {
		return fm
	}

	if v, ok := md.FileMetadata(source.KeyFileLabel); ok {
		fm.FileLabel = v
	}
	if v, ok := md.FileMetadata(source.KeyTableName); ok {
		fm.TableName = v
	}
	if v, ok := md.FileMetadata(source.KeyNotes); ok && v != "" {
		fm.Notes = strings.Split(v, "\n")
	}

	return fm
}

package table

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/arloliu/statfile/endian"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/internal/options"
	"github.com/arloliu/statfile/labels"
)

// BuildOption configures Build and Rebuild.
type BuildOption = options.Option[*buildConfig]

type presetLabel struct {
	name string
	dict *labels.Dict
}

type buildConfig struct {
	autoLabels    *bool
	updateWidth   bool
	convertTimes  bool
	presetLabels  []presetLabel
	overrides     map[string]ColumnOverride
	fileLabel     *string
	tableName     *string
	notes         []string
	notesSet      bool
	fileMeta      *FileMeta
	hasMissing    []bool
	hasMissingSet bool
	compression   format.CompressionType
	endianness    endian.Order
	logger        *zap.Logger
}

func newBuildConfig() *buildConfig {
	return &buildConfig{
		updateWidth: true,
		overrides:   make(map[string]ColumnOverride),
		logger:      zap.NewNop(),
	}
}

// WithAutoLabels enables or disables deriving value labels from
// reference-pool encoded columns.
//
// Derivation defaults to on for Build. Rebuild never derives labels and
// rejects WithAutoLabels(true) with errs.ErrInvalidOption.
func WithAutoLabels(enabled bool) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.autoLabels = &enabled
	})
}

// WithUpdateWidth controls whether Rebuild recomputes the storage widths of
// string and 64-bit float columns from the current data. Defaults to true.
// Build always computes widths.
func WithUpdateWidth(enabled bool) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.updateWidth = enabled
	})
}

// WithConvertTimes makes Rebuild re-encode date/time columns for the new
// extension when it differs from the table's current one.
//
// By default a retargeted table keeps its numeric values and loses every
// format string, date/time formats included. With this option date/time
// columns are decoded under the old extension's epoch and unit and encoded
// again with the new extension's default format.
func WithConvertTimes() BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.convertTimes = true
	})
}

// WithValueLabels registers a dictionary under name before any column is
// resolved. Columns request it through their value-label metadata.
func WithValueLabels(name string, dict *labels.Dict) BuildOption {
	return options.New(func(c *buildConfig) error {
		if name == "" {
			return fmt.Errorf("%w: empty value label name", errs.ErrInvalidOption)
		}
		if dict == nil {
			return fmt.Errorf("%w: nil dictionary for %q", errs.ErrInvalidOption, name)
		}
		c.presetLabels = append(c.presetLabels, presetLabel{name: name, dict: dict.Clone()})

		return nil
	})
}

// WithColumnMeta overrides metadata of the named column. Repeated overrides
// of one column are merged, later fields winning.
func WithColumnMeta(column string, override ColumnOverride) BuildOption {
	return options.New(func(c *buildConfig) error {
		if column == "" {
			return fmt.Errorf("%w: column override without a name", errs.ErrInvalidOption)
		}
		c.overrides[column] = c.overrides[column].Merge(override)

		return nil
	})
}

// WithFileLabel sets the free-text file label.
func WithFileLabel(label string) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.fileLabel = &label
	})
}

// WithTableName sets the table name written by formats that support one.
func WithTableName(name string) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.tableName = &name
	})
}

// WithNotes replaces the file notes.
func WithNotes(notes ...string) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.notes = slices.Clone(notes)
		c.notesSet = true
	})
}

// WithFileMeta seeds the file-level metadata.
//
// Row and column counts are ignored. The version is kept only when meta.Ext
// equals the target extension; otherwise the target's default is used.
// Label, table name and notes from meta are overridden by WithFileLabel,
// WithTableName and WithNotes.
func WithFileMeta(meta FileMeta) BuildOption {
	return options.NoError(func(c *buildConfig) {
		m := meta.clone()
		c.fileMeta = &m
	})
}

// WithHasMissing supplies the per-column has-missing flags. When the slice
// length differs from the column count every flag defaults to true.
func WithHasMissing(flags []bool) BuildOption {
	return options.NoError(func(c *buildConfig) {
		c.hasMissing = slices.Clone(flags)
		c.hasMissingSet = true
	})
}

// WithCompression records the output compression in the file metadata.
// It is informational; the writer applies the compression.
func WithCompression(compressionType format.CompressionType) BuildOption {
	return options.New(func(c *buildConfig) error {
		if compressionType < format.CompressionNone || compressionType > format.CompressionGzip {
			return fmt.Errorf("%w: compression %s", errs.ErrInvalidOption, compressionType)
		}
		c.compression = compressionType

		return nil
	})
}

// WithEndianness sets the byte order recorded for codecs that honor it.
func WithEndianness(order endian.Order) BuildOption {
	return options.New(func(c *buildConfig) error {
		if order != endian.Little && order != endian.Big {
			return fmt.Errorf("%w: byte order %d", errs.ErrInvalidOption, order)
		}
		c.endianness = order

		return nil
	})
}

// WithLogger sets the logger used to report resolution decisions.
// A nil logger disables logging.
func WithLogger(logger *zap.Logger) BuildOption {
	return options.NoError(func(c *buildConfig) {
		if logger == nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	})
}

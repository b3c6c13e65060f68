// Package statfile writes tabular data to statistical file formats (Stata
// .dta, SAS .xpt and .sas7bdat, SPSS .sav and .por) through pluggable codecs.
//
// The package resolves a source table into an immutable intermediate
// representation, the table.Table, that carries everything a codec needs:
// canonical column storage types, storage and display widths, date/time
// formats with their numeric encodings, and a value-label registry. Codecs
// are registered per extension in a codec.Registry and only consume the
// resolved table.
//
// # Core Features
//
//   - Storage type mapping from Go element types, best effort and lossy for 64-bit integers
//   - Date and datetime columns encoded against each format's epoch and unit
//   - Value labels from labeled columns, or derived from dictionary-encoded columns
//   - Retargeting a table to another extension, with optional width recomputation
//   - Apache Arrow records and tables as input
//   - Streaming output compression (Zstd, S2, LZ4, Gzip) selected by a trailing path suffix
//
// # Basic Usage
//
//	frame := source.NewFrame().
//	    Add("id", source.Values([]int32{1, 2, 3})).
//	    Add("region", source.Categorical([]string{"north", "south", "north"}, nil))
//
//	tbl, err := statfile.Write("survey.dta", frame)
//
// The extension comes from the path suffix, after stripping a compression
// suffix: "survey.dta.zst" writes a zstd-compressed .dta stream. An unknown
// extension, or one without a registered codec, fails with
// errs.ErrUnsupportedFormat before the file is created.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the table and
// codec packages. For fine-grained control use table.Build and codec.Encode
// directly.
package statfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"github.com/arloliu/statfile/codec"
	"github.com/arloliu/statfile/compress"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/source"
	"github.com/arloliu/statfile/source/arrowsrc"
	"github.com/arloliu/statfile/table"
)

// Build resolves data into a table for ext.
//
// Parameters:
//   - data: a *table.Table (retargeted), a source.Source, an arrow.Record or an arrow.Table
//   - ext: target extension
//   - opts: table build options
//
// Returns:
//   - *table.Table: the resolved table
//   - error: errs.ErrUnsupportedSource for any other input, or a build error
func Build(data any, ext format.Extension, opts ...table.BuildOption) (*table.Table, error) {
	switch d := data.(type) {
	case *table.Table:
		return table.Rebuild(d, ext, opts...)
	case source.Source:
		return table.Build(d, ext, opts...)
	case arrow.Record:
		src, err := arrowsrc.FromRecords(d)
		if err != nil {
			return nil, err
		}
		defer src.Release()

		return table.Build(src, ext, opts...)
	case arrow.Table:
		src, err := arrowsrc.New(d)
		if err != nil {
			return nil, err
		}
		defer src.Release()

		return table.Build(src, ext, opts...)
	default:
		return nil, fmt.Errorf("%w: %T", errs.ErrUnsupportedSource, data)
	}
}

// Write resolves data and writes it to path.
//
// The target extension is the lower-cased path suffix, after removing a
// trailing compression suffix (.zst, .sz, .lz4, .gz); WithExt overrides it.
// The extension and its codec are checked, and the table is built, before
// the file is created. A codec failure leaves a truncated file behind.
//
// Returns:
//   - *table.Table: the table that was written
//   - error: errs.ErrUnsupportedFormat, a build error, or an error wrapping errs.ErrCodec
func Write(path string, data any, opts ...Option) (tbl *table.Table, err error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ct, rest := compress.FromSuffix(path)
	if cfg.compressionSet {
		ct = cfg.compression
	}
	c, err := cfg.lookup(rest)
	if err != nil {
		return nil, err
	}

	tbl, err = cfg.buildTable(data, c.Ext, ct)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			tbl, err = nil, cerr
		}
	}()

	stats, err := encode(c, f, tbl, ct)
	if err != nil {
		return nil, err
	}
	cfg.logWrite(tbl, stats, zap.String("path", path))

	return tbl, nil
}

// WriteTo resolves data and writes it to w for ext. Output is uncompressed
// unless WithCompression is given; w is not closed.
func WriteTo(w io.Writer, ext format.Extension, data any, opts ...Option) (*table.Table, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.ext == "" {
		cfg.ext = ext
	}

	c, err := cfg.registry.Lookup(cfg.ext)
	if err != nil {
		return nil, err
	}
	ct := format.CompressionNone
	if cfg.compressionSet {
		ct = cfg.compression
	}

	tbl, err := cfg.buildTable(data, c.Ext, ct)
	if err != nil {
		return nil, err
	}

	stats, err := encode(c, w, tbl, ct)
	if err != nil {
		return nil, err
	}
	cfg.logWrite(tbl, stats)

	return tbl, nil
}

// Read decodes the file at path with the codec registered for its extension.
// Compression is detected from the path suffix as for Write.
func Read(path string, opts ...Option) (*table.Table, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	ct, rest := compress.FromSuffix(path)
	if cfg.compressionSet {
		ct = cfg.compression
	}
	c, err := cfg.lookup(rest)
	if err != nil {
		return nil, err
	}
	if !c.CanDecode() {
		return nil, fmt.Errorf("%w: codec for %s cannot decode", errs.ErrUnsupportedFormat, c.Ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := compress.NewReader(ct, f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tbl, err := codec.Decode(c.NewDecoder(), r)
	if err != nil {
		return nil, err
	}

	file := tbl.FileMeta()
	cfg.logger.Info("read table",
		zap.String("path", path),
		zap.String("ext", string(file.Ext)),
		zap.Int("version", file.Version),
		zap.Int("rows", file.RowCount),
		zap.Int("columns", file.ColumnCount),
		zap.Stringer("compression", ct),
	)

	return tbl, nil
}

func (c *config) lookup(path string) (codec.Codec, error) {
	ext := c.ext
	if ext == "" {
		ext = format.Normalize(format.Extension(filepath.Ext(path)))
		if ext == "" {
			return codec.Codec{}, fmt.Errorf("%w: %q has no extension", errs.ErrUnsupportedFormat, path)
		}
	}

	return c.registry.Lookup(ext)
}

func (c *config) buildTable(data any, ext format.Extension, ct format.CompressionType) (*table.Table, error) {
	opts := make([]table.BuildOption, 0, len(c.build)+2)
	opts = append(opts, table.WithLogger(c.logger), table.WithCompression(ct))
	opts = append(opts, c.build...)

	return Build(data, ext, opts...)
}

func (c *config) logWrite(tbl *table.Table, stats compress.CompressionStats, fields ...zap.Field) {
	file := tbl.FileMeta()
	fields = append(fields,
		zap.String("ext", string(file.Ext)),
		zap.Int("version", file.Version),
		zap.Int("rows", file.RowCount),
		zap.Int("columns", file.ColumnCount),
		zap.Stringer("compression", stats.Algorithm),
		zap.Int64("bytes", stats.CompressedSize),
	)
	if stats.Algorithm != format.CompressionNone {
		fields = append(fields, zap.Float64("ratio", stats.CompressionRatio()))
	}
	c.logger.Info("wrote table", fields...)
}

// encode streams tbl through a fresh encoder of c, compressed with ct.
func encode(c codec.Codec, w io.Writer, tbl *table.Table, ct format.CompressionType) (compress.CompressionStats, error) {
	cw, err := compress.NewWriter(ct, w)
	if err != nil {
		return compress.CompressionStats{}, err
	}

	err = codec.Encode(c.NewEncoder(), cw, tbl)
	if cerr := cw.Close(); err == nil {
		err = cerr
	} else if cerr != nil {
		err = errors.Join(err, cerr)
	}

	return cw.Stats(), err
}

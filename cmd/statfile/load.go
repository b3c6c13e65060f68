package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const csvChunkRows = 4096

// loadTable reads path into an Arrow table, choosing the reader by suffix:
// .parquet/.pq, .arrow/.feather/.ipc (IPC file), .arrows (IPC stream),
// .csv and .tsv. The caller releases the table.
func loadTable(ctx context.Context, path string, mem memory.Allocator) (arrow.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet", ".pq":
		return loadParquet(ctx, f, mem)
	case ".arrow", ".feather", ".ipc":
		return loadIPCFile(f, mem)
	case ".arrows":
		return loadIPCStream(f, mem)
	case ".csv":
		return loadCSV(f, ',', mem)
	case ".tsv":
		return loadCSV(f, '\t', mem)
	default:
		return nil, fmt.Errorf("unsupported input file type %q", ext)
	}
}

func loadParquet(ctx context.Context, f *os.File, mem memory.Allocator) (arrow.Table, error) {
	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}

	return tbl, nil
}

func loadIPCFile(f *os.File, mem memory.Allocator) (arrow.Table, error) {
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow file: %w", err)
	}
	defer r.Close()

	recs := make([]arrow.Record, 0, r.NumRecords())
	defer func() { releaseAll(recs) }()
	for i := range r.NumRecords() {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}
		recs = append(recs, rec)
	}

	return array.NewTableFromRecords(r.Schema(), recs), nil
}

func loadIPCStream(f *os.File, mem memory.Allocator) (arrow.Table, error) {
	r, err := ipc.NewReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow stream: %w", err)
	}
	defer r.Release()

	return collect(r.Schema(), r)
}

func loadCSV(rd io.Reader, comma rune, mem memory.Allocator) (arrow.Table, error) {
	r := csv.NewInferringReader(rd,
		csv.WithAllocator(mem),
		csv.WithHeader(true),
		csv.WithComma(comma),
		csv.WithNullReader(true, ""),
		csv.WithChunk(csvChunkRows),
	)
	defer r.Release()

	tbl, err := collect(nil, r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return tbl, nil
}

type recordReader interface {
	Next() bool
	Record() arrow.Record
	Schema() *arrow.Schema
	Err() error
}

// collect drains r into a table. A nil schema is taken from r after the
// first batch, for readers that infer it.
func collect(schema *arrow.Schema, r recordReader) (arrow.Table, error) {
	var recs []arrow.Record
	defer func() { releaseAll(recs) }()

	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if schema == nil {
		schema = r.Schema()
	}
	if schema == nil {
		return nil, errors.New("input has no schema")
	}

	return array.NewTableFromRecords(schema, recs), nil
}

func releaseAll(recs []arrow.Record) {
	for _, rec := range recs {
		rec.Release()
	}
}

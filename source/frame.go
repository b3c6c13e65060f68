package source

import (
	"fmt"
	"maps"

	"github.com/arloliu/statfile/errs"
)

// Frame is an in-memory Source assembled column by column.
//
// Names and column lengths are not validated here; the table builder
// rejects duplicates and ragged columns.
type Frame struct {
	names    []string
	cols     []Column
	colMeta  []map[string]string
	fileMeta map[string]string
}

var (
	_ Source   = (*Frame)(nil)
	_ Metadata = (*Frame)(nil)
)

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{fileMeta: make(map[string]string)}
}

// Add appends a column with optional key/value metadata and returns f.
func (f *Frame) Add(name string, col Column, meta ...map[string]string) *Frame {
	m := make(map[string]string)
	for _, md := range meta {
		maps.Copy(m, md)
	}

	f.names = append(f.names, name)
	f.cols = append(f.cols, col)
	f.colMeta = append(f.colMeta, m)

	return f
}

// SetFileMetadata records a file-level metadata value and returns f.
func (f *Frame) SetFileMetadata(key, value string) *Frame {
	f.fileMeta[key] = value
	return f
}

func (f *Frame) ColumnNames() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)

	return out
}

// NumRows returns the length of the first column, or 0 for an empty frame.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}

	return f.cols[0].Len()
}

func (f *Frame) Column(i int) (Column, error) {
	if i < 0 || i >= len(f.cols) {
		return nil, fmt.Errorf("%w: column index %d out of range", errs.ErrUnsupportedSource, i)
	}

	return f.cols[i], nil
}

func (f *Frame) FileMetadata(key string) (string, bool) {
	v, ok := f.fileMeta[key]
	return v, ok
}

func (f *Frame) ColumnMetadata(col int, key string) (string, bool) {
	if col < 0 || col >= len(f.colMeta) {
		return "", false
	}
	v, ok := f.colMeta[col][key]

	return v, ok
}

// Package arrowsrc adapts Apache Arrow tables and records to source.Source.
//
// Arrow types map onto source columns as follows:
//
//	bool, int8 … uint64, float16/32/64   the matching Go scalar (float16 as float32)
//	utf8, large_utf8                     string
//	binary, large_binary                 []byte
//	date32, date64                       datetime.Date
//	timestamp (any unit)                 time.Time in UTC
//	dictionary                           source.Pooled with 0-based codes
//
// A dictionary column whose chunks carry different dictionaries is exposed as
// a plain column of its decoded values.
//
// Schema metadata supplies the file_label, table_name and notes keys; field
// metadata supplies label, format, vallabel, measure, alignment and
// display_width.
package arrowsrc

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/arloliu/statfile/datetime"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/source"
)

// Source is a source.Source over an Arrow table. It holds a reference to the
// table until Release is called.
type Source struct {
	tbl   arrow.Table
	names []string
}

var (
	_ source.Source   = (*Source)(nil)
	_ source.Metadata = (*Source)(nil)
)

// New wraps tbl. The table is retained; call Release when done.
func New(tbl arrow.Table) (*Source, error) {
	if tbl == nil {
		return nil, fmt.Errorf("%w: nil arrow table", errs.ErrUnsupportedSource)
	}
	tbl.Retain()

	schema := tbl.Schema()
	names := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		names[i] = f.Name
	}

	return &Source{tbl: tbl, names: names}, nil
}

// FromRecords wraps one or more record batches sharing a schema.
func FromRecords(recs ...arrow.Record) (*Source, error) {
	if len(recs) == 0 || recs[0] == nil {
		return nil, fmt.Errorf("%w: no arrow records", errs.ErrUnsupportedSource)
	}

	tbl := array.NewTableFromRecords(recs[0].Schema(), recs)
	defer tbl.Release()

	return New(tbl)
}

// Release drops the reference to the underlying table.
func (s *Source) Release() {
	if s.tbl != nil {
		s.tbl.Release()
		s.tbl = nil
	}
}

func (s *Source) ColumnNames() []string {
	return slices.Clone(s.names)
}

func (s *Source) NumRows() int {
	return int(s.tbl.NumRows())
}

func (s *Source) Column(i int) (source.Column, error) {
	if i < 0 || i >= len(s.names) {
		return nil, fmt.Errorf("%w: column index %d out of range", errs.ErrUnsupportedSource, i)
	}

	chunks := s.tbl.Column(i).Data().Chunks()
	dt := s.tbl.Schema().Field(i).Type

	if dict, ok := dt.(*arrow.DictionaryType); ok {
		if pool, ok := newPooled(dict, chunks); ok {
			return pool, nil
		}
		dt = dict.ValueType
	}

	elem, err := elemType(dt)
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", s.names[i], err)
	}

	return newChunked(elem, chunks), nil
}

func (s *Source) FileMetadata(key string) (string, bool) {
	return lookup(s.tbl.Schema().Metadata(), key)
}

func (s *Source) ColumnMetadata(col int, key string) (string, bool) {
	if col < 0 || col >= len(s.names) {
		return "", false
	}

	return lookup(s.tbl.Schema().Field(col).Metadata, key)
}

func lookup(md arrow.Metadata, key string) (string, bool) {
	idx := md.FindKey(key)
	if idx < 0 {
		return "", false
	}

	return md.Values()[idx], true
}

var (
	timeType  = reflect.TypeFor[time.Time]()
	dateType  = reflect.TypeFor[datetime.Date]()
	bytesType = reflect.TypeFor[[]byte]()
)

// elemType returns the Go type a column of dt yields.
func elemType(dt arrow.DataType) (reflect.Type, error) {
	switch dt.ID() { //nolint: exhaustive
	case arrow.BOOL:
		return reflect.TypeFor[bool](), nil
	case arrow.INT8:
		return reflect.TypeFor[int8](), nil
	case arrow.INT16:
		return reflect.TypeFor[int16](), nil
	case arrow.INT32:
		return reflect.TypeFor[int32](), nil
	case arrow.INT64:
		return reflect.TypeFor[int64](), nil
	case arrow.UINT8:
		return reflect.TypeFor[uint8](), nil
	case arrow.UINT16:
		return reflect.TypeFor[uint16](), nil
	case arrow.UINT32:
		return reflect.TypeFor[uint32](), nil
	case arrow.UINT64:
		return reflect.TypeFor[uint64](), nil
	case arrow.FLOAT16, arrow.FLOAT32:
		return reflect.TypeFor[float32](), nil
	case arrow.FLOAT64:
		return reflect.TypeFor[float64](), nil
	case arrow.STRING, arrow.LARGE_STRING:
		return reflect.TypeFor[string](), nil
	case arrow.BINARY, arrow.LARGE_BINARY:
		return bytesType, nil
	case arrow.DATE32, arrow.DATE64:
		return dateType, nil
	case arrow.TIMESTAMP:
		return timeType, nil
	default:
		return nil, fmt.Errorf("%w: arrow type %s", errs.ErrUnsupportedType, dt)
	}
}

// valueAt returns element i of arr as the Go type elemType reports.
func valueAt(arr arrow.Array, i int) any {
	switch a := arr.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return a.Value(i)
	case *array.Int16:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return a.Value(i)
	case *array.Uint16:
		return a.Value(i)
	case *array.Uint32:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Float16:
		return a.Value(i).Float32()
	case *array.Float32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return slices.Clone(a.Value(i))
	case *array.LargeBinary:
		return slices.Clone(a.Value(i))
	case *array.Date32:
		return datetime.DateOf(a.Value(i).ToTime())
	case *array.Date64:
		return datetime.DateOf(a.Value(i).ToTime())
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Dictionary:
		return valueAt(a.Dictionary(), a.GetValueIndex(i))
	default:
		return nil
	}
}

// chunks locates a row within a chunked column.
type chunks struct {
	arrs    []arrow.Array
	offsets []int // offsets[k] is the first row of arrs[k]
	n       int
}

func newChunks(arrs []arrow.Array) chunks {
	c := chunks{arrs: arrs, offsets: make([]int, len(arrs))}
	for k, a := range arrs {
		c.offsets[k] = c.n
		c.n += a.Len()
	}

	return c
}

func (c chunks) locate(i int) (arrow.Array, int) {
	// the last chunk starting at or before i; empty chunks share an offset
	// with their successor and are never picked
	k := sort.Search(len(c.offsets), func(k int) bool { return c.offsets[k] > i }) - 1

	return c.arrs[k], i - c.offsets[k]
}

// chunkedColumn is a plain column over Arrow chunks.
type chunkedColumn struct {
	chunks
	elem reflect.Type
}

var _ source.Column = (*chunkedColumn)(nil)

func newChunked(elem reflect.Type, arrs []arrow.Array) *chunkedColumn {
	return &chunkedColumn{chunks: newChunks(arrs), elem: elem}
}

func (c *chunkedColumn) Len() int { return c.n }

func (c *chunkedColumn) ElemType() reflect.Type { return c.elem }

func (c *chunkedColumn) IsNull(i int) bool {
	arr, j := c.locate(i)
	return arr.IsNull(j)
}

func (c *chunkedColumn) Value(i int) any {
	arr, j := c.locate(i)
	return valueAt(arr, j)
}

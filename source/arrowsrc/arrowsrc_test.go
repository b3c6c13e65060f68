package arrowsrc

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/statfile/datetime"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/source"
	"github.com/arloliu/statfile/table"
)

var stamp = time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

func surveyRecord(t *testing.T, mem memory.Allocator) arrow.Record {
	t.Helper()

	regionType := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "income", Type: arrow.PrimitiveTypes.Float64, Nullable: true,
			Metadata: arrow.NewMetadata([]string{"label", "format"}, []string{"Monthly income", "%9.2f"})},
		{Name: "city", Type: arrow.BinaryTypes.String},
		{Name: "region", Type: regionType},
		{Name: "seen", Type: &arrow.TimestampType{Unit: arrow.Millisecond}, Nullable: true},
		{Name: "born", Type: arrow.FixedWidthTypes.Date32},
		{Name: "ok", Type: arrow.FixedWidthTypes.Boolean},
	}, func() *arrow.Metadata {
		md := arrow.NewMetadata([]string{"file_label", "notes"}, []string{"Survey wave 1", "first\nsecond"})
		return &md
	}())

	ids := array.NewInt64Builder(mem)
	defer ids.Release()
	ids.AppendValues([]int64{1, 2, 3}, nil)

	income := array.NewFloat64Builder(mem)
	defer income.Release()
	income.AppendValues([]float64{1200.5, 0, 980}, []bool{true, false, true})

	city := array.NewStringBuilder(mem)
	defer city.Release()
	city.AppendValues([]string{"Oslo", "Bergen", "Oslo"}, nil)

	idx := array.NewInt8Builder(mem)
	defer idx.Release()
	idx.AppendValues([]int8{0, 1, 0}, nil)
	dictValues := array.NewStringBuilder(mem)
	defer dictValues.Release()
	dictValues.AppendValues([]string{"north", "south"}, nil)

	seen := array.NewTimestampBuilder(mem, &arrow.TimestampType{Unit: arrow.Millisecond})
	defer seen.Release()
	seen.Append(arrow.Timestamp(stamp.UnixMilli()))
	seen.AppendNull()
	seen.Append(arrow.Timestamp(stamp.Add(time.Hour).UnixMilli()))

	born := array.NewDate32Builder(mem)
	defer born.Release()
	for _, y := range []int{1990, 2000, 2010} {
		born.Append(arrow.Date32FromTime(time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)))
	}

	ok := array.NewBooleanBuilder(mem)
	defer ok.Release()
	ok.AppendValues([]bool{true, false, true}, nil)

	indices := idx.NewArray()
	defer indices.Release()
	dict := dictValues.NewArray()
	defer dict.Release()
	region := array.NewDictionaryArray(regionType, indices, dict)
	defer region.Release()

	cols := []arrow.Array{ids.NewArray(), income.NewArray(), city.NewArray(), region, seen.NewArray(), born.NewArray(), ok.NewArray()}
	for i, c := range cols {
		if i != 3 {
			defer c.Release()
		}
	}

	return array.NewRecord(schema, cols, 3)
}

func TestSource_Columns(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := surveyRecord(t, mem)
	defer rec.Release()

	src, err := FromRecords(rec)
	require.NoError(t, err)
	defer src.Release()

	require.Equal(t, []string{"id", "income", "city", "region", "seen", "born", "ok"}, src.ColumnNames())
	require.Equal(t, 3, src.NumRows())

	income, err := src.Column(1)
	require.NoError(t, err)
	assert.True(t, income.IsNull(1))
	assert.InDelta(t, 980.0, income.Value(2), 1e-9)

	seen, err := src.Column(4)
	require.NoError(t, err)
	assert.Equal(t, datetime.KindDateTime, datetime.KindOf(seen.ElemType()))
	assert.Equal(t, stamp, seen.Value(0))
	assert.True(t, seen.IsNull(1))

	born, err := src.Column(5)
	require.NoError(t, err)
	assert.Equal(t, datetime.NewDate(2000, time.January, 1), born.Value(1))

	region, err := src.Column(3)
	require.NoError(t, err)
	pooled, ok := region.(source.Pooled)
	require.True(t, ok)
	assert.Equal(t, "int8", pooled.RefType().String())
	assert.Equal(t, int64(1), pooled.Ref(1))
	assert.Equal(t, "south", pooled.Value(1))
	require.Equal(t, 2, pooled.PoolSize())
	code, value := pooled.PoolEntry(0)
	assert.Equal(t, int64(0), code)
	assert.Equal(t, "north", value)

	_, err = src.Column(7)
	require.ErrorIs(t, err, errs.ErrUnsupportedSource)
}

func TestSource_Metadata(t *testing.T) {
	rec := surveyRecord(t, memory.NewGoAllocator())
	defer rec.Release()

	src, err := FromRecords(rec)
	require.NoError(t, err)
	defer src.Release()

	v, ok := src.FileMetadata(source.KeyFileLabel)
	require.True(t, ok)
	assert.Equal(t, "Survey wave 1", v)

	_, ok = src.FileMetadata(source.KeyTableName)
	assert.False(t, ok)

	v, ok = src.ColumnMetadata(1, source.KeyLabel)
	require.True(t, ok)
	assert.Equal(t, "Monthly income", v)

	_, ok = src.ColumnMetadata(99, source.KeyLabel)
	assert.False(t, ok)
}

func TestSource_BuildTable(t *testing.T) {
	rec := surveyRecord(t, memory.NewGoAllocator())
	defer rec.Release()

	src, err := FromRecords(rec)
	require.NoError(t, err)
	defer src.Release()

	tbl, err := table.Build(src, format.ExtDta, table.WithAutoLabels(true))
	require.NoError(t, err)

	file := tbl.FileMeta()
	assert.Equal(t, "Survey wave 1", file.FileLabel)
	assert.Equal(t, []string{"first", "second"}, file.Notes)

	income := tbl.ColumnMeta(1)
	assert.Equal(t, "Monthly income", income.Label)
	assert.Equal(t, "%9.2f", income.Format)
	assert.True(t, tbl.HasMissing(1))

	region := tbl.ColumnMeta(3)
	assert.Equal(t, format.TypeInt8, region.Type)
	assert.Equal(t, "region", region.ValueLabel)
	dict, ok := tbl.ValueLabels(3)
	require.True(t, ok)
	label, _ := dict.Get(labels.Int(1))
	assert.Equal(t, "south", label)

	assert.Equal(t, "%tc", tbl.ColumnMeta(4).Format)
	assert.Equal(t, "%td", tbl.ColumnMeta(5).Format)
	assert.Equal(t, format.TypeDouble, tbl.ColumnMeta(5).Type)

	times, err := tbl.Times(4)
	require.NoError(t, err)
	assert.Equal(t, stamp, times[0])
	assert.True(t, times[1].IsZero())
}

func TestSource_ChunkedTable(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "n", Type: arrow.PrimitiveTypes.Int32}}, nil)

	var recs []arrow.Record
	for _, vals := range [][]int32{{1, 2}, {}, {3}} {
		b := array.NewInt32Builder(mem)
		b.AppendValues(vals, nil)
		arr := b.NewArray()
		recs = append(recs, array.NewRecord(schema, []arrow.Array{arr}, int64(len(vals))))
		arr.Release()
		b.Release()
	}

	src, err := FromRecords(recs...)
	require.NoError(t, err)
	defer src.Release()
	for _, r := range recs {
		r.Release()
	}

	require.Equal(t, 3, src.NumRows())
	col, err := src.Column(0)
	require.NoError(t, err)
	got := make([]any, col.Len())
	for i := range got {
		got[i] = col.Value(i)
	}
	assert.Equal(t, []any{int32(1), int32(2), int32(3)}, got)
}

func TestSource_UnsupportedType(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{{Name: "xs", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)}}, nil)

	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	b.Append(true)
	b.ValueBuilder().(*array.Int32Builder).Append(1)
	arr := b.NewArray()
	defer arr.Release()

	rec := array.NewRecord(schema, []arrow.Array{arr}, 1)
	defer rec.Release()

	src, err := FromRecords(rec)
	require.NoError(t, err)
	defer src.Release()

	_, err = src.Column(0)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestNew_Nil(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedSource)

	_, err = FromRecords()
	require.ErrorIs(t, err, errs.ErrUnsupportedSource)
}

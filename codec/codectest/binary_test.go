package codectest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/statfile/codec"
	"github.com/arloliu/statfile/endian"
	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/labels"
	"github.com/arloliu/statfile/source"
	"github.com/arloliu/statfile/table"
)

func sampleTable(t *testing.T, ext format.Extension, opts ...table.BuildOption) *table.Table {
	t.Helper()

	sex, err := labels.DictOf(map[int]string{1: "Male", 2: "Female"})
	require.NoError(t, err)

	frame := source.NewFrame().
		Add("id", source.Values([]int32{1, 2, 3})).
		Add("small", source.Nullable([]int8{-1, 0, 7}, []bool{true, false, true})).
		Add("mid", source.Values([]int16{-300, 0, 300})).
		Add("ratio", source.Values([]float32{0.5, 1.5, -2})).
		Add("income", source.Nullable([]float64{1200.5, 0, 980}, []bool{true, false, true})).
		Add("city", source.Values([]string{"Oslo", "Bergen", "Tromsø"})).
		Add("region", source.Categorical([]string{"north", "south", "north"}, nil)).
		Add("sex", source.NewLabeled([]int8{1, 2, 1}, nil, sex, "")).
		Add("visit", source.Values([]time.Time{
			time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC),
			time.Date(2024, time.March, 16, 8, 0, 0, 0, time.UTC),
			{},
		})).
		SetFileMetadata(source.KeyFileLabel, "household survey").
		SetFileMetadata(source.KeyNotes, "wave 1\nweighted")

	tbl, err := table.Build(frame, ext, opts...)
	require.NoError(t, err)

	return tbl
}

func TestBinary_RoundTrip(t *testing.T) {
	for _, order := range []endian.Order{endian.Little, endian.Big} {
		for _, ext := range format.Extensions() {
			t.Run(string(ext)+"/"+order.String(), func(t *testing.T) {
				meta := table.FileMeta{Endianness: order}
				tbl := sampleTable(t, ext, table.WithFileMeta(meta))

				var buf bytes.Buffer
				c := Binary(ext)
				require.NoError(t, codec.Encode(c.NewEncoder(), &buf, tbl))

				got, err := codec.Decode(c.NewDecoder(), &buf)
				require.NoError(t, err)

				require.Equal(t, tbl.ColumnNames(), got.ColumnNames())
				require.Equal(t, tbl.NumRows(), got.NumRows())
				for i := range tbl.NumColumns() {
					require.Equal(t, tbl.ColumnMeta(i), got.ColumnMeta(i), "column %d", i)
					want, have := tbl.Data(i), got.Data(i)
					for r := range want.Len() {
						require.Equal(t, want.IsMissing(r), have.IsMissing(r))
						if !want.IsMissing(r) {
							require.Equal(t, want.Value(r), have.Value(r))
						}
					}
				}
				require.True(t, tbl.Labels().Equal(got.Labels()))

				wantMeta, gotMeta := tbl.FileMeta(), got.FileMeta()
				require.Equal(t, wantMeta.Version, gotMeta.Version)
				require.Equal(t, wantMeta.Notes, gotMeta.Notes)
				require.Equal(t, wantMeta.FileLabel, gotMeta.FileLabel)
				require.Equal(t, order, gotMeta.Endianness)
				require.True(t, wantMeta.CreationTime.Equal(gotMeta.CreationTime))

				require.Equal(t, []bool{false, true, false, false, true, false, false, false, true}, got.HasMissingFlags())

				visit, _ := got.Lookup("visit")
				times, err := got.Times(visit)
				require.NoError(t, err)
				require.True(t, times[0].Equal(time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)))
				require.True(t, times[2].IsZero())
			})
		}
	}
}

func TestBinary_WidthOverflow(t *testing.T) {
	wide := string(bytes.Repeat([]byte("x"), 201))
	tbl, err := table.Build(source.NewFrame().Add("s", source.Values([]string{wide})), format.ExtXpt)
	require.NoError(t, err)

	err = codec.Encode(Binary(format.ExtXpt).NewEncoder(), &bytes.Buffer{}, tbl)
	require.ErrorIs(t, err, errs.ErrCodec)
	require.ErrorIs(t, err, ErrWidthOverflow)
	require.Contains(t, err.Error(), `variable "s"`)
}

func TestBinary_FixedWidthOverflow(t *testing.T) {
	frame := source.NewFrame().Add("s", source.NewFixedStrings([]string{"abc", "abcdef"}, nil, 4))
	tbl, err := table.Build(frame, format.ExtDta)
	require.NoError(t, err)

	err = codec.Encode(Binary(format.ExtDta).NewEncoder(), &bytes.Buffer{}, tbl)
	require.ErrorIs(t, err, ErrWidthOverflow)
	require.Contains(t, err.Error(), "row 1")
}

func TestBinary_BadStream(t *testing.T) {
	_, err := codec.Decode(&BinaryDecoder{}, bytes.NewReader([]byte("nope")))
	require.ErrorIs(t, err, errs.ErrCodec)
	require.ErrorIs(t, err, ErrBadStream)

	tbl := sampleTable(t, format.ExtDta)
	var buf bytes.Buffer
	require.NoError(t, codec.Encode(&BinaryEncoder{}, &buf, tbl))

	truncated := buf.Bytes()[:buf.Len()-10]
	_, err = codec.Decode(&BinaryDecoder{}, bytes.NewReader(truncated))
	require.ErrorIs(t, err, ErrBadStream)
}

func TestRegisterAll(t *testing.T) {
	reg := codec.NewRegistry()
	RegisterAll(reg)

	require.Equal(t, len(format.Extensions()), len(reg.Extensions()))
	c, err := reg.Lookup("SAV")
	require.NoError(t, err)
	require.Equal(t, format.ExtSav, c.Ext)
	require.True(t, c.CanDecode())
}

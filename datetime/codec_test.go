package datetime

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
)

func TestDefaultFormat(t *testing.T) {
	tests := []struct {
		ext      format.Extension
		datetime string
		date     string
	}{
		{format.ExtDta, "%tc", "%td"},
		{format.ExtXpt, "DATETIME", "DATE"},
		{format.ExtSav, "DATETIME", "DATE"},
		{format.ExtPor, "DATETIME", "DATE"},
		{format.ExtSas7bdat, "DATETIME", "DATE"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ext), func(t *testing.T) {
			got, err := DefaultFormat(tt.ext, KindDateTime)
			require.NoError(t, err)
			assert.Equal(t, tt.datetime, got)

			got, err = DefaultFormat(tt.ext, KindDate)
			require.NoError(t, err)
			assert.Equal(t, tt.date, got)
		})
	}

	_, err := DefaultFormat("csv", KindDateTime)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	_, err = DefaultFormat(format.ExtDta, KindNone)
	require.ErrorIs(t, err, errs.ErrInvalidDatetime)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		ext    format.Extension
		layout string
		want   Kind
	}{
		{format.ExtDta, "%tc", KindDateTime},
		{format.ExtDta, "%tcDD_Mon_CCYY_HH:MM:SS", KindDateTime},
		{format.ExtDta, "%tC", KindDateTime},
		{format.ExtDta, "%td", KindDate},
		{format.ExtDta, "%-tdnn/dd/CCYY", KindDate},
		{format.ExtDta, "%9.0g", KindNone},
		{format.ExtDta, "DATETIME", KindNone},
		{format.ExtSav, "DATETIME20", KindDateTime},
		{format.ExtSav, "adate10", KindDate},
		{format.ExtSav, "F8.2", KindNone},
		{format.ExtPor, "EDATE10", KindDate},
		{format.ExtXpt, "DATETIME", KindDateTime},
		{format.ExtXpt, "DATE9.", KindDate},
		{format.ExtSas7bdat, "E8601DT19.", KindDateTime},
		{format.ExtSas7bdat, "MMDDYY10", KindDate},
		{format.ExtSas7bdat, "%tc", KindNone},
		{"csv", "DATETIME", KindNone},
	}
	for _, tt := range tests {
		t.Run(string(tt.ext)+"/"+tt.layout, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ext, tt.layout))
		})
	}
}

func TestEncode_KnownOffsets(t *testing.T) {
	ts := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	v, err := Encode(format.ExtDta, "%tc", ts)
	require.NoError(t, err)
	assert.InDelta(t, 14610*86400*1000.0, v, 0)

	v, err = Encode(format.ExtDta, "%td", ts)
	require.NoError(t, err)
	assert.InDelta(t, 14610.0, v, 0)

	v, err = Encode(format.ExtXpt, "DATETIME", ts)
	require.NoError(t, err)
	assert.InDelta(t, 14610*86400.0, v, 0)

	v, err = Encode(format.ExtSav, "DATETIME", time.Unix(0, 0).UTC())
	require.NoError(t, err)
	assert.InDelta(t, 12219379200.0, v, 0)

	v, err = Encode(format.ExtSav, "DATE", time.Date(2024, time.March, 15, 12, 30, 45, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 13929885045.0-(12*3600+30*60+45), v, 0)

	v, err = Encode(format.ExtSas7bdat, "DATE", NewDate(2024, time.March, 15).Time())
	require.NoError(t, err)
	assert.InDelta(t, 23450.0, v, 0)
}

func TestEncode_WallClock(t *testing.T) {
	est := time.FixedZone("UTC-5", -5*3600)
	ts := time.Date(2024, time.March, 15, 23, 30, 0, 0, est)
	naive := time.Date(2024, time.March, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		ext    format.Extension
		layout string
	}{
		{format.ExtDta, "%td"},
		{format.ExtDta, "%tc"},
		{format.ExtXpt, "DATETIME"},
		{format.ExtXpt, "DATE"},
		{format.ExtSav, "DATETIME"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ext)+"/"+tt.layout, func(t *testing.T) {
			got, err := Encode(tt.ext, tt.layout, ts)
			require.NoError(t, err)
			want, err := Encode(tt.ext, tt.layout, naive)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 0)
		})
	}

	days, err := Encode(format.ExtDta, "%td", ts)
	require.NoError(t, err)
	assert.InDelta(t, 23450.0, days, 0)

	back, err := Decode(format.ExtDta, "%td", days)
	require.NoError(t, err)
	assert.Equal(t, DateOf(ts), DateOf(back))
}

func TestEncode_BeforeEpoch(t *testing.T) {
	ts := time.Date(1959, time.December, 31, 23, 59, 59, 500*int(time.Millisecond), time.UTC)

	v, err := Encode(format.ExtDta, "%tc", ts)
	require.NoError(t, err)
	assert.InDelta(t, -500.0, v, 0)

	v, err = Encode(format.ExtDta, "%td", ts)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, v, 0)
}

func TestEncode_DropsSubUnitPrecision(t *testing.T) {
	ts := time.Date(2020, time.June, 1, 8, 0, 0, 123456789, time.UTC)

	v, err := Encode(format.ExtDta, "%tc", ts)
	require.NoError(t, err)

	back, err := Decode(format.ExtDta, "%tc", v)
	require.NoError(t, err)
	assert.Equal(t, ts.Truncate(time.Millisecond), back)
}

func TestRoundTrip(t *testing.T) {
	values := []time.Time{
		time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC),
		time.Date(1960, time.January, 1, 0, 0, 1, 0, time.UTC),
		time.Date(2023, time.July, 4, 17, 45, 30, 0, time.UTC),
	}
	for _, ext := range format.Extensions() {
		t.Run(string(ext), func(t *testing.T) {
			layout, err := DefaultFormat(ext, KindDateTime)
			require.NoError(t, err)

			nums, err := ToNumeric(ext, layout, values)
			require.NoError(t, err)
			require.Len(t, nums, len(values))

			back, err := FromNumeric(ext, layout, nums)
			require.NoError(t, err)
			require.Equal(t, values, back)
		})
	}
}

func TestDecode_Missing(t *testing.T) {
	v, err := Decode(format.ExtSav, "DATETIME", math.NaN())
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = Decode(format.ExtXpt, "DATE", math.Inf(1))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestEncode_RejectsForeignFormat(t *testing.T) {
	_, err := Encode(format.ExtSav, "%tc", time.Now())
	require.ErrorIs(t, err, errs.ErrInvalidDatetime)

	_, err = ToNumeric("parquet", "DATETIME", nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedFormat)

	_, err = Unit(format.ExtXpt, "BEST12")
	require.ErrorIs(t, err, errs.ErrInvalidDatetime)
}

func TestUnit(t *testing.T) {
	u, err := Unit(format.ExtDta, "%tc")
	require.NoError(t, err)
	assert.Equal(t, format.UnitMillisecond, u)

	u, err = Unit(format.ExtSav, "DATE")
	require.NoError(t, err)
	assert.Equal(t, format.UnitSecond, u)

	u, err = Unit(format.ExtXpt, "DATE9")
	require.NoError(t, err)
	assert.Equal(t, format.UnitDay, u)
}

func TestKindOfAndAsTime(t *testing.T) {
	assert.Equal(t, KindDateTime, KindOf(reflect.TypeFor[time.Time]()))
	assert.Equal(t, KindDate, KindOf(reflect.TypeFor[*Date]()))
	assert.Equal(t, KindNone, KindOf(reflect.TypeFor[float64]()))
	assert.Equal(t, KindNone, KindOf(nil))

	d := NewDate(2021, time.February, 29)
	assert.Equal(t, "2021-03-01", d.String())

	got, ok := AsTime(d)
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	var nilDate *Date
	_, ok = AsTime(nilDate)
	assert.False(t, ok)

	_, ok = AsTime("2021-03-01")
	assert.False(t, ok)
}

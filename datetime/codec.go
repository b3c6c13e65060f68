// Package datetime converts date/time values to and from the numeric offsets
// stored by each target format.
//
// Every format stores an instant as a number of units since a fixed epoch.
// The epoch and the units come from the format policy table, and the format
// string attached to a column picks between the date and the datetime unit:
//
//	dta       1960-01-01  %tc/%tC milliseconds, %td days
//	xpt       1960-01-01  DATETIME seconds, DATE days
//	sas7bdat  1960-01-01  DATETIME seconds, DATE days
//	sav, por  1582-10-14  seconds for both DATETIME and DATE
//
// Precision beyond the target unit is dropped silently: a datetime written
// with millisecond resolution loses its microseconds, and a date format
// keeps only the calendar day.
//
// The formats hold naive wall-clock readings. A time is stored by its date
// and clock in its own location, so 23:30 at UTC-5 stays 23:30 on the same
// day, and decoded values come back in UTC.
package datetime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
)

const secondsPerDay = 86400

// DefaultFormat returns the format string used for a date/time column of
// kind k written to ext.
func DefaultFormat(ext format.Extension, k Kind) (string, error) {
	p, ok := format.Lookup(ext)
	if !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
	}

	switch k {
	case KindDateTime:
		return p.DatetimeFormat, nil
	case KindDate:
		return p.DateFormat, nil
	default:
		return "", fmt.Errorf("%w: kind %s has no format", errs.ErrInvalidDatetime, k)
	}
}

// Classify returns the kind of date/time a format string denotes for ext.
// KindNone means the format is not a date/time format of that extension.
func Classify(ext format.Extension, layout string) Kind {
	switch format.Normalize(ext) {
	case format.ExtDta:
		return classifyStata(layout)
	case format.ExtSav, format.ExtPor:
		return classifySPSS(layout)
	case format.ExtXpt, format.ExtSas7bdat:
		return classifySAS(layout)
	default:
		return KindNone
	}
}

// Unit returns the policy unit used to store values formatted with layout in ext.
func Unit(ext format.Extension, layout string) (format.Unit, error) {
	p, k, err := resolve(ext, layout)
	if err != nil {
		return 0, err
	}

	return unitFor(p, k), nil
}

// Encode converts the wall clock of t to its numeric offset for ext and layout.
func Encode(ext format.Extension, layout string, t time.Time) (float64, error) {
	p, k, err := resolve(ext, layout)
	if err != nil {
		return 0, err
	}

	return encode(p.Epoch, unitFor(p, k), k, t), nil
}

// Decode converts a numeric offset back to a UTC time. NaN and infinities
// decode to the zero Time, which callers treat as missing.
func Decode(ext format.Extension, layout string, v float64) (time.Time, error) {
	p, k, err := resolve(ext, layout)
	if err != nil {
		return time.Time{}, err
	}

	return decode(p.Epoch, unitFor(p, k), v), nil
}

// ToNumeric encodes a sequence of times for ext and layout.
func ToNumeric(ext format.Extension, layout string, values []time.Time) ([]float64, error) {
	p, k, err := resolve(ext, layout)
	if err != nil {
		return nil, err
	}

	unit := unitFor(p, k)
	out := make([]float64, len(values))
	for i, t := range values {
		out[i] = encode(p.Epoch, unit, k, t)
	}

	return out, nil
}

// FromNumeric decodes a sequence of numeric offsets for ext and layout.
func FromNumeric(ext format.Extension, layout string, values []float64) ([]time.Time, error) {
	p, k, err := resolve(ext, layout)
	if err != nil {
		return nil, err
	}

	unit := unitFor(p, k)
	out := make([]time.Time, len(values))
	for i, v := range values {
		out[i] = decode(p.Epoch, unit, v)
	}

	return out, nil
}

func resolve(ext format.Extension, layout string) (format.Policy, Kind, error) {
	p, ok := format.Lookup(ext)
	if !ok {
		return format.Policy{}, KindNone, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
	}

	k := Classify(p.Ext, layout)
	if k == KindNone {
		return format.Policy{}, KindNone, fmt.Errorf("%w: %q for %s", errs.ErrInvalidDatetime, layout, p.Ext)
	}

	return p, k, nil
}

func unitFor(p format.Policy, k Kind) format.Unit {
	if k == KindDate {
		return p.DateUnit
	}

	return p.DatetimeUnit
}

// encode stores the wall clock of t in its own location.
func encode(epoch time.Time, unit format.Unit, k Kind, t time.Time) float64 {
	t = wallClock(t)
	secs := t.Unix() - epoch.Unix()
	nsec := int64(t.Nanosecond())

	if k == KindDate || unit == format.UnitDay {
		days := floorDiv(secs, secondsPerDay)
		if unit == format.UnitDay {
			return float64(days)
		}
		secs, nsec = days*secondsPerDay, 0
	}

	switch unit { //nolint: exhaustive
	case format.UnitMillisecond:
		return float64(secs)*1000 + float64(nsec/int64(time.Millisecond))
	default:
		return float64(secs) + float64(nsec)/1e9
	}
}

// wallClock reinterprets the date and clock reading of t as UTC.
func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	return time.Date(y, m, d, hh, mm, ss, t.Nanosecond(), time.UTC)
}

func decode(epoch time.Time, unit format.Unit, v float64) time.Time {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}
	}

	var secs, nsec int64
	switch unit { //nolint: exhaustive
	case format.UnitMillisecond:
		ms := int64(math.Round(v))
		secs = floorDiv(ms, 1000)
		nsec = (ms - secs*1000) * int64(time.Millisecond)
	default:
		total := v * unit.Seconds()
		whole := math.Floor(total)
		secs = int64(whole)
		nsec = int64(math.Round((total - whole) * 1e9))
		if nsec >= int64(time.Second) {
			secs++
			nsec -= int64(time.Second)
		}
	}

	return time.Unix(epoch.Unix()+secs, nsec).UTC()
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}

func classifyStata(layout string) Kind {
	s := strings.TrimPrefix(strings.TrimSpace(layout), "%")
	s = strings.TrimLeft(s, "-")
	switch {
	case strings.HasPrefix(s, "tc"), strings.HasPrefix(s, "tC"):
		return KindDateTime
	case strings.HasPrefix(s, "td"), strings.HasPrefix(s, "d"):
		return KindDate
	default:
		return KindNone
	}
}

var (
	spssDateTime = []string{"DATETIME", "YMDHMS"}
	spssDate     = []string{"DATE", "ADATE", "EDATE", "SDATE", "JDATE"}

	sasDateTime = []string{"DATETIME", "E8601DT", "IS8601DT", "B8601DT"}
	sasDate     = []string{"DATE", "MMDDYY", "DDMMYY", "YYMMDD", "E8601DA", "IS8601DA", "B8601DA", "WEEKDATE", "WORDDATE", "MONYY"}
)

func classifySPSS(layout string) Kind {
	return classifyNamed(layout, spssDateTime, spssDate)
}

func classifySAS(layout string) Kind {
	return classifyNamed(layout, sasDateTime, sasDate)
}

// classifyNamed strips a trailing width specification such as "20", "9." or
// "20.3" before matching the format name exactly.
func classifyNamed(layout string, datetimes, dates []string) Kind {
	name := strings.ToUpper(strings.TrimSpace(layout))
	name = strings.TrimRight(name, "0123456789.")

	for _, n := range datetimes {
		if name == n {
			return KindDateTime
		}
	}
	for _, n := range dates {
		if name == n {
			return KindDate
		}
	}

	return KindNone
}

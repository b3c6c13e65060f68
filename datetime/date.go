package datetime

import (
	"fmt"
	"reflect"
	"time"
)

// Date is a calendar date with no time of day and no location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for year, month and day.
// Out-of-range values roll over the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Kind classifies a date/time element type or format string.
type Kind uint8

const (
	KindNone     Kind = 0x0 // KindNone is not a date/time.
	KindDate     Kind = 0x1 // KindDate is a calendar date.
	KindDateTime Kind = 0x2 // KindDateTime is an instant with time of day.
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	default:
		return "None"
	}
}

var (
	timeType = reflect.TypeFor[time.Time]()
	dateType = reflect.TypeFor[Date]()
)

// KindOf reports whether t is a date/time element type understood by the codec.
// Pointer types are dereferenced.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindNone
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return KindDateTime
	case dateType:
		return KindDate
	default:
		return KindNone
	}
}

// AsTime converts a time.Time, Date or a pointer to either into a time.Time.
// The boolean is false for any other value, including nil pointers.
func AsTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, true
	case Date:
		return x.Time(), true
	case *Date:
		if x == nil {
			return time.Time{}, false
		}
		return x.Time(), true
	default:
		return time.Time{}, false
	}
}

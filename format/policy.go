package format

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Extension identifies a target file format by its lower-case file suffix, without the dot.
type Extension string

const (
	ExtDta      Extension = "dta"      // ExtDta is the Stata data format.
	ExtXpt      Extension = "xpt"      // ExtXpt is the SAS transport (exchange) format.
	ExtSav      Extension = "sav"      // ExtSav is the SPSS binary format.
	ExtPor      Extension = "por"      // ExtPor is the SPSS portable (text) format.
	ExtSas7bdat Extension = "sas7bdat" // ExtSas7bdat is the SAS proprietary data format.
)

// Unit is the resolution of a numeric date/time encoding.
type Unit uint8

const (
	UnitMillisecond Unit = 0x1 // UnitMillisecond counts milliseconds since the epoch.
	UnitSecond      Unit = 0x2 // UnitSecond counts seconds since the epoch.
	UnitDay         Unit = 0x3 // UnitDay counts days since the epoch.
)

func (u Unit) String() string {
	switch u {
	case UnitMillisecond:
		return "Millisecond"
	case UnitSecond:
		return "Second"
	case UnitDay:
		return "Day"
	default:
		return "Unknown"
	}
}

// Seconds returns the length of one unit in seconds.
func (u Unit) Seconds() float64 {
	switch u {
	case UnitMillisecond:
		return 0.001
	case UnitDay:
		return 86400
	default:
		return 1
	}
}

// Policy holds every format-dependent decision the table builder and the
// datetime codec consult for one extension.
type Policy struct {
	Ext  Extension
	Name string

	// DefaultVersion is the file format version used when a table is first
	// built for this extension. Zero means the format has no version knob.
	DefaultVersion int

	DatetimeFormat string
	DateFormat     string
	Epoch          time.Time
	DatetimeUnit   Unit
	DateUnit       Unit

	// ExplicitDoubleWidth is set when 64-bit float columns must record an
	// explicit storage width of 8 bytes.
	ExplicitDoubleWidth bool

	// MaxStringWidth is the widest string value the format stores, in bytes.
	MaxStringWidth int

	SupportsTableName bool
	SupportsNotes     bool
	SupportsMeasure   bool
}

// DoubleWidth is the storage width recorded for 64-bit floats when the policy demands it.
const DoubleWidth = 8

// MinDisplayWidth is the smallest display width assigned to any column.
const MinDisplayWidth = 9

var (
	epoch1960 = time.Date(1960, time.January, 1, 0, 0, 0, 0, time.UTC)
	epoch1582 = time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC)
)

var policies = map[Extension]Policy{
	ExtDta: {
		Ext:            ExtDta,
		Name:           "Stata",
		DefaultVersion: 118,
		DatetimeFormat: "%tc",
		DateFormat:     "%td",
		Epoch:          epoch1960,
		DatetimeUnit:   UnitMillisecond,
		DateUnit:       UnitDay,
		MaxStringWidth: 2045,
		SupportsNotes:  true,
	},
	ExtXpt: {
		Ext:                 ExtXpt,
		Name:                "SAS transport",
		DefaultVersion:      5,
		DatetimeFormat:      "DATETIME",
		DateFormat:          "DATE",
		Epoch:               epoch1960,
		DatetimeUnit:        UnitSecond,
		DateUnit:            UnitDay,
		ExplicitDoubleWidth: true,
		MaxStringWidth:      200,
		SupportsTableName:   true,
	},
	ExtSav: {
		Ext:             ExtSav,
		Name:            "SPSS",
		DefaultVersion:  2,
		DatetimeFormat:  "DATETIME",
		DateFormat:      "DATE",
		Epoch:           epoch1582,
		DatetimeUnit:    UnitSecond,
		DateUnit:        UnitSecond,
		MaxStringWidth:  32767,
		SupportsNotes:   true,
		SupportsMeasure: true,
	},
	ExtPor: {
		Ext:             ExtPor,
		Name:            "SPSS portable",
		DatetimeFormat:  "DATETIME",
		DateFormat:      "DATE",
		Epoch:           epoch1582,
		DatetimeUnit:    UnitSecond,
		DateUnit:        UnitSecond,
		MaxStringWidth:  255,
		SupportsMeasure: true,
	},
	ExtSas7bdat: {
		Ext:               ExtSas7bdat,
		Name:              "SAS",
		DatetimeFormat:    "DATETIME",
		DateFormat:        "DATE",
		Epoch:             epoch1960,
		DatetimeUnit:      UnitSecond,
		DateUnit:          UnitDay,
		MaxStringWidth:    32767,
		SupportsTableName: true,
	},
}

// Lookup returns the policy for ext.
//
// The extension is matched case-insensitively and may carry a leading dot.
// Returns false when the extension is not a supported target.
func Lookup(ext Extension) (Policy, bool) {
	p, ok := policies[Normalize(ext)]
	return p, ok
}

// MustLookup is like Lookup but panics for unsupported extensions.
// It is intended for package-level tables built from the Ext constants.
func MustLookup(ext Extension) Policy {
	p, ok := Lookup(ext)
	if !ok {
		panic(fmt.Sprintf("format: unsupported extension %q", ext))
	}

	return p
}

// Extensions returns the supported extensions in a stable order.
func Extensions() []Extension {
	return []Extension{ExtDta, ExtXpt, ExtSav, ExtPor, ExtSas7bdat}
}

// Normalize lower-cases ext and strips a leading dot.
func Normalize(ext Extension) Extension {
	return Extension(strings.ToLower(strings.TrimPrefix(string(ext), ".")))
}

// ExtensionOf returns the normalized suffix of path, e.g. "dta" for "Survey.DTA".
func ExtensionOf(path string) Extension {
	return Normalize(Extension(filepath.Ext(path)))
}

// DefaultVersion returns the documented default format version for ext, or 0
// when the format has none or the extension is unsupported.
func DefaultVersion(ext Extension) int {
	p, ok := Lookup(ext)
	if !ok {
		return 0
	}

	return p.DefaultVersion
}

package labels

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/internal/hash"
)

// Code is a discrete value-label key: either an integer or a single character.
//
// Character codes label string columns and the tagged missing values some
// formats support ('a' through 'z').
type Code struct {
	char bool
	v    int32
}

// Int returns an integer code.
func Int(v int32) Code {
	return Code{v: v}
}

// Char returns a character code.
func Char(r rune) Code {
	return Code{char: true, v: r}
}

// IsChar reports whether c is a character code.
func (c Code) IsChar() bool {
	return c.char
}

// Int returns the integer value of c. For character codes it is the code point.
func (c Code) Int() int32 {
	return c.v
}

// Rune returns the character of c. For integer codes it is the integer reinterpreted.
func (c Code) Rune() rune {
	return c.v
}

func (c Code) String() string {
	if c.char {
		return strconv.QuoteRune(c.v)
	}

	return strconv.FormatInt(int64(c.v), 10)
}

func (c Code) less(o Code) bool {
	if c.char != o.char {
		return !c.char
	}

	return c.v < o.v
}

// CodeOf converts a Go value into a Code.
//
// Integer kinds within the int32 range become integer codes; a one-character
// string becomes a character code. A rune is an int32 and therefore yields an
// integer code; use Char for character codes. Floats are accepted when
// they hold an integral value, since numeric formats store labels as doubles.
func CodeOf(v any) (Code, error) {
	switch x := v.(type) {
	case Code:
		return x, nil
	case int8:
		return Int(int32(x)), nil
	case int16:
		return Int(int32(x)), nil
	case int32:
		return Int(x), nil
	case uint8:
		return Int(int32(x)), nil
	case uint16:
		return Int(int32(x)), nil
	case int:
		return intCode(int64(x))
	case int64:
		return intCode(x)
	case uint32:
		return intCode(int64(x))
	case uint64:
		if x > uint64(1<<31-1) {
			return Code{}, fmt.Errorf("%w: %d out of int32 range", errs.ErrInvalidLabelCode, x)
		}
		return Int(int32(x)), nil
	case float32:
		return floatCode(float64(x))
	case float64:
		return floatCode(x)
	case string:
		if utf8.RuneCountInString(x) != 1 {
			return Code{}, fmt.Errorf("%w: %q is not a single character", errs.ErrInvalidLabelCode, x)
		}
		r, _ := utf8.DecodeRuneInString(x)
		return Char(r), nil
	default:
		return Code{}, fmt.Errorf("%w: %T", errs.ErrInvalidLabelCode, v)
	}
}

func intCode(v int64) (Code, error) {
	if v < -1<<31 || v > 1<<31-1 {
		return Code{}, fmt.Errorf("%w: %d out of int32 range", errs.ErrInvalidLabelCode, v)
	}

	return Int(int32(v)), nil
}

func floatCode(v float64) (Code, error) {
	if v != float64(int64(v)) {
		return Code{}, fmt.Errorf("%w: %v is not integral", errs.ErrInvalidLabelCode, v)
	}

	return intCode(int64(v))
}

// Dict maps codes to display labels.
//
// The zero value is an empty, usable dictionary.
type Dict struct {
	m map[Code]string
}

// NewDict returns an empty dictionary.
func NewDict() *Dict {
	return &Dict{m: make(map[Code]string)}
}

// DictOf builds a dictionary from a map keyed by any value accepted by CodeOf.
func DictOf[K comparable](entries map[K]string) (*Dict, error) {
	d := &Dict{m: make(map[Code]string, len(entries))}
	for k, label := range entries {
		c, err := CodeOf(k)
		if err != nil {
			return nil, err
		}
		d.m[c] = label
	}

	return d, nil
}

// Set assigns label to c, replacing any previous label.
func (d *Dict) Set(c Code, label string) {
	if d.m == nil {
		d.m = make(map[Code]string)
	}
	d.m[c] = label
}

// Get returns the label of c.
func (d *Dict) Get(c Code) (string, bool) {
	if d == nil {
		return "", false
	}
	label, ok := d.m[c]

	return label, ok
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.m)
}

// Codes returns all codes sorted: integers ascending, then characters ascending.
func (d *Dict) Codes() []Code {
	if d == nil {
		return nil
	}

	return slices.SortedFunc(maps.Keys(d.m), func(a, b Code) int {
		switch {
		case a.less(b):
			return -1
		case b.less(a):
			return 1
		default:
			return 0
		}
	})
}

// Equal reports whether d and o hold exactly the same entries.
func (d *Dict) Equal(o *Dict) bool {
	if d.Len() != o.Len() {
		return false
	}
	if d.Len() == 0 {
		return true
	}

	return maps.Equal(d.m, o.m)
}

// Clone returns a deep copy of d.
func (d *Dict) Clone() *Dict {
	if d == nil {
		return NewDict()
	}

	return &Dict{m: maps.Clone(d.m)}
}

// Fingerprint returns an xxHash64 digest of the sorted entries.
// Equal dictionaries always share a fingerprint.
func (d *Dict) Fingerprint() uint64 {
	h := hash.New()
	for _, c := range d.Codes() {
		if c.char {
			h.Byte('c')
		} else {
			h.Byte('i')
		}
		h.Int32(c.v).String(d.m[c])
	}

	return h.Sum64()
}

func (d *Dict) String() string {
	return fmt.Sprintf("labels.Dict(%d entries)", d.Len())
}

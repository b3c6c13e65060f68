package table

import (
	"reflect"
	"slices"

	"github.com/arloliu/statfile/format"
	"github.com/arloliu/statfile/source"
)

// Scalar is the set of Go types backing the canonical storage types.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~float32 | ~float64 | ~string
}

// Column is a canonical table column: a homogeneous sequence of one storage
// type with a missing marker per element.
//
// Every Column is also a source.Column, so a Table can be fed back into the
// builder or handed to a codec without conversion.
type Column interface {
	source.Column

	// Type returns the storage type of the column.
	Type() format.StorageType
	// IsMissing reports whether element i is missing.
	IsMissing(i int) bool
	// MissingCount returns the number of missing elements.
	MissingCount() int

	clone() Column
}

// Vector is the Column implementation for storage type T.
type Vector[T Scalar] struct {
	typ      format.StorageType
	values   []T
	missing  []bool
	nmissing int
}

var (
	_ Column = (*Vector[int8])(nil)
	_ Column = (*Vector[string])(nil)
)

// NewVector creates a column from values and a missing mask.
//
// A nil mask means no element is missing. Missing elements keep whatever
// value sits in values; codecs must consult IsMissing. Both slices are
// copied.
func NewVector[T Scalar](values []T, missing []bool) *Vector[T] {
	v := &Vector[T]{
		typ:    storageOf[T](),
		values: slices.Clone(values),
	}
	for i, m := range missing {
		if i >= len(values) {
			break
		}
		if m {
			if v.missing == nil {
				v.missing = make([]bool, len(values))
			}
			v.missing[i] = true
			v.nmissing++
		}
	}

	return v
}

func storageOf[T Scalar]() format.StorageType {
	var zero T
	switch reflect.TypeOf(zero).Kind() { //nolint: exhaustive
	case reflect.Int8:
		return format.TypeInt8
	case reflect.Int16:
		return format.TypeInt16
	case reflect.Int32:
		return format.TypeInt32
	case reflect.Float32:
		return format.TypeFloat
	case reflect.Float64:
		return format.TypeDouble
	default:
		return format.TypeString
	}
}

func (v *Vector[T]) Len() int { return len(v.values) }

func (v *Vector[T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }

func (v *Vector[T]) Type() format.StorageType { return v.typ }

func (v *Vector[T]) IsMissing(i int) bool {
	return v.missing != nil && v.missing[i]
}

func (v *Vector[T]) IsNull(i int) bool { return v.IsMissing(i) }

func (v *Vector[T]) MissingCount() int { return v.nmissing }

// Value returns element i boxed as T.
func (v *Vector[T]) Value(i int) any { return v.values[i] }

// At returns element i and whether it is present.
func (v *Vector[T]) At(i int) (T, bool) {
	return v.values[i], !v.IsMissing(i)
}

// Values returns a copy of the stored values, missing slots included.
func (v *Vector[T]) Values() []T {
	return slices.Clone(v.values)
}

// Missing returns a copy of the missing mask, or nil when nothing is missing.
func (v *Vector[T]) Missing() []bool {
	return slices.Clone(v.missing)
}

func (v *Vector[T]) clone() Column {
	return &Vector[T]{
		typ:      v.typ,
		values:   slices.Clone(v.values),
		missing:  slices.Clone(v.missing),
		nmissing: v.nmissing,
	}
}

// maxByteLen returns the longest byte length among present string values.
func maxByteLen(c Column) int {
	s, ok := c.(*Vector[string])
	if !ok {
		return 0
	}

	width := 0
	for i, str := range s.values {
		if !s.IsMissing(i) && len(str) > width {
			width = len(str)
		}
	}

	return width
}

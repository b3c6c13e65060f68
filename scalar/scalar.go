// Package scalar maps Go element types onto the canonical storage types
// understood by every supported file format.
//
// The mapping is a best-effort classifier, not a range check: a 64-bit
// integer column maps to 32-bit storage even though large values will not
// survive. Callers that need exactness must validate ranges beforehand.
package scalar

import (
	"fmt"
	"reflect"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
)

// MapType returns the storage type for the element type t.
//
// The policy, in priority order:
//   - 8-bit integers (and bool) map to TypeInt8
//   - 16-bit integers map to TypeInt16
//   - every other integer width maps to TypeInt32
//   - float32 maps to TypeFloat
//   - every other real number maps to TypeDouble
//   - string-like types (string kinds and byte slices) map to TypeString
//
// Named types are classified by their underlying kind. Pointer types are
// dereferenced, so *int16 maps like int16. Anything else, such as complex
// numbers or structs, fails with errs.ErrUnsupportedType.
func MapType(t reflect.Type) (format.StorageType, error) {
	if t == nil {
		return 0, fmt.Errorf("%w: nil type", errs.ErrUnsupportedType)
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() { //nolint: exhaustive
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return format.TypeInt8, nil
	case reflect.Int16, reflect.Uint16:
		return format.TypeInt16, nil
	case reflect.Int, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return format.TypeInt32, nil
	case reflect.Float32:
		return format.TypeFloat, nil
	case reflect.Float64:
		return format.TypeDouble, nil
	case reflect.String:
		return format.TypeString, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return format.TypeString, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", errs.ErrUnsupportedType, t)
}

// MapValue is MapType applied to the dynamic type of v.
func MapValue(v any) (format.StorageType, error) {
	return MapType(reflect.TypeOf(v))
}

// Of returns the storage type of the type parameter T.
func Of[T any]() (format.StorageType, error) {
	return MapType(reflect.TypeFor[T]())
}

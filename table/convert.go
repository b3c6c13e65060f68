package table

import (
	"fmt"
	"reflect"

	"github.com/arloliu/statfile/errs"
	"github.com/arloliu/statfile/format"
)

// getter yields element i of a source column and whether it is present.
type getter func(i int) (any, bool)

// materialize copies n elements into a new Vector of storage type typ.
func materialize(typ format.StorageType, n int, get getter) (Column, error) {
	switch typ {
	case format.TypeInt8:
		return fill(n, get, toInteger[int8])
	case format.TypeInt16:
		return fill(n, get, toInteger[int16])
	case format.TypeInt32:
		return fill(n, get, toInteger[int32])
	case format.TypeFloat:
		return fill(n, get, toReal[float32])
	case format.TypeDouble:
		return fill(n, get, toReal[float64])
	case format.TypeString:
		return fill(n, get, toString)
	default:
		return nil, fmt.Errorf("%w: storage type %s", errs.ErrUnsupportedType, typ)
	}
}

func fill[T Scalar](n int, get getter, conv func(any) (T, error)) (*Vector[T], error) {
	v := &Vector[T]{typ: storageOf[T](), values: make([]T, n)}
	for i := range n {
		x, ok := get(i)
		if !ok {
			if v.missing == nil {
				v.missing = make([]bool, n)
			}
			v.missing[i] = true
			v.nmissing++

			continue
		}

		val, err := conv(x)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		v.values[i] = val
	}

	return v, nil
}

// unwrap unwraps pointers; a nil pointer or nil interface reports false.
func unwrap(x any) (reflect.Value, bool) {
	rv := reflect.ValueOf(x)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}

	return rv, rv.IsValid()
}

func toInteger[T int8 | int16 | int32](x any) (T, error) {
	rv, _ := unwrap(x)
	switch rv.Kind() { //nolint: exhaustive
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return T(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return T(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return T(rv.Float()), nil
	default:
		return 0, fmt.Errorf("%w: %T is not an integer", errs.ErrUnsupportedType, x)
	}
}

func toReal[T float32 | float64](x any) (T, error) {
	rv, _ := unwrap(x)
	switch rv.Kind() { //nolint: exhaustive
	case reflect.Float32, reflect.Float64:
		return T(rv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return T(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return T(rv.Uint()), nil
	default:
		return 0, fmt.Errorf("%w: %T is not a real number", errs.ErrUnsupportedType, x)
	}
}

func toString(x any) (string, error) {
	rv, _ := unwrap(x)
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return string(rv.Bytes()), nil
	default:
		return "", fmt.Errorf("%w: %T is not a string", errs.ErrUnsupportedType, x)
	}
}

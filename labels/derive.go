package labels

import "fmt"

// Pool is a reference-pool encoded column: a small set of codes, each
// standing for one value.
type Pool interface {
	// PoolSize returns the number of distinct pool entries.
	PoolSize() int
	// PoolEntry returns the code and value of entry k, 0 <= k < PoolSize().
	PoolEntry(k int) (code int64, value any)
}

// Derive builds a dictionary from a reference pool: each entry's code maps
// to the display string of its value.
//
// Values are rendered with fmt.Sprint, except strings which are used as is.
// Codes must fit in int32.
func Derive(p Pool) (*Dict, error) {
	n := p.PoolSize()
	d := &Dict{m: make(map[Code]string, n)}
	for k := range n {
		code, value := p.PoolEntry(k)
		c, err := intCode(code)
		if err != nil {
			return nil, err
		}
		d.m[c] = display(value)
	}

	return d, nil
}

func display(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

// MustDerive is like Derive but panics on an out-of-range code.
func MustDerive(p Pool) *Dict {
	d, err := Derive(p)
	if err != nil {
		panic(fmt.Sprintf("labels: %v", err))
	}

	return d
}

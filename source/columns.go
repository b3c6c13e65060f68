package source

import (
	"maps"
	"reflect"
	"slices"

	"github.com/arloliu/statfile/labels"
)

// Integer is the set of Go integer types usable as pool codes.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Slice is a column backed by a Go slice and an optional validity mask.
type Slice[T any] struct {
	values []T
	valid  []bool
}

var _ Column = (*Slice[int])(nil)

// Values returns a column with no missing elements.
func Values[T any](values []T) *Slice[T] {
	return &Slice[T]{values: values}
}

// Nullable returns a column where valid[i] == false marks element i missing.
// A nil mask means every element is present.
func Nullable[T any](values []T, valid []bool) *Slice[T] {
	return &Slice[T]{values: values, valid: valid}
}

// Pointers returns a column where nil pointers are missing.
func Pointers[T any](values []*T) *Slice[T] {
	out := make([]T, len(values))
	valid := make([]bool, len(values))
	for i, p := range values {
		if p != nil {
			out[i] = *p
			valid[i] = true
		}
	}

	return &Slice[T]{values: out, valid: valid}
}

func (s *Slice[T]) Len() int { return len(s.values) }

func (s *Slice[T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }

func (s *Slice[T]) IsNull(i int) bool {
	return s.valid != nil && !s.valid[i]
}

func (s *Slice[T]) Value(i int) any { return s.values[i] }

// FixedStrings is a string column with a declared storage width.
type FixedStrings struct {
	*Slice[string]
	width int
}

var _ FixedWidth = (*FixedStrings)(nil)

// NewFixedStrings returns a fixed-width string column.
func NewFixedStrings(values []string, valid []bool, width int) *FixedStrings {
	return &FixedStrings{Slice: Nullable(values, valid), width: width}
}

func (f *FixedStrings) FixedWidth() int { return f.width }

// PooledColumn is a reference-pool encoded column: each row holds a code of
// type R, and the pool maps codes to values of type T.
type PooledColumn[R Integer, T any] struct {
	refs  []R
	valid []bool
	pool  map[R]T
	codes []R
}

var _ Pooled = (*PooledColumn[int32, string])(nil)

// NewPooled returns a pooled column. A nil valid mask means no missing rows.
// Every non-missing ref must be a key of pool.
func NewPooled[R Integer, T any](refs []R, valid []bool, pool map[R]T) *PooledColumn[R, T] {
	return &PooledColumn[R, T]{
		refs:  refs,
		valid: valid,
		pool:  pool,
		codes: slices.Sorted(maps.Keys(pool)),
	}
}

// Categorical pools string values, assigning codes 1, 2, ... in order of
// first appearance. Missing rows get code 0, which is not part of the pool.
func Categorical(values []string, valid []bool) *PooledColumn[int32, string] {
	refs := make([]int32, len(values))
	pool := make(map[int32]string)
	seen := make(map[string]int32)
	for i, v := range values {
		if valid != nil && !valid[i] {
			continue
		}
		code, ok := seen[v]
		if !ok {
			code = int32(len(seen) + 1)
			seen[v] = code
			pool[code] = v
		}
		refs[i] = code
	}

	return NewPooled(refs, valid, pool)
}

func (p *PooledColumn[R, T]) Len() int { return len(p.refs) }

func (p *PooledColumn[R, T]) ElemType() reflect.Type { return reflect.TypeFor[T]() }

func (p *PooledColumn[R, T]) RefType() reflect.Type { return reflect.TypeFor[R]() }

func (p *PooledColumn[R, T]) IsNull(i int) bool {
	return p.valid != nil && !p.valid[i]
}

func (p *PooledColumn[R, T]) Value(i int) any { return p.pool[p.refs[i]] }

func (p *PooledColumn[R, T]) Ref(i int) int64 { return int64(p.refs[i]) }

func (p *PooledColumn[R, T]) PoolSize() int { return len(p.codes) }

func (p *PooledColumn[R, T]) PoolEntry(k int) (int64, any) {
	c := p.codes[k]
	return int64(c), p.pool[c]
}

// LabeledColumn is a column of values with an explicit value-label dictionary.
type LabeledColumn[T any] struct {
	*Slice[T]
	dict *labels.Dict
	name string
}

var _ Labeled = (*LabeledColumn[int8])(nil)

// NewLabeled returns a labeled column. An empty name requests the default
// dictionary name, which is the column name.
func NewLabeled[T any](values []T, valid []bool, dict *labels.Dict, name string) *LabeledColumn[T] {
	return &LabeledColumn[T]{Slice: Nullable(values, valid), dict: dict, name: name}
}

func (l *LabeledColumn[T]) ValueLabels() *labels.Dict { return l.dict }

func (l *LabeledColumn[T]) LabelName() string { return l.name }

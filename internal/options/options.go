// Package options implements the generic functional-option pattern shared by
// the table builder, the writer and the reader.
package options

// Option configures a target of type T. Options are applied in order and
// the first failing option aborts configuration.
type Option[T any] interface {
	apply(T) error
}

// Func is a functional option backed by a function.
type Func[T any] struct {
	applyFunc func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.applyFunc(target)
}

// New creates an option from a function that may fail.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{applyFunc: fn}
}

// NoError creates an option from a function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		applyFunc: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Chain bundles several options into one, applied in order.
// Nil entries are skipped.
func Chain[T any](opts ...Option[T]) *Func[T] {
	return New(func(target T) error {
		return Apply(target, opts...)
	})
}

// When returns opt if cond holds and a no-op option otherwise.
func When[T any](cond bool, opt Option[T]) Option[T] {
	if !cond {
		return nil
	}

	return opt
}

// Apply applies opts to target in order, skipping nil options, and returns
// the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}

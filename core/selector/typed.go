package selector

import (
	"errors"
	"fmt"
	"reflect"
)

// Column is a reference whose leaf value type is fixed to T. Construction checks
// T against the property's host type, so values read through it never need an
// unchecked type assertion.
type Column[T any] struct {
	path PropertyPath
}

// Typed resolves the path given by names and checks its leaf holds values of type T.
func Typed[T any](s *Selector, names ...string) (Column[T], error) {
	if len(names) == 0 {
		return Column[T]{}, errors.New("typed column needs at least one property name")
	}
	ref := s.Field(names[0])
	for _, n := range names[1:] {
		ref = ref.Field(n)
	}
	path, err := ref.Path()
	if err != nil {
		return Column[T]{}, err
	}

	want := reflect.TypeFor[T]()
	got := path.Leaf().DeclaredType().GoType()
	if got != want {
		return Column[T]{}, fmt.Errorf("property %s holds %v, not %v", path, got, want)
	}
	return Column[T]{path: path}, nil
}

// Path returns the referenced property path.
func (c Column[T]) Path() PropertyPath { return c.path }

// Read converts a storage value of the leaf column to T.
func (c Column[T]) Read(v any) (T, error) {
	var zero T
	hv, err := c.path.Leaf().Read(v)
	if err != nil {
		return zero, err
	}
	if hv == nil {
		return zero, nil
	}
	out, ok := hv.(T)
	if !ok {
		return zero, fmt.Errorf("property %s read %T, not %T", c.path, hv, zero)
	}
	return out, nil
}

// Write converts v to the storage form of the leaf column.
func (c Column[T]) Write(v T) (any, error) {
	return c.path.Leaf().Write(v)
}

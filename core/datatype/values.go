package datatype

import (
	"fmt"
	"reflect"
)

// UDTValue is the storage form of a user-defined type value, keyed by lower-case field name.
type UDTValue map[string]any

// TupleValue is the storage form of a tuple value, one element per component.
type TupleValue []any

// Entry is a single key/value pair. Maps keyed by user types or tuples are carried
// as entry slices because their keys are not comparable.
type Entry struct {
	Key   any
	Value any
}

// Func transforms one value.
type Func func(any) (any, error)

// TransformSlice applies f to every element of a slice or array. A nil input yields nil.
func TransformSlice(in any, f Func) ([]any, error) {
	if in == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a slice, got %T", in)
	}
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return nil, nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		v, err := apply(f, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// TransformMap applies kf to every key and vf to every value of a map.
// Either function may be nil to keep that side untouched.
func TransformMap(in any, kf, vf Func) (map[any]any, error) {
	if in == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected a map, got %T", in)
	}
	if rv.IsNil() {
		return nil, nil
	}
	out := make(map[any]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := apply(kf, iter.Key().Interface())
		if err != nil {
			return nil, fmt.Errorf("key %v: %w", iter.Key().Interface(), err)
		}
		v, err := apply(vf, iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("value for key %v: %w", iter.Key().Interface(), err)
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("converted key %T is not comparable", k)
		}
		out[k] = v
	}
	return out, nil
}

// TransformEntries applies kf and vf to every entry, preserving order.
func TransformEntries(in any, kf, vf Func) ([]Entry, error) {
	if in == nil {
		return nil, nil
	}
	entries, ok := in.([]Entry)
	if !ok {
		return nil, fmt.Errorf("expected []datatype.Entry, got %T", in)
	}
	if entries == nil {
		return nil, nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		k, err := apply(kf, e.Key)
		if err != nil {
			return nil, fmt.Errorf("entry %d key: %w", i, err)
		}
		v, err := apply(vf, e.Value)
		if err != nil {
			return nil, fmt.Errorf("entry %d value: %w", i, err)
		}
		out[i] = Entry{Key: k, Value: v}
	}
	return out, nil
}

func apply(f Func, v any) (any, error) {
	if f == nil || v == nil {
		return v, nil
	}
	return f(v)
}

package bptree

import "reflect"

// insertAt inserts v at index idx in s, shifting trailing elements
// right by one.
func insertAt[T any](s []T, idx int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

// removeAt removes the element at index idx, shifting trailing
// elements left by one.
func removeAt[T any](s []T, idx int) []T {
	return append(s[:idx], s[idx+1:]...)
}

// isNil reports whether v holds a nil pointer, interface, slice, map,
// chan or func. Non-nilable kinds (including struct and basic types
// boxed in the any) are never considered nil, matching the intuition
// that a plain int or string key/value can never be "null".
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func isNilValue[T any](v T) bool {
	return isNil(any(v))
}

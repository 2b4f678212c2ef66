package helpers

// Ptr returns a pointer to the provided value.
func Ptr[T any](val T) *T {
	return &val
}

// Value returns the dereferenced value or the zero value if nil.
func Value[T any](val *T) T {
	if val == nil {
		var zero T
		return zero
	}
	return *val
}

// Clone returns a fresh pointer holding a copy of *val, or nil.
func Clone[T any](val *T) *T {
	if val == nil {
		return nil
	}
	cp := *val
	return &cp
}

// NonEmpty returns nil for an empty string so optional fields stay absent.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

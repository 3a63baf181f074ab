package utils

// SafeDeref returns the value pointed to by p, or the zero value if p is nil
func SafeDeref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// StringPtrOrNil returns nil for an empty string so optional JSON fields encode as null
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

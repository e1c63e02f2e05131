package routegen

// resolve returns the group-level value when present, else the global one.
func resolve[T any](groupValue, globalValue *T) *T {
	if groupValue != nil {
		return groupValue
	}

	return globalValue
}

// clone returns a copy of *v, or nil.
func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}

	out := *v

	return &out
}

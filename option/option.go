// Package option contains utility to use the variadic options pattern
package option

// Option represents a function that modifies options of type T.
type Option[T any] func(opts *T)

// Build applies a series of options to the default options struct and returns the modified result.
func Build[T any](defaultOpts *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(defaultOpts)
		}
	}
	return defaultOpts
}

// Apply works on a copy of base, so the original value is left untouched.
func Apply[T any](base T, opts ...Option[T]) T {
	return *Build(&base, opts...)
}

// Join flattens several option groups into a single option, applied in order.
func Join[T any](groups ...[]Option[T]) Option[T] {
	return func(opts *T) {
		for _, group := range groups {
			Build(opts, group...)
		}
	}
}

package youmiya

import (
	"fmt"

	"github.com/a-peyrard/youmiya/option"
)

// Scope is the lifetime policy of the instances built by a class provider.
type Scope int

const (
	// Global instances are shared by the container owning the registration and all its descendants.
	Global Scope = iota
	// Scoped instances are shared inside one container, each descendant builds its own.
	Scoped
	// Transient instances are built on every resolution.
	Transient
)

type (
	// Registration pairs a provider with its options. It is the unit of instance caching.
	Registration struct {
		provider Provider
		options  RegisterOptions
	}

	RegisterOptions struct {
		Scope       Scope
		Lazyable    bool
		Replace     bool
		Description string

		defaultArgs []any
		conditions  []condition
	}

	RegisterOption = option.Option[RegisterOptions]

	// Unregister removes the registration it was returned for, calling it more than once is a no-op.
	Unregister func()
)

// NewRegistration builds a standalone registration, for override sources.
func NewRegistration(provider Provider, opts ...RegisterOption) *Registration {
	return &Registration{
		provider: derefProvider(provider),
		options:  *option.Build(defaultRegisterOptions(), opts...),
	}
}

func defaultRegisterOptions() *RegisterOptions {
	return &RegisterOptions{Scope: Global, Lazyable: true}
}

func (r *Registration) Provider() Provider {
	return r.provider
}

func (r *Registration) Options() RegisterOptions {
	return r.options
}

func (r *Registration) String() string {
	return fmt.Sprintf("%v (scope=%s)", r.provider, r.options.Scope)
}

func WithScope(scope Scope) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Scope = scope
	}
}

// NotLazyable forbids lazy resolution of a class provider, even when requested.
func NotLazyable() RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Lazyable = false
	}
}

// Replace drops the previous registrations of the token instead of appending.
func Replace() RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Replace = true
	}
}

func Description(description string) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.Description = description
	}
}

// DefaultArgs are appended after the resolved constructor arguments of a class provider.
func DefaultArgs(args ...any) RegisterOption {
	return func(opts *RegisterOptions) {
		opts.defaultArgs = args
	}
}

func (s Scope) String() string {
	switch s {
	case Global:
		return "global"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope reads a scope from its string representation.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "global", "singleton":
		return Global, nil
	case "scoped":
		return Scoped, nil
	case "transient":
		return Transient, nil
	default:
		return Global, fmt.Errorf("unknown scope %q", s)
	}
}

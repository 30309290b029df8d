package youmiya

import (
	"context"
	"fmt"
)

type ProviderKind int

const (
	UnknownProviderKind ProviderKind = iota
	ClassProviderKind
	ValueProviderKind
	FactoryProviderKind
	TokenProviderKind
	AsyncProviderKind
)

type (
	// Provider describes how to produce a value for a token.
	//
	// The five known implementations are ClassProvider, ValueProvider, FactoryProvider, TokenProvider and
	// AsyncProvider, resolving any other implementation fails with ErrUnsupportedProvider.
	Provider interface {
		Kind() ProviderKind
	}

	// FactoryFunc produces a value from the current resolution context.
	FactoryFunc func(ctx ResolutionContext) (any, error)

	// AsyncLoader loads the class to instantiate, it is invoked at most once per successful load.
	AsyncLoader func(ctx context.Context, rc ResolutionContext) (*Class, error)

	ClassProvider struct {
		Class *Class
		// DefaultArgs are appended to the resolved constructor arguments.
		DefaultArgs []any
	}

	ValueProvider struct {
		Value any
	}

	FactoryProvider struct {
		Factory FactoryFunc
	}

	TokenProvider struct {
		Target Token
	}

	AsyncProvider struct {
		Loader AsyncLoader
	}
)

func (p ClassProvider) Kind() ProviderKind   { return ClassProviderKind }
func (p ValueProvider) Kind() ProviderKind   { return ValueProviderKind }
func (p FactoryProvider) Kind() ProviderKind { return FactoryProviderKind }
func (p TokenProvider) Kind() ProviderKind   { return TokenProviderKind }
func (p AsyncProvider) Kind() ProviderKind   { return AsyncProviderKind }

func (p ClassProvider) String() string {
	return fmt.Sprintf("ClassProvider(%s)", p.Class)
}

func (p ValueProvider) String() string {
	return fmt.Sprintf("ValueProvider(%T)", p.Value)
}

func (p FactoryProvider) String() string {
	return "FactoryProvider"
}

func (p TokenProvider) String() string {
	return fmt.Sprintf("TokenProvider(%s)", TokenString(p.Target))
}

func (p AsyncProvider) String() string {
	return "AsyncProvider"
}

func kindOf(p Provider) ProviderKind {
	switch v := derefProvider(p).(type) {
	case ClassProvider:
		if v.Class == nil {
			return UnknownProviderKind
		}
		return ClassProviderKind
	case ValueProvider:
		return ValueProviderKind
	case FactoryProvider:
		if v.Factory == nil {
			return UnknownProviderKind
		}
		return FactoryProviderKind
	case TokenProvider:
		if v.Target == nil {
			return UnknownProviderKind
		}
		return TokenProviderKind
	case AsyncProvider:
		if v.Loader == nil {
			return UnknownProviderKind
		}
		return AsyncProviderKind
	default:
		return UnknownProviderKind
	}
}

func isClassProvider(p Provider) bool {
	return kindOf(p) == ClassProviderKind
}

// derefProvider normalizes pointer variants to their value form.
func derefProvider(p Provider) Provider {
	switch v := p.(type) {
	case *ClassProvider:
		if v != nil {
			return *v
		}
	case *ValueProvider:
		if v != nil {
			return *v
		}
	case *FactoryProvider:
		if v != nil {
			return *v
		}
	case *TokenProvider:
		if v != nil {
			return *v
		}
	case *AsyncProvider:
		if v != nil {
			return *v
		}
	}
	return p
}

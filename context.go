package youmiya

import (
	"fmt"
	"sync/atomic"

	"github.com/a-peyrard/youmiya/option"
)

type (
	// ResolutionContext is the configuration threaded through a resolution. It is passed by value, every
	// nested resolution derives its own copy.
	ResolutionContext struct {
		// Container is the container the external resolution was started from.
		Container *Container

		ResolveParent bool
		UseCache      bool
		Optional      bool
		Multiple      bool
		Async         bool
		Lazy          bool

		// Prefers is consulted before the registrations of the container.
		Prefers RegistrationSource
		// Alternative is consulted when neither the container nor its parents have a registration.
		Alternative RegistrationSource

		RootToken   Token
		SourceToken Token

		// chain identifies one external resolution, in progress marks are scoped to it.
		chain uint64
	}

	ResolveOption = option.Option[ResolutionContext]
)

func Optional() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Optional = true
	}
}

func Multiple() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Multiple = true
	}
}

// Lazily asks for a *Lazy instead of the instance, for lazyable class providers.
func Lazily() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Lazy = true
	}
}

// Asynchronously marks a resolution expecting *Async handles, async providers return them regardless.
func Asynchronously() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Async = true
	}
}

// NoParent disables the delegation to the parent containers.
func NoParent() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.ResolveParent = false
	}
}

// NoCache skips the instance cache lookups, singletons built are still stored.
func NoCache() ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.UseCache = false
	}
}

func Prefers(source RegistrationSource) ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Prefers = source
	}
}

func Alternative(source RegistrationSource) ResolveOption {
	return func(ctx *ResolutionContext) {
		ctx.Alternative = source
	}
}

// WithContext replaces the whole context, used by factories to resolve with the context they received.
func WithContext(rc ResolutionContext) ResolveOption {
	return func(ctx *ResolutionContext) {
		*ctx = rc
	}
}

var chainSeq atomic.Uint64

func newContext(c *Container, root Token) ResolutionContext {
	return ResolutionContext{
		Container:     c,
		ResolveParent: true,
		UseCache:      true,
		RootToken:     root,
		chain:         chainSeq.Add(1),
	}
}

// dependencyContext derives the context of a declared dependency: per-call flags are reset, then the
// declaration options and the overlay options are applied.
func dependencyContext(ambient ResolutionContext, source Token, opts ...[]ResolveOption) ResolutionContext {
	next := ambient
	next.Optional = false
	next.Multiple = false
	next.Async = false
	next.Lazy = false
	next = option.Apply(next, option.Join(opts...))
	next.SourceToken = source
	return next
}

func (ctx ResolutionContext) String() string {
	return fmt.Sprintf(
		"{root=%s source=%s optional=%t multiple=%t lazy=%t async=%t parent=%t cache=%t}",
		TokenString(ctx.RootToken), TokenString(ctx.SourceToken),
		ctx.Optional, ctx.Multiple, ctx.Lazy, ctx.Async, ctx.ResolveParent, ctx.UseCache,
	)
}

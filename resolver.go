package youmiya

import (
	"fmt"

	"github.com/a-peyrard/youmiya/fieldpath"
	"github.com/a-peyrard/youmiya/slices"
)

// resolveToken looks up the registrations of an unwrapped token, delegating to the parent and the
// alternative source when the container has none, then materializes them.
func (c *Container) resolveToken(token Token, ctx ResolutionContext) (any, error) {
	registrations := c.lookup(token, ctx)
	if len(registrations) == 0 {
		if ctx.ResolveParent && c.parent != nil {
			return c.parent.resolveToken(token, ctx)
		}

		if ctx.Alternative != nil {
			registrations = ctx.Alternative.Get(token)
		}
	}

	if len(registrations) == 0 {
		// an unregistered class is its own provider, only for the token the caller asked for
		if class, ok := token.(*Class); ok && ctx.RootToken == token {
			registrations = []*Registration{
				{provider: ClassProvider{Class: class}, options: RegisterOptions{Scope: Transient, Lazyable: true}},
			}
		} else if ctx.Optional {
			return nil, nil
		} else {
			return nil, &NoProviderFoundError{Token: token}
		}
	}

	if !ctx.Multiple {
		last, _ := slices.Last(registrations)
		return c.resolveRegistration(token, last, ctx)
	}

	values, err := slices.UnsafeMap(registrations, func(registration *Registration) (any, error) {
		return c.resolveRegistration(token, registration, ctx)
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (c *Container) lookup(token Token, ctx ResolutionContext) []*Registration {
	if ctx.Prefers != nil {
		if registrations := ctx.Prefers.Get(token); len(registrations) > 0 {
			return registrations
		}
	}
	return c.registrations.Get(token)
}

// storeFor selects the instance cache of a registration: scoped classes are cached by the container
// the resolution was requested from, everything else by the executing container.
func (c *Container) storeFor(registration *Registration, ctx ResolutionContext) *Store {
	if registration.options.Scope == Scoped && isClassProvider(registration.provider) && ctx.Container != nil {
		return ctx.Container.store
	}
	return c.store
}

func (c *Container) resolveRegistration(token Token, registration *Registration, ctx ResolutionContext) (any, error) {
	store := c.storeFor(registration, ctx)
	if ctx.UseCache {
		if instance, found := store.Get(registration); found {
			return instance, nil
		}
	}

	next := ctx
	next.SourceToken = token

	isClass := isClassProvider(registration.provider)
	lazy := isClass && registration.options.Lazyable && ctx.Lazy

	if _, started := c.tracker.Start(token, c, ctx); !started {
		if lazy {
			return newLazy(c, token, registration, ctx), nil
		}
		return nil, c.tracker.CycleError(token, ctx)
	}
	defer c.tracker.Complete(token, ctx)

	switch provider := registration.provider.(type) {
	case ClassProvider:
		if provider.Class == nil {
			return nil, &UnsupportedProviderError{Provider: provider}
		}
		if lazy {
			return newLazy(c, token, registration, ctx), nil
		}
		return c.instantiateClass(token, registration, provider, store, next)

	case ValueProvider:
		return provider.Value, nil

	case AsyncProvider:
		if provider.Loader == nil {
			return nil, &UnsupportedProviderError{Provider: provider}
		}
		async := newAsync(c, token, provider, next)
		if ctx.UseCache {
			return store.PutIfAbsent(registration, async), nil
		}
		return async, nil

	case FactoryProvider:
		if provider.Factory == nil {
			return nil, &UnsupportedProviderError{Provider: provider}
		}
		result, err := provider.Factory(next)
		if err != nil {
			return nil, fmt.Errorf("factory of %s failed:\n\t%w", TokenString(token), err)
		}
		if result, err = c.decorate(token, result, next); err != nil {
			return nil, err
		}
		if ctx.UseCache {
			result = store.PutIfAbsent(registration, result)
		}
		return result, nil

	case TokenProvider:
		target := UnwrapToken(provider.Target)
		if err := validateToken(target); err != nil {
			return nil, fmt.Errorf("invalid alias target of %s:\n\t%w", TokenString(token), err)
		}
		return c.resolveToken(target, next)

	default:
		return nil, &UnsupportedProviderError{Provider: registration.provider}
	}
}

func (c *Container) instantiateClass(
	token Token,
	registration *Registration,
	provider ClassProvider,
	store *Store,
	ctx ResolutionContext,
) (any, error) {
	class := provider.Class
	descriptors, err := c.metadata.Describe(class)
	if err != nil {
		return nil, err
	}

	args := make([]any, descriptors.arity(), descriptors.arity()+len(provider.DefaultArgs))
	for _, param := range descriptors.Params {
		value, err := c.resolveDependency(token, param.Token, ctx, param.Options, descriptors.Options[param.Index])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parameter %d of %s:\n\t%w", param.Index, class, err)
		}
		args[param.Index] = value
	}
	args = append(args, provider.DefaultArgs...)

	instance, err := class.construct(args)
	if err != nil {
		return nil, fmt.Errorf("failed to construct %s:\n\t%w", class, err)
	}

	for _, prop := range descriptors.Properties {
		value, err := c.resolveDependency(token, prop.Token, ctx, prop.Options, descriptors.Options[prop.Key])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve property %s of %s:\n\t%w", prop.Key, class, err)
		}
		if err = fieldpath.Set(instance, prop.Key, value); err != nil {
			return nil, fmt.Errorf("failed to inject property %s of %s:\n\t%w", prop.Key, class, err)
		}
	}

	if instance, err = c.decorate(token, instance, ctx); err != nil {
		return nil, err
	}

	// a concurrent chain may have cached the singleton first, its instance wins
	switch {
	case registration.options.Scope == Transient:
	case ctx.UseCache:
		instance = store.PutIfAbsent(registration, instance)
	default:
		store.Put(registration, instance)
	}
	c.logger.Debug().
		Str("container", c.identifier).
		Str("token", TokenString(token)).
		Stringer("scope", registration.options.Scope).
		Msg("instantiated class")

	return instance, nil
}

func (c *Container) resolveDependency(
	source Token,
	token Token,
	ambient ResolutionContext,
	opts ...[]ResolveOption,
) (any, error) {
	token = UnwrapToken(token)
	if err := validateToken(token); err != nil {
		return nil, err
	}
	return c.resolveToken(token, dependencyContext(ambient, source, opts...))
}

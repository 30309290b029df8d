package youmiya

import (
	"fmt"
	"sort"
	"sync"

	"github.com/a-peyrard/youmiya/option"
	"github.com/a-peyrard/youmiya/slices"
)

type (
	// Decorator wraps the instances built for a token. Its class receives the instance as first
	// parameter and returns the decorated one; the other parameters are dependencies declared with
	// Param (from index 1) or inferred with AutoWire.
	Decorator struct {
		class       *Class
		priority    int
		description string
	}

	DecorateOptions struct {
		priority    int
		description string
	}

	DecorateOption = option.Option[DecorateOptions]

	decoratorRegistry struct {
		mu    sync.RWMutex
		inner map[Token][]*Decorator
	}
)

// WithPriority orders decorators, the highest priority is applied first.
func WithPriority(priority int) DecorateOption {
	return func(opts *DecorateOptions) {
		opts.priority = priority
	}
}

func DecoratorDescription(description string) DecorateOption {
	return func(opts *DecorateOptions) {
		opts.description = description
	}
}

// NewDecorator wraps a decorating function, or a *Class, checking that its first parameter accepts the
// value it returns.
func NewDecorator(decorator any, opts ...DecorateOption) (*Decorator, error) {
	class, ok := decorator.(*Class)
	if !ok {
		var err error
		if class, err = NewClass(decorator); err != nil {
			return nil, fmt.Errorf("failed to create decorator:\n\t%w", err)
		}
	}
	if class.numParams() < 1 {
		return nil, fmt.Errorf("decorator %s must take the instance to decorate as first parameter", class)
	}
	if !class.provides.AssignableTo(class.paramType(0)) {
		return nil, fmt.Errorf(
			"decorator %s returns %s, which cannot be used as its first parameter %s",
			class, class.provides, class.paramType(0),
		)
	}

	options := option.Build(&DecorateOptions{}, opts...)
	return &Decorator{
		class:       class,
		priority:    options.priority,
		description: options.description,
	}, nil
}

func (d *Decorator) String() string {
	if d.description != "" {
		return fmt.Sprintf("Decorator(%s: %s)", d.class.name, d.description)
	}
	return fmt.Sprintf("Decorator(%s)", d.class.name)
}

func newDecoratorRegistry() *decoratorRegistry {
	return &decoratorRegistry{
		inner: make(map[Token][]*Decorator),
	}
}

func (r *decoratorRegistry) add(token Token, decorator *Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	decorators := append(append([]*Decorator(nil), r.inner[token]...), decorator)
	sort.SliceStable(decorators, func(i, j int) bool {
		return decorators[i].priority > decorators[j].priority
	})
	r.inner[token] = decorators
}

func (r *decoratorRegistry) remove(token Token, decorator *Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()

	decorators := slices.Filter(r.inner[token], func(d *Decorator) bool {
		return d != decorator
	})
	if len(decorators) == 0 {
		delete(r.inner, token)
		return
	}
	r.inner[token] = decorators
}

func (r *decoratorRegistry) get(token Token) []*Decorator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inner[token]
}

// Decorate registers a decorator applied to the instances c builds for token, before they are cached.
// Class and factory results are decorated, as well as the values loaded by async providers.
func (c *Container) Decorate(token Token, decorator any, opts ...DecorateOption) (Unregister, error) {
	key := UnwrapToken(token)
	if err := validateToken(key); err != nil {
		return nil, fmt.Errorf("failed to decorate %s:\n\t%w", TokenString(token), err)
	}
	d, err := NewDecorator(decorator, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decorate %s:\n\t%w", TokenString(key), err)
	}

	c.decorators.add(key, d)
	c.logger.Debug().
		Str("container", c.identifier).
		Str("token", TokenString(key)).
		Stringer("decorator", d).
		Msg("decorator registered")

	var once sync.Once
	return func() {
		once.Do(func() {
			c.decorators.remove(key, d)
		})
	}, nil
}

// decorate applies the decorators of token to instance, resolving their dependencies with ctx.
func (c *Container) decorate(token Token, instance any, ctx ResolutionContext) (any, error) {
	for _, d := range c.decorators.get(token) {
		descriptors, err := c.metadata.Describe(d.class)
		if err != nil {
			return nil, err
		}

		args := make([]any, max(descriptors.arity(), 1))
		args[0] = instance
		for _, param := range descriptors.Params {
			if param.Index == 0 {
				continue
			}
			value, err := c.resolveDependency(token, param.Token, ctx, param.Options, descriptors.Options[param.Index])
			if err != nil {
				return nil, fmt.Errorf("failed to resolve parameter %d of %s:\n\t%w", param.Index, d, err)
			}
			args[param.Index] = value
		}

		if instance, err = d.class.construct(args); err != nil {
			return nil, fmt.Errorf("failed to apply %s to %s:\n\t%w", d, TokenString(token), err)
		}
	}
	return instance, nil
}

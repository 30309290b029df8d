package youmiya

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/a-peyrard/youmiya/option"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type (
	// Container holds registrations and the instances built from them. Containers form a tree through
	// Fork, a child reads its parent's registrations but never writes into its parent.
	Container struct {
		identifier string
		parent     *Container

		registrations *RegistrationMap
		store         *Store
		tracker       *Tracker
		interceptors  *InterceptorRegistry
		decorators    *decoratorRegistry

		metadata MetadataReader
		logger   zerolog.Logger

		defaultScope    Scope
		defaultLazyable bool
	}

	ContainerOptions struct {
		Identifier   string
		Logger       zerolog.Logger
		Metadata     MetadataReader
		DefaultScope Scope
		LazyDefault  bool
	}

	ContainerOption = option.Option[ContainerOptions]

	// Binder is returned by Container.Register to bind a provider to a token.
	Binder struct {
		container *Container
		token     Token
		err       error
	}
)

func WithIdentifier(identifier string) ContainerOption {
	return func(opts *ContainerOptions) {
		opts.Identifier = identifier
	}
}

func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(opts *ContainerOptions) {
		opts.Logger = logger
	}
}

func WithMetadataReader(reader MetadataReader) ContainerOption {
	return func(opts *ContainerOptions) {
		opts.Metadata = reader
	}
}

// WithDefaultScope sets the scope of registrations not specifying one.
func WithDefaultScope(scope Scope) ContainerOption {
	return func(opts *ContainerOptions) {
		opts.DefaultScope = scope
	}
}

// WithLazyDefault sets whether registrations are lazyable when not specified.
func WithLazyDefault(lazyable bool) ContainerOption {
	return func(opts *ContainerOptions) {
		opts.LazyDefault = lazyable
	}
}

// New creates a root container.
func New(opts ...ContainerOption) *Container {
	options := option.Build(
		&ContainerOptions{
			Logger:       zerolog.Nop(),
			Metadata:     ReflectMetadata{},
			DefaultScope: Global,
			LazyDefault:  true,
		},
		opts...,
	)
	return newContainer(nil, *options)
}

func newContainer(parent *Container, options ContainerOptions) *Container {
	if options.Identifier == "" {
		options.Identifier = uuid.NewString()
	}
	if options.Metadata == nil {
		options.Metadata = ReflectMetadata{}
	}
	return &Container{
		identifier:      options.Identifier,
		parent:          parent,
		registrations:   NewRegistrationMap(),
		store:           NewStore(),
		tracker:         NewTracker(),
		interceptors:    NewInterceptorRegistry(),
		decorators:      newDecoratorRegistry(),
		metadata:        options.Metadata,
		logger:          options.Logger,
		defaultScope:    options.DefaultScope,
		defaultLazyable: options.LazyDefault,
	}
}

// Fork creates a child container delegating to c. An empty identifier gets a generated one.
func (c *Container) Fork(identifier string) *Container {
	child := newContainer(c, ContainerOptions{
		Identifier:   identifier,
		Logger:       c.logger,
		Metadata:     c.metadata,
		DefaultScope: c.defaultScope,
		LazyDefault:  c.defaultLazyable,
	})
	c.logger.Debug().
		Str("container", c.identifier).
		Str("child", child.identifier).
		Msg("forked container")
	return child
}

func (c *Container) Identifier() string {
	return c.identifier
}

func (c *Container) Parent() *Container {
	return c.parent
}

func (c *Container) Interceptors() *InterceptorRegistry {
	return c.interceptors
}

func (c *Container) HasReflectionSupport() bool {
	return c.metadata.HasReflectionSupport()
}

// GetRegistration lists the local registrations of token, parents are not consulted.
func (c *Container) GetRegistration(token Token) []*Registration {
	return c.registrations.Get(UnwrapToken(token))
}

// AsSource exposes the local registrations of c as a RegistrationSource.
func (c *Container) AsSource() RegistrationSource {
	return RegistrationSourceFunc(c.GetRegistration)
}

// Register starts a binding for token, the token is validated when the provider is bound.
func (c *Container) Register(token Token) *Binder {
	return &Binder{
		container: c,
		token:     token,
		err:       validateToken(UnwrapToken(token)),
	}
}

// To binds any provider.
func (b *Binder) To(provider Provider, opts ...RegisterOption) (Unregister, error) {
	if b.err != nil {
		return nil, fmt.Errorf("failed to register %s:\n\t%w", TokenString(b.token), b.err)
	}
	return b.container.register(b.token, provider, opts...)
}

// ToClass binds a *Class, or a constructor function wrapped on the fly.
func (b *Binder) ToClass(class any, opts ...RegisterOption) (Unregister, error) {
	c, ok := class.(*Class)
	if !ok {
		var err error
		if c, err = NewClass(class); err != nil {
			return nil, fmt.Errorf("failed to register %s:\n\t%w", TokenString(b.token), err)
		}
	}
	return b.To(ClassProvider{Class: c}, opts...)
}

func (b *Binder) ToValue(value any, opts ...RegisterOption) (Unregister, error) {
	return b.To(ValueProvider{Value: value}, opts...)
}

func (b *Binder) ToFactory(factory FactoryFunc, opts ...RegisterOption) (Unregister, error) {
	return b.To(FactoryProvider{Factory: factory}, opts...)
}

// ToToken aliases the token to target.
func (b *Binder) ToToken(target Token, opts ...RegisterOption) (Unregister, error) {
	return b.To(TokenProvider{Target: target}, opts...)
}

func (b *Binder) ToAsync(loader AsyncLoader, opts ...RegisterOption) (Unregister, error) {
	return b.To(AsyncProvider{Loader: loader}, opts...)
}

// MustTo is like To but panics on error.
func (b *Binder) MustTo(provider Provider, opts ...RegisterOption) Unregister {
	unregister, err := b.To(provider, opts...)
	if err != nil {
		panic(err)
	}
	return unregister
}

func (c *Container) register(token Token, provider Provider, opts ...RegisterOption) (Unregister, error) {
	options := option.Build(
		&RegisterOptions{Scope: c.defaultScope, Lazyable: c.defaultLazyable},
		opts...,
	)

	payload, _ := Dispatch(c.interceptors, BeforeRegister, RegisterPayload{
		Container: c,
		Token:     token,
		Provider:  provider,
		Options:   options,
	})
	key := UnwrapToken(payload.Token)
	if err := validateToken(key); err != nil {
		return nil, fmt.Errorf("failed to register %s:\n\t%w", TokenString(payload.Token), err)
	}
	provider, options = derefProvider(payload.Provider), payload.Options

	ok, err := evaluateConditions(c, options.conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s:\n\t%w", TokenString(key), err)
	}
	if !ok {
		c.logger.Debug().
			Str("container", c.identifier).
			Str("token", TokenString(key)).
			Msg("registration skipped by condition")
		return func() {}, nil
	}

	if class, isClass := provider.(ClassProvider); isClass && len(options.defaultArgs) > 0 && len(class.DefaultArgs) == 0 {
		class.DefaultArgs = options.defaultArgs
		provider = class
	}

	registration := &Registration{provider: provider, options: *options}
	c.registrations.Register(key, registration)

	var once sync.Once
	unregister := Unregister(func() {
		once.Do(func() {
			c.store.Delete(registration)
			c.registrations.Unregister(key, registration)
			c.logger.Debug().
				Str("container", c.identifier).
				Str("token", TokenString(key)).
				Msg("unregistered")
		})
	})

	c.logger.Debug().
		Str("container", c.identifier).
		Str("token", TokenString(key)).
		Stringer("provider", registration).
		Msg("registered")

	Dispatch(c.interceptors, AfterRegister, AfterRegisterPayload{
		RegisterPayload: RegisterPayload{Container: c, Token: key, Provider: provider, Options: options},
		Registration:    registration,
		Unregister:      unregister,
	})

	return unregister, nil
}

// Resolve resolves token with the given options.
//
// The result is the instance, a []any with Multiple, nil for an absent Optional, a *Lazy with Lazy
// on a lazyable class and an *Async for async providers.
func (c *Container) Resolve(token Token, opts ...ResolveOption) (result any, err error) {
	start := time.Now()

	key := UnwrapToken(token)
	ctx := option.Apply(newContext(c, key), opts...)

	original := &ctx
	payload, _ := Dispatch(c.interceptors, BeforeResolve, ResolvePayload{
		Container: c,
		Token:     key,
		Context:   original,
	})
	patched := UnwrapToken(payload.Token)
	// a redirected token becomes the root, unless the handler supplied its own context
	if payload.Context == original && ctx.RootToken == key {
		ctx.RootToken = patched
	}
	key = patched
	ctx = *payload.Context

	if err = validateToken(key); err != nil {
		return nil, err
	}

	result, err = c.resolveToken(key, ctx)

	Dispatch(c.interceptors, AfterResolve, AfterResolvePayload{
		ResolvePayload: ResolvePayload{Container: c, Token: key, Context: &ctx},
		Result:         result,
		Err:            err,
	})

	c.logger.Debug().
		Str("container", c.identifier).
		Str("token", TokenString(key)).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("resolved")

	return result, err
}

// Dispose tears down the cached instances of c, parents are left untouched.
func (c *Container) Dispose(clearRegistrations bool) error {
	err := c.store.Dispose()
	c.tracker.Clear()
	if clearRegistrations {
		c.registrations.Clear()
	}

	if err != nil {
		c.logger.Warn().Str("container", c.identifier).Err(err).Msg("disposed with errors")
		return fmt.Errorf("failed to dispose container %s:\n\t%w", c.identifier, err)
	}
	c.logger.Debug().Str("container", c.identifier).Bool("registrations", clearRegistrations).Msg("disposed")
	return nil
}

// Describe dumps the registrations of c and the number of cached instances.
func (c *Container) Describe() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("* Container %s", c.identifier))
	if c.parent != nil {
		b.WriteString(fmt.Sprintf(" (parent=%s)", c.parent.identifier))
	}
	b.WriteString("\n* Registrations:\n")
	for _, token := range c.registrations.Tokens() {
		b.WriteString(fmt.Sprintf("\t- %s\n", TokenString(token)))
		for _, registration := range c.registrations.Get(token) {
			b.WriteString(fmt.Sprintf("\t\t- %s\n", registration))
			if desc := registration.options.Description; desc != "" {
				b.WriteString(fmt.Sprintf("\t\t\tdescription: %s\n", desc))
			}
			if _, cached := c.store.Get(registration); cached {
				b.WriteString("\t\t\tcached\n")
			}
		}
	}
	b.WriteString(fmt.Sprintf("* Cached instances: %d\n", c.store.Len()))
	return b.String()
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(%s)", c.identifier)
}

// Resolve resolves token from c and converts the result to T.
func Resolve[T any](c *Container, token Token, opts ...ResolveOption) (T, error) {
	var zero T
	value, err := c.Resolve(token, opts...)
	if err != nil {
		return zero, err
	}
	return convert[T](value)
}

// ResolveType resolves the registrations bound to the type T.
func ResolveType[T any](c *Container, opts ...ResolveOption) (T, error) {
	return Resolve[T](c, Type[T](), opts...)
}

func MustResolve[T any](c *Container, token Token, opts ...ResolveOption) T {
	return Must(Resolve[T](c, token, opts...))
}

// TryResolve resolves token optionally, found is false when no provider exists.
func TryResolve[T any](c *Container, token Token, opts ...ResolveOption) (value T, found bool, err error) {
	resolved, err := c.Resolve(token, append(opts, Optional())...)
	if err != nil || resolved == nil {
		return value, false, err
	}
	value, err = convert[T](resolved)
	return value, err == nil, err
}

// ResolveAll resolves every registration of token, in registration order.
func ResolveAll[T any](c *Container, token Token, opts ...ResolveOption) ([]T, error) {
	resolved, err := c.Resolve(token, append(opts, Multiple())...)
	if err != nil || resolved == nil {
		return nil, err
	}
	values := resolved.([]any)
	result := make([]T, 0, len(values))
	for _, v := range values {
		typed, err := convert[T](v)
		if err != nil {
			return nil, err
		}
		result = append(result, typed)
	}
	return result, nil
}

// Must panics if err is not nil.
func Must[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

func convert[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("value of type %T is not a %s", value, TypeOf[T]())
	}
	return typed, nil
}

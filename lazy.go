package youmiya

import (
	"fmt"
	"sync"
)

type lazyState int

const (
	lazyIdle lazyState = iota
	lazyBuilding
	lazyBuilt
)

// Lazy defers the construction of a class until its first access.
//
// The target is built at most once per wrapper. Accessing the wrapper while its own construction is in
// progress is an unbroken cycle and fails with a CircularDependencyError.
type Lazy struct {
	container    *Container
	token        Token
	registration *Registration
	ctx          ResolutionContext

	mu       sync.Mutex
	state    lazyState
	instance any
}

func newLazy(c *Container, token Token, registration *Registration, ctx ResolutionContext) *Lazy {
	ctx.Lazy = false
	return &Lazy{
		container:    c,
		token:        token,
		registration: registration,
		ctx:          ctx,
	}
}

// Get builds the target on first call and returns it.
func (l *Lazy) Get() (any, error) {
	l.mu.Lock()
	switch l.state {
	case lazyBuilt:
		l.mu.Unlock()
		return l.instance, nil
	case lazyBuilding:
		l.mu.Unlock()
		return nil, &CircularDependencyError{Token: l.token, Chain: []Token{l.token, l.token}}
	}
	l.state = lazyBuilding
	l.mu.Unlock()

	instance, err := l.container.resolveRegistration(l.token, l.registration, l.ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = lazyIdle
		return nil, fmt.Errorf("failed to build lazy %s:\n\t%w", TokenString(l.token), err)
	}
	l.state = lazyBuilt
	l.instance = instance
	return instance, nil
}

func (l *Lazy) MustGet() any {
	instance, err := l.Get()
	if err != nil {
		panic(err)
	}
	return instance
}

func (l *Lazy) Token() Token {
	return l.token
}

// Built reports if the target was constructed.
func (l *Lazy) Built() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == lazyBuilt
}

func (l *Lazy) String() string {
	return fmt.Sprintf("Lazy(%s)", TokenString(l.token))
}

// LazyValue builds the target of l and converts it to T.
func LazyValue[T any](l *Lazy) (T, error) {
	var zero T
	instance, err := l.Get()
	if err != nil {
		return zero, err
	}
	return convert[T](instance)
}

package youmiya

import (
	"sync"
)

// RootIdentifier is the identifier of the process wide root container.
const RootIdentifier = "__ROOT_CONTAINER__"

var (
	rootMu           sync.Mutex
	rootContainer    *Container
	runtimeContainer *Container
)

// Root returns the process wide container, creating it on first use.
func Root() *Container {
	rootMu.Lock()
	defer rootMu.Unlock()
	return rootLocked()
}

func rootLocked() *Container {
	if rootContainer == nil {
		rootContainer = New(WithIdentifier(RootIdentifier))
	}
	return rootContainer
}

// ResetRoot disposes the root container and drops it, the next Root call creates a fresh one. The
// runtime container is reset to the root as well.
func ResetRoot() error {
	rootMu.Lock()
	current := rootContainer
	rootContainer = nil
	runtimeContainer = nil
	rootMu.Unlock()

	if current == nil {
		return nil
	}
	return current.Dispose(true)
}

// Runtime returns the container used by the package level Register and ResolveFrom helpers, the root
// container unless SetRuntime or WithContainer changed it.
func Runtime() *Container {
	rootMu.Lock()
	defer rootMu.Unlock()
	if runtimeContainer != nil {
		return runtimeContainer
	}
	return rootLocked()
}

// SetRuntime changes the runtime container and returns the previous one. Nil restores the root.
func SetRuntime(c *Container) *Container {
	rootMu.Lock()
	defer rootMu.Unlock()
	previous := runtimeContainer
	if previous == nil {
		previous = rootLocked()
	}
	runtimeContainer = c
	return previous
}

// WithContainer runs fn with c as runtime container, then restores the previous one.
func WithContainer[T any](c *Container, fn func() T) T {
	previous := SetRuntime(c)
	defer SetRuntime(previous)
	return fn()
}

// Register binds token in the runtime container.
func Register(token Token) *Binder {
	return Runtime().Register(token)
}

// ResolveFrom resolves token from the runtime container.
func ResolveFrom[T any](token Token, opts ...ResolveOption) (T, error) {
	return Resolve[T](Runtime(), token, opts...)
}

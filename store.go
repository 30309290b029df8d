package youmiya

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/a-peyrard/youmiya/set"
)

type (
	// Disposable instances are torn down when the container caching them is disposed.
	Disposable interface {
		Dispose()
	}

	// Closeable instances are closed when the container caching them is disposed.
	Closeable interface {
		Close() error
	}

	disposableWithError interface {
		Dispose() error
	}

	// Store is the instance cache of a container, keyed by registration.
	Store struct {
		mu    sync.RWMutex
		inner map[*Registration]any
		order []*Registration
	}
)

func NewStore() *Store {
	return &Store{
		inner: make(map[*Registration]any),
	}
}

func (s *Store) Put(registration *Registration, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.inner[registration]; !found {
		s.order = append(s.order, registration)
	}
	s.inner[registration] = instance
}

// PutIfAbsent stores instance unless the registration already has one, and returns the stored instance.
func (s *Store) PutIfAbsent(registration *Registration, instance any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, found := s.inner[registration]; found {
		return existing
	}
	s.order = append(s.order, registration)
	s.inner[registration] = instance
	return instance
}

func (s *Store) Get(registration *Registration) (instance any, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	instance, found = s.inner[registration]
	return instance, found
}

func (s *Store) Delete(registration *Registration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.inner[registration]; !found {
		return
	}
	delete(s.inner, registration)
	for i, r := range s.order {
		if r == registration {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inner)
}

// Dispose tears down every stored instance once, in caching order, then empties the store.
func (s *Store) Dispose() error {
	s.mu.Lock()
	registrations := s.order
	instances := s.inner
	s.inner = make(map[*Registration]any)
	s.order = nil
	s.mu.Unlock()

	var (
		disposeErrors = make([]error, 0)
		seen          = set.New[any]()
	)
	for _, registration := range registrations {
		instance := instances[registration]
		if instance == nil {
			continue
		}
		if reflect.TypeOf(instance).Comparable() && !seen.Add(instance) {
			continue
		}
		if err := teardown(instance); err != nil {
			disposeErrors = append(
				disposeErrors,
				fmt.Errorf("failed to dispose instance %T of %s:\n\t%w", instance, registration, err),
			)
		}
	}

	return errors.Join(disposeErrors...)
}

func teardown(instance any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during teardown: %v", r)
		}
	}()

	switch v := instance.(type) {
	case Disposable:
		v.Dispose()
	case disposableWithError:
		return v.Dispose()
	case Closeable:
		return v.Close()
	}
	return nil
}

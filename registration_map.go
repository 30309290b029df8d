package youmiya

import (
	"sync"

	"github.com/a-peyrard/youmiya/slices"
)

// RegistrationMap stores the registrations of a container, in registration order per token.
type RegistrationMap struct {
	mu     sync.RWMutex
	inner  map[Token][]*Registration
	tokens []Token
}

func NewRegistrationMap() *RegistrationMap {
	return &RegistrationMap{
		inner: make(map[Token][]*Registration),
	}
}

// Get returns a copy of the registrations of token, nil if there are none.
func (m *RegistrationMap) Get(token Token) []*Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	registrations := m.inner[token]
	if len(registrations) == 0 {
		return nil
	}
	return append([]*Registration(nil), registrations...)
}

func (m *RegistrationMap) Register(token Token, registration *Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, found := m.inner[token]
	if !found {
		m.tokens = append(m.tokens, token)
	}
	if registration.options.Replace {
		current = nil
	}
	m.inner[token] = append(current, registration)
}

// Unregister removes exactly this registration, and reports if it was present.
func (m *RegistrationMap) Unregister(token Token, registration *Registration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, found := m.inner[token]
	if !found {
		return false
	}
	next := slices.Filter(current, func(r *Registration) bool {
		return r != registration
	})
	if len(next) == len(current) {
		return false
	}
	if len(next) > 0 {
		m.inner[token] = next
	} else {
		m.removeToken(token)
	}
	return true
}

func (m *RegistrationMap) removeToken(token Token) {
	delete(m.inner, token)
	m.tokens = slices.Filter(m.tokens, func(t Token) bool {
		return t != token
	})
}

// Tokens lists the registered tokens in first registration order.
func (m *RegistrationMap) Tokens() []Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Token(nil), m.tokens...)
}

func (m *RegistrationMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inner = make(map[Token][]*Registration)
	m.tokens = nil
}

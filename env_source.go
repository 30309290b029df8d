package youmiya

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// EnvSource serves environment variables as value registrations for string tokens. It is meant to be
// used as a Prefers or Alternative source.
type EnvSource struct {
	prefix string

	mu            sync.Mutex
	registrations map[string]*Registration
}

// NewEnvSource creates a source for the variables named prefix + token.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{
		prefix:        prefix,
		registrations: make(map[string]*Registration),
	}
}

func (e *EnvSource) Get(token Token) []*Registration {
	name, ok := UnwrapToken(token).(string)
	if !ok || name == "" {
		return nil
	}
	value, found := os.LookupEnv(e.prefix + name)
	if !found {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if registration, cached := e.registrations[name]; cached {
		if current := registration.provider.(ValueProvider); current.Value == value {
			return []*Registration{registration}
		}
	}
	registration := NewRegistration(
		ValueProvider{Value: value},
		Description("environment variable "+e.prefix+name),
	)
	e.registrations[name] = registration
	return []*Registration{registration}
}

// Names lists the tokens the source can currently serve.
func (e *EnvSource) Names() []string {
	var names []string
	for _, prop := range os.Environ() {
		name, _, _ := strings.Cut(prop, "=")
		if stripped, ok := strings.CutPrefix(name, e.prefix); ok && stripped != "" {
			names = append(names, stripped)
		}
	}
	sort.Strings(names)
	return names
}

package youmiya

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/a-peyrard/youmiya/fieldpath"
)

// ConfigSource serves every field of a configuration struct as a value registration, under the
// string token "TypeName.Field.Sub". The configuration itself is served under its type token.
type ConfigSource[T any] struct {
	config T
	prefix string

	once          sync.Once
	paths         map[string]reflect.Type
	mu            sync.Mutex
	registrations map[string]*Registration
	self          *Registration
}

func NewConfigSource[T any](config T) *ConfigSource[T] {
	return &ConfigSource[T]{
		config: config,
		prefix: configPrefix(TypeOf[T]()),
	}
}

func configPrefix(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return typ.Name() + "."
}

func (c *ConfigSource[T]) load() {
	c.once.Do(func() {
		c.paths = make(map[string]reflect.Type)
		fieldpath.Walk(TypeOf[T](), func(path string, fieldTyp reflect.Type) {
			c.paths[c.prefix+path] = fieldTyp
		})
		c.registrations = make(map[string]*Registration, len(c.paths))
		c.self = NewRegistration(
			ValueProvider{Value: c.config},
			Description(fmt.Sprintf("configuration %s", TypeOf[T]())),
		)
	})
}

func (c *ConfigSource[T]) Get(token Token) []*Registration {
	c.load()

	token = UnwrapToken(token)
	if typ, ok := token.(reflect.Type); ok && typ == TypeOf[T]() {
		return []*Registration{c.self}
	}
	name, ok := token.(string)
	if !ok {
		return nil
	}
	if _, known := c.paths[name]; !known {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if registration, cached := c.registrations[name]; cached {
		return []*Registration{registration}
	}
	value, err := fieldpath.Get(c.config, strings.TrimPrefix(name, c.prefix))
	if err != nil {
		// a nil intermediate pointer leaves the path without value
		return nil
	}
	registration := NewRegistration(ValueProvider{Value: value}, Description("configuration field "+name))
	c.registrations[name] = registration
	return []*Registration{registration}
}

// Names lists the field tokens served by the source.
func (c *ConfigSource[T]) Names() []string {
	c.load()
	names := make([]string, 0, len(c.paths))
	for name := range c.paths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package manifest registers values and aliases declared in a YAML document into a container.
//
//	values:
//	  - token: db.url
//	    value: postgres://localhost/app
//	    description: main database
//	aliases:
//	  - token: database
//	    target: db.url
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/a-peyrard/youmiya"
	"github.com/a-peyrard/youmiya/slices"
	"gopkg.in/yaml.v3"
)

type (
	Manifest struct {
		Values  []Value `yaml:"values,omitempty"`
		Aliases []Alias `yaml:"aliases,omitempty"`
	}

	Value struct {
		Token       string `yaml:"token"`
		Value       any    `yaml:"value"`
		Replace     bool   `yaml:"replace,omitempty"`
		Description string `yaml:"description,omitempty"`
	}

	Alias struct {
		Token   string `yaml:"token"`
		Target  string `yaml:"target"`
		Replace bool   `yaml:"replace,omitempty"`
	}
)

// Parse decodes and validates a manifest.
func Parse(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, fmt.Errorf("manifest: payload is empty")
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: %s: %w", path, err)
	}
	return m, nil
}

func (m Manifest) Validate() error {
	for i, v := range m.Values {
		if strings.TrimSpace(v.Token) == "" {
			return fmt.Errorf("manifest: value %d has no token", i)
		}
	}
	for i, a := range m.Aliases {
		if strings.TrimSpace(a.Token) == "" {
			return fmt.Errorf("manifest: alias %d has no token", i)
		}
		if strings.TrimSpace(a.Target) == "" {
			return fmt.Errorf("manifest: alias %s has no target", a.Token)
		}
	}
	return nil
}

// Apply registers the manifest into c. On failure the registrations already made are removed. The
// returned closure removes every registration of the manifest.
func (m Manifest) Apply(c *youmiya.Container) (youmiya.Unregister, error) {
	var unregisters []youmiya.Unregister
	rollback := func() {
		for _, unregister := range slices.Reversed(unregisters) {
			unregister()
		}
	}

	for _, v := range m.Values {
		unregister, err := c.Register(v.Token).ToValue(v.Value, options(v.Replace, v.Description)...)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("manifest: register value %s: %w", v.Token, err)
		}
		unregisters = append(unregisters, unregister)
	}
	for _, a := range m.Aliases {
		unregister, err := c.Register(a.Token).ToToken(a.Target, options(a.Replace, "alias of "+a.Target)...)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("manifest: register alias %s: %w", a.Token, err)
		}
		unregisters = append(unregisters, unregister)
	}

	return rollback, nil
}

func options(replace bool, description string) []youmiya.RegisterOption {
	opts := []youmiya.RegisterOption{youmiya.Description(description)}
	if replace {
		opts = append(opts, youmiya.Replace())
	}
	return opts
}

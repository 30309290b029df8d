package youmiya

import (
	"fmt"

	"github.com/a-peyrard/youmiya/config"
)

// NewFromSettings creates a root container configured by settings, extra options are applied last.
func NewFromSettings(settings *config.ContainerSettings, opts ...ContainerOption) (*Container, error) {
	scope, err := ParseScope(settings.DefaultScope)
	if err != nil {
		return nil, fmt.Errorf("failed to read container settings:\n\t%w", err)
	}
	logger, err := config.NewLogger(settings.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to read container settings:\n\t%w", err)
	}

	base := []ContainerOption{
		WithIdentifier(settings.Identifier),
		WithLogger(logger),
		WithDefaultScope(scope),
		WithLazyDefault(!settings.DisableLazy),
	}
	return New(append(base, opts...)...), nil
}

// NewFromEnv loads the container settings from the variables prefixed with prefix, e.g.
// YOUMIYA_DEFAULT_SCOPE=transient.
func NewFromEnv(prefix string, opts ...ContainerOption) (*Container, error) {
	settings, err := config.LoadContainerSettings(prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to load container settings:\n\t%w", err)
	}
	return NewFromSettings(settings, opts...)
}

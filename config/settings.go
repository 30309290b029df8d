package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ContainerSettings configures a container from the environment, e.g. YOUMIYA_LOG_LEVEL=debug.
type ContainerSettings struct {
	Identifier   string
	LogLevel     string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	DefaultScope string `validate:"omitempty,oneof=global singleton scoped transient"`
	DisableLazy  bool
}

func (s *ContainerSettings) ApplyDefault() {
	if s.LogLevel == "" {
		s.LogLevel = "disabled"
	}
	if s.DefaultScope == "" {
		s.DefaultScope = "global"
	}
}

// LoadContainerSettings reads the settings from the variables prefixed with prefix.
func LoadContainerSettings(prefix string, opts ...Option) (*ContainerSettings, error) {
	return Load[ContainerSettings](append([]Option{WithEnvPrefix(prefix)}, opts...)...)
}

// NewLogger creates a console logger writing to stderr, "disabled" gives a no-op logger.
func NewLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q:\n\t%w", level, err)
	}
	if lvl == zerolog.Disabled {
		return zerolog.Nop(), nil
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}

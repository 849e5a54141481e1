//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/obinnaokechukwu/maxgo/bridge"
)

// ConfigEnv names the environment variable holding the path of an optional
// TOML configuration file.
const ConfigEnv = "MAXGO_CONFIG"

// DefaultQueueSize is the default per-object event queue capacity.
const DefaultQueueSize = 100

// validate is shared; building a validator is expensive.
var validate = validator.New()

// Config holds the process-wide settings.
type Config struct {
	// QueueSize bounds each object's event queue. 0 means unbounded.
	QueueSize int `toml:"queue_size" validate:"gte=0"`

	// LabelSize bounds assist labels including the terminating NUL.
	LabelSize int `toml:"label_size" validate:"gte=2,lte=512"`

	// MaxInlets bounds the number of proxy inlets per object.
	MaxInlets int `toml:"max_inlets" validate:"gte=1,lte=255"`

	// DrainMode is "clock" or "defer".
	DrainMode string `toml:"drain_mode" validate:"oneof=clock defer"`

	// LogLevel is the minimum level routed to the console.
	LogLevel string `toml:"log_level" validate:"oneof=debug info warn error"`

	// Library is an explicit path to the host API library.
	Library string `toml:"library" validate:"omitempty,filepath"`

	// Shim is an explicit path to the maxgoshim companion library.
	Shim string `toml:"shim" validate:"omitempty,filepath"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		QueueSize: DefaultQueueSize,
		LabelSize: bridge.DefaultLabelSize,
		MaxInlets: bridge.DefaultMaxInlets,
		DrainMode: string(bridge.DrainClock),
		LogLevel:  "info",
	}
}

// LoadConfig reads a TOML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads the file named by MAXGO_CONFIG. Without the
// variable it returns the defaults.
func LoadConfigFromEnv() (Config, error) {
	path := os.Getenv(ConfigEnv)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, describeValidation(verrs))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func describeValidation(verrs validator.ValidationErrors) string {
	var msg string
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
	}
	return msg
}

// Bridge returns the bridge settings.
func (c Config) Bridge() bridge.Config {
	return bridge.Config{
		LabelSize: c.LabelSize,
		MaxInlets: c.MaxInlets,
		DrainMode: bridge.DrainMode(c.DrainMode),
	}
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

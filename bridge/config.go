package bridge

import "log/slog"

// DrainMode selects how queued output reaches the host thread.
type DrainMode string

// The drain modes.
const (
	// DrainClock gives every object a host clock that is scheduled on
	// notification and drains the queue when it fires.
	DrainClock DrainMode = "clock"

	// DrainDefer creates no clock; notifications hop onto the host thread
	// through Host.Defer and drain there.
	DrainDefer DrainMode = "defer"
)

// DefaultLabelSize is the size of the host's assist buffer.
const DefaultLabelSize = 512

// DefaultMaxInlets is the largest number of proxies an object may request.
const DefaultMaxInlets = 255

// Config holds the bridge settings.
type Config struct {
	// LabelSize bounds assist labels, including the terminating NUL.
	LabelSize int

	// MaxInlets bounds the number of proxy inlets per object.
	MaxInlets int

	// DrainMode selects clock or defer draining.
	DrainMode DrainMode
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		LabelSize: DefaultLabelSize,
		MaxInlets: DefaultMaxInlets,
		DrainMode: DrainClock,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.LabelSize < 2 || c.LabelSize > DefaultLabelSize {
		c.LabelSize = d.LabelSize
	}
	if c.MaxInlets <= 0 {
		c.MaxInlets = d.MaxInlets
	}
	if c.DrainMode != DrainClock && c.DrainMode != DrainDefer {
		c.DrainMode = d.DrainMode
	}
	return c
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithConfig sets the bridge settings. Invalid fields fall back to defaults.
func WithConfig(cfg Config) Option {
	return func(b *Bridge) {
		b.cfg = cfg.normalized()
	}
}

// WithLogger sets the logger used for construction failures, rejected
// registrations and dropped events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

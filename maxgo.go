//go:build !ios && !android && (amd64 || arm64)

// Package maxgo implements host externals in Go without cgo.
//
// A class is registered from the external's init function with either a set
// of callbacks (Init) or a prototype instance (Register). Objects declare
// typed inlets and outlets while they are initialized; messages arriving on
// an inlet are validated against its type before they reach the handler.
// Output may be produced from any goroutine: it is queued per object and
// emitted on the host main thread.
//
//	type Echo struct{ out *maxgo.Outlet }
//
//	func (e *Echo) Init(obj *maxgo.Object, args []maxgo.Atom) bool {
//		obj.Inlet(maxgo.Any, "input", true)
//		e.out = obj.Outlet(maxgo.Any, "output")
//		return true
//	}
//
//	func init() {
//		if err := maxgo.Register("echo", &Echo{}); err != nil {
//			maxgo.Error("%v", err)
//		}
//	}
//
// The host API library and the maxgoshim companion library are located
// through the MAXGO_CONFIG file, MAXGO_LIBRARY_PATH and MAXGO_SHIM_DIR.
package maxgo

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/kr/pretty"
	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/host"
	"github.com/obinnaokechukwu/maxgo/internal/handles"
)

// Env binds classes to one host. Most programs use the package-level
// functions, which share a process-wide Env on the native host.
type Env struct {
	cfg     Config
	console Console
	log     *slog.Logger
	host    bridge.Host
	bridge  *bridge.Bridge
	defers  *handles.Table[func()]

	mu       sync.Mutex
	runtimes []*Runtime
}

// NewEnv creates an environment on h. If h also implements Console, log
// output goes to the host console; otherwise it goes to stderr.
func NewEnv(h bridge.Host, cfg Config) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	console, ok := h.(Console)
	if !ok {
		console = stderrConsole
	}

	e := &Env{
		cfg:     cfg,
		console: console,
		log:     slog.New(NewConsoleHandler(console, WithLevel(cfg.Level()))),
		host:    h,
		defers:  handles.New[func()](),
	}
	e.bridge = bridge.New(h, bridge.WithConfig(cfg.Bridge()), bridge.WithLogger(e.log))
	return e, nil
}

// Config returns the environment settings.
func (e *Env) Config() Config { return e.cfg }

// Logger returns the logger printing to the host console.
func (e *Env) Logger() *slog.Logger { return e.log }

// Bridge returns the underlying bridge.
func (e *Env) Bridge() *bridge.Bridge { return e.bridge }

// Init will register a class with the specified name using the provided
// callbacks. A name can be registered only once.
func (e *Env) Init(name string, init InitCallback, handle HandleCallback, free FreeCallback) error {
	rt := NewRuntime(init, handle, free,
		WithQueueSize(e.cfg.QueueSize),
		WithLogger(e.log.With("class", name)),
		withDefers(e.defers),
	)

	if _, err := e.bridge.Register(name, rt); err != nil {
		return err
	}

	e.mu.Lock()
	e.runtimes = append(e.runtimes, rt)
	e.mu.Unlock()
	return nil
}

// Defer will run fn on the host main thread.
func (e *Env) Defer(fn func()) {
	e.mu.Lock()
	var rt *Runtime
	if len(e.runtimes) > 0 {
		rt = e.runtimes[0]
	}
	e.mu.Unlock()

	if rt == nil {
		e.log.Error("dropped deferred function", "error", ErrNoClass)
		return
	}
	rt.Defer(fn)
}

// IsMainThread will return if the host main thread is executing.
func (e *Env) IsMainThread() bool { return e.host.IsMainThread() }

// Log will print a message to the console.
func (e *Env) Log(format string, args ...any) {
	e.console.Post(fmt.Sprintf(format, args...))
}

// Error will print an error to the console.
func (e *Env) Error(format string, args ...any) {
	e.console.Error(fmt.Sprintf(format, args...))
}

// Alert will show an alert dialog.
func (e *Env) Alert(format string, args ...any) {
	e.console.Alert(fmt.Sprintf(format, args...))
}

// Pretty will pretty print and log the provided values.
func (e *Env) Pretty(a ...any) {
	e.console.Post(pretty.Sprint(a...))
}

var (
	stdOnce sync.Once
	std     *Env
	stdErr  error
)

// Load opens the native host and creates the process-wide environment. It
// is called by the package-level functions and is safe to call repeatedly.
func Load() error {
	stdOnce.Do(func() {
		cfg, err := LoadConfigFromEnv()
		if err != nil {
			stderrConsole.Error(fmt.Sprintf("using default configuration: %v", err))
		}

		h, err := host.Open(host.Options{Library: cfg.Library, Shim: cfg.Shim})
		if err != nil {
			stdErr = fmt.Errorf("%w: %w", ErrNotLoaded, err)
			return
		}

		std, stdErr = NewEnv(h, cfg)
	})
	return stdErr
}

// Default returns the process-wide environment.
func Default() (*Env, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	return std, nil
}

// Init will register a class with the process-wide environment.
func Init(name string, init InitCallback, handle HandleCallback, free FreeCallback) error {
	env, err := Default()
	if err != nil {
		return err
	}
	return env.Init(name, init, handle, free)
}

// Defer will run fn on the host main thread.
func Defer(fn func()) {
	env, err := Default()
	if err != nil {
		stderrConsole.Error(fmt.Sprintf("dropped deferred function: %v", err))
		return
	}
	env.Defer(fn)
}

// IsMainThread will return if the host main thread is executing.
func IsMainThread() bool {
	env, err := Default()
	if err != nil {
		return false
	}
	return env.IsMainThread()
}

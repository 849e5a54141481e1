//go:build !ios && !android && (amd64 || arm64)

// Package host implements bridge.Host on the native host API.
//
// Host functions are called through purego; the class method table,
// the drain clock and deferred calls enter Go through callbacks created
// once per process. All callbacks route to the single open Host.
//
// Objects are allocated with room for one word after the host object
// header: proxy inlets store the inlet ordinal of the current message
// there.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/internal/bindings"
	"github.com/obinnaokechukwu/maxgo/internal/shim"
)

// objectHeaderSize is sizeof(t_object) on 64-bit platforms, used when the
// shim cannot report it.
const objectHeaderSize = 32

// assistBufferSize is the size of the label buffer the host passes to
// assist methods.
const assistBufferSize = 512

// ErrHostCall is returned when a host allocation returns NULL.
var ErrHostCall = errors.New("maxgo: host call failed")

// Options configures Open.
type Options struct {
	// Library is an explicit path to the host API library.
	Library string

	// Shim is an explicit path to the maxgoshim library.
	Shim string

	// Logger receives host-level diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Host is the native host. It implements bridge.Host, atom.Symbols and
// the console interface of package maxgo.
type Host struct {
	log    *slog.Logger
	header uintptr

	dmu sync.RWMutex
	d   bridge.Dispatcher

	mu      sync.Mutex
	classes map[string]uintptr
	pending []bridge.ClassSpec
	entered bool

	// class construction, shimReady and createClass outside tests
	ready  func() error
	create func(bridge.ClassSpec) (uintptr, error)

	symbols sync.Map // string -> uintptr
	names   sync.Map // uintptr -> string
}

var (
	openOnce sync.Once
	opened   *Host
	openErr  error

	// active receives all callbacks.
	active atomic.Pointer[Host]
)

// Open loads the host API library and the shim and returns the process
// host. Later calls return the same host; their options are ignored.
func Open(opts Options) (*Host, error) {
	openOnce.Do(func() {
		if err := bindings.Load(opts.Library); err != nil {
			openErr = err
			return
		}

		if err := shim.Load(opts.Shim); err != nil {
			openErr = err
			return
		}

		h := newHost(opts)
		h.header = uintptr(shim.ObjectSize(objectHeaderSize))

		initTrampolines()
		active.Store(h)

		h.start(shim.SetEntry(entryCallback), bindings.IsMainThread())

		h.log.Debug("host opened", "library", bindings.Path(), "shim", shim.Status())
		opened = h
	})
	return opened, openErr
}

func newHost(opts Options) *Host {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &Host{
		log:     log,
		header:  objectHeaderSize,
		classes: make(map[string]uintptr),
		ready:   shimReady,
	}
	h.create = h.createClass
	return h
}

// Bind sets the dispatcher receiving host callbacks.
func (h *Host) Bind(d bridge.Dispatcher) {
	h.dmu.Lock()
	defer h.dmu.Unlock()
	h.d = d
}

func (h *Host) dispatcher() bridge.Dispatcher {
	h.dmu.RLock()
	defer h.dmu.RUnlock()
	return h.d
}

// IsMainThread reports whether the host main thread is executing.
func (h *Host) IsMainThread() bool {
	return bindings.IsMainThread()
}

// Post prints a message to the host console.
func (h *Host) Post(msg string) {
	if err := shim.Post(msg); err != nil {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// Error prints an error to the host console.
func (h *Host) Error(msg string) {
	if err := shim.Error(msg); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+msg)
	}
}

// Alert shows a modal alert.
func (h *Host) Alert(msg string) {
	if err := shim.Alert(msg); err != nil {
		fmt.Fprintln(os.Stderr, "alert: "+msg)
	}
}

// Gensym returns the host symbol for name. Symbols live for the life of the
// process, so results are cached.
func (h *Host) Gensym(name string) uintptr {
	if sym, ok := h.symbols.Load(name); ok {
		return sym.(uintptr)
	}

	sym := bindings.Gensym(name)
	if sym != 0 {
		h.symbols.Store(name, sym)
		h.names.Store(sym, name)
	}
	return sym
}

// Name returns the text of a host symbol.
func (h *Host) Name(sym uintptr) string {
	if sym == 0 {
		return ""
	}
	if name, ok := h.names.Load(sym); ok {
		return name.(string)
	}

	// t_symbol starts with its char* s_name
	name := goString(*(*uintptr)(unsafe.Pointer(sym)))
	h.names.Store(sym, name)
	return name
}

// goString converts a C string to a Go string.
func goString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}
	var n int
	for *(*byte)(unsafe.Pointer(ptr + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), n))
}

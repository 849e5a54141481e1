//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/internal/handles"
)

// InitCallback is called to initialize objects. Returning false aborts
// construction.
type InitCallback func(obj *Object, args []Atom) bool

// HandleCallback is called to handle messages. The hooks "loadbang" and
// "dblclick" are delivered on inlet 0 with no arguments.
type HandleCallback func(obj *Object, inlet int, msg string, args []Atom)

// FreeCallback is called to free objects.
type FreeCallback func(obj *Object)

// Runtime is the managed side of one class. It implements bridge.Runtime:
// it owns the objects behind the handles, validates inbound messages
// against the declared inlets and buffers outbound events.
type Runtime struct {
	init   InitCallback
	handle HandleCallback
	free   FreeCallback

	queueSize int
	log       *slog.Logger

	objects *handles.Table[*Object]
	defers  *handles.Table[func()]

	mu       sync.RWMutex
	notifier bridge.Notifier
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithQueueSize sets the per-object queue capacity. 0 means unbounded.
func WithQueueSize(n int) RuntimeOption {
	return func(r *Runtime) {
		if n >= 0 {
			r.queueSize = n
		}
	}
}

// WithLogger sets the logger for rejected messages and dropped events.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// withDefers shares a closure table between runtimes so that any class can
// resume a deferred function.
func withDefers(t *handles.Table[func()]) RuntimeOption {
	return func(r *Runtime) {
		r.defers = t
	}
}

// NewRuntime creates a runtime from the class callbacks. handle and free may
// be nil.
func NewRuntime(init InitCallback, handle HandleCallback, free FreeCallback, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		init:      init,
		handle:    handle,
		free:      free,
		queueSize: DefaultQueueSize,
		log:       slog.Default(),
		objects:   handles.New[*Object](),
		defers:    handles.New[func()](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach stores the notifier of the class the runtime serves.
func (r *Runtime) Attach(n bridge.Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

func (r *Runtime) currentNotifier() bridge.Notifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notifier
}

func (r *Runtime) notify(h bridge.Handle) {
	if n := r.currentNotifier(); n != nil {
		n.Notify(h)
	}
}

// Objects returns the number of live objects.
func (r *Runtime) Objects() int { return r.objects.Count() }

// Init creates an object and runs the init callback. A panicking callback
// fails construction.
func (r *Runtime) Init(args []atom.Atom) (res bridge.InitResult) {
	obj := &Object{rt: r, queue: bridge.NewEventQueue(r.queueSize)}
	obj.ref = bridge.Handle(r.objects.Register(obj))

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("object initialization panicked", "panic", fmt.Sprint(p))
			res = bridge.InitResult{}
		}
		if res.Handle == 0 {
			r.objects.Unregister(uint64(obj.ref))
			obj.queue.Close()
		}
	}()

	if r.init == nil || !r.init(obj, args) {
		return bridge.InitResult{}
	}
	obj.sealed.Store(true)

	proxies := len(obj.in) - 1
	if proxies < 0 {
		proxies = 0
	}

	outlets := make([]bridge.Kind, len(obj.out))
	for i, out := range obj.out {
		outlets[i] = out.typ.kind()
	}

	return bridge.InitResult{Handle: obj.ref, Proxies: proxies, Outlets: outlets}
}

// Dispatch validates a message against the receiving inlet and calls the
// handle callback. Rejected messages are logged and dropped.
func (r *Runtime) Dispatch(h bridge.Handle, msg string, inlet int, args []atom.Atom) {
	obj, ok := r.objects.Lookup(uint64(h))
	if !ok {
		return
	}

	// hooks are inlet independent
	if msg == "loadbang" || msg == "dblclick" {
		r.call(obj, 0, msg, nil)
		return
	}

	if len(obj.in) > 0 {
		if inlet < 0 || inlet >= len(obj.in) {
			r.log.Error(fmt.Sprintf("message received on unknown inlet %d", inlet), "object", h)
			return
		}
		if reason := obj.in[inlet].accepts(msg, args); reason != "" {
			r.log.Error(fmt.Sprintf("%s received on inlet %d", reason, inlet),
				"object", h, "msg", msg)
			return
		}
	}

	r.call(obj, inlet, msg, args)
}

func (r *Runtime) call(obj *Object, inlet int, msg string, args []Atom) {
	if r.handle != nil {
		r.handle(obj, inlet, msg, args)
	}
}

// Describe returns the label of an inlet or outlet as "label (type)".
// Inlets report their hot flag; unknown indices are hot and unlabeled.
func (r *Runtime) Describe(h bridge.Handle, io bridge.IO, index int) (string, bool) {
	obj, ok := r.objects.Lookup(uint64(h))
	if !ok || index < 0 {
		return "", true
	}

	switch io {
	case bridge.IOInlet:
		if index < len(obj.in) {
			in := obj.in[index]
			return fmt.Sprintf("%s (%s)", in.label, in.typ), in.hot
		}
	case bridge.IOOutlet:
		if index < len(obj.out) {
			out := obj.out[index]
			return fmt.Sprintf("%s (%s)", out.label, out.typ), true
		}
	}

	return "", true
}

// PopEvent removes the next queued event of an object.
func (r *Runtime) PopEvent(h bridge.Handle) (bridge.Event, bool, bool) {
	obj, ok := r.objects.Lookup(uint64(h))
	if !ok {
		return bridge.Event{}, false, false
	}
	return obj.queue.Pop()
}

// Free releases an object and runs the free callback. The handle is never
// issued again.
func (r *Runtime) Free(h bridge.Handle) {
	obj, ok := r.objects.Take(uint64(h))
	if !ok {
		return
	}

	if n := obj.queue.Close(); n > 0 {
		r.log.Debug("discarded pending events", "object", h, "count", n)
	}

	if r.free != nil {
		r.free(obj)
	}
}

// Defer will run fn on the host main thread. Without an attached class the
// function is dropped.
func (r *Runtime) Defer(fn func()) {
	n := r.currentNotifier()
	if n == nil {
		r.log.Error("dropped deferred function", "error", ErrNoClass)
		return
	}
	n.Defer(r.defers.Register(fn))
}

// YieldResume runs a deferred function on the host thread.
func (r *Runtime) YieldResume(token uint64) {
	fn, ok := r.defers.Take(token)
	if !ok || fn == nil {
		return
	}
	fn()
}

//go:build !ios && !android && (amd64 || arm64)

package host

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/internal/bindings"
)

// inletSlotSize is the per-object word proxies write the inlet ordinal to.
const inletSlotSize = 8

// AllocObject allocates an object of a registered class.
func (h *Host) AllocObject(class string) (bridge.Object, error) {
	c := h.class(class)
	if c == 0 {
		return 0, fmt.Errorf("%w: class %q is not registered", ErrHostCall, class)
	}
	obj := bindings.ObjectAlloc(c)
	if obj == 0 {
		return 0, fmt.Errorf("%w: object_alloc %s", ErrHostCall, class)
	}
	return bridge.Object(obj), nil
}

// FreeObject frees an object record.
func (h *Host) FreeObject(obj bridge.Object) {
	bindings.ObjectFree(uintptr(obj))
}

// NewProxy creates a proxy inlet writing ordinal to the object's inlet slot.
func (h *Host) NewProxy(obj bridge.Object, ordinal int) (bridge.Proxy, error) {
	p := bindings.ProxyNew(uintptr(obj), int64(ordinal), uintptr(obj)+h.header)
	if p == 0 {
		return 0, fmt.Errorf("%w: proxy_new %d", ErrHostCall, ordinal)
	}
	return bridge.Proxy(p), nil
}

// FreeProxy frees a proxy inlet.
func (h *Host) FreeProxy(p bridge.Proxy) {
	bindings.ObjectFree(uintptr(p))
}

// CurrentInlet returns the inlet of the message being dispatched.
func (h *Host) CurrentInlet(obj bridge.Object) int {
	return int(bindings.ProxyGetInlet(uintptr(obj)))
}

// NewOutlet creates an outlet of the given kind.
func (h *Host) NewOutlet(obj bridge.Object, kind bridge.Kind) (bridge.Outlet, error) {
	var o uintptr
	switch kind {
	case bridge.Bang:
		o = bindings.Bangout(uintptr(obj))
	case bridge.Int:
		o = bindings.Intout(uintptr(obj))
	case bridge.Float:
		o = bindings.Floatout(uintptr(obj))
	case bridge.List:
		o = bindings.Listout(uintptr(obj))
	case bridge.Any:
		o = bindings.OutletNew(uintptr(obj))
	default:
		return 0, fmt.Errorf("%w: outlet kind %s", ErrHostCall, kind)
	}
	if o == 0 {
		return 0, fmt.Errorf("%w: %s outlet", ErrHostCall, kind)
	}
	return bridge.Outlet(o), nil
}

// Emit sends ev through out. List and Any arguments are encoded into a
// temporary host atom array.
func (h *Host) Emit(out bridge.Outlet, ev bridge.Event) {
	o := uintptr(out)

	switch ev.Kind {
	case bridge.Bang:
		bindings.OutletBang(o)
	case bridge.Int:
		bindings.OutletInt(o, atom.ToInt(first(ev.Args)))
	case bridge.Float:
		bindings.OutletFloat(o, atom.ToFloat(first(ev.Args)))
	case bridge.List:
		h.withCells(ev.Args, func(argc int16, argv uintptr) {
			bindings.OutletList(o, argc, argv)
		})
	case bridge.Any:
		sym := h.Gensym(ev.Selector)
		h.withCells(ev.Args, func(argc int16, argv uintptr) {
			bindings.OutletAnything(o, sym, argc, argv)
		})
	}
}

func first(args []atom.Atom) atom.Atom {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// withCells encodes args into host memory for the duration of fn.
func (h *Host) withCells(args []atom.Atom, fn func(argc int16, argv uintptr)) {
	n := min(len(args), math.MaxInt16)
	if n == 0 {
		fn(0, 0)
		return
	}

	size := n * atom.CellSize
	buf := bindings.Getbytes(size)
	if buf == 0 {
		h.log.Error("getbytes failed", "size", size)
		return
	}
	defer bindings.Freebytes(buf, size)

	written := atom.Encode(atom.Cells(unsafe.Pointer(buf), n), args[:n], h)
	fn(int16(written), buf)
}

// NewClock creates the drain clock of obj.
func (h *Host) NewClock(obj bridge.Object) (bridge.Clock, error) {
	c := bindings.ClockNew(uintptr(obj), cb.tick)
	if c == 0 {
		return 0, fmt.Errorf("%w: clock_new", ErrHostCall)
	}
	return bridge.Clock(c), nil
}

// ScheduleClock fires c as soon as possible.
func (h *Host) ScheduleClock(c bridge.Clock) {
	bindings.ClockDelay(uintptr(c), 0)
}

// UnsetClock cancels c.
func (h *Host) UnsetClock(c bridge.Clock) {
	bindings.ClockUnset(uintptr(c))
}

// FreeClock frees c.
func (h *Host) FreeClock(c bridge.Clock) {
	bindings.ObjectFree(uintptr(c))
}

// Defer calls Dispatcher.Resume(token) from the main thread's low priority
// queue. The token travels as the symbol argument.
func (h *Host) Defer(token uint64) {
	bindings.DeferLow(0, cb.resume, uintptr(token))
}

var (
	_ bridge.Host  = (*Host)(nil)
	_ atom.Symbols = (*Host)(nil)
)

package bridge

import (
	"github.com/obinnaokechukwu/maxgo/atom"
)

// Runtime is the managed side of the boundary. It owns all object state and
// is only ever reached through a Handle.
//
// Init, Dispatch, Describe, PopEvent and Free are called on the host thread.
// Implementations must return promptly; long running work belongs on the
// runtime's own goroutines.
type Runtime interface {
	// Init creates object state from the construction arguments.
	Init(args []atom.Atom) InitResult

	// Dispatch delivers a message received on an inlet.
	Dispatch(h Handle, selector string, inlet int, args []atom.Atom)

	// Describe returns the label of an inlet or outlet and whether an inlet
	// is hot.
	Describe(h Handle, io IO, index int) (label string, hot bool)

	// PopEvent returns the next queued event, whether more events are
	// pending, and false if the queue is empty or the handle is unknown.
	PopEvent(h Handle) (ev Event, more bool, ok bool)

	// Free releases the handle and all state referenced by it.
	Free(h Handle)

	// YieldResume is called on the host thread for a token passed to
	// Notifier.Defer.
	YieldResume(token uint64)
}

// Notifier is handed to a Runtime so it can reach the host thread from any
// goroutine.
type Notifier interface {
	// Notify signals that events are queued for h.
	Notify(h Handle)

	// Defer schedules Runtime.YieldResume(token) on the host thread.
	Defer(token uint64)
}

// Attacher is implemented by runtimes that need a Notifier. Define calls
// Attach with the new class before returning.
type Attacher interface {
	Attach(n Notifier)
}

// Host is the host-controlled side of the boundary. All methods except
// ScheduleClock, Defer and IsMainThread must be called on the host thread.
type Host interface {
	// Bind installs the dispatcher the host calls back into.
	Bind(d Dispatcher)

	// RegisterClass builds the host class descriptor and method table.
	RegisterClass(spec ClassSpec) error

	// AllocObject allocates an object record of a registered class.
	AllocObject(class string) (Object, error)

	// FreeObject releases an object record that failed construction.
	FreeObject(obj Object)

	// NewProxy creates a proxy inlet with the given ordinal.
	NewProxy(obj Object, ordinal int) (Proxy, error)

	// FreeProxy releases a proxy inlet.
	FreeProxy(p Proxy)

	// CurrentInlet returns the inlet the message being dispatched arrived on.
	CurrentInlet(obj Object) int

	// NewOutlet creates an outlet. Outlets must be created right to left.
	NewOutlet(obj Object, kind Kind) (Outlet, error)

	// Emit sends an event through an outlet.
	Emit(out Outlet, ev Event)

	// NewClock creates a clock that calls Dispatcher.Tick(obj) when it fires.
	NewClock(obj Object) (Clock, error)

	// ScheduleClock makes the clock fire as soon as possible. Safe from any
	// thread.
	ScheduleClock(c Clock)

	// UnsetClock cancels a scheduled clock.
	UnsetClock(c Clock)

	// FreeClock releases a clock.
	FreeClock(c Clock)

	// Defer calls Dispatcher.Resume(token) on the host thread. Safe from any
	// thread.
	Defer(token uint64)

	// IsMainThread reports whether the caller runs on the host thread.
	IsMainThread() bool
}

// Dispatcher receives the host's method table calls.
type Dispatcher interface {
	New(class string, args []atom.Atom) Object
	Free(obj Object)
	Bang(obj Object)
	Int(obj Object, n int64)
	Float(obj Object, f float64)
	Gimme(obj Object, selector string, args []atom.Atom)
	Loadbang(obj Object)
	DblClick(obj Object)
	Assist(obj Object, io IO, index int, buf []byte)
	InletInfo(obj Object, index int) (cold bool)
	Tick(obj Object)
	Resume(token uint64)
}

// Entry identifies the bridge entry point a selector is bound to.
type Entry int

// The entry points of the method table.
const (
	EntryBang Entry = iota
	EntryInt
	EntryFloat
	EntryGimme
	EntryLoadbang
	EntryDblClick
	EntryAssist
	EntryInletInfo
)

// MethodSpec binds a selector to an entry point.
type MethodSpec struct {
	Selector string
	Entry    Entry
}

// ClassSpec describes a class for Host.RegisterClass.
type ClassSpec struct {
	Name    string
	Methods []MethodSpec
}

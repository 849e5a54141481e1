//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
)

// Object is a single host object.
//
// Inlets and outlets are declared from the init callback. Push and the
// outlet methods may be called from any goroutine.
type Object struct {
	rt     *Runtime
	ref    bridge.Handle
	in     []*Inlet
	out    []*Outlet
	queue  *bridge.EventQueue
	sealed atomic.Bool
}

// Ref returns the object's handle. It is unique for the life of the process.
func (o *Object) Ref() uint64 { return uint64(o.ref) }

// Inlet declares an inlet. Without declared inlets an object still has its
// default inlet, which accepts any message.
func (o *Object) Inlet(typ Type, label string, hot bool) *Inlet {
	o.mustDeclare("inlet", typ)

	inlet := &Inlet{typ: typ, label: label, hot: hot}
	o.in = append(o.in, inlet)
	return inlet
}

// Outlet declares an outlet.
func (o *Object) Outlet(typ Type, label string) *Outlet {
	o.mustDeclare("outlet", typ)

	outlet := &Outlet{obj: o, typ: typ, label: label, index: len(o.out)}
	o.out = append(o.out, outlet)
	return outlet
}

func (o *Object) mustDeclare(what string, typ Type) {
	if o.sealed.Load() {
		panic(fmt.Sprintf("maxgo: %s declared after init", what))
	}
	if !typ.valid() {
		panic(fmt.Sprintf("maxgo: invalid %s type %q", what, typ))
	}
}

// Inlets returns the declared inlets.
func (o *Object) Inlets() []*Inlet { return o.in }

// Outlets returns the declared outlets.
func (o *Object) Outlets() []*Outlet { return o.out }

// Push will add the provided events to the objects queue and wake the host.
// Events that do not fit a bounded queue are dropped and logged.
func (o *Object) Push(events ...Event) {
	var queued int
	for _, evt := range events {
		if evt.Outlet == nil || evt.Outlet.obj != o {
			o.rt.log.Error("dropped event for foreign outlet", "object", o.ref)
			continue
		}

		err := o.queue.Push(bridge.Event{
			Outlet:   evt.Outlet.index,
			Kind:     evt.Type.kind(),
			Selector: evt.Msg,
			Args:     atom.NormalizeAll(evt.Data),
		})
		switch {
		case errors.Is(err, bridge.ErrQueueFull):
			o.rt.log.Error("dropped event due to full queue", "object", o.ref)
		case errors.Is(err, bridge.ErrQueueClosed):
			o.rt.log.Debug("dropped event for freed object", "object", o.ref)
		case err == nil:
			queued++
		}
	}

	if queued > 0 {
		o.rt.notify(o.ref)
	}
}

// Defer will run fn on the host main thread.
func (o *Object) Defer(fn func()) {
	o.rt.Defer(fn)
}

// Inlet is a single inlet.
type Inlet struct {
	typ   Type
	label string
	hot   bool
}

// Type will return the inlets type.
func (i *Inlet) Type() Type { return i.typ }

// Label will return the inlets label.
func (i *Inlet) Label() string { return i.label }

// Hot reports whether messages on the inlet trigger output.
func (i *Inlet) Hot() bool { return i.hot }

// accepts reports why msg with args is rejected, or "" if it is accepted.
func (i *Inlet) accepts(msg string, args []Atom) string {
	if i.typ != Any && Type(msg) != i.typ {
		return "invalid message"
	}

	switch {
	case i.typ == Bang && len(args) != 0:
		return "unexpected input"
	case (i.typ == Int || i.typ == Float) && len(args) != 1:
		return "unexpected input"
	}

	switch i.typ {
	case Int:
		if _, ok := args[0].(int64); !ok {
			return "invalid input"
		}
	case Float:
		if _, ok := args[0].(float64); !ok {
			return "invalid input"
		}
	}

	return ""
}

// Outlet is a single outlet.
type Outlet struct {
	obj   *Object
	typ   Type
	label string
	index int
}

// Type will return the outlets type.
func (o *Outlet) Type() Type { return o.typ }

// Label will return the outlets label.
func (o *Outlet) Label() string { return o.label }

func (o *Outlet) accepts(typ Type) bool {
	if o.typ == Any {
		return true
	}
	return o.typ == typ && typ != Any
}

func (o *Outlet) rejected(typ Type) {
	o.obj.rt.log.Error(fmt.Sprintf("%s sent to outlet of type %s", typ, o.typ), "outlet", o.index)
}

// Bang will send a bang.
func (o *Outlet) Bang() {
	if !o.accepts(Bang) {
		o.rejected(Bang)
		return
	}
	o.obj.Push(Event{Outlet: o, Type: Bang})
}

// Int will send an int.
func (o *Outlet) Int(n int64) {
	if !o.accepts(Int) {
		o.rejected(Int)
		return
	}
	o.obj.Push(Event{Outlet: o, Type: Int, Data: []Atom{n}})
}

// Float will send a float.
func (o *Outlet) Float(n float64) {
	if !o.accepts(Float) {
		o.rejected(Float)
		return
	}
	o.obj.Push(Event{Outlet: o, Type: Float, Data: []Atom{n}})
}

// List will send a list.
func (o *Outlet) List(atoms []Atom) {
	if !o.accepts(List) {
		o.rejected(List)
		return
	}
	o.obj.Push(Event{Outlet: o, Type: List, Data: atoms})
}

// Any will send any message.
func (o *Outlet) Any(msg string, atoms []Atom) {
	if o.typ != Any {
		o.rejected(Any)
		return
	}
	o.obj.Push(Event{Outlet: o, Type: Any, Msg: msg, Data: atoms})
}

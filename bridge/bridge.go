// Package bridge connects a host plugin runtime's single-threaded, callback
// based object model to logic running in Go.
//
// The host calls the Bridge through the Dispatcher interface: it creates and
// frees objects, delivers messages on inlets, queries labels and fires drain
// clocks. The Bridge forwards each call to the class Runtime through an
// opaque Handle and relays output queued by the runtime, possibly from other
// goroutines, back onto the host thread.
//
// A Bridge serves any number of classes. Each class is defined once per
// process:
//
//	b := bridge.New(host)
//	class, err := b.Define("example", runtime)
//	if err != nil {
//		return err
//	}
//	_ = class.AddMethod("reset")
//	err = class.Register()
package bridge

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/internal/handles"
)

// Bridge is the process-wide adapter between a Host and class runtimes.
type Bridge struct {
	host Host
	cfg  Config
	log  *slog.Logger

	mu      sync.RWMutex
	classes map[string]*Class
	objects map[Object]*Instance

	hops *handles.Table[hop]
}

// New creates a bridge and binds it to the host.
func New(host Host, opts ...Option) *Bridge {
	b := &Bridge{
		host:    host,
		cfg:     DefaultConfig(),
		log:     slog.Default(),
		classes: make(map[string]*Class),
		objects: make(map[Object]*Instance),
		hops:    handles.New[hop](),
	}
	for _, opt := range opts {
		opt(b)
	}

	host.Bind(b)
	return b
}

// Config returns the effective settings.
func (b *Bridge) Config() Config { return b.cfg }

// Define creates a class backed by rt. Defining a name twice is rejected
// with ErrAlreadyRegistered and leaves the first class intact.
func (b *Bridge) Define(name string, rt Runtime) (*Class, error) {
	b.mu.Lock()
	if _, ok := b.classes[name]; ok {
		b.mu.Unlock()
		b.log.Error("class has already been initialized", "class", name)
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	c := &Class{
		bridge:    b,
		name:      name,
		rt:        rt,
		instances: make(map[Handle]*Instance),
	}
	b.classes[name] = c
	b.mu.Unlock()

	if a, ok := rt.(Attacher); ok {
		a.Attach(c)
	}

	return c, nil
}

// Register defines and registers a class in one step. A class the host
// refuses is forgotten so the name can be registered again.
func (b *Bridge) Register(name string, rt Runtime) (*Class, error) {
	c, err := b.Define(name, rt)
	if err != nil {
		return nil, err
	}
	if err := c.Register(); err != nil {
		b.mu.Lock()
		if b.classes[name] == c {
			delete(b.classes, name)
		}
		b.mu.Unlock()
		return nil, err
	}
	return c, nil
}

// Class returns a defined class or nil.
func (b *Bridge) Class(name string) *Class {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.classes[name]
}

// Classes returns the names of all defined classes, sorted.
func (b *Bridge) Classes() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.classes))
	for name := range b.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instance returns the live instance for a host object or nil.
func (b *Bridge) Instance(obj Object) *Instance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.objects[obj]
}

// Instances returns the number of live instances across all classes.
func (b *Bridge) Instances() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// New creates an object of the named class. It returns 0 if construction
// failed; the failure is logged and no host resources are left allocated.
func (b *Bridge) New(class string, args []atom.Atom) (obj Object) {
	defer b.recoverPanic("new")

	c := b.Class(class)
	if c == nil || !c.Registered() {
		b.log.Error("failed to create object", "class", class, "error", ErrUnknownClass)
		return 0
	}

	inst, err := c.instantiate(args)
	if err != nil {
		b.log.Error("failed to create object", "class", class, "error", err)
		return 0
	}

	b.mu.Lock()
	b.objects[inst.obj] = inst
	b.mu.Unlock()
	c.track(inst)

	// output queued during Init was notified before the instance was tracked
	c.Notify(inst.handle)

	return inst.obj
}

// Free destroys the instance of a host object. Unknown objects are ignored.
func (b *Bridge) Free(obj Object) {
	defer b.recoverPanic("free")

	b.mu.Lock()
	inst := b.objects[obj]
	delete(b.objects, obj)
	b.mu.Unlock()

	if inst != nil {
		inst.free()
	}
}

// Bang handles a bang message.
func (b *Bridge) Bang(obj Object) {
	defer b.recoverPanic("bang")

	if inst := b.active(obj); inst != nil {
		inlet := b.host.CurrentInlet(obj)
		inst.dispatch("bang", inlet, nil)
	}
}

// Int handles an int message.
func (b *Bridge) Int(obj Object, n int64) {
	defer b.recoverPanic("int")

	if inst := b.active(obj); inst != nil {
		inlet := b.host.CurrentInlet(obj)
		inst.dispatch("int", inlet, []atom.Atom{n})
	}
}

// Float handles a float message.
func (b *Bridge) Float(obj Object, f float64) {
	defer b.recoverPanic("float")

	if inst := b.active(obj); inst != nil {
		inlet := b.host.CurrentInlet(obj)
		inst.dispatch("float", inlet, []atom.Atom{f})
	}
}

// Gimme handles list, anything and added selectors.
func (b *Bridge) Gimme(obj Object, selector string, args []atom.Atom) {
	defer b.recoverPanic(selector)

	if inst := b.active(obj); inst != nil {
		inlet := b.host.CurrentInlet(obj)
		inst.dispatch(selector, inlet, args)
	}
}

// Loadbang handles the post-load hook. It is inlet independent.
func (b *Bridge) Loadbang(obj Object) {
	defer b.recoverPanic("loadbang")

	if inst := b.active(obj); inst != nil {
		inst.dispatch("loadbang", 0, nil)
	}
}

// DblClick handles the double-click hook. It is inlet independent.
func (b *Bridge) DblClick(obj Object) {
	defer b.recoverPanic("dblclick")

	if inst := b.active(obj); inst != nil {
		inst.dispatch("dblclick", 0, nil)
	}
}

// Assist writes the label of an inlet or outlet into buf as a bounded, NUL
// terminated string.
func (b *Bridge) Assist(obj Object, io IO, index int, buf []byte) {
	defer b.recoverPanic("assist")

	if len(buf) > b.cfg.LabelSize {
		buf = buf[:b.cfg.LabelSize]
	}

	var label string
	if inst := b.active(obj); inst != nil {
		label, _ = inst.describe(io, index)
	}
	CopyLabel(buf, label)
}

// InletInfo reports whether an inlet is cold. Hot is the host's default.
func (b *Bridge) InletInfo(obj Object, index int) (cold bool) {
	defer b.recoverPanic("inletinfo")

	inst := b.active(obj)
	if inst == nil {
		return false
	}
	_, hot := inst.describe(IOInlet, index)
	return !hot
}

// Tick is called when an object's drain clock fires.
func (b *Bridge) Tick(obj Object) {
	defer b.recoverPanic("tick")

	if inst := b.active(obj); inst != nil {
		inst.Drain()
	}
}

func (b *Bridge) active(obj Object) *Instance {
	inst := b.Instance(obj)
	if inst == nil || inst.State() != Active {
		return nil
	}
	return inst
}

// recoverPanic keeps panics from unwinding into host frames.
func (b *Bridge) recoverPanic(op string) {
	if r := recover(); r != nil {
		b.log.Error("recovered panic in host callback", "op", op, "panic", fmt.Sprint(r))
	}
}

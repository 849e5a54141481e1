package bridge

import (
	"fmt"
	"sync/atomic"

	"github.com/obinnaokechukwu/maxgo/atom"
)

// Instance is the host-visible record of one object. It exists between the
// host's new and free calls and holds, but does not own, the Handle.
type Instance struct {
	class   *Class
	obj     Object
	handle  Handle
	state   atomic.Int32
	proxies *proxyArray
	outlets []Outlet
	clock   Clock

	// inlet is the inlet of the message most recently dispatched. Entry
	// points read the inlet into a local before calling the runtime, so a
	// reentrant dispatch overwriting it does not affect the outer call.
	inlet int

	// pending coalesces drain hops in defer mode.
	pending atomic.Bool
}

// Object returns the host object.
func (i *Instance) Object() Object { return i.obj }

// Handle returns the runtime handle.
func (i *Instance) Handle() Handle { return i.handle }

// State returns the lifecycle state.
func (i *Instance) State() State { return State(i.state.Load()) }

// Proxies returns the number of live proxy inlets.
func (i *Instance) Proxies() int { return i.proxies.Len() }

// Inlet returns the inlet of the last dispatched message.
func (i *Instance) Inlet() int { return i.inlet }

func (i *Instance) setState(s State) { i.state.Store(int32(s)) }

// instantiate runs the construction half of the lifecycle. On any failure
// the object record is released and no host resource is left behind.
func (c *Class) instantiate(args []atom.Atom) (*Instance, error) {
	b := c.bridge
	inst := &Instance{class: c}

	obj, err := b.host.AllocObject(c.name)
	if err != nil {
		return nil, fmt.Errorf("allocate object: %w", err)
	}
	inst.obj = obj
	inst.setState(Initializing)

	res := c.rt.Init(args)
	if res.Handle == 0 {
		b.host.FreeObject(obj)
		return nil, ErrInitFailed
	}
	inst.handle = res.Handle

	if err := inst.acquire(res); err != nil {
		c.rt.Free(res.Handle)
		b.host.FreeObject(obj)
		return nil, err
	}

	inst.setState(Active)
	return inst, nil
}

// acquire creates proxies, outlets and the drain clock.
func (i *Instance) acquire(res InitResult) error {
	b := i.class.bridge

	if res.Proxies < 0 || res.Proxies > b.cfg.MaxInlets {
		return fmt.Errorf("%w: %d requested, %d allowed", ErrTooManyInlets, res.Proxies, b.cfg.MaxInlets)
	}

	proxies, err := newProxyArray(b.host, i.obj, res.Proxies)
	if err != nil {
		return err
	}

	outlets := make([]Outlet, len(res.Outlets))
	for j := len(res.Outlets) - 1; j >= 0; j-- {
		out, err := b.host.NewOutlet(i.obj, res.Outlets[j])
		if err != nil {
			proxies.release()
			return fmt.Errorf("create outlet %d: %w", j, err)
		}
		outlets[j] = out
	}

	var clock Clock
	if b.cfg.DrainMode == DrainClock {
		clock, err = b.host.NewClock(i.obj)
		if err != nil {
			proxies.release()
			return fmt.Errorf("create clock: %w", err)
		}
	}

	i.proxies = proxies
	i.outlets = outlets
	i.clock = clock
	return nil
}

// free runs the destruction half of the lifecycle. The order is fixed:
// runtime handle, proxies, proxy array, clock.
func (i *Instance) free() {
	if !i.state.CompareAndSwap(int32(Active), int32(Freed)) {
		return
	}
	b := i.class.bridge

	// no notification can reach this instance after untrack returns
	i.class.untrack(i.handle)

	i.class.rt.Free(i.handle)

	i.proxies.release()
	i.proxies = nil

	if i.clock != 0 {
		b.host.UnsetClock(i.clock)
		b.host.FreeClock(i.clock)
		i.clock = 0
	}
}

func (i *Instance) dispatch(selector string, inlet int, args []atom.Atom) {
	if i.State() != Active {
		return
	}
	i.inlet = inlet
	i.class.rt.Dispatch(i.handle, selector, inlet, args)
}

// describe queries the runtime for a label. Unknown or freed instances
// report an empty hot label.
func (i *Instance) describe(io IO, index int) (string, bool) {
	if i.State() != Active {
		return "", true
	}
	return i.class.rt.Describe(i.handle, io, index)
}

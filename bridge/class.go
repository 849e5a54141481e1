package bridge

import (
	"fmt"
	"slices"
	"sync"
)

// standardMethods is the fixed part of every method table.
var standardMethods = []MethodSpec{
	{Selector: "bang", Entry: EntryBang},
	{Selector: "int", Entry: EntryInt},
	{Selector: "float", Entry: EntryFloat},
	{Selector: "list", Entry: EntryGimme},
	{Selector: "anything", Entry: EntryGimme},
	{Selector: "loadbang", Entry: EntryLoadbang},
	{Selector: "dblclick", Entry: EntryDblClick},
	{Selector: "assist", Entry: EntryAssist},
	{Selector: "inletinfo", Entry: EntryInletInfo},
}

// Class is one registered host class and its live instances. It is the
// Notifier handed to the class runtime.
type Class struct {
	bridge *Bridge
	name   string
	rt     Runtime

	mu         sync.RWMutex
	extra      []string
	registered bool
	instances  map[Handle]*Instance
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Registered reports whether the class was handed to the host.
func (c *Class) Registered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

// AddMethod adds a selector routed through the generic entry point. It must
// be called before Register.
func (c *Class) AddMethod(selector string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registered {
		return fmt.Errorf("%w: cannot add method %q to %q", ErrClassFinalized, selector, c.name)
	}
	if selector == "" || slices.Contains(c.extra, selector) || isStandard(selector) {
		return nil
	}
	c.extra = append(c.extra, selector)
	return nil
}

// Methods returns the method table.
func (c *Class) Methods() []MethodSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.methodsLocked()
}

func (c *Class) methodsLocked() []MethodSpec {
	methods := slices.Clone(standardMethods)
	for _, sel := range c.extra {
		methods = append(methods, MethodSpec{Selector: sel, Entry: EntryGimme})
	}
	return methods
}

// Register builds the method table and registers the class with the host.
// A second call is rejected and leaves the first registration intact.
func (c *Class) Register() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registered {
		c.bridge.log.Error("class has already been initialized", "class", c.name)
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, c.name)
	}

	spec := ClassSpec{Name: c.name, Methods: c.methodsLocked()}
	if err := c.bridge.host.RegisterClass(spec); err != nil {
		return fmt.Errorf("register class %s: %w", c.name, err)
	}

	c.registered = true
	return nil
}

// Notify signals that events are queued for h. Safe from any goroutine.
// Unknown or freed handles are ignored.
func (c *Class) Notify(h Handle) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	inst := c.instances[h]
	if inst == nil {
		return
	}

	if inst.clock != 0 {
		// scheduled under the read lock so free cannot release the clock
		// in between
		c.bridge.host.ScheduleClock(inst.clock)
		return
	}

	if inst.pending.CompareAndSwap(false, true) {
		c.bridge.hop(hop{class: c, drain: h})
	}
}

// Defer schedules the runtime's YieldResume(token) on the host thread. Safe
// from any goroutine.
func (c *Class) Defer(token uint64) {
	c.bridge.hop(hop{class: c, token: token})
}

// Len returns the number of live instances.
func (c *Class) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

func (c *Class) track(inst *Instance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.instances == nil {
		c.instances = make(map[Handle]*Instance)
	}
	c.instances[inst.handle] = inst
}

func (c *Class) untrack(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, h)
}

func (c *Class) lookup(h Handle) *Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instances[h]
}

func isStandard(selector string) bool {
	for _, m := range standardMethods {
		if m.Selector == selector {
			return true
		}
	}
	return false
}

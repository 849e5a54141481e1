package bridge

import (
	"errors"
	"sync"

	"github.com/obinnaokechukwu/maxgo/atom"
)

var errHostExhausted = errors.New("host: out of memory")

type emission struct {
	Outlet Outlet
	Event  Event
}

// fakeHost records every host call. trace is shared with fakeRuntime so tests
// can assert cross-boundary ordering.
type fakeHost struct {
	mu    sync.Mutex
	d     Dispatcher
	trace *[]string

	classes     []ClassSpec
	registerErr error

	next    uintptr
	objects map[Object]bool
	freed   []Object

	proxyOrdinals []int
	liveProxies   map[Proxy]bool
	freedProxies  int
	proxyFailAt   int
	proxyCalls    int

	outletKinds []Kind
	outletOwner map[Outlet]int
	outletFail  bool

	clocks        map[Clock]Object
	clocksCreated int
	clocksFreed   int
	scheduled     []Clock
	clockFail     bool

	deferred []uint64
	emitted  []emission
	inlet    int
}

func newFakeHost() *fakeHost {
	trace := []string{}
	return &fakeHost{
		trace:       &trace,
		objects:     map[Object]bool{},
		liveProxies: map[Proxy]bool{},
		outletOwner: map[Outlet]int{},
		clocks:      map[Clock]Object{},
	}
}

func (h *fakeHost) id() uintptr {
	h.next++
	return h.next
}

func (h *fakeHost) record(op string) { *h.trace = append(*h.trace, op) }

func (h *fakeHost) Bind(d Dispatcher) { h.d = d }

func (h *fakeHost) RegisterClass(spec ClassSpec) error {
	if h.registerErr != nil {
		return h.registerErr
	}
	h.classes = append(h.classes, spec)
	return nil
}

func (h *fakeHost) AllocObject(class string) (Object, error) {
	obj := Object(h.id())
	h.objects[obj] = true
	return obj, nil
}

func (h *fakeHost) FreeObject(obj Object) {
	delete(h.objects, obj)
	h.freed = append(h.freed, obj)
	// the host calls the class free method from object_free
	if h.d != nil {
		h.d.Free(obj)
	}
}

func (h *fakeHost) NewProxy(obj Object, ordinal int) (Proxy, error) {
	h.proxyCalls++
	if h.proxyFailAt > 0 && h.proxyCalls == h.proxyFailAt {
		return 0, errHostExhausted
	}
	p := Proxy(h.id())
	h.liveProxies[p] = true
	h.proxyOrdinals = append(h.proxyOrdinals, ordinal)
	return p, nil
}

func (h *fakeHost) FreeProxy(p Proxy) {
	h.record("proxy.free")
	if !h.liveProxies[p] {
		panic("double free of proxy")
	}
	delete(h.liveProxies, p)
	h.freedProxies++
}

func (h *fakeHost) CurrentInlet(obj Object) int { return h.inlet }

func (h *fakeHost) NewOutlet(obj Object, kind Kind) (Outlet, error) {
	if h.outletFail {
		return 0, errHostExhausted
	}
	out := Outlet(h.id())
	h.outletKinds = append(h.outletKinds, kind)
	return out, nil
}

func (h *fakeHost) Emit(out Outlet, ev Event) {
	h.emitted = append(h.emitted, emission{Outlet: out, Event: ev})
}

func (h *fakeHost) NewClock(obj Object) (Clock, error) {
	if h.clockFail {
		return 0, errHostExhausted
	}
	c := Clock(h.id())
	h.clocks[c] = obj
	h.clocksCreated++
	return c, nil
}

func (h *fakeHost) ScheduleClock(c Clock) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clocks[c]; !ok {
		panic("scheduled a freed clock")
	}
	h.scheduled = append(h.scheduled, c)
}

func (h *fakeHost) UnsetClock(c Clock) {
	h.record("clock.unset")
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.scheduled[:0]
	for _, s := range h.scheduled {
		if s != c {
			kept = append(kept, s)
		}
	}
	h.scheduled = kept
}

func (h *fakeHost) FreeClock(c Clock) {
	h.record("clock.free")
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clocks, c)
	h.clocksFreed++
}

func (h *fakeHost) Defer(token uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deferred = append(h.deferred, token)
}

func (h *fakeHost) IsMainThread() bool { return true }

// fireClocks fires every scheduled clock once, like the host scheduler.
func (h *fakeHost) fireClocks() {
	h.mu.Lock()
	pending := h.scheduled
	h.scheduled = nil
	owners := make([]Object, 0, len(pending))
	for _, c := range pending {
		owners = append(owners, h.clocks[c])
	}
	h.mu.Unlock()

	seen := map[Object]bool{}
	for _, obj := range owners {
		if seen[obj] {
			continue
		}
		seen[obj] = true
		h.d.Tick(obj)
	}
}

// runDeferred resumes every deferred token.
func (h *fakeHost) runDeferred() {
	h.mu.Lock()
	tokens := h.deferred
	h.deferred = nil
	h.mu.Unlock()

	for _, t := range tokens {
		h.d.Resume(t)
	}
}

type dispatchCall struct {
	Handle   Handle
	Selector string
	Inlet    int
	Args     []atom.Atom
}

type fakeRuntime struct {
	mu    sync.Mutex
	trace *[]string

	notifier Notifier
	next     Handle
	fail     bool
	proxies  int
	outlets  []Kind

	queues     map[Handle]*EventQueue
	dispatched []dispatchCall
	freed      []Handle
	yields     []uint64

	labels map[int]string
	cold   map[int]bool

	onDispatch func(h Handle, selector string, inlet int, args []atom.Atom)
}

func newFakeRuntime(trace *[]string) *fakeRuntime {
	return &fakeRuntime{
		trace:   trace,
		outlets: []Kind{Any},
		queues:  map[Handle]*EventQueue{},
		labels:  map[int]string{},
		cold:    map[int]bool{},
	}
}

func (r *fakeRuntime) Attach(n Notifier) { r.notifier = n }

func (r *fakeRuntime) Init(args []atom.Atom) InitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return InitResult{}
	}
	r.next++
	r.queues[r.next] = NewEventQueue(0)
	return InitResult{Handle: r.next, Proxies: r.proxies, Outlets: r.outlets}
}

func (r *fakeRuntime) Dispatch(h Handle, selector string, inlet int, args []atom.Atom) {
	r.mu.Lock()
	r.dispatched = append(r.dispatched, dispatchCall{h, selector, inlet, args})
	fn := r.onDispatch
	r.mu.Unlock()
	if fn != nil {
		fn(h, selector, inlet, args)
	}
}

func (r *fakeRuntime) Describe(h Handle, io IO, index int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.labels[index], !r.cold[index]
}

func (r *fakeRuntime) PopEvent(h Handle) (Event, bool, bool) {
	r.mu.Lock()
	q := r.queues[h]
	r.mu.Unlock()
	if q == nil {
		return Event{}, false, false
	}
	return q.Pop()
}

func (r *fakeRuntime) Free(h Handle) {
	*r.trace = append(*r.trace, "runtime.free")
	r.mu.Lock()
	defer r.mu.Unlock()
	if q := r.queues[h]; q != nil {
		q.Close()
	}
	delete(r.queues, h)
	r.freed = append(r.freed, h)
}

func (r *fakeRuntime) YieldResume(token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.yields = append(r.yields, token)
}

// push queues events for h from the caller's goroutine and notifies.
func (r *fakeRuntime) push(h Handle, events ...Event) {
	r.mu.Lock()
	q := r.queues[h]
	r.mu.Unlock()
	if q == nil {
		return
	}
	for _, ev := range events {
		_ = q.Push(ev)
	}
	r.notifier.Notify(h)
}

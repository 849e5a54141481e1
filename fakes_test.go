//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"fmt"
	"sync"

	"github.com/obinnaokechukwu/maxgo/bridge"
)

// fakeHost is an in-memory host. Clock ticks and deferred calls are
// delivered by the test through tick and resume.
type fakeHost struct {
	mu sync.Mutex
	d  bridge.Dispatcher

	next      uintptr
	classes   []bridge.ClassSpec
	inlet     int
	emitted   []bridge.Event
	scheduled int
	deferred  []uint64

	posts  []string
	errors []string
	alerts []string
}

func newFakeHost() *fakeHost { return &fakeHost{} }

func (h *fakeHost) id() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	return h.next
}

func (h *fakeHost) Bind(d bridge.Dispatcher) { h.d = d }

func (h *fakeHost) RegisterClass(spec bridge.ClassSpec) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.classes {
		if c.Name == spec.Name {
			return fmt.Errorf("duplicate host class %s", spec.Name)
		}
	}
	h.classes = append(h.classes, spec)
	return nil
}

func (h *fakeHost) AllocObject(string) (bridge.Object, error) {
	return bridge.Object(h.id()), nil
}

func (h *fakeHost) FreeObject(bridge.Object) {}

func (h *fakeHost) NewProxy(bridge.Object, int) (bridge.Proxy, error) {
	return bridge.Proxy(h.id()), nil
}

func (h *fakeHost) FreeProxy(bridge.Proxy) {}

func (h *fakeHost) CurrentInlet(bridge.Object) int { return h.inlet }

func (h *fakeHost) NewOutlet(bridge.Object, bridge.Kind) (bridge.Outlet, error) {
	return bridge.Outlet(h.id()), nil
}

func (h *fakeHost) Emit(_ bridge.Outlet, ev bridge.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.emitted = append(h.emitted, ev)
}

func (h *fakeHost) NewClock(bridge.Object) (bridge.Clock, error) {
	return bridge.Clock(h.id()), nil
}

func (h *fakeHost) ScheduleClock(bridge.Clock) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scheduled++
}

func (h *fakeHost) UnsetClock(bridge.Clock) {}

func (h *fakeHost) FreeClock(bridge.Clock) {}

func (h *fakeHost) Defer(token uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deferred = append(h.deferred, token)
}

func (h *fakeHost) IsMainThread() bool { return true }

func (h *fakeHost) Post(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posts = append(h.posts, msg)
}

func (h *fakeHost) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
}

func (h *fakeHost) Alert(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alerts = append(h.alerts, msg)
}

// resume delivers all pending deferred calls.
func (h *fakeHost) resume() {
	h.mu.Lock()
	tokens := h.deferred
	h.deferred = nil
	h.mu.Unlock()

	for _, t := range tokens {
		h.d.Resume(t)
	}
}

func (h *fakeHost) events() []bridge.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bridge.Event(nil), h.emitted...)
}

func (h *fakeHost) errorLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.errors...)
}

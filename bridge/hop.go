package bridge

// hop is a pending thread hop: either a runtime yield token or a drain
// request for a handle.
type hop struct {
	class *Class
	token uint64
	drain Handle
}

// hop registers h and asks the host to call Resume with its id on the host
// thread.
func (b *Bridge) hop(h hop) {
	id := b.hops.Register(h)
	b.host.Defer(id)
}

// Resume is called by the host on its thread for an id passed to Host.Defer.
// It only calls back into the runtime or triggers a drain; unknown ids are
// ignored.
func (b *Bridge) Resume(id uint64) {
	defer b.recoverPanic("resume")

	h, ok := b.hops.Take(id)
	if !ok {
		return
	}

	if h.drain != 0 {
		inst := h.class.lookup(h.drain)
		if inst == nil {
			return
		}
		inst.pending.Store(false)
		inst.Drain()
		return
	}

	h.class.rt.YieldResume(h.token)
}

// PendingHops returns the number of hops not yet resumed.
func (b *Bridge) PendingHops() int {
	return b.hops.Count()
}

package bridge

// Drain empties the instance's event queue into the host outlets and returns
// the number of emitted events. It must run on the host thread.
//
// The whole backlog is drained in one call; the loop ends when the runtime
// reports an empty queue or no further pending events. Drains on an
// instance that is not active do nothing.
func (i *Instance) Drain() int {
	if i.State() != Active {
		return 0
	}

	var n int
	for {
		// free may run from a reentrant emission
		if i.State() != Active {
			return n
		}

		ev, more, ok := i.class.rt.PopEvent(i.handle)
		if !ok {
			return n
		}

		if i.emit(ev) {
			n++
		}

		if !more {
			return n
		}
	}
}

func (i *Instance) emit(ev Event) bool {
	log := i.class.bridge.log

	if ev.Outlet < 0 || ev.Outlet >= len(i.outlets) {
		log.Error("event for unknown outlet dropped",
			"class", i.class.name, "outlet", ev.Outlet, "kind", ev.Kind.String())
		return false
	}
	if ev.Kind == Any && ev.Selector == "" {
		log.Error("any event without selector dropped",
			"class", i.class.name, "outlet", ev.Outlet)
		return false
	}

	i.class.bridge.host.Emit(i.outlets[ev.Outlet], ev)
	return true
}

//go:build !ios && !android && (amd64 || arm64)

package bindings

// Method argument types as defined by the host SDK (e_max_atomtypes).
const (
	ArgNothing int16 = 0
	ArgLong    int16 = 1
	ArgFloat   int16 = 2
	ArgGimme   int16 = 8
	ArgCant    int16 = 9
)

// Gensym returns the unique symbol for name.
func Gensym(name string) uintptr {
	if !loaded {
		return 0
	}
	return gensym(name)
}

// ObjectAlloc allocates an instance of a registered class.
func ObjectAlloc(class uintptr) uintptr {
	if !loaded || class == 0 {
		return 0
	}
	return objectAlloc(class)
}

// ObjectFree frees an object, proxy or clock. The class free method runs
// from within this call.
func ObjectFree(obj uintptr) {
	if !loaded || obj == 0 {
		return
	}
	objectFree(obj)
}

// ProxyNew creates a proxy inlet with the given ordinal. The host writes the
// ordinal to stuffloc when a message arrives through the proxy.
func ProxyNew(obj uintptr, id int64, stuffloc uintptr) uintptr {
	if !loaded {
		return 0
	}
	return proxyNew(obj, id, stuffloc)
}

// ProxyGetInlet returns the inlet the current message arrived on.
func ProxyGetInlet(obj uintptr) int64 {
	if !loaded {
		return 0
	}
	return proxyGetInlet(obj)
}

// Bangout creates a bang outlet.
func Bangout(obj uintptr) uintptr {
	if !loaded {
		return 0
	}
	return bangout(obj)
}

// Intout creates an int outlet.
func Intout(obj uintptr) uintptr {
	if !loaded {
		return 0
	}
	return intout(obj)
}

// Floatout creates a float outlet.
func Floatout(obj uintptr) uintptr {
	if !loaded {
		return 0
	}
	return floatout(obj)
}

// Listout creates a list outlet.
func Listout(obj uintptr) uintptr {
	if !loaded {
		return 0
	}
	return listout(obj)
}

// OutletNew creates an untyped outlet that accepts any message.
func OutletNew(obj uintptr) uintptr {
	if !loaded {
		return 0
	}
	return outletNew(obj, 0)
}

// OutletBang sends a bang.
func OutletBang(o uintptr) {
	if loaded {
		outletBang(o)
	}
}

// OutletInt sends an int.
func OutletInt(o uintptr, n int64) {
	if loaded {
		outletInt(o, n)
	}
}

// OutletFloat sends a float.
func OutletFloat(o uintptr, f float64) {
	if loaded {
		outletFloat(o, f)
	}
}

// OutletList sends a list of argc atoms at argv.
func OutletList(o uintptr, argc int16, argv uintptr) {
	if loaded {
		outletList(o, 0, argc, argv)
	}
}

// OutletAnything sends a message with selector s.
func OutletAnything(o uintptr, s uintptr, argc int16, argv uintptr) {
	if loaded {
		outletAnything(o, s, argc, argv)
	}
}

// ClockNew creates a clock calling fn with obj.
func ClockNew(obj uintptr, fn uintptr) uintptr {
	if !loaded {
		return 0
	}
	return clockNew(obj, fn)
}

// ClockDelay schedules a clock.
func ClockDelay(c uintptr, ms int64) {
	if loaded && c != 0 {
		clockDelay(c, ms)
	}
}

// ClockUnset cancels a scheduled clock.
func ClockUnset(c uintptr) {
	if loaded && c != 0 {
		clockUnset(c)
	}
}

// ClassRegister registers a class in the box name space.
func ClassRegister(c uintptr) int64 {
	if !loaded {
		return -1
	}
	return classRegister(gensym("box"), c)
}

// DeferLow queues fn(obj, s, 0, nil) on the main thread behind pending
// events.
func DeferLow(obj, fn, s uintptr) {
	if loaded {
		deferLow(obj, fn, s, 0, 0)
	}
}

// Getbytes allocates size bytes of host memory.
func Getbytes(size int) uintptr {
	if !loaded || size <= 0 {
		return 0
	}
	return getbytes(uint64(size))
}

// Freebytes releases memory from Getbytes.
func Freebytes(p uintptr, size int) {
	if loaded && p != 0 {
		freebytes(p, uint64(size))
	}
}

// IsMainThread reports whether the host main thread is executing.
func IsMainThread() bool {
	if !loaded {
		return false
	}
	return systhreadIsMainThread() != 0
}

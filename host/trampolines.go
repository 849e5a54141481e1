//go:build !ios && !android && (amd64 || arm64)

package host

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
)

// callbacks holds the C function pointers of the method table. purego
// callbacks are never released, so they are created once per process.
type callbacks struct {
	new       uintptr
	free      uintptr
	bang      uintptr
	int       uintptr
	float     uintptr
	gimme     uintptr
	loadbang  uintptr
	dblclick  uintptr
	assist    uintptr
	inletinfo uintptr
	tick      uintptr
	resume    uintptr
}

var (
	cb            callbacks
	entryCallback uintptr
	cbOnce        sync.Once
)

func initTrampolines() {
	cbOnce.Do(func() {
		cb = callbacks{
			new:       purego.NewCallback(onNew),
			free:      purego.NewCallback(onFree),
			bang:      purego.NewCallback(onBang),
			int:       purego.NewCallback(onInt),
			float:     purego.NewCallback(onFloat),
			gimme:     purego.NewCallback(onGimme),
			loadbang:  purego.NewCallback(onLoadbang),
			dblclick:  purego.NewCallback(onDblClick),
			assist:    purego.NewCallback(onAssist),
			inletinfo: purego.NewCallback(onInletInfo),
			tick:      purego.NewCallback(onTick),
			resume:    purego.NewCallback(onResume),
		}
		entryCallback = purego.NewCallback(onEntry)
	})
}

// target returns the open host and its dispatcher, or false if either is
// missing.
func target() (*Host, bridge.Dispatcher, bool) {
	h := active.Load()
	if h == nil {
		return nil, nil, false
	}
	d := h.dispatcher()
	return h, d, d != nil
}

// args decodes a host atom array.
func (h *Host) args(argc int64, argv uintptr) []atom.Atom {
	return atom.Decode(atom.Cells(unsafe.Pointer(argv), int(argc)), h)
}

// onNew is the class constructor: void *new(t_symbol *s, long argc, t_atom *argv).
func onNew(s uintptr, argc int64, argv uintptr) uintptr {
	h, d, ok := target()
	if !ok {
		return 0
	}
	return uintptr(d.New(h.Name(s), h.args(argc, argv)))
}

func onFree(x uintptr) {
	if _, d, ok := target(); ok {
		d.Free(bridge.Object(x))
	}
}

func onBang(x uintptr) {
	if _, d, ok := target(); ok {
		d.Bang(bridge.Object(x))
	}
}

func onInt(x uintptr, n int64) {
	if _, d, ok := target(); ok {
		d.Int(bridge.Object(x), n)
	}
}

func onFloat(x uintptr, f float64) {
	if _, d, ok := target(); ok {
		d.Float(bridge.Object(x), f)
	}
}

func onGimme(x, s uintptr, argc int64, argv uintptr) {
	if h, d, ok := target(); ok {
		d.Gimme(bridge.Object(x), h.Name(s), h.args(argc, argv))
	}
}

func onLoadbang(x uintptr) {
	if _, d, ok := target(); ok {
		d.Loadbang(bridge.Object(x))
	}
}

func onDblClick(x uintptr) {
	if _, d, ok := target(); ok {
		d.DblClick(bridge.Object(x))
	}
}

// onAssist fills the host's label buffer:
// void assist(t_object *x, void *b, long io, long index, char *s).
func onAssist(x, b uintptr, io, index int64, s uintptr) {
	if s == 0 {
		return
	}
	if _, d, ok := target(); ok {
		buf := unsafe.Slice((*byte)(unsafe.Pointer(s)), assistBufferSize)
		d.Assist(bridge.Object(x), bridge.IO(io), int(index), buf)
	}
}

// onInletInfo marks cold inlets:
// void inletinfo(t_object *x, void *b, long index, char *t).
func onInletInfo(x, b uintptr, index int64, t uintptr) {
	if t == 0 {
		return
	}
	if _, d, ok := target(); ok {
		if d.InletInfo(bridge.Object(x), int(index)) {
			*(*byte)(unsafe.Pointer(t)) = 1
		}
	}
}

func onTick(x uintptr) {
	if _, d, ok := target(); ok {
		d.Tick(bridge.Object(x))
	}
}

// onResume receives deferred calls; the token is carried in s.
func onResume(x, s uintptr, argc int64, argv uintptr) {
	if _, d, ok := target(); ok {
		d.Resume(uint64(s))
	}
}

// onEntry is called from the shim's ext_main.
func onEntry() {
	if h := active.Load(); h != nil {
		h.enter()
	}
}

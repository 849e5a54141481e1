//go:build !ios && !android && (amd64 || arm64)

package host

import (
	"bytes"
	"errors"
	"log/slog"
	"runtime"
	"testing"
	"unsafe"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/obinnaokechukwu/maxgo/internal/bindings"
	"github.com/obinnaokechukwu/maxgo/internal/shim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op    string
	obj   bridge.Object
	name  string
	args  []atom.Atom
	n     int64
	f     float64
	index int
	io    bridge.IO
	token uint64
}

type recorder struct {
	calls []call
	obj   bridge.Object
	cold  map[int]bool
}

func (r *recorder) add(c call) { r.calls = append(r.calls, c) }

func (r *recorder) New(class string, args []atom.Atom) bridge.Object {
	r.add(call{op: "new", name: class, args: args})
	return r.obj
}
func (r *recorder) Free(obj bridge.Object)         { r.add(call{op: "free", obj: obj}) }
func (r *recorder) Bang(obj bridge.Object)         { r.add(call{op: "bang", obj: obj}) }
func (r *recorder) Int(obj bridge.Object, n int64) { r.add(call{op: "int", obj: obj, n: n}) }
func (r *recorder) Float(obj bridge.Object, f float64) {
	r.add(call{op: "float", obj: obj, f: f})
}
func (r *recorder) Gimme(obj bridge.Object, sel string, args []atom.Atom) {
	r.add(call{op: "gimme", obj: obj, name: sel, args: args})
}
func (r *recorder) Loadbang(obj bridge.Object) { r.add(call{op: "loadbang", obj: obj}) }
func (r *recorder) DblClick(obj bridge.Object) { r.add(call{op: "dblclick", obj: obj}) }
func (r *recorder) Assist(obj bridge.Object, io bridge.IO, index int, buf []byte) {
	r.add(call{op: "assist", obj: obj, io: io, index: index})
	copy(buf, "label\x00")
}
func (r *recorder) InletInfo(obj bridge.Object, index int) bool {
	r.add(call{op: "inletinfo", obj: obj, index: index})
	return r.cold[index]
}
func (r *recorder) Tick(obj bridge.Object) { r.add(call{op: "tick", obj: obj}) }
func (r *recorder) Resume(token uint64)    { r.add(call{op: "resume", token: token}) }

// withActive installs a host bound to a recorder for the duration of the
// test.
func withActive(t *testing.T) (*Host, *recorder) {
	t.Helper()

	h := newHost(Options{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	r := &recorder{obj: 0xbeef, cold: map[int]bool{}}
	h.Bind(r)

	prev := active.Swap(h)
	t.Cleanup(func() { active.Store(prev) })
	return h, r
}

func TestOnNewDecodesArguments(t *testing.T) {
	h, r := withActive(t)

	const classSym, fooSym = uintptr(0x1000), uintptr(0x2000)
	h.names.Store(classSym, "echo")
	h.names.Store(fooSym, "foo")

	cells := []atom.Cell{atom.Long(3), atom.Float(2.5), atom.Symbol(fooSym)}
	got := onNew(classSym, int64(len(cells)), uintptr(unsafe.Pointer(&cells[0])))
	runtime.KeepAlive(cells)

	assert.Equal(t, uintptr(0xbeef), got)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "echo", r.calls[0].name)
	assert.Equal(t, []atom.Atom{int64(3), 2.5, "foo"}, r.calls[0].args)
}

func TestOnNewWithoutArguments(t *testing.T) {
	h, r := withActive(t)
	h.names.Store(uintptr(0x1000), "echo")

	onNew(0x1000, 0, 0)

	require.Len(t, r.calls, 1)
	assert.Empty(t, r.calls[0].args)
}

func TestMethodTrampolines(t *testing.T) {
	h, r := withActive(t)
	h.names.Store(uintptr(0x3000), "set")

	cells := []atom.Cell{atom.Long(7)}
	onBang(1)
	onInt(1, 42)
	onFloat(1, 0.5)
	onGimme(1, 0x3000, 1, uintptr(unsafe.Pointer(&cells[0])))
	runtime.KeepAlive(cells)
	onLoadbang(1)
	onDblClick(1)
	onTick(1)
	onResume(0, 99, 0, 0)
	onFree(1)

	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.op
	}
	assert.Equal(t, []string{"bang", "int", "float", "gimme", "loadbang", "dblclick", "tick", "resume", "free"}, ops)
	assert.Equal(t, int64(42), r.calls[1].n)
	assert.Equal(t, 0.5, r.calls[2].f)
	assert.Equal(t, "set", r.calls[3].name)
	assert.Equal(t, []atom.Atom{int64(7)}, r.calls[3].args)
	assert.Equal(t, uint64(99), r.calls[7].token)
}

func TestOnAssistFillsBuffer(t *testing.T) {
	_, r := withActive(t)

	buf := make([]byte, assistBufferSize)
	onAssist(1, 0, int64(bridge.IOOutlet), 2, uintptr(unsafe.Pointer(&buf[0])))
	runtime.KeepAlive(buf)

	require.Len(t, r.calls, 1)
	assert.Equal(t, bridge.IOOutlet, r.calls[0].io)
	assert.Equal(t, 2, r.calls[0].index)
	assert.Equal(t, "label", goString(uintptr(unsafe.Pointer(&buf[0]))))

	// a NULL buffer is ignored
	onAssist(1, 0, 1, 0, 0)
	assert.Len(t, r.calls, 1)
}

func TestOnInletInfoMarksColdInlets(t *testing.T) {
	_, r := withActive(t)
	r.cold[2] = true

	var hot, cold byte
	onInletInfo(1, 0, 1, uintptr(unsafe.Pointer(&hot)))
	onInletInfo(1, 0, 2, uintptr(unsafe.Pointer(&cold)))

	assert.Equal(t, byte(0), hot)
	assert.Equal(t, byte(1), cold)
}

func TestTrampolinesWithoutHost(t *testing.T) {
	prev := active.Swap(nil)
	t.Cleanup(func() { active.Store(prev) })

	assert.NotPanics(t, func() {
		assert.Equal(t, uintptr(0), onNew(0, 0, 0))
		onBang(1)
		onResume(0, 1, 0, 0)
		onEntry()
	})
}

func TestTrampolinesWithoutDispatcher(t *testing.T) {
	h := newHost(Options{})
	prev := active.Swap(h)
	t.Cleanup(func() { active.Store(prev) })

	assert.Equal(t, uintptr(0), onNew(0, 0, 0))
}

func TestNameReadsSymbolText(t *testing.T) {
	h := newHost(Options{})

	text := []byte("cycle~\x00")
	sym := struct{ name uintptr }{uintptr(unsafe.Pointer(&text[0]))}

	assert.Equal(t, "cycle~", h.Name(uintptr(unsafe.Pointer(&sym))))
	runtime.KeepAlive(text)
	runtime.KeepAlive(&sym)

	assert.Equal(t, "", h.Name(0))
}

func TestGoString(t *testing.T) {
	b := []byte("hello\x00world")
	assert.Equal(t, "hello", goString(uintptr(unsafe.Pointer(&b[0]))))
	runtime.KeepAlive(b)
	assert.Equal(t, "", goString(0))
}

func TestMethodFor(t *testing.T) {
	tests := []struct {
		entry   bridge.Entry
		fn      uintptr
		argType int16
	}{
		{bridge.EntryBang, cb.bang, bindings.ArgNothing},
		{bridge.EntryInt, cb.int, bindings.ArgLong},
		{bridge.EntryFloat, cb.float, bindings.ArgFloat},
		{bridge.EntryGimme, cb.gimme, bindings.ArgGimme},
		{bridge.EntryLoadbang, cb.loadbang, bindings.ArgCant},
		{bridge.EntryDblClick, cb.dblclick, bindings.ArgCant},
		{bridge.EntryAssist, cb.assist, bindings.ArgCant},
		{bridge.EntryInletInfo, cb.inletinfo, bindings.ArgCant},
	}
	for _, tt := range tests {
		fn, argType, err := methodFor(tt.entry)
		require.NoError(t, err)
		assert.Equal(t, tt.fn, fn)
		assert.Equal(t, tt.argType, argType)
	}

	_, _, err := methodFor(bridge.Entry(99))
	assert.Error(t, err)
}

func TestRegisterClassRequiresShim(t *testing.T) {
	if shim.IsLoaded() {
		t.Skip("shim is loaded")
	}

	h := newHost(Options{})
	err := h.RegisterClass(bridge.ClassSpec{Name: "echo"})
	assert.ErrorIs(t, err, shim.ErrShimNotLoaded)
}

// withClasses installs a host whose classes are created in memory. The
// returned slice lists created classes in order.
func withClasses(t *testing.T, fail string) (*Host, *bytes.Buffer, *[]string) {
	t.Helper()

	h, _ := withActive(t)
	logs := &bytes.Buffer{}
	h.log = slog.New(slog.NewTextHandler(logs, nil))

	created := &[]string{}
	h.ready = func() error { return nil }
	h.create = func(spec bridge.ClassSpec) (uintptr, error) {
		if spec.Name == fail {
			return 0, errors.New("class_register failed")
		}
		*created = append(*created, spec.Name)
		return uintptr(len(*created)), nil
	}
	return h, logs, created
}

func TestQueuedClassesRegisterOnEntry(t *testing.T) {
	h, _, created := withClasses(t, "")

	require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "echo"}))
	require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "metro"}))
	assert.Empty(t, *created)
	assert.Len(t, h.pending, 2)

	err := h.RegisterClass(bridge.ClassSpec{Name: "echo"})
	assert.Error(t, err, "a queued name is taken")

	_, err = h.AllocObject("echo")
	assert.ErrorIs(t, err, ErrHostCall, "queued classes cannot allocate")

	onEntry()

	assert.Equal(t, []string{"echo", "metro"}, *created)
	assert.Empty(t, h.pending)
	assert.True(t, h.entered)
	assert.Equal(t, uintptr(1), h.class("echo"))
	assert.Equal(t, uintptr(2), h.class("metro"))

	// after entry registration is immediate
	require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "late"}))
	assert.Equal(t, []string{"echo", "metro", "late"}, *created)
	assert.Error(t, h.RegisterClass(bridge.ClassSpec{Name: "metro"}))

	// a second entry does not register anything again
	onEntry()
	assert.Len(t, *created, 3)
}

func TestEntryReportsFailedClasses(t *testing.T) {
	h, logs, created := withClasses(t, "broken")

	require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "broken"}))
	require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "echo"}))

	h.enter()

	assert.Equal(t, []string{"echo"}, *created)
	assert.Zero(t, h.class("broken"))
	assert.Contains(t, logs.String(), "class registration failed")
	assert.Contains(t, logs.String(), "class=broken")
}

func TestStartRegistersWithoutEntryHandOff(t *testing.T) {
	tests := []struct {
		name       string
		entryErr   error
		mainThread bool
		entered    bool
	}{
		{"entry forwarded", nil, false, false},
		{"entry unavailable", shim.ErrShimNotLoaded, false, true},
		{"main thread", nil, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, created := withClasses(t, "")
			require.NoError(t, h.RegisterClass(bridge.ClassSpec{Name: "echo"}))

			h.start(tt.entryErr, tt.mainThread)

			assert.Equal(t, tt.entered, h.entered)
			if tt.entered {
				assert.Equal(t, []string{"echo"}, *created)
				assert.Empty(t, h.pending)
			} else {
				assert.Empty(t, *created)
				assert.Len(t, h.pending, 1)
			}
		})
	}
}

func TestAllocUnknownClass(t *testing.T) {
	h := newHost(Options{})
	_, err := h.AllocObject("missing")
	assert.ErrorIs(t, err, ErrHostCall)
}

func TestEmitWithoutLibraryDoesNotCrash(t *testing.T) {
	if bindings.IsLoaded() {
		t.Skip("host library is loaded")
	}

	var logs bytes.Buffer
	h := newHost(Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	assert.NotPanics(t, func() {
		h.Emit(1, bridge.Event{Kind: bridge.Bang})
		h.Emit(1, bridge.Event{Kind: bridge.Int, Args: []atom.Atom{1}})
		h.Emit(1, bridge.Event{Kind: bridge.List, Args: []atom.Atom{1, 2.0, "x"}})
		h.Emit(1, bridge.Event{Kind: bridge.Any, Selector: "set"})
	})
	assert.Contains(t, logs.String(), "getbytes failed")
}

//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"testing"

	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter counts bangs and reports the total on its outlet.
type counter struct {
	out    *Outlet
	count  int64
	loaded bool
	clicks int
	freed  *int
}

var (
	freedCounters int
	lastCounter   *counter
)

func (c *counter) Init(obj *Object, args []Atom) bool {
	obj.Inlet(Bang, "count", true)
	c.out = obj.Outlet(Int, "total")
	if len(args) > 0 {
		c.count = ToInt(args[0])
	}
	c.freed = &freedCounters
	lastCounter = c
	return true
}

func (c *counter) Handle(inlet int, msg string, data []Atom) {
	c.count++
	c.out.Int(c.count)
}

func (c *counter) Free() { *c.freed++ }

func (c *counter) Loaded() { c.loaded = true }

func (c *counter) DoubleClicked() { c.clicks++ }

type valueInstance struct{}

func (valueInstance) Init(*Object, []Atom) bool  { return true }
func (valueInstance) Handle(int, string, []Atom) {}
func (valueInstance) Free()                      {}

func TestRegisterPrototype(t *testing.T) {
	env, h := newTestEnv(t, nil)
	require.NoError(t, env.Register("counter", &counter{}))

	a := h.d.New("counter", []atom.Atom{int64(10)})
	b := h.d.New("counter", nil)
	require.NotZero(t, a)
	require.NotZero(t, b)

	h.d.Bang(a)
	h.d.Bang(a)
	h.d.Bang(b)
	h.d.Tick(a)
	h.d.Tick(b)

	var totals []atom.Atom
	for _, ev := range h.events() {
		assert.Equal(t, bridge.Int, ev.Kind)
		totals = append(totals, ev.Args[0])
	}
	assert.Equal(t, []atom.Atom{int64(11), int64(12), int64(1)}, totals)

	before := freedCounters
	h.d.Free(a)
	h.d.Free(b)
	assert.Equal(t, before+2, freedCounters)
}

func TestRegisterAdvancedHooks(t *testing.T) {
	env, h := newTestEnv(t, nil)

	proto := &counter{}
	require.NoError(t, env.Register("adv", proto))

	obj := h.d.New("adv", nil)
	h.d.Loadbang(obj)
	h.d.DblClick(obj)
	h.d.DblClick(obj)
	h.d.Tick(obj)

	// hooks are not delivered to Handle
	assert.Empty(t, h.events())

	require.NotNil(t, lastCounter)
	assert.NotSame(t, proto, lastCounter)
	assert.True(t, lastCounter.loaded)
	assert.Equal(t, 2, lastCounter.clicks)
	assert.False(t, proto.loaded)
}

func TestRegisterInvalidPrototype(t *testing.T) {
	env, _ := newTestEnv(t, nil)

	assert.ErrorIs(t, env.Register("value", valueInstance{}), ErrInvalidPrototype)
	assert.ErrorIs(t, env.Register("nil", nil), ErrInvalidPrototype)
}

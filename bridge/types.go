package bridge

import (
	"fmt"

	"github.com/obinnaokechukwu/maxgo/atom"
)

// Handle is an opaque token issued by the managed runtime for one object.
// Handle 0 means initialization failed.
type Handle uint64

// Host-owned resources. These are host pointers (C memory), never Go
// pointers, so the bridge may hold them for the lifetime of an object.
type (
	// Object is the host object record (t_object*).
	Object uintptr

	// Proxy is a host proxy inlet.
	Proxy uintptr

	// Outlet is a host outlet.
	Outlet uintptr

	// Clock is a host clock used as the drain timer.
	Clock uintptr
)

// Kind is the type of an outlet and of a queued event.
type Kind int

// The outlet and event kinds.
const (
	Bang Kind = iota
	Int
	Float
	List
	Any
)

// String returns the host name of the kind.
func (k Kind) String() string {
	switch k {
	case Bang:
		return "bang"
	case Int:
		return "int"
	case Float:
		return "float"
	case List:
		return "list"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is a pending outlet emission. Selector is required for Any.
type Event struct {
	Outlet   int
	Kind     Kind
	Selector string
	Args     []atom.Atom
}

// IO selects inlets or outlets in metadata queries. The values match the
// host's assist constants.
type IO int

// The assist directions.
const (
	IOInlet  IO = 1
	IOOutlet IO = 2
)

// InitResult is returned by Runtime.Init.
type InitResult struct {
	// Handle identifies the new object; 0 signals failure.
	Handle Handle

	// Proxies is the number of proxy inlets to create, i.e. the number of
	// inlets beyond the implicit first one.
	Proxies int

	// Outlets lists the outlets from left to right.
	Outlets []Kind
}

// State is the lifecycle state of an Instance.
type State int32

// The lifecycle states.
const (
	Uninitialized State = iota
	Initializing
	Active
	Freed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	case Freed:
		return "freed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

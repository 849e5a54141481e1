//go:build !ios && !android && (amd64 || arm64)

package maxgo

import (
	"github.com/obinnaokechukwu/maxgo/atom"
	"github.com/obinnaokechukwu/maxgo/bridge"
)

// Atom is a host atom of type int64, float64 or string.
type Atom = atom.Atom

// Type describes an inlet or outlet type.
type Type string

// The available inlet and outlet types.
const (
	Bang  Type = "bang"
	Int   Type = "int"
	Float Type = "float"
	List  Type = "list"
	Any   Type = "any"
)

func (t Type) valid() bool {
	switch t {
	case Bang, Int, Float, List, Any:
		return true
	default:
		return false
	}
}

func (t Type) kind() bridge.Kind {
	switch t {
	case Bang:
		return bridge.Bang
	case Int:
		return bridge.Int
	case Float:
		return bridge.Float
	case List:
		return bridge.List
	default:
		return bridge.Any
	}
}

// Event describes an emitted event.
type Event struct {
	Outlet *Outlet
	Type   Type
	Msg    string
	Data   []Atom
}

// ToInt will convert to int64.
func ToInt(a Atom) int64 { return atom.ToInt(a) }

// ToFloat will convert to float64.
func ToFloat(a Atom) float64 { return atom.ToFloat(a) }

// ToString will convert to string.
func ToString(a Atom) string { return atom.ToString(a) }

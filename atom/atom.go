// Package atom converts between the host's tagged argument cells and plain Go
// values.
//
// An Atom is an int64, a float64 or a string (a symbol name). Anything else
// that reaches the host boundary is normalized first; values that have no
// host representation become nil and are encoded as empty cells.
package atom

import (
	"strconv"
)

// Atom is a host atom of type int64, float64 or string.
type Atom = any

// Kind identifies the type stored in a host atom cell.
type Kind int16

// Cell type tags as laid out by the host SDK (e_max_atomtypes).
const (
	KindNothing Kind = 0
	KindLong    Kind = 1
	KindFloat   Kind = 2
	KindSymbol  Kind = 3
	KindObject  Kind = 4
	KindGimme   Kind = 8
	KindCant    Kind = 9
)

// String returns the host name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNothing:
		return "nothing"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	case KindGimme:
		return "gimme"
	case KindCant:
		return "cant"
	default:
		return "unknown"
	}
}

// KindOf reports the cell kind a value will be encoded as.
func KindOf(a Atom) Kind {
	switch Normalize(a).(type) {
	case int64:
		return KindLong
	case float64:
		return KindFloat
	case string:
		return KindSymbol
	default:
		return KindNothing
	}
}

// Normalize maps Go numeric and textual types onto the three atom types.
// Values without a host representation are returned as nil.
func Normalize(a Atom) Atom {
	switch v := a.(type) {
	case int64, float64, string:
		return v
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return string(v)
	default:
		return nil
	}
}

// NormalizeAll normalizes every atom of the list in a new slice.
func NormalizeAll(atoms []Atom) []Atom {
	if len(atoms) == 0 {
		return nil
	}
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[i] = Normalize(a)
	}
	return out
}

// ToInt will convert to int64.
func ToInt(a Atom) int64 {
	switch v := Normalize(a).(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// ToFloat will convert to float64.
func ToFloat(a Atom) float64 {
	switch v := Normalize(a).(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		n, _ := strconv.ParseFloat(v, 64)
		return n
	default:
		return 0
	}
}

// ToString will convert to string.
func ToString(a Atom) string {
	switch v := Normalize(a).(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return ""
	}
}

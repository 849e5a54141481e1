package atom

import (
	"math"
	"unsafe"
)

// Cell mirrors the host's t_atom: a 16-bit type tag followed by an 8-byte
// word union (t_atom_long, t_atom_float or t_symbol*).
//
// The layout must exactly match the host SDK on 64-bit platforms.
type Cell struct {
	Type Kind
	_    [6]byte
	Word uint64
}

// CellSize is the size in bytes of one host atom cell.
const CellSize = int(unsafe.Sizeof(Cell{}))

// Symbols interns symbol names for the host. Gensym returns the host symbol
// pointer for a name and Name resolves a pointer back to its text.
type Symbols interface {
	Gensym(name string) uintptr
	Name(sym uintptr) string
}

// Long returns a cell holding n.
func Long(n int64) Cell {
	return Cell{Type: KindLong, Word: uint64(n)}
}

// Float returns a cell holding f.
func Float(f float64) Cell {
	return Cell{Type: KindFloat, Word: math.Float64bits(f)}
}

// Symbol returns a cell holding the symbol pointer sym.
func Symbol(sym uintptr) Cell {
	return Cell{Type: KindSymbol, Word: uint64(sym)}
}

// Decode converts host cells to atoms. Cells of an unsupported kind decode
// to nil so argument positions are preserved.
func Decode(cells []Cell, syms Symbols) []Atom {
	if len(cells) == 0 {
		return nil
	}

	atoms := make([]Atom, len(cells))
	for i, c := range cells {
		switch c.Type {
		case KindLong:
			atoms[i] = int64(c.Word)
		case KindFloat:
			atoms[i] = math.Float64frombits(c.Word)
		case KindSymbol:
			if syms != nil && c.Word != 0 {
				atoms[i] = syms.Name(uintptr(c.Word))
			} else {
				atoms[i] = ""
			}
		default:
			atoms[i] = nil
		}
	}

	return atoms
}

// Encode writes atoms into dst, which must hold at least len(atoms) cells.
// It returns the number of cells written.
func Encode(dst []Cell, atoms []Atom, syms Symbols) int {
	n := min(len(dst), len(atoms))
	for i := 0; i < n; i++ {
		switch v := Normalize(atoms[i]).(type) {
		case int64:
			dst[i] = Long(v)
		case float64:
			dst[i] = Float(v)
		case string:
			var sym uintptr
			if syms != nil {
				sym = syms.Gensym(v)
			}
			dst[i] = Symbol(sym)
		default:
			dst[i] = Cell{}
		}
	}
	return n
}

// Cells views a host-owned atom array as a slice. It returns nil when argv
// is nil or argc is not positive.
func Cells(argv unsafe.Pointer, argc int) []Cell {
	if argv == nil || argc <= 0 {
		return nil
	}
	return unsafe.Slice((*Cell)(argv), argc)
}

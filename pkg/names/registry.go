// Package names implements the scoped name registry used to resolve piece,
// static-variable, function, and local/argument identifiers during
// compilation.
package names

import (
	"fmt"

	"github.com/unit-scripts/cobc/pkg/ast"
)

// Type identifies which namespace a registered name belongs to.
type Type int

const (
	Invalid Type = iota
	Static
	Local
	Piece
	Function
	Arg
)

// Description returns a human-readable label, used in diagnostics.
func (t Type) Description() string {
	switch t {
	case Static:
		return "Static Variable"
	case Local:
		return "Local Variable"
	case Piece:
		return "Piece Name"
	case Function:
		return "Function Name"
	case Arg:
		return "Function Argument"
	default:
		return "Invalid Name"
	}
}

// entry is one registration: the index assigned within its type's index
// space, the type itself, and the name's original casing as written at the
// declaration site (lookups are case-insensitive, but callers like
// Names() need the casing back for diagnostics and object-file output).
type entry struct {
	index    int
	typ      Type
	original string
}

// Registry is a scoped name table. Each Type has its own index space,
// except Local and Arg, which share one contiguous space (locals are
// numbered starting at the current argument count) so the runtime sees a
// single flat stack-slot range for a function's locals+args.
type Registry struct {
	byType map[Type]map[string]int // lowercased name -> index, per type
	lookup map[string]entry        // lowercased name -> (index, type)

	// OnDuplicateGlobal is invoked instead of returning an error when a
	// same-type duplicate global (STATIC or PIECE) is registered; the
	// original tool logs a warning and keeps the first declaration.
	OnDuplicateGlobal func(name ast.Name, typ Type)
}

// New returns an empty registry.
func New() *Registry {
	r := &Registry{
		byType: make(map[Type]map[string]int),
		lookup: make(map[string]entry),
	}
	for _, t := range []Type{Static, Local, Piece, Function, Arg} {
		r.byType[t] = make(map[string]int)
	}
	return r
}

// Register adds name to the type-specific table and the global lookup.
//
// Collision policy: a same-type collision where typ is Static or Piece (a
// duplicate global declaration) is reported via OnDuplicateGlobal and the
// first declaration is kept; any other collision (including a same-type
// collision for Function/Local/Arg, or any cross-type collision) is a
// compile error identifying both the new declaration and the existing type.
func (r *Registry) Register(name ast.Name, typ Type) error {
	key := name.Key()

	if existing, ok := r.lookup[key]; ok {
		if existing.typ == typ && (typ == Static || typ == Piece) {
			if r.OnDuplicateGlobal != nil {
				r.OnDuplicateGlobal(name, typ)
			}
			return nil
		}
		return fmt.Errorf(
			"invalid declaration of %s %q: name is already being used by a %s declaration",
			typ.Description(), name, existing.typ.Description(),
		)
	}

	idx := len(r.byType[typ])
	if typ == Local {
		idx += len(r.byType[Arg])
	}

	r.byType[typ][key] = idx
	r.lookup[key] = entry{index: idx, typ: typ, original: name.Text}
	return nil
}

// Lookup resolves name case-insensitively. A missing name is a compile
// error.
func (r *Registry) Lookup(name ast.Name) (index int, typ Type, err error) {
	e, ok := r.lookup[name.Key()]
	if !ok {
		return -1, Invalid, fmt.Errorf("undefined name %q", name)
	}
	return e.index, e.typ, nil
}

// ClearLocalNames removes all Local and Arg entries, invoked at each
// function boundary.
func (r *Registry) ClearLocalNames() {
	r.byType[Local] = make(map[string]int)
	r.byType[Arg] = make(map[string]int)

	for k, e := range r.lookup {
		if e.typ == Local || e.typ == Arg {
			delete(r.lookup, k)
		}
	}
}

// Count returns how many names of typ are currently registered.
func (r *Registry) Count(typ Type) int {
	return len(r.byType[typ])
}

// Names returns the original-cased names registered under typ; registration
// order is not guaranteed (map iteration order). Callers that need a stable
// order (object-file output, where index order matters) should track their
// own declaration-order slice instead, the way Compiler.functionOrder and
// Compiler.pieceOrder do.
func (r *Registry) Names(typ Type) []string {
	names := make([]string, 0, len(r.byType[typ]))
	for k := range r.byType[typ] {
		names = append(names, r.lookup[k].original)
	}
	return names
}

// Len returns the total number of registered names across all types.
func (r *Registry) Len() int { return len(r.lookup) }

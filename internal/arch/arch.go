// Package arch supplies the "architecture descriptor" collaborator named in
// spec §6: the set of architectural register identifiers, the program
// counter identifier(s), and the IR's distinguished IRDst destination. The
// ssa core consults a Descriptor only to decide which identifiers are
// excluded from SSA renaming (spec §4.3 init, §4.1 IRDst passthrough); it
// never inspects register semantics beyond that.
package arch

import "github.com/malphas-lang/ssacore/internal/ir"

// Descriptor names an architecture's registers and the identifiers that
// must never be renamed: the program counter(s) and IRDst.
type Descriptor struct {
	Name      string
	Registers []ir.Ident
	PC        []ir.Ident
	IRDst     ir.Ident
}

// Excluded returns the set of base (unversioned) identifiers that the ssa
// core must never rename: the program counter(s) plus IRDst.
func (d Descriptor) Excluded() map[ir.Ident]bool {
	out := make(map[ir.Ident]bool, len(d.PC)+1)
	for _, pc := range d.PC {
		out[pc.Base()] = true
	}
	out[d.IRDst.Base()] = true
	return out
}

// HasRegister reports whether id names one of the architecture's registers.
func (d Descriptor) HasRegister(id ir.Ident) bool {
	base := id.Base()
	for _, reg := range d.Registers {
		if reg.Base() == base {
			return true
		}
	}
	return false
}

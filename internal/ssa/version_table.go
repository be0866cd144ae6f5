package ssa

import "github.com/malphas-lang/ssacore/internal/ir"

// VersionTable holds per-variable counters and the per-scope "current
// version" map described in spec §3. It is owned by exactly one Driver.
type VersionTable struct {
	counter  map[ir.Ident]int // base Ident -> next unused version
	rhsStack map[ir.Ident]int // base Ident -> currently reaching version
}

func newVersionTable() *VersionTable {
	return &VersionTable{
		counter:  make(map[ir.Ident]int),
		rhsStack: make(map[ir.Ident]int),
	}
}

func (vt *VersionTable) reset() {
	vt.counter = make(map[ir.Ident]int)
	vt.rhsStack = make(map[ir.Ident]int)
}

// fresh allocates a new SSA version for base, installs it as the currently
// reaching version, and returns the versioned Ident. Every SSA destination
// gets version counter[base] at the moment of creation, and counter[base]
// is incremented exactly once per creation (spec invariant).
func (vt *VersionTable) fresh(base ir.Ident) ir.Ident {
	v := vt.counter[base]
	vt.counter[base] = v + 1
	vt.rhsStack[base] = v
	return ir.SSA(base.Name, base.Size, v)
}

// current returns the version of base currently reaching this point, if
// base has been defined anywhere on the active path.
func (vt *VersionTable) current(base ir.Ident) (ir.Ident, bool) {
	v, ok := vt.rhsStack[base]
	if !ok {
		return ir.Ident{}, false
	}
	return ir.SSA(base.Name, base.Size, v), true
}

// substituteRHS replaces every free identifier in e that has a currently
// reaching version with that version, leaving identifiers never defined on
// this path unchanged (they are live-ins, spec §4.1 rule 1).
func (vt *VersionTable) substituteRHS(e ir.Expr) ir.Expr {
	free := ir.FreeIdents(e)
	var mapping map[ir.Ident]ir.Expr
	for _, id := range free {
		if id.IsSSA() {
			continue
		}
		if cur, ok := vt.current(id); ok {
			if mapping == nil {
				mapping = make(map[ir.Ident]ir.Expr, len(free))
			}
			mapping[id] = ir.Identifier{Ident: cur}
		}
	}
	if mapping == nil {
		return e
	}
	return ir.ReplaceLeaves(e, mapping)
}

// snapshot copies the current rhsStack for later restoration (spec §4.4
// step 5: one snapshot pushed per dominator-tree child).
func (vt *VersionTable) snapshot() map[ir.Ident]int {
	out := make(map[ir.Ident]int, len(vt.rhsStack))
	for k, v := range vt.rhsStack {
		out[k] = v
	}
	return out
}

// restore replaces rhsStack with a previously captured snapshot.
func (vt *VersionTable) restore(snap map[ir.Ident]int) {
	vt.rhsStack = snap
}

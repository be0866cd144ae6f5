package ssa

import "github.com/malphas-lang/ssacore/internal/ir"

// PhiFiller updates the renaming scope's live versions into the phi
// functions installed by PhiPlacer, during the dominator-tree walk (spec
// §4.4 steps 2 and 4).
type PhiFiller struct {
	nodes    *PhiNodes
	versions *VersionTable
}

// renameLHS allocates a fresh SSA version for every phi destination at
// label, replacing the placeholder key in place while preserving slot
// position and the RHS payload accumulated so far.
func (f *PhiFiller) renameLHS(label ir.BlockLabel) {
	bp, ok := f.nodes.blocks[label]
	if !ok {
		return
	}
	for _, e := range bp.entries {
		base := e.base()
		e.dst = f.versions.fresh(base)
	}
}

// fillSuccessor adds the current reaching version of each phi variable at
// successor to that phi's operand list, growing an empty marker into a
// one-operand phi or extending an existing phi with one more operand placed
// in front of the operands already there.
func (f *PhiFiller) fillSuccessor(successor ir.BlockLabel) {
	bp, ok := f.nodes.blocks[successor]
	if !ok {
		return
	}
	for _, e := range bp.entries {
		base := e.base()
		current, ok := f.versions.current(base)
		if !ok {
			// Never defined on this path: the operand is a live-in,
			// represented unversioned (spec §4.1 rule 1).
			current = base
		}
		operand := ir.Identifier{Ident: current}
		if isEmptyPhi(e.rhs) {
			e.rhs = ir.Operator{Op: "phi", Operands: []ir.Expr{operand}}
			continue
		}
		op := e.rhs.(ir.Operator)
		operands := make([]ir.Expr, 0, len(op.Operands)+1)
		operands = append(operands, operand)
		operands = append(operands, op.Operands...)
		e.rhs = ir.Operator{Op: "phi", Operands: operands}
	}
}

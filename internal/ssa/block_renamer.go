package ssa

import "github.com/malphas-lang/ssacore/internal/ir"

// BlockRenamer renames one IR block's assignments in place, respecting
// parallel-assignment semantics between left- and right-hand sides (spec
// §4.1). It shares a VersionTable and expressions table with the rest of a
// Driver run.
type BlockRenamer struct {
	versions    *VersionTable
	expressions map[ir.Ident]ir.Expr
	excluded    map[ir.Ident]bool
}

// reorderMemoryFirst splits assigns into memory destinations (emitted
// first) and identifier destinations (emitted after), each group
// preserving its original relative order. This is the contract that
// encodes "parallel": computing all RHS before any LHS rename, and
// renaming memory addresses on the LHS with the current (unchanged)
// version map, is what makes self-assignment x <- x + 1 yield
// x.n+1 <- x.n + 1 rather than x.n+1 <- x.n+1 + 1.
func reorderMemoryFirst(assigns []ir.Assignment) ([]ir.Assignment, error) {
	mem := make([]ir.Assignment, 0, len(assigns))
	idents := make([]ir.Assignment, 0, len(assigns))
	for _, a := range assigns {
		switch a.Dst.(type) {
		case ir.Memory:
			mem = append(mem, a)
		case ir.Identifier:
			idents = append(idents, a)
		default:
			return nil, unsupportedDestf("assignment destination is neither Identifier nor Memory: %T", a.Dst)
		}
	}
	out := make([]ir.Assignment, 0, len(assigns))
	out = append(out, mem...)
	out = append(out, idents...)
	return out, nil
}

// renameBlock rewrites every AssignBlock of block in place with its SSA
// form.
func (r *BlockRenamer) renameBlock(block *ir.IrBlock) error {
	for i, ab := range block.Assigns {
		renamed, err := r.renameAssignBlock(ab)
		if err != nil {
			return err
		}
		block.Assigns[i] = renamed
	}
	return nil
}

// renameAssignBlock implements the two-phase rename of spec §4.1: all RHS
// expressions are substituted first (reading the version map before any
// destination in this block changes it), then destinations are renamed in
// the same (memory-first) order, consuming the precomputed RHS values from
// a FIFO.
func (r *BlockRenamer) renameAssignBlock(ab *ir.AssignBlock) (*ir.AssignBlock, error) {
	ordered, err := reorderMemoryFirst(ab.Assignments())
	if err != nil {
		return nil, err
	}

	rhsQueue := make([]ir.Expr, len(ordered))
	for i, a := range ordered {
		rhsQueue[i] = r.versions.substituteRHS(a.Src)
	}

	out := make([]ir.Assignment, 0, len(ordered))
	for i, a := range ordered {
		dstSSA, err := r.renameDst(a.Dst)
		if err != nil {
			return nil, err
		}
		srcSSA := rhsQueue[i]
		out = append(out, ir.Assignment{Dst: dstSSA, Src: srcSSA})

		if id, ok := dstSSA.(ir.Identifier); ok && id.Ident.IsSSA() {
			r.expressions[id.Ident] = srcSSA
		}
	}
	return ir.NewAssignBlock(out...), nil
}

// renameDst renames a single destination: an excluded Identifier (IRDst or
// the architectural PC) passes through unrenamed; any other Identifier
// receives a fresh SSA version; a Memory destination is rewritten as an
// RHS-view expression with no counter update, since memory is stateless in
// this SSA model (spec Non-goal: Memory SSA).
func (r *BlockRenamer) renameDst(dst ir.Expr) (ir.Expr, error) {
	switch d := dst.(type) {
	case ir.Identifier:
		base := d.Ident.Base()
		if r.excluded[base] {
			return d, nil
		}
		return ir.Identifier{Ident: r.versions.fresh(base)}, nil
	case ir.Memory:
		return ir.Memory{Addr: r.versions.substituteRHS(d.Addr), Size: d.Size}, nil
	default:
		return nil, unsupportedDestf("assignment destination is neither Identifier nor Memory: %T", dst)
	}
}

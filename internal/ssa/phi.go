package ssa

import (
	"sort"

	"github.com/malphas-lang/ssacore/internal/ir"
)

// phiEntry is one block's phi function for one variable. Dst starts as the
// variable's plain (unversioned) identity at placement time and is replaced
// in place with a fresh SsaName during the renaming walk (spec §4.4 step
// 2), without disturbing its position in the block's entry list. Rhs starts
// as the empty marker and is filled in (or extended) as each predecessor is
// processed (spec §4.4 step 4).
type phiEntry struct {
	dst ir.Ident
	rhs ir.Expr
}

func (e *phiEntry) base() ir.Ident { return e.dst.Base() }

// emptyPhi is the placement-time marker: the Identifier "phi" of the
// variable's width, with no operands yet.
func emptyPhi(size uint8) ir.Expr {
	return ir.Identifier{Ident: ir.Var("phi", size)}
}

func isEmptyPhi(e ir.Expr) bool {
	id, ok := e.(ir.Identifier)
	return ok && id.Ident.Name == "phi" && !id.Ident.IsSSA()
}

// blockPhis holds one block's phi entries in installation order.
type blockPhis struct {
	entries []*phiEntry
}

// PhiAssignment is a read-only view of one installed phi function.
type PhiAssignment struct {
	Dst ir.Ident
	Rhs ir.Expr
}

// PhiNodes is the BlockLabel -> ordered map SsaName -> PhiRhs structure of
// spec §3, keyed by block label.
type PhiNodes struct {
	blocks map[ir.BlockLabel]*blockPhis
	order  []ir.BlockLabel
}

func newPhiNodes() *PhiNodes {
	return &PhiNodes{blocks: make(map[ir.BlockLabel]*blockPhis)}
}

func (p *PhiNodes) blockFor(label ir.BlockLabel) *blockPhis {
	bp, ok := p.blocks[label]
	if !ok {
		bp = &blockPhis{}
		p.blocks[label] = bp
		p.order = append(p.order, label)
	}
	return bp
}

// has reports whether label already has a phi installed for variable.
func (p *PhiNodes) has(label ir.BlockLabel, variable ir.Ident) bool {
	bp, ok := p.blocks[label]
	if !ok {
		return false
	}
	for _, e := range bp.entries {
		if e.base() == variable {
			return true
		}
	}
	return false
}

// install adds an empty phi for variable at label.
func (p *PhiNodes) install(label ir.BlockLabel, variable ir.Ident) {
	bp := p.blockFor(label)
	bp.entries = append(bp.entries, &phiEntry{dst: variable, rhs: emptyPhi(variable.Size)})
}

// View returns a read-only snapshot of every block's installed phi
// functions, in installation order.
func (p *PhiNodes) View() map[ir.BlockLabel][]PhiAssignment {
	out := make(map[ir.BlockLabel][]PhiAssignment, len(p.blocks))
	for label, bp := range p.blocks {
		assignments := make([]PhiAssignment, len(bp.entries))
		for i, e := range bp.entries {
			assignments[i] = PhiAssignment{Dst: e.dst, Rhs: e.rhs}
		}
		out[label] = assignments
	}
	return out
}

// DefsMap is the Variable -> set of BlockLabel map of spec §3, computed
// once by PhiPlacer.
type DefsMap map[ir.Ident]map[ir.BlockLabel]bool

// PhiPlacer computes, for each variable, the set of blocks needing
// phi-functions via iterated dominance frontiers (Cytron et al., 1989).
type PhiPlacer struct {
	excluded map[ir.Ident]bool
}

// computeDefs walks the CFG from head and records every block that
// textually defines each non-excluded variable (spec §4.3 init). Memory
// destinations, IRDst, and the architectural PC are never harvested.
func (p *PhiPlacer) computeDefs(order []ir.BlockLabel, blockOf func(ir.BlockLabel) (*ir.IrBlock, error)) (DefsMap, error) {
	defs := make(DefsMap)
	for _, label := range order {
		block, err := blockOf(label)
		if err != nil {
			return nil, err
		}
		for _, ab := range block.Assigns {
			for _, a := range ab.Assignments() {
				id, ok := a.Dst.(ir.Identifier)
				if !ok {
					continue
				}
				base := id.Ident.Base()
				if p.excluded[base] {
					continue
				}
				if defs[base] == nil {
					defs[base] = make(map[ir.BlockLabel]bool)
				}
				defs[base][label] = true
			}
		}
	}
	return defs, nil
}

// place runs the per-variable worklist algorithm of spec §4.3 over the
// dominance frontier, installing an empty phi at every block in the
// iterated dominance frontier of each variable's defining blocks.
func (p *PhiPlacer) place(defs DefsMap, frontier map[ir.BlockLabel][]ir.BlockLabel) *PhiNodes {
	nodes := newPhiNodes()

	for _, variable := range sortedIdents(defs) {
		defBlocks := defs[variable]
		done := make(map[ir.BlockLabel]bool)
		inTodo := make(map[ir.BlockLabel]bool)
		var todo []ir.BlockLabel
		for block := range defBlocks {
			todo = append(todo, block)
			inTodo[block] = true
		}
		sort.Slice(todo, func(i, j int) bool { return todo[i] < todo[j] })

		for len(todo) > 0 {
			block := todo[len(todo)-1]
			todo = todo[:len(todo)-1]

			for _, n := range frontier[block] {
				if done[n] {
					continue
				}
				nodes.install(n, variable)
				done[n] = true
				if !inTodo[n] {
					inTodo[n] = true
					todo = append(todo, n)
				}
			}
		}
	}
	return nodes
}

func sortedIdents(defs DefsMap) []ir.Ident {
	out := make([]ir.Ident, 0, len(defs))
	for id := range defs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Size < out[j].Size
	})
	return out
}

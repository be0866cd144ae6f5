// Package ssa implements the core of the spec: block-local SSA renaming,
// minimal-SSA phi placement via iterated dominance frontiers, and the
// dominator-tree renaming walk that fills phi operands. It is strictly
// single-threaded and synchronous: all state belongs to one Driver
// instance, mutated only by that instance's own calls.
package ssa

import (
	"github.com/malphas-lang/ssacore/internal/arch"
	"github.com/malphas-lang/ssacore/internal/graph"
	"github.com/malphas-lang/ssacore/internal/ir"
)

// Driver orchestrates a single SSA transform: initializing definitions,
// placing empty phis, walking the dominator tree, and installing phis into
// blocks (spec §2). SsaBlock, SsaPath, and SsaDiGraph are thin wrappers
// around one Driver, matching the teacher's SSA/SSABlock/SSAPath/SSADiGraph
// class hierarchy via embedding instead of inheritance.
type Driver struct {
	cfg        graph.CFG
	descriptor arch.Descriptor
	excluded   map[ir.Ident]bool

	versions    *VersionTable
	expressions map[ir.Ident]ir.Expr
	blocks      map[ir.BlockLabel]*ir.IrBlock
	defs        DefsMap
	phiNodes    *PhiNodes

	done bool
}

// NewDriver creates a Driver over cfg using descriptor to identify
// identifiers excluded from renaming (IRDst, the program counter).
func NewDriver(cfg graph.CFG, descriptor arch.Descriptor) *Driver {
	d := &Driver{cfg: cfg, descriptor: descriptor, excluded: descriptor.Excluded()}
	d.Reset()
	return d
}

// Reset clears all state: counters, stacks, defs, phinodes, and cloned
// blocks. It must be called before re-running transform on this instance
// (spec §5).
func (d *Driver) Reset() {
	d.versions = newVersionTable()
	d.expressions = make(map[ir.Ident]ir.Expr)
	d.blocks = make(map[ir.BlockLabel]*ir.IrBlock)
	d.defs = nil
	d.phiNodes = newPhiNodes()
	d.done = false
}

// ReverseName strips the version from an SsaName, returning the underlying
// Variable.
func ReverseName(id ir.Ident) ir.Ident { return id.Base() }

// Blocks returns a read-only view of every block touched by the transform,
// keyed by label.
func (d *Driver) Blocks() map[ir.BlockLabel]*ir.IrBlock {
	out := make(map[ir.BlockLabel]*ir.IrBlock, len(d.blocks))
	for k, v := range d.blocks {
		out[k] = v
	}
	return out
}

// Expressions returns a read-only view of the SSA destination -> source
// expression table.
func (d *Driver) Expressions() map[ir.Ident]ir.Expr {
	out := make(map[ir.Ident]ir.Expr, len(d.expressions))
	for k, v := range d.expressions {
		out[k] = v
	}
	return out
}

// Defs returns a read-only view of the variable -> defining-blocks map
// computed by PhiPlacer.
func (d *Driver) Defs() DefsMap {
	out := make(DefsMap, len(d.defs))
	for k, v := range d.defs {
		blocks := make(map[ir.BlockLabel]bool, len(v))
		for b := range v {
			blocks[b] = true
		}
		out[k] = blocks
	}
	return out
}

// Phinodes returns a read-only view of the phi functions installed in each
// block.
func (d *Driver) Phinodes() map[ir.BlockLabel][]PhiAssignment {
	return d.phiNodes.View()
}

func (d *Driver) getBlock(label ir.BlockLabel) (*ir.IrBlock, error) {
	if b, ok := d.blocks[label]; ok {
		return b, nil
	}
	b, err := d.cfg.CloneBlock(label)
	if err != nil {
		return nil, invalidInputf(err, "clone block %q", label)
	}
	d.blocks[label] = b
	return b, nil
}

func (d *Driver) renamer() *BlockRenamer {
	return &BlockRenamer{versions: d.versions, expressions: d.expressions, excluded: d.excluded}
}

// TransformBlock implements SsaBlock.transform(label): block-local SSA
// only, no phi functions.
func (d *Driver) TransformBlock(label ir.BlockLabel) error {
	if d.done {
		return reentrancyErr()
	}
	block, err := d.getBlock(label)
	if err != nil {
		return err
	}
	if err := d.renamer().renameBlock(block); err != nil {
		return err
	}
	d.done = true
	return nil
}

// TransformPath implements SsaPath.transform([]label): a linear sequence of
// blocks renamed in order, sharing one version table, no phi functions.
func (d *Driver) TransformPath(labels []ir.BlockLabel) error {
	if d.done {
		return reentrancyErr()
	}
	r := d.renamer()
	for _, label := range labels {
		block, err := d.getBlock(label)
		if err != nil {
			return err
		}
		if err := r.renameBlock(block); err != nil {
			return err
		}
	}
	d.done = true
	return nil
}

// TransformGraph implements SsaDiGraph.transform(head): full minimal SSA
// over the CFG reachable from head (spec §4.4–§4.5).
func (d *Driver) TransformGraph(head ir.BlockLabel) error {
	if d.done {
		return reentrancyErr()
	}

	order, err := d.cfg.WalkDepthFirstForward(head)
	if err != nil {
		return invalidInputf(err, "head %q unreachable", head)
	}
	if len(order) == 0 {
		return invalidInputf(nil, "head %q not found in CFG", head)
	}

	placer := &PhiPlacer{excluded: d.excluded}
	defs, err := placer.computeDefs(order, d.getBlock)
	if err != nil {
		return err
	}
	d.defs = defs

	frontier, err := d.cfg.ComputeDominanceFrontier(head)
	if err != nil {
		return invalidInputf(err, "dominance frontier from %q", head)
	}
	d.phiNodes = placer.place(defs, frontier)

	domTree, err := d.cfg.ComputeDominatorTree(head)
	if err != nil {
		return invalidInputf(err, "dominator tree from %q", head)
	}
	domOrder, err := domTree.WalkDepthFirstForward(head)
	if err != nil {
		return invalidInputf(err, "dominator-tree walk from %q", head)
	}

	filler := &PhiFiller{nodes: d.phiNodes, versions: d.versions}
	renamer := d.renamer()

	stack := []map[ir.Ident]int{d.versions.snapshot()}
	for _, label := range domOrder {
		snap := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		d.versions.restore(snap)

		filler.renameLHS(label)

		block, err := d.getBlock(label)
		if err != nil {
			return err
		}
		if err := renamer.renameBlock(block); err != nil {
			return err
		}

		successors, err := d.cfg.Successors(label)
		if err != nil {
			return invalidInputf(err, "successors of %q", label)
		}
		for _, s := range successors {
			filler.fillSuccessor(s)
		}

		children, err := domTree.Successors(label)
		if err != nil {
			return invalidInputf(err, "dominator-tree children of %q", label)
		}
		for range children {
			stack = append(stack, d.versions.snapshot())
		}
	}

	d.materialize()
	d.done = true
	return nil
}

// materialize records every phi (dst, src) pair into the expressions table
// and inserts a single AssignBlock of phi-assignments at the head of each
// block that has any (spec §4.5).
func (d *Driver) materialize() {
	for _, label := range d.phiNodes.order {
		bp := d.phiNodes.blocks[label]
		if len(bp.entries) == 0 {
			continue
		}
		assigns := make([]ir.Assignment, 0, len(bp.entries))
		for _, e := range bp.entries {
			d.expressions[e.dst] = e.rhs
			assigns = append(assigns, ir.Assignment{Dst: ir.Identifier{Ident: e.dst}, Src: e.rhs})
		}
		block := d.blocks[label]
		block.PrependAssigns(ir.NewAssignBlock(assigns...))
	}
}

// Reassemble resolves an SSA expression back to a non-SSA expression by
// iterative substitution (spec §4.2). A worklist keyed by identifier
// ensures every SsaName is processed at most once, so cyclic (phi-induced)
// references terminate: the leaf is substituted once with its phi
// expression and not re-entered.
func (d *Driver) Reassemble(e ir.Expr) ir.Expr {
	queued := make(map[ir.Ident]bool)
	var todo []ir.Ident
	enqueue := func(id ir.Ident) {
		if queued[id] {
			return
		}
		if _, ok := d.expressions[id]; !ok {
			return
		}
		queued[id] = true
		todo = append(todo, id)
	}

	for _, id := range ir.FreeIdents(e) {
		enqueue(id)
	}

	result := e
	for len(todo) > 0 {
		cur := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		rhs := d.expressions[cur]
		result = ir.ReplaceLeaves(result, map[ir.Ident]ir.Expr{cur: rhs})
		for _, id := range ir.FreeIdents(rhs) {
			enqueue(id)
		}
	}
	return result
}

// Package graph supplies the "IR-CFG service" collaborator named in spec §6:
// block storage addressed by label, successor adjacency, depth-first
// traversal, and dominator-tree/dominance-frontier computation. The ssa
// package depends only on the CFG and DominatorTree interfaces declared
// here; Program is one concrete, label-based implementation of them,
// generalized from the teacher's pointer-keyed dominance algorithm.
package graph

import (
	"fmt"

	"github.com/malphas-lang/ssacore/internal/ir"
)

// CFG is the external collaborator the ssa core consumes.
type CFG interface {
	CloneBlock(label ir.BlockLabel) (*ir.IrBlock, error)
	Successors(label ir.BlockLabel) ([]ir.BlockLabel, error)
	WalkDepthFirstForward(head ir.BlockLabel) ([]ir.BlockLabel, error)
	ComputeDominatorTree(head ir.BlockLabel) (DominatorTree, error)
	ComputeDominanceFrontier(head ir.BlockLabel) (map[ir.BlockLabel][]ir.BlockLabel, error)
}

// DominatorTree is a tree over block labels with its own DFS walk, as
// required by spec §6.
type DominatorTree interface {
	WalkDepthFirstForward(head ir.BlockLabel) ([]ir.BlockLabel, error)
	Successors(label ir.BlockLabel) ([]ir.BlockLabel, error)
}

// Program is a label-addressed block store plus successor adjacency: the
// reference CFG service implementation.
type Program struct {
	blocks map[ir.BlockLabel]*ir.IrBlock
	succ   map[ir.BlockLabel][]ir.BlockLabel
	order  []ir.BlockLabel // insertion order, for deterministic iteration
}

// NewProgram creates an empty Program.
func NewProgram() *Program {
	return &Program{
		blocks: make(map[ir.BlockLabel]*ir.IrBlock),
		succ:   make(map[ir.BlockLabel][]ir.BlockLabel),
	}
}

// AddBlock registers block and its successor edges. Calling AddBlock twice
// for the same label overwrites the block but appends to its successors.
func (p *Program) AddBlock(block *ir.IrBlock, successors ...ir.BlockLabel) {
	if _, exists := p.blocks[block.Label]; !exists {
		p.order = append(p.order, block.Label)
	}
	p.blocks[block.Label] = block
	p.succ[block.Label] = append(p.succ[block.Label], successors...)
}

// CloneBlock returns a deep copy of the named block.
func (p *Program) CloneBlock(label ir.BlockLabel) (*ir.IrBlock, error) {
	block, ok := p.blocks[label]
	if !ok {
		return nil, fmt.Errorf("graph: unknown block %q", label)
	}
	return block.Clone(), nil
}

// Successors returns label's CFG successors in the order they were added.
func (p *Program) Successors(label ir.BlockLabel) ([]ir.BlockLabel, error) {
	if _, ok := p.blocks[label]; !ok {
		return nil, fmt.Errorf("graph: unknown block %q", label)
	}
	return p.succ[label], nil
}

// WalkDepthFirstForward visits blocks reachable from head in pre-order.
func (p *Program) WalkDepthFirstForward(head ir.BlockLabel) ([]ir.BlockLabel, error) {
	if _, ok := p.blocks[head]; !ok {
		return nil, fmt.Errorf("graph: unknown head %q", head)
	}
	var order []ir.BlockLabel
	visited := make(map[ir.BlockLabel]bool)
	var visit func(ir.BlockLabel)
	visit = func(label ir.BlockLabel) {
		if visited[label] {
			return
		}
		visited[label] = true
		order = append(order, label)
		for _, succ := range p.succ[label] {
			visit(succ)
		}
	}
	visit(head)
	return order, nil
}

// ComputeDominatorTree computes immediate dominators from head and wraps
// them in a walkable DominatorTree.
func (p *Program) ComputeDominatorTree(head ir.BlockLabel) (DominatorTree, error) {
	idom, err := p.computeDominators(head)
	if err != nil {
		return nil, err
	}
	children := make(map[ir.BlockLabel][]ir.BlockLabel)
	for label, dom := range idom {
		if label == head {
			continue
		}
		children[dom] = append(children[dom], label)
	}
	return &domTree{root: head, children: children}, nil
}

// ComputeDominanceFrontier computes, for each block reachable from head, the
// set of blocks in its dominance frontier (spec Glossary).
func (p *Program) ComputeDominanceFrontier(head ir.BlockLabel) (map[ir.BlockLabel][]ir.BlockLabel, error) {
	idom, err := p.computeDominators(head)
	if err != nil {
		return nil, err
	}
	preds := p.predecessors(head)

	frontier := make(map[ir.BlockLabel][]ir.BlockLabel)
	for label := range idom {
		frontier[label] = nil
	}

	for _, label := range p.order {
		if _, reachable := idom[label]; !reachable {
			continue
		}
		if len(preds[label]) < 2 {
			continue
		}
		for _, pred := range preds[label] {
			if _, ok := idom[pred]; !ok {
				continue
			}
			runner := pred
			for runner != idom[label] {
				frontier[runner] = append(frontier[runner], label)
				next, ok := idom[runner]
				if !ok {
					break
				}
				runner = next
			}
		}
	}
	return frontier, nil
}

package graph

import "github.com/malphas-lang/ssacore/internal/ir"

// computeDominators computes the immediate dominator of every block
// reachable from head, using the same iterative fixpoint as the teacher's
// mir/ssa dominance pass: repeatedly intersect the dominators of a block's
// processed predecessors until nothing changes. head dominates itself by
// convention (idom[head] == head), which terminates the dominance-frontier
// walk in ComputeDominanceFrontier.
func (p *Program) computeDominators(head ir.BlockLabel) (map[ir.BlockLabel]ir.BlockLabel, error) {
	order, err := p.WalkDepthFirstForward(head)
	if err != nil {
		return nil, err
	}
	preds := p.predecessors(head)

	idom := make(map[ir.BlockLabel]ir.BlockLabel, len(order))
	idom[head] = head

	changed := true
	for changed {
		changed = false
		for _, label := range order {
			if label == head {
				continue
			}
			var newDom ir.BlockLabel
			haveDom := false
			for _, pred := range preds[label] {
				if _, ok := idom[pred]; !ok {
					continue
				}
				if !haveDom {
					newDom = pred
					haveDom = true
					continue
				}
				newDom = intersect(pred, newDom, idom)
			}
			if !haveDom {
				continue
			}
			if cur, ok := idom[label]; !ok || cur != newDom {
				idom[label] = newDom
				changed = true
			}
		}
	}
	return idom, nil
}

// intersect finds the nearest common dominator of b1 and b2 by walking both
// paths to head and returning the first shared ancestor.
func intersect(b1, b2 ir.BlockLabel, idom map[ir.BlockLabel]ir.BlockLabel) ir.BlockLabel {
	onPathFromB1 := make(map[ir.BlockLabel]bool)
	for current := b1; ; {
		onPathFromB1[current] = true
		dom, exists := idom[current]
		if !exists || dom == current {
			break
		}
		current = dom
	}

	current := b2
	for {
		if onPathFromB1[current] {
			return current
		}
		dom, exists := idom[current]
		if !exists || dom == current {
			return current
		}
		current = dom
	}
}

// predecessors builds the reverse adjacency of the blocks reachable from
// head.
func (p *Program) predecessors(head ir.BlockLabel) map[ir.BlockLabel][]ir.BlockLabel {
	preds := make(map[ir.BlockLabel][]ir.BlockLabel)
	order, err := p.WalkDepthFirstForward(head)
	if err != nil {
		return preds
	}
	reachable := make(map[ir.BlockLabel]bool, len(order))
	for _, label := range order {
		reachable[label] = true
		if _, ok := preds[label]; !ok {
			preds[label] = nil
		}
	}
	for _, label := range order {
		for _, succ := range p.succ[label] {
			if !reachable[succ] {
				continue
			}
			preds[succ] = append(preds[succ], label)
		}
	}
	return preds
}

// domTree is a DominatorTree backed by an immediate-dominator map flattened
// into parent-to-children adjacency.
type domTree struct {
	root     ir.BlockLabel
	children map[ir.BlockLabel][]ir.BlockLabel
}

func (t *domTree) Successors(label ir.BlockLabel) ([]ir.BlockLabel, error) {
	return t.children[label], nil
}

func (t *domTree) WalkDepthFirstForward(head ir.BlockLabel) ([]ir.BlockLabel, error) {
	var order []ir.BlockLabel
	visited := make(map[ir.BlockLabel]bool)
	var visit func(ir.BlockLabel)
	visit = func(label ir.BlockLabel) {
		if visited[label] {
			return
		}
		visited[label] = true
		order = append(order, label)
		for _, child := range t.children[label] {
			visit(child)
		}
	}
	visit(head)
	return order, nil
}

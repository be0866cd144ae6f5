package ir

// AssignBlock is an ordered bundle of assignments evaluated in parallel: all
// source expressions are conceptually read before any destination is
// written. Implemented as an ordered slice rather than a Go map because
// Operator's operand slice makes Expr non-comparable in general.
type AssignBlock struct {
	assigns []Assignment
}

// NewAssignBlock builds an AssignBlock from assignments in iteration order.
func NewAssignBlock(assigns ...Assignment) *AssignBlock {
	out := make([]Assignment, len(assigns))
	copy(out, assigns)
	return &AssignBlock{assigns: out}
}

// Assignments returns the block's assignments in order. The returned slice
// must not be mutated by callers.
func (b *AssignBlock) Assignments() []Assignment {
	if b == nil {
		return nil
	}
	return b.assigns
}

// Len reports the number of assignments in the block.
func (b *AssignBlock) Len() int {
	if b == nil {
		return 0
	}
	return len(b.assigns)
}

// Clone returns a shallow copy: Expr values are immutable, so copying the
// slice of pairs is sufficient to let callers mutate the block's shape
// (insert/replace assignments) without touching the original.
func (b *AssignBlock) Clone() *AssignBlock {
	if b == nil {
		return NewAssignBlock()
	}
	return NewAssignBlock(b.assigns...)
}

// Terminator represents the control-flow-ending operation of an IrBlock. Its
// contents are opaque to this module: the core clones and carries it along
// but never inspects or rewrites it (CFG edges are owned by the graph
// service, addressed by BlockLabel, not derived from the terminator here).
type Terminator interface {
	isTerminator()
}

// IrBlock is a labeled container holding an ordered sequence of AssignBlocks
// (the in-block timeline) plus an opaque control-flow terminator.
type IrBlock struct {
	Label      BlockLabel
	Assigns    []*AssignBlock
	Terminator Terminator
}

// Clone deep-copies the block's AssignBlock sequence so the original CFG is
// never mutated by renaming (spec §5 resource policy: clone-on-first-access).
func (b *IrBlock) Clone() *IrBlock {
	clone := &IrBlock{
		Label:      b.Label,
		Terminator: b.Terminator,
		Assigns:    make([]*AssignBlock, len(b.Assigns)),
	}
	for i, ab := range b.Assigns {
		clone.Assigns[i] = ab.Clone()
	}
	return clone
}

// PrependAssigns inserts a new AssignBlock at the head of the block's
// timeline (used to materialize phi functions, spec §4.5).
func (b *IrBlock) PrependAssigns(ab *AssignBlock) {
	b.Assigns = append([]*AssignBlock{ab}, b.Assigns...)
}

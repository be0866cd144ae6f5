package ssa

import (
	"github.com/malphas-lang/ssacore/internal/arch"
	"github.com/malphas-lang/ssacore/internal/graph"
	"github.com/malphas-lang/ssacore/internal/ir"
)

// SsaBlock performs block-local SSA transformation only (no phi functions).
type SsaBlock struct{ *Driver }

// NewSsaBlock creates an SsaBlock transform over cfg for the given
// architecture descriptor.
func NewSsaBlock(cfg graph.CFG, descriptor arch.Descriptor) *SsaBlock {
	return &SsaBlock{NewDriver(cfg, descriptor)}
}

// Transform renames label's IR block in place.
func (s *SsaBlock) Transform(label ir.BlockLabel) error { return s.TransformBlock(label) }

// SsaPath performs SSA transformation over a linear sequence of blocks,
// sharing one version table between them, with no phi functions.
type SsaPath struct{ *Driver }

// NewSsaPath creates an SsaPath transform over cfg for the given
// architecture descriptor.
func NewSsaPath(cfg graph.CFG, descriptor arch.Descriptor) *SsaPath {
	return &SsaPath{NewDriver(cfg, descriptor)}
}

// Transform renames each block of path in order.
func (s *SsaPath) Transform(path []ir.BlockLabel) error { return s.TransformPath(path) }

// SsaDiGraph performs full minimal SSA transformation over a CFG, including
// phi-function placement and filling.
type SsaDiGraph struct{ *Driver }

// NewSsaDiGraph creates an SsaDiGraph transform over cfg for the given
// architecture descriptor.
func NewSsaDiGraph(cfg graph.CFG, descriptor arch.Descriptor) *SsaDiGraph {
	return &SsaDiGraph{NewDriver(cfg, descriptor)}
}

// Transform renames every block reachable from head, inserting phi
// functions at dominance frontiers.
func (s *SsaDiGraph) Transform(head ir.BlockLabel) error { return s.TransformGraph(head) }

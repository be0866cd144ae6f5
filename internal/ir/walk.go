package ir

// Walk visits every Identifier leaf reachable inside e, including duplicates,
// in a deterministic left-to-right order.
func Walk(e Expr, visit func(Ident)) {
	switch x := e.(type) {
	case Identifier:
		visit(x.Ident)
	case Constant:
		// no identifiers
	case Memory:
		Walk(x.Addr, visit)
	case Operator:
		for _, operand := range x.Operands {
			Walk(operand, visit)
		}
	}
}

// FreeIdents enumerates the distinct Identifier leaves inside e, in order of
// first occurrence. This is the ExprWalker component of spec §2.
func FreeIdents(e Expr) []Ident {
	seen := make(map[Ident]bool)
	var out []Ident
	Walk(e, func(id Ident) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	})
	return out
}

// ReplaceLeaves returns a new expression tree with every Identifier leaf
// present as a key in mapping substituted by its mapped expression. Leaves
// absent from mapping are left unchanged. The input tree is never mutated.
func ReplaceLeaves(e Expr, mapping map[Ident]Expr) Expr {
	switch x := e.(type) {
	case Identifier:
		if repl, ok := mapping[x.Ident]; ok {
			return repl
		}
		return x
	case Constant:
		return x
	case Memory:
		return Memory{Addr: ReplaceLeaves(x.Addr, mapping), Size: x.Size}
	case Operator:
		operands := make([]Expr, len(x.Operands))
		for i, operand := range x.Operands {
			operands[i] = ReplaceLeaves(operand, mapping)
		}
		return Operator{Op: x.Op, Operands: operands}
	default:
		return e
	}
}

// Equal reports whether a and b are structurally identical expression trees.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Identifier:
		y, ok := b.(Identifier)
		return ok && x.Ident == y.Ident
	case Constant:
		y, ok := b.(Constant)
		return ok && x.Value == y.Value && x.Size == y.Size
	case Memory:
		y, ok := b.(Memory)
		return ok && x.Size == y.Size && Equal(x.Addr, y.Addr)
	case Operator:
		y, ok := b.(Operator)
		if !ok || x.Op != y.Op || len(x.Operands) != len(y.Operands) {
			return false
		}
		for i := range x.Operands {
			if !Equal(x.Operands[i], y.Operands[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Key returns the string form of e, usable as a cheap structural hash
// surrogate. The string omits identifier and constant widths, so two
// expressions that differ only in a width get the same key even though
// Equal reports them as different. Interning/hash-consing is a legitimate
// alternative implementation but is not required (spec §9).
func Key(e Expr) string {
	return e.String()
}

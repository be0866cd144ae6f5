package arch

import "github.com/malphas-lang/ssacore/internal/ir"

// X86_32 is a small reference descriptor modeling a 32-bit x86 register
// file. It exists for the demonstration front end and the test suite; the
// ssa core is architecture-agnostic and accepts any Descriptor.
var X86_32 = Descriptor{
	Name: "x86_32",
	Registers: []ir.Ident{
		ir.Var("EAX", 32),
		ir.Var("EBX", 32),
		ir.Var("ECX", 32),
		ir.Var("EDX", 32),
		ir.Var("ESP", 32),
		ir.Var("EBP", 32),
		ir.Var("EIP", 32),
	},
	PC:    []ir.Ident{ir.Var("EIP", 32)},
	IRDst: ir.Var(ir.IRDstName, 32),
}

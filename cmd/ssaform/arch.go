package main

import (
	"fmt"

	"github.com/malphas-lang/ssacore/internal/arch"
)

// lookupArch resolves the --arch flag to a descriptor. x86_32 is the only
// one shipped; the flag exists so a caller embedding ssaform's parsing can
// see how a second descriptor would be wired in without ssacore itself
// growing architecture-specific code.
func lookupArch(name string) (arch.Descriptor, error) {
	switch name {
	case "x86_32":
		return arch.X86_32, nil
	default:
		return arch.Descriptor{}, fmt.Errorf("unknown architecture %q (supported: x86_32)", name)
	}
}

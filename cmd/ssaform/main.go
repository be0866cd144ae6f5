// Command ssaform is a demonstration front end over internal/ssa: it reads a
// toy textual CFG, renames it into minimal SSA form, and prints the result.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/ssacore/internal/ir"
	"github.com/malphas-lang/ssacore/internal/ssa"
)

func newReassembleCmd() *cobra.Command {
	var file string
	var head string
	var block string
	var index int
	var archName string

	cmd := &cobra.Command{
		Use:   "reassemble",
		Short: "Transform the program, then resolve one assignment's source expression back to non-SSA form",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := runLogger()
			defer sync()

			descriptor, err := lookupArch(archName)
			if err != nil {
				return err
			}

			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			program, defaultHead, err := parseProgram(string(src))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			if head == "" {
				head = string(defaultHead)
			}

			driver := ssa.NewSsaDiGraph(program, descriptor)
			if err := driver.Transform(ir.BlockLabel(head)); err != nil {
				color.Red("transform failed: %v", err)
				return err
			}

			b, ok := driver.Blocks()[ir.BlockLabel(block)]
			if !ok {
				return fmt.Errorf("no such block %q", block)
			}
			flat := flattenAssignments(b)
			if index < 0 || index >= len(flat) {
				return fmt.Errorf("block %q has %d assignment(s), index %d out of range", block, len(flat), index)
			}

			logger.Infow("reassembling", "block", block, "index", index)
			assignment := flat[index]
			resolved := driver.Reassemble(assignment.Src)

			fmt.Printf("%s = %s\n", assignment.Dst, assignment.Src)
			color.New(color.FgGreen).Printf("  -> %s\n", resolved)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a textual CFG file (required)")
	cmd.Flags().StringVar(&head, "head", "", "entry block label (default: the first block in the file)")
	cmd.Flags().StringVar(&block, "block", "", "block holding the assignment to reassemble (required)")
	cmd.Flags().IntVar(&index, "index", 0, "index of the assignment within the block, after phi materialization")
	cmd.Flags().StringVar(&archName, "arch", "x86_32", "architecture descriptor to use")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("block")
	return cmd
}

func flattenAssignments(b *ir.IrBlock) []ir.Assignment {
	var out []ir.Assignment
	for _, ab := range b.Assigns {
		out = append(out, ab.Assignments()...)
	}
	return out
}

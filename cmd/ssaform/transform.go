package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malphas-lang/ssacore/internal/ir"
	"github.com/malphas-lang/ssacore/internal/ssa"
)

func newTransformCmd() *cobra.Command {
	var file string
	var head string
	var archName string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Rename every block reachable from the program's head into minimal SSA form",
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

			logger.Infow("placing phi functions and renaming", "head", head, "arch", archName)
			driver := ssa.NewSsaDiGraph(program, descriptor)
			if err := driver.Transform(ir.BlockLabel(head)); err != nil {
				color.Red("transform failed: %v", err)
				return err
			}

			printBlocks(driver.Blocks())
			printPhis(driver.Phinodes())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a textual CFG file (required)")
	cmd.Flags().StringVar(&head, "head", "", "entry block label (default: the first block in the file)")
	cmd.Flags().StringVar(&archName, "arch", "x86_32", "architecture descriptor to use")
	cmd.MarkFlagRequired("file")
	return cmd
}

func printBlocks(blocks map[ir.BlockLabel]*ir.IrBlock) {
	labels := make([]string, 0, len(blocks))
	for label := range blocks {
		labels = append(labels, string(label))
	}
	sort.Strings(labels)

	bold := color.New(color.Bold)
	for _, label := range labels {
		bold.Printf("block %s\n", label)
		for _, ab := range blocks[ir.BlockLabel(label)].Assigns {
			for _, a := range ab.Assignments() {
				fmt.Printf("  %s = %s\n", a.Dst, a.Src)
			}
		}
	}
}

func printPhis(phis map[ir.BlockLabel][]ssa.PhiAssignment) {
	labels := make([]string, 0, len(phis))
	for label, assignments := range phis {
		if len(assignments) > 0 {
			labels = append(labels, string(label))
		}
	}
	if len(labels) == 0 {
		return
	}
	sort.Strings(labels)

	cyan := color.New(color.FgCyan)
	cyan.Println("phi functions:")
	for _, label := range labels {
		for _, p := range phis[ir.BlockLabel(label)] {
			fmt.Printf("  %s: %s = %s\n", label, p.Dst, p.Rhs)
		}
	}
}

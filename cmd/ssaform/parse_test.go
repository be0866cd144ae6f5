package main

import (
	"os"
	"testing"

	"github.com/malphas-lang/ssacore/internal/ir"
)

func TestParseProgram_Diamond(t *testing.T) {
	src, err := os.ReadFile("testdata/diamond.ssaf")
	if err != nil {
		t.Fatalf("reading testdata: %v", err)
	}

	program, head, err := parseProgram(string(src))
	if err != nil {
		t.Fatalf("parseProgram: %v", err)
	}
	if head != "entry" {
		t.Errorf("expected head \"entry\", got %q", head)
	}

	succ, err := program.Successors("entry")
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if len(succ) != 2 || succ[0] != "left" || succ[1] != "right" {
		t.Errorf("expected entry -> [left, right], got %v", succ)
	}

	block, err := program.CloneBlock("left")
	if err != nil {
		t.Fatalf("CloneBlock: %v", err)
	}
	if len(block.Assigns) != 1 || block.Assigns[0].Len() != 1 {
		t.Fatalf("expected left to hold exactly one assignment, got %v", block.Assigns)
	}
	a := block.Assigns[0].Assignments()[0]
	wantSrc := ir.Operator{Op: "+", Operands: []ir.Expr{
		ir.Identifier{Ident: ir.Var("x", 32)},
		ir.Constant{Value: 2, Size: 32},
	}}
	if !ir.Equal(a.Src, wantSrc) {
		t.Errorf("expected x + 2, got %v", a.Src)
	}
}

func TestParseProgram_Memory(t *testing.T) {
	src := "block entry\n  @32[p] = x\n  y = @32[p]\n"
	program, head, err := parseProgram(src)
	if err != nil {
		t.Fatalf("parseProgram: %v", err)
	}
	block, err := program.CloneBlock(head)
	if err != nil {
		t.Fatalf("CloneBlock: %v", err)
	}
	store := block.Assigns[0].Assignments()[0]
	if _, ok := store.Dst.(ir.Memory); !ok {
		t.Errorf("expected a memory destination, got %T", store.Dst)
	}
	load := block.Assigns[1].Assignments()[0]
	if _, ok := load.Src.(ir.Memory); !ok {
		t.Errorf("expected a memory source, got %T", load.Src)
	}
}

func TestParseProgram_RejectsMalformedHeader(t *testing.T) {
	if _, _, err := parseProgram("not a block header\n"); err == nil {
		t.Fatal("expected an error for a malformed block header")
	}
}

func TestParseProgram_RejectsAssignmentOutsideBlock(t *testing.T) {
	if _, _, err := parseProgram("  x = 1\n"); err == nil {
		t.Fatal("expected an error for an assignment before any block header")
	}
}

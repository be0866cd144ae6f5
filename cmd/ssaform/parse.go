package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/malphas-lang/ssacore/internal/graph"
	"github.com/malphas-lang/ssacore/internal/ir"
)

// parseProgram reads the toy textual CFG format accepted by ssaform:
//
//	block entry -> left, right
//	  x = 1
//	block left -> merge
//	  x = x + 2
//	block right -> merge
//	  x = x + 3
//	block merge
//	  y = x
//
// Each "block LABEL [-> SUCC, ...]" header starts a block; indented lines
// that follow are its assignments, one per line, "dst = expr". A memory
// destination or operand is written "@SIZE[addr-expr]".
func parseProgram(src string) (*graph.Program, ir.BlockLabel, error) {
	p := graph.NewProgram()
	var head ir.BlockLabel
	var label ir.BlockLabel
	var assigns []*ir.AssignBlock
	var succs []ir.BlockLabel
	haveBlock := false

	flush := func() {
		if !haveBlock {
			return
		}
		p.AddBlock(&ir.IrBlock{Label: label, Assigns: assigns}, succs...)
		if head == "" {
			head = label
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
			flush()
			header, edges, ok := strings.Cut(trimmed, "->")
			header = strings.TrimSpace(header)
			fields := strings.Fields(header)
			if len(fields) != 2 || fields[0] != "block" {
				return nil, "", fmt.Errorf("line %d: expected \"block LABEL [-> SUCC, ...]\", got %q", lineNo, trimmed)
			}
			label = ir.BlockLabel(fields[1])
			succs = nil
			if ok {
				for _, s := range strings.Split(edges, ",") {
					s = strings.TrimSpace(s)
					if s != "" {
						succs = append(succs, ir.BlockLabel(s))
					}
				}
			}
			assigns = nil
			haveBlock = true
			continue
		}

		if !haveBlock {
			return nil, "", fmt.Errorf("line %d: assignment outside any block", lineNo)
		}
		dstText, srcText, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, "", fmt.Errorf("line %d: expected \"dst = expr\", got %q", lineNo, trimmed)
		}
		dst, err := parseLHS(strings.TrimSpace(dstText))
		if err != nil {
			return nil, "", fmt.Errorf("line %d: %w", lineNo, err)
		}
		src, err := parseExpr(strings.TrimSpace(srcText))
		if err != nil {
			return nil, "", fmt.Errorf("line %d: %w", lineNo, err)
		}
		assigns = append(assigns, ir.NewAssignBlock(ir.Assignment{Dst: dst, Src: src}))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, "", err
	}
	if head == "" {
		return nil, "", fmt.Errorf("program has no blocks")
	}
	return p, head, nil
}

func parseLHS(text string) (ir.Expr, error) {
	if strings.HasPrefix(text, "@") {
		return parseMemory(text)
	}
	return ir.Identifier{Ident: ir.Var(text, 32)}, nil
}

func parseMemory(text string) (ir.Expr, error) {
	text = strings.TrimPrefix(text, "@")
	sizeText, rest, ok := strings.Cut(text, "[")
	if !ok || !strings.HasSuffix(rest, "]") {
		return nil, fmt.Errorf("malformed memory expression %q", "@"+text)
	}
	size, err := strconv.ParseUint(sizeText, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("malformed memory size in %q: %w", "@"+text, err)
	}
	addr, err := parseExpr(strings.TrimSuffix(rest, "]"))
	if err != nil {
		return nil, err
	}
	return ir.Memory{Addr: addr, Size: uint8(size)}, nil
}

// parseExpr parses a left-to-right chain of +, -, * operators over
// identifiers, integer constants, and memory expressions. No operator
// precedence or parentheses: enough for a demo front end, not a general
// expression language.
func parseExpr(text string) (ir.Expr, error) {
	tokens := tokenizeExpr(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	leaf, err := parseLeaf(tokens[0])
	if err != nil {
		return nil, err
	}
	result := leaf
	for i := 1; i+1 < len(tokens); i += 2 {
		op := tokens[i]
		if op != "+" && op != "-" && op != "*" {
			return nil, fmt.Errorf("unsupported operator %q", op)
		}
		rhs, err := parseLeaf(tokens[i+1])
		if err != nil {
			return nil, err
		}
		result = ir.Operator{Op: op, Operands: []ir.Expr{result, rhs}}
	}
	return result, nil
}

func parseLeaf(tok string) (ir.Expr, error) {
	if strings.HasPrefix(tok, "@") {
		return parseMemory(tok)
	}
	if v, err := strconv.ParseUint(tok, 0, 64); err == nil {
		return ir.Constant{Value: v, Size: 32}, nil
	}
	return ir.Identifier{Ident: ir.Var(tok, 32)}, nil
}

func tokenizeExpr(text string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	depth := 0
	for _, r := range text {
		switch {
		case r == '[':
			depth++
			cur.WriteRune(r)
		case r == ']':
			depth--
			cur.WriteRune(r)
		case depth > 0:
			cur.WriteRune(r)
		case r == ' ':
			flush()
		case r == '+' || r == '-' || r == '*':
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

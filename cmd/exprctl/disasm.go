package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/exprflow/exprflow/chunk"
)

// operandOps is the set of opcodes followed by a 4-byte int32
// operand in the code stream (spec.md §4.7).
var operandOps = map[chunk.OpCode]bool{
	chunk.OpBegin:       true,
	chunk.OpConstant:    true,
	chunk.OpGetGlobal:   true,
	chunk.OpSetGlobal:   true,
	chunk.OpGetProperty: true,
	chunk.OpSetProperty: true,
	chunk.OpCall:        true,
	chunk.OpJump:        true,
	chunk.OpJumpIfFalse: true,
}

// constantOps is the subset of operandOps whose operand is a
// constant-pool index rather than a raw index or jump offset.
var constantOps = map[chunk.OpCode]bool{
	chunk.OpConstant:    true,
	chunk.OpGetGlobal:   true,
	chunk.OpSetGlobal:   true,
	chunk.OpGetProperty: true,
	chunk.OpSetProperty: true,
	chunk.OpCall:        true,
}

func newDisasmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm <file.chunk>",
		Short: "Print a human-readable disassembly of a compiled chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			c, err := chunk.Decode(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}
			return disassemble(cmd.OutOrStdout(), c)
		},
	}
	return cmd
}

func disassemble(w io.Writer, c *chunk.Chunk) error {
	r, err := chunk.NewReader(c)
	if err != nil {
		return err
	}
	for !r.AtEnd() {
		pos := r.Position()
		op, err := r.ReadOp()
		if err != nil {
			return err
		}
		if !operandOps[op] {
			fmt.Fprintf(w, "%04d %s\n", pos, op)
			continue
		}
		operand, err := r.ReadInt()
		if err != nil {
			return err
		}
		if constantOps[op] {
			v, err := r.ReadConstant(int(operand))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%04d %-12s %d  ; %s\n", pos, op, operand, v.String())
			continue
		}
		fmt.Fprintf(w, "%04d %-12s %d\n", pos, op, operand)
	}
	return nil
}

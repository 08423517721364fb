package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exprflow/exprflow/chunk"
	"github.com/exprflow/exprflow/runner"
)

func newCompileCmd() *cobra.Command {
	var (
		out    string
		noSort bool
	)

	cmd := &cobra.Command{
		Use:   "compile <formula.expr>... ",
		Short: "Compile formula files to a .chunk bytecode artifact with a .chunk.sha sidecar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := readSources(args)
			if err != nil {
				return err
			}
			if out == "" {
				out = "out.chunk"
			}

			r := runner.New().SetNeedSort(!noSort)
			c, err := r.CompileSource(sources)
			if err != nil {
				return err
			}

			encoded := c.Encode()
			if err := os.WriteFile(out, encoded, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			sum := chunk.Hash(c)
			shaPath := out + ".sha"
			if err := os.WriteFile(shaPath, []byte(fmt.Sprintf("%x\n", sum)), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", shaPath, err)
			}

			logger.Debug("compiled chunk", "out", out, "bytes", len(encoded), "sha", shaPath)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes) and %s\n", out, len(encoded), shaPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "out.chunk", "output chunk path")
	cmd.Flags().BoolVar(&noSort, "no-sort", false, "disable topological reordering of formulas")
	return cmd
}

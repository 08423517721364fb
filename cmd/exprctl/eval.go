package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exprflow/exprflow/env"
	"github.com/exprflow/exprflow/eval"
	"github.com/exprflow/exprflow/runner"
)

func newEvalCmd() *cobra.Command {
	var (
		envJSON string
		envYAML string
		noSort  bool
		useVM   bool
	)

	cmd := &cobra.Command{
		Use:   "eval <formula.expr>...",
		Short: "Batch-evaluate formula files and print each result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := readSources(args)
			if err != nil {
				return err
			}

			e, err := loadEnv(envJSON, envYAML)
			if err != nil {
				return err
			}

			logger.Debug("evaluating", "files", len(sources), "sort", !noSort, "vm", useVM)

			r := runner.New().SetNeedSort(!noSort)
			if useVM {
				r.SetExecuteMode(runner.ChunkVM)
			}

			results, err := r.ExecuteMultipleWithEnv(sources, e)
			if err != nil {
				return err
			}
			for i, v := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", args[i], v.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envJSON, "env-json", "", "seed variables from a JSON environment file")
	cmd.Flags().StringVar(&envYAML, "env-yaml", "", "seed variables from a YAML environment file")
	cmd.Flags().BoolVar(&noSort, "no-sort", false, "disable topological reordering of formulas")
	cmd.Flags().BoolVar(&useVM, "vm", false, "execute via the bytecode Stack VM instead of the tree-walker")
	return cmd
}

func readSources(paths []string) ([]string, error) {
	sources := make([]string, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		sources[i] = string(data)
	}
	return sources, nil
}

func loadEnv(envJSON, envYAML string) (eval.Environment, error) {
	switch {
	case envJSON != "":
		return env.NewJSONEnvFromFile(envJSON)
	case envYAML != "":
		return env.NewYAMLEnvFromFile(envYAML)
	default:
		return env.NewMapEnv(), nil
	}
}

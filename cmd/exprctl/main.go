// Command exprctl is the engine's command-line front end: evaluate a
// batch of formula files, compile them to a portable Chunk, or
// disassemble an existing one.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// logger is shared by every subcommand for structured diagnostics
// (sources loaded, chunk sizes, the top-level command failure).
// Verbosity is gated by
// EXPRFLOW_DEBUG the same way the teacher gates its parser's debug
// logger off an environment variable rather than a cobra flag.
var logger *slog.Logger

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("EXPRFLOW_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	logger = newLogger()

	rootCmd := &cobra.Command{
		Use:           "exprctl",
		Short:         "Batch-evaluate, compile, and disassemble exprflow formulas",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newCompileCmd())
	rootCmd.AddCommand(newDisasmCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("exprctl failed", "error", err)
		fmt.Fprintln(os.Stderr, "exprctl:", err)
		os.Exit(1)
	}
}

// Command exprwatch watches a directory of formula files and
// recompiles them into a .chunk + .chunk.sha pair whenever one
// changes, so an embedder can pick up a freshly compiled chunk
// without restarting.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/exprflow/exprflow/chunk"
	"github.com/exprflow/exprflow/runner"
)

// logger is gated by EXPRFLOW_DEBUG the same way exprctl's is, so the
// watch loop stays quiet at Info level and traces every fsnotify event
// at Debug level.
var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("EXPRFLOW_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: exprwatch <dir> <out.chunk>")
		os.Exit(2)
	}
	dir, out := os.Args[1], os.Args[2]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("creating watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		logger.Error("watching directory", "dir", dir, "error", err)
		os.Exit(1)
	}

	if err := recompile(dir, out); err != nil {
		logger.Info("initial compile failed", "error", err)
	} else {
		logger.Info("compiled", "out", out)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			logger.Debug("fsnotify event", "name", event.Name, "op", event.Op.String())
			if !strings.HasSuffix(event.Name, ".formula") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := recompile(dir, out); err != nil {
				logger.Error("recompile failed", "error", err)
				continue
			}
			logger.Info("recompiled", "out", out, "changed", event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// recompile reads every *.formula file in dir, compiles them in
// lexical filename order, and atomically replaces out + out.sha.
func recompile(dir, out string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.formula"))
	if err != nil {
		return fmt.Errorf("globbing %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no .formula files in %s", dir)
	}

	sources := make([]string, len(matches))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sources[i] = string(data)
	}

	c, err := runner.New().CompileSource(sources)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}

	encoded := c.Encode()
	if err := writeAtomic(out, encoded); err != nil {
		return err
	}
	sum := chunk.Hash(c)
	return writeAtomic(out+".sha", []byte(fmt.Sprintf("%x\n", sum)))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

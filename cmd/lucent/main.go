// Command lucent is the compiler's command-line entry point: a cobra root
// command over the two subcommands spec.md §6 names, "build" (the query
// pipeline in pipeline.go, running src/parse through src/binary) and
// "server" (the LSP glue in src/server). It plays the role the teacher's
// src/main.go plays for vslc, but drives the query engine's memoized
// Tables instead of a single straight-line read/parse/validate/generate
// sequence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap's own development config never fails to build; fall back to a
		// no-op logger rather than panicking the CLI over a logging setup bug.
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lucent",
		Short:         "the Lucent compiler and language server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newBuildCommand(), newServerCommand())
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Package commands implements CLI command handlers for covscope.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/config"
	"github.com/covscope/covscope/pkg/coverage"
)

// loadConfig resolves the effective file configuration for a command.
// The --config flag is registered on the root command; a command
// executed standalone falls back to the default search paths.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path = ""
	}

	return config.LoadConfig(path)
}

// newBuilder constructs a coverage builder, reading and attaching the
// diff payload when a path is given.
func newBuilder(diffPath string) (*coverage.Builder, error) {
	if diffPath == "" {
		return coverage.NewBuilder(), nil
	}

	raw, err := os.ReadFile(diffPath)
	if err != nil {
		return nil, fmt.Errorf("read diff payload: %w", err)
	}

	builder, err := coverage.NewBuilderWithDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parse diff payload: %w", err)
	}

	return builder, nil
}

// resolveOutput opens the output destination: the given file path, or
// the command's stdout when path is empty.
func resolveOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return file, file.Close, nil
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return false
	}

	return quiet
}

func progressf(silent bool, writer io.Writer, format string, args ...any) {
	if silent {
		return
	}

	_, _ = fmt.Fprintf(writer, "progress: "+format+"\n", args...)
}

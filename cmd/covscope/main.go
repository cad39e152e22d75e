// Package main provides the entry point for the covscope CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/covscope/covscope/cmd/covscope/commands"
	"github.com/covscope/covscope/pkg/version"
)

var (
	cfgFile string //nolint:gochecknoglobals // CLI flag variable
	verbose bool   //nolint:gochecknoglobals // CLI flag variable
	quiet   bool   //nolint:gochecknoglobals // CLI flag variable
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "covscope",
		Short: "Covscope Coverage Analysis - diff-scoped coverage aggregation tool",
		Long: `Covscope aggregates per-unit coverage records into source-file
and bundle reports, optionally scoped to the methods a diff touched.

Commands:
  report    Aggregate records and render a coverage report
  merge     Merge record files into one deduplicated record set
  check     Gate on minimum coverage percentages
  payload   Generate or validate diff payloads
  mcp       Start MCP server (stdio)
  lsp       Start LSP server (stdio)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .covscope.yaml in CWD or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewMergeCommand())
	rootCmd.AddCommand(commands.NewCheckCommand())
	rootCmd.AddCommand(commands.NewPayloadCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewLSPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		if errors.Is(err, commands.ErrPayloadInvalid) {
			os.Exit(commands.ExitCodeInvalidPayload)
		}

		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "covscope %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}

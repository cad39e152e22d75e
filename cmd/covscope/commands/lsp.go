package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/lsp"
	"github.com/covscope/covscope/internal/record"
)

// NewLSPCommand creates the LSP server command.
func NewLSPCommand() *cobra.Command {
	var recordsPath string

	var diffPath string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start language server publishing coverage diagnostics (LSP)",
		Long: `Start a language server (LSP) on stdio transport. Coverage records are
loaded once at startup; open documents whose path matches a recorded
source file get uncovered-line diagnostics and hit-count hovers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			builder, err := newBuilder(diffPath)
			if err != nil {
				return err
			}

			_, err = record.Load(cobraCmd.Context(), builder, []string{recordsPath}, record.SkipConflicts)
			if err != nil {
				return err
			}

			lsp.NewServer(builder.Bundle(filepath.Base(recordsPath))).Run()

			return nil
		},
	}

	cmd.Flags().StringVar(&recordsPath, "records", "", "coverage record file to serve")
	cmd.Flags().StringVar(&diffPath, "diff", "", "diff payload restricting served coverage to changed units")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

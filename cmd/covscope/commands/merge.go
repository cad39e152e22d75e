package commands

import (
	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/pkg/coverage"
)

// MergeCommand holds configuration for the merge command.
type MergeCommand struct {
	output string
}

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	mc := &MergeCommand{}

	cmd := &cobra.Command{
		Use:   "merge <records>...",
		Short: "Merge record files into one deduplicated record set",
		Long: `Read several coverage record files through one builder and re-emit the
deduplicated unit set as a single record file. Records presenting the
same unit name with a different identity fail the merge.`,
		Args: cobra.MinimumNArgs(1),
		RunE: mc.run,
	}

	cmd.Flags().StringVarP(&mc.output, "output", "o", "", `merged output file (".lz4" suffix compresses)`)
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (mc *MergeCommand) run(cmd *cobra.Command, args []string) error {
	builder := coverage.NewBuilder()

	stats, err := record.Load(cmd.Context(), builder, args, record.FailOnConflict)
	if err != nil {
		return err
	}

	writeErr := record.WriteFile(mc.output, builder.Units())
	if writeErr != nil {
		return writeErr
	}

	progressf(isQuiet(cmd), cmd.ErrOrStderr(), "merged %d units into %s (%d duplicates dropped)",
		stats.Accepted, mc.output, stats.Duplicates)

	return nil
}

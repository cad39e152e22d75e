package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/internal/report"
)

// ReportCommand holds configuration for the report command.
type ReportCommand struct {
	format   string
	output   string
	name     string
	diffPath string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	rc := &ReportCommand{}

	cmd := &cobra.Command{
		Use:   "report <records>...",
		Short: "Aggregate coverage records and render a report",
		Long: `Aggregate one or more coverage record files into a bundle and render
it in the requested format. A diff payload restricts aggregation to the
units the diff touched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.format, "format", "f", "", "output format: text, table, json, yaml, binary, html")
	cmd.Flags().StringVarP(&rc.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&rc.name, "name", "", "bundle name shown in the report header")
	cmd.Flags().StringVar(&rc.diffPath, "diff", "", "diff payload restricting aggregation to changed units")

	return cmd
}

func (rc *ReportCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatName := rc.format
	if formatName == "" {
		formatName = cfg.Report.Format
	}

	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	builder, err := newBuilder(rc.diffPath)
	if err != nil {
		return err
	}

	silent := isQuiet(cmd)
	progressWriter := cmd.ErrOrStderr()

	stats, err := record.Load(cmd.Context(), builder, args, record.SkipConflicts)
	if err != nil {
		return err
	}

	progressf(silent, progressWriter, "loaded records: accepted=%d duplicates=%d skipped=%d conflicts=%d",
		stats.Accepted, stats.Duplicates, stats.Skipped, len(stats.Conflicts))

	for _, conflict := range stats.Conflicts {
		progressf(silent, progressWriter, "conflict skipped: %v", conflict)
	}

	name := rc.name
	if name == "" {
		name = cfg.Report.Name
	}

	if name == "" {
		name = filepath.Base(args[0])
	}

	outputPath := rc.output
	if outputPath == "" {
		outputPath = cfg.Report.Output
	}

	writer, closeOutput, err := resolveOutput(cmd, outputPath)
	if err != nil {
		return err
	}

	serializeErr := report.Serialize(builder.Bundle(name), format, writer)

	closeErr := closeOutput()
	if serializeErr != nil {
		return serializeErr
	}

	return closeErr
}

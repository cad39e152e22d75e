package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/covscope/covscope/internal/record"
	"github.com/covscope/covscope/internal/report"
)

// ErrCoverageBelowThreshold is returned when at least one enabled gate
// falls below its configured minimum.
var ErrCoverageBelowThreshold = errors.New("coverage below threshold")

// CheckCommand holds configuration for the check command.
type CheckCommand struct {
	minLines        float64
	minInstructions float64
	minBranches     float64
	minMethods      float64
	diffPath        string
	nocolor         bool
}

// gate is one threshold comparison over a counter category.
type gate struct {
	name      string
	percent   float64
	threshold float64
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cc := &CheckCommand{}

	cmd := &cobra.Command{
		Use:   "check <records>...",
		Short: "Gate on minimum coverage percentages",
		Long: `Aggregate coverage records and compare covered percentages against
configured minimums. A gate with threshold 0 is disabled. Exits with
code 1 when any enabled gate is below its minimum, making the command
usable as a CI gate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: cc.run,
	}

	cmd.Flags().Float64Var(&cc.minLines, "min-lines", 0, "minimum covered line percentage (0 disables)")
	cmd.Flags().Float64Var(&cc.minInstructions, "min-instructions", 0, "minimum covered instruction percentage (0 disables)")
	cmd.Flags().Float64Var(&cc.minBranches, "min-branches", 0, "minimum covered branch percentage (0 disables)")
	cmd.Flags().Float64Var(&cc.minMethods, "min-methods", 0, "minimum covered method percentage (0 disables)")
	cmd.Flags().StringVar(&cc.diffPath, "diff", "", "diff payload restricting the gate to changed units")
	cmd.Flags().BoolVar(&cc.nocolor, "no-color", false, "disable colored output")

	return cmd
}

func (cc *CheckCommand) run(cmd *cobra.Command, args []string) error {
	if cc.nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cc.applyConfigThresholds(cmd, cfg.Check.Lines, cfg.Check.Instructions, cfg.Check.Branches, cfg.Check.Methods)

	builder, err := newBuilder(cc.diffPath)
	if err != nil {
		return err
	}

	_, err = record.Load(cmd.Context(), builder, args, record.FailOnConflict)
	if err != nil {
		return err
	}

	doc := report.BuildDocument(builder.Bundle(cfg.Report.Name))

	gates := []gate{
		{"lines", doc.Totals.Lines.Percent, cc.minLines},
		{"instructions", doc.Totals.Instructions.Percent, cc.minInstructions},
		{"branches", doc.Totals.Branches.Percent, cc.minBranches},
		{"methods", doc.Totals.Methods.Percent, cc.minMethods},
	}

	return evaluateGates(cmd, gates)
}

// applyConfigThresholds fills thresholds from the config file for gates
// whose flag was not set explicitly.
func (cc *CheckCommand) applyConfigThresholds(cmd *cobra.Command, lines, instructions, branches, methods float64) {
	if !cmd.Flags().Changed("min-lines") {
		cc.minLines = lines
	}

	if !cmd.Flags().Changed("min-instructions") {
		cc.minInstructions = instructions
	}

	if !cmd.Flags().Changed("min-branches") {
		cc.minBranches = branches
	}

	if !cmd.Flags().Changed("min-methods") {
		cc.minMethods = methods
	}
}

func evaluateGates(cmd *cobra.Command, gates []gate) error {
	out := cmd.OutOrStdout()

	var failed []string

	for _, g := range gates {
		if g.threshold <= 0 {
			continue
		}

		if g.percent < g.threshold {
			color.New(color.FgRed).Fprintf(out, "FAIL %s coverage %.1f%% < %.1f%%\n", g.name, g.percent, g.threshold)

			failed = append(failed, g.name)

			continue
		}

		color.New(color.FgGreen).Fprintf(out, "PASS %s coverage %.1f%% >= %.1f%%\n", g.name, g.percent, g.threshold)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrCoverageBelowThreshold, strings.Join(failed, ", "))
	}

	return nil
}

package report

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Layout constants for the text report.
const (
	textWidth        = 64
	textBarWidth     = 20
	textLabelWidth   = 14
	textIndent       = "  "
	textMaxFiles     = 15
	barFilledChar    = "█"
	barEmptyChar     = "░"
	boxHorizontal    = "─"
	heavyHorizontal  = "━"
	heavyVertical    = "┃"
	heavyTopLeft     = "┏"
	heavyTopRight    = "┓"
	heavyBottomLeft  = "┗"
	heavyBottomRight = "┛"
)

// Covered-percent thresholds for terminal coloring.
const (
	percentGood = 80.0
	percentFair = 50.0
)

// ANSI color codes.
const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiBlue   = "\033[34m"
	ansiGray   = "\033[90m"
)

// textConfig holds terminal rendering configuration.
type textConfig struct {
	width   int
	noColor bool
}

func newTextConfig() textConfig {
	return textConfig{
		width:   textWidth,
		noColor: os.Getenv("NO_COLOR") != "",
	}
}

// colorize applies an ANSI color code to text unless colors are off.
func (c textConfig) colorize(text, code string) string {
	if c.noColor || code == "" {
		return text
	}

	return code + text + ansiReset
}

// colorForPercent maps a covered percentage to its ANSI code.
func colorForPercent(percent float64) string {
	switch {
	case percent >= percentGood:
		return ansiGreen
	case percent >= percentFair:
		return ansiYellow
	default:
		return ansiRed
	}
}

// writeText renders the document as a human-readable terminal summary.
func writeText(doc *Document, writer io.Writer) error {
	cfg := newTextConfig()

	_, err := fmt.Fprintln(writer, drawHeader(
		"Coverage: "+doc.Name,
		fmt.Sprintf("%d units", doc.Units),
		cfg.width,
	))
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	fmt.Fprintln(writer)
	writeTotalsSection(writer, cfg, doc.Totals)

	if len(doc.Packages) > 0 {
		fmt.Fprintln(writer)
		writePackagesSection(writer, cfg, doc.Packages)
	}

	if len(doc.SourceFiles) > 0 {
		fmt.Fprintln(writer)
		writeWorstFilesSection(writer, cfg, doc.SourceFiles)
	}

	if doc.NoMatch > 0 {
		fmt.Fprintln(writer)
		fmt.Fprintf(writer, "%s%s\n", textIndent, cfg.colorize(
			fmt.Sprintf("%d units with non-matching execution data", doc.NoMatch),
			ansiYellow,
		))
	}

	fmt.Fprintln(writer)

	return nil
}

func writeTotalsSection(writer io.Writer, cfg textConfig, totals Summary) {
	writeSectionTitle(writer, cfg, "Totals")

	writeCategoryLine(writer, cfg, "Instructions", totals.Instructions)
	writeCategoryLine(writer, cfg, "Branches", totals.Branches)
	writeCategoryLine(writer, cfg, "Lines", totals.Lines)
	writeCategoryLine(writer, cfg, "Methods", totals.Methods)
	writeCategoryLine(writer, cfg, "Complexity", totals.Complexity)
}

func writeCategoryLine(writer io.Writer, cfg textConfig, label string, cat CategorySummary) {
	total := cat.Missed + cat.Covered
	if total == 0 {
		fmt.Fprintf(writer, "%s%-*s %s\n", textIndent, textLabelWidth, label,
			cfg.colorize("no data", ansiGray))

		return
	}

	bar := drawBar(cat.Percent/100, textBarWidth)
	pct := cfg.colorize(fmt.Sprintf("%5.1f%%", cat.Percent), colorForPercent(cat.Percent))

	fmt.Fprintf(writer, "%s%-*s %s %s  (%d/%d)\n",
		textIndent, textLabelWidth, label, bar, pct, cat.Covered, total)
}

func writePackagesSection(writer io.Writer, cfg textConfig, packages []PackageRow) {
	writeSectionTitle(writer, cfg, "Packages")

	labelWidth := packageLabelWidth(packages)

	for _, pkg := range packages {
		name := pkg.Name
		if name == "" {
			name = "(default)"
		}

		lines := pkg.Summary.Lines
		bar := drawBar(lines.Percent/100, textBarWidth)
		pct := cfg.colorize(fmt.Sprintf("%5.1f%%", lines.Percent), colorForPercent(lines.Percent))

		fmt.Fprintf(writer, "%s%-*s %s %s  (%d files)\n",
			textIndent, labelWidth, truncateLabel(name, labelWidth), bar, pct, pkg.Files)
	}
}

func writeWorstFilesSection(writer io.Writer, cfg textConfig, files []FileRow) {
	worst := worstFiles(files, textMaxFiles)
	if len(worst) == 0 {
		return
	}

	writeSectionTitle(writer, cfg, "Lowest line coverage")

	labelWidth := fileLabelWidth(worst)

	for _, file := range worst {
		lines := file.Summary.Lines
		pct := cfg.colorize(fmt.Sprintf("%5.1f%%", lines.Percent), colorForPercent(lines.Percent))

		fmt.Fprintf(writer, "%s%-*s %s  (%d uncovered lines)\n",
			textIndent, labelWidth, truncateLabel(fileLabel(file), labelWidth), pct, len(file.UncoveredLines))
	}
}

func writeSectionTitle(writer io.Writer, cfg textConfig, title string) {
	fmt.Fprintf(writer, "%s%s\n", textIndent, cfg.colorize(title, ansiBlue))
	fmt.Fprintf(writer, "%s%s\n", textIndent,
		strings.Repeat(boxHorizontal, cfg.width-len(textIndent)*2))
}

// worstFiles returns up to limit files with incomplete line coverage,
// lowest percentage first.
func worstFiles(files []FileRow, limit int) []FileRow {
	var worst []FileRow

	for _, file := range files {
		if file.Summary.Lines.Missed > 0 {
			worst = append(worst, file)
		}
	}

	slices.SortFunc(worst, func(a, b FileRow) int {
		if c := cmp.Compare(a.Summary.Lines.Percent, b.Summary.Lines.Percent); c != 0 {
			return c
		}

		return strings.Compare(fileLabel(a), fileLabel(b))
	})

	if len(worst) > limit {
		worst = worst[:limit]
	}

	return worst
}

func fileLabel(file FileRow) string {
	if file.Package == "" {
		return file.Name
	}

	return file.Package + "/" + file.Name
}

func packageLabelWidth(packages []PackageRow) int {
	width := textLabelWidth

	for _, pkg := range packages {
		if len(pkg.Name) > width {
			width = len(pkg.Name)
		}
	}

	return min(width, maxDynamicLabelWidth)
}

func fileLabelWidth(files []FileRow) int {
	width := textLabelWidth

	for _, file := range files {
		if len(fileLabel(file)) > width {
			width = len(fileLabel(file))
		}
	}

	return min(width, maxDynamicLabelWidth)
}

// maxDynamicLabelWidth caps label columns so bars stay on screen.
const maxDynamicLabelWidth = 32

// ellipsisLen is the length of the truncation marker.
const ellipsisLen = 3

func truncateLabel(label string, maxWidth int) string {
	if len(label) <= maxWidth {
		return label
	}

	if maxWidth <= ellipsisLen {
		return label[:maxWidth]
	}

	return label[:maxWidth-ellipsisLen] + "..."
}

// drawBar draws a progress bar of the given width. Value is clamped to
// [0, 1].
func drawBar(value float64, width int) string {
	if value < 0 {
		value = 0
	}

	if value > 1 {
		value = 1
	}

	filled := int(value * float64(width))

	return strings.Repeat(barFilledChar, filled) + strings.Repeat(barEmptyChar, width-filled)
}

// drawHeader draws a heavy-bordered header line with the title on the
// left and rightText on the right.
func drawHeader(title, rightText string, width int) string {
	minRequired := len(title) + len(rightText) + 6
	if width < minRequired {
		width = minRequired
	}

	innerWidth := width - 2
	gap := innerWidth - 2 - len(title) - len(rightText)

	if gap < 1 {
		gap = 1
	}

	top := heavyTopLeft + strings.Repeat(heavyHorizontal, innerWidth) + heavyTopRight
	content := heavyVertical + " " + title + strings.Repeat(" ", gap) + rightText + " " + heavyVertical
	bottom := heavyBottomLeft + strings.Repeat(heavyHorizontal, innerWidth) + heavyBottomRight

	return top + "\n" + content + "\n" + bottom
}

package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// writeTable renders the per-file breakdown as a go-pretty table.
func writeTable(doc *Document, writer io.Writer) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	tbl.AppendHeader(table.Row{"Package", "File", "Instr", "Branch", "Line", "Method", "Line %"})

	for _, file := range doc.SourceFiles {
		tbl.AppendRow(table.Row{
			file.Package,
			file.Name,
			categoryCell(file.Summary.Instructions),
			categoryCell(file.Summary.Branches),
			categoryCell(file.Summary.Lines),
			categoryCell(file.Summary.Methods),
			fmt.Sprintf("%.1f%%", file.Summary.Lines.Percent),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%d files", len(doc.SourceFiles)),
		categoryCell(doc.Totals.Instructions),
		categoryCell(doc.Totals.Branches),
		categoryCell(doc.Totals.Lines),
		categoryCell(doc.Totals.Methods),
		fmt.Sprintf("%.1f%%", doc.Totals.Lines.Percent),
	})

	_, err := fmt.Fprintln(writer, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table report: %w", err)
	}

	return nil
}

// categoryCell formats one counter cell as covered/total.
func categoryCell(cat CategorySummary) string {
	return fmt.Sprintf("%d/%d", cat.Covered, cat.Missed+cat.Covered)
}

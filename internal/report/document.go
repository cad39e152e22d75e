// Package report renders coverage bundles in the formats the covscope
// CLI exposes: human text, go-pretty tables, JSON, YAML, a msgpack
// binary envelope, and a self-contained HTML chart page.
package report

import (
	"slices"
	"strings"

	"github.com/covscope/covscope/pkg/coverage"
)

// CategorySummary reports one coverage counter with its derived
// percentage.
type CategorySummary struct {
	Missed  int     `json:"missed"  yaml:"missed"  msgpack:"missed"`
	Covered int     `json:"covered" yaml:"covered" msgpack:"covered"`
	Percent float64 `json:"percent" yaml:"percent" msgpack:"percent"`
}

// Summary projects all five counter categories of one aggregate.
type Summary struct {
	Instructions CategorySummary `json:"instructions" yaml:"instructions" msgpack:"instructions"`
	Branches     CategorySummary `json:"branches"     yaml:"branches"     msgpack:"branches"`
	Lines        CategorySummary `json:"lines"        yaml:"lines"        msgpack:"lines"`
	Complexity   CategorySummary `json:"complexity"   yaml:"complexity"   msgpack:"complexity"`
	Methods      CategorySummary `json:"methods"      yaml:"methods"      msgpack:"methods"`
}

// PackageRow aggregates the source files of one package.
type PackageRow struct {
	Name    string  `json:"name"    yaml:"name"    msgpack:"name"`
	Files   int     `json:"files"   yaml:"files"   msgpack:"files"`
	Summary Summary `json:"summary" yaml:"summary" msgpack:"summary"`
}

// FileRow reports one source-file aggregate, including the lines that
// were never executed.
type FileRow struct {
	Package        string  `json:"package"                   yaml:"package"                   msgpack:"package"`
	Name           string  `json:"name"                      yaml:"name"                      msgpack:"name"`
	Summary        Summary `json:"summary"                   yaml:"summary"                   msgpack:"summary"`
	UncoveredLines []int   `json:"uncovered_lines,omitempty" yaml:"uncovered_lines,omitempty" msgpack:"uncovered_lines,omitempty"`
}

// Document is the renderable projection of a coverage bundle. Building
// one never touches the builder the bundle came from.
type Document struct {
	Name        string       `json:"name"         yaml:"name"         msgpack:"name"`
	Units       int          `json:"units"        yaml:"units"        msgpack:"units"`
	NoMatch     int          `json:"nomatch"      yaml:"nomatch"      msgpack:"nomatch"`
	Totals      Summary      `json:"totals"       yaml:"totals"       msgpack:"totals"`
	Packages    []PackageRow `json:"packages"     yaml:"packages"     msgpack:"packages"`
	SourceFiles []FileRow    `json:"source_files" yaml:"source_files" msgpack:"source_files"`
}

// BuildDocument projects bundle into a report document: totals,
// name-sorted package rollups, and per-file rows with uncovered lines.
func BuildDocument(bundle *coverage.Bundle) *Document {
	doc := &Document{
		Name:   bundle.Name,
		Units:  len(bundle.Units),
		Totals: summarize(bundle.Totals),
	}

	for _, rec := range bundle.Units {
		if rec.NoMatch {
			doc.NoMatch++
		}
	}

	packageCounters := make(map[string]coverage.Counters)
	packageFiles := make(map[string]int)

	for _, file := range bundle.SourceFiles {
		doc.SourceFiles = append(doc.SourceFiles, fileRow(file))

		packageCounters[file.Package] = packageCounters[file.Package].Merge(file.Counters)
		packageFiles[file.Package]++
	}

	for name, counters := range packageCounters {
		doc.Packages = append(doc.Packages, PackageRow{
			Name:    name,
			Files:   packageFiles[name],
			Summary: summarize(counters),
		})
	}

	slices.SortFunc(doc.Packages, func(a, b PackageRow) int {
		return strings.Compare(a.Name, b.Name)
	})

	return doc
}

func fileRow(file *coverage.SourceFileAggregate) FileRow {
	row := FileRow{
		Package: file.Package,
		Name:    file.Name,
		Summary: summarize(file.Counters),
	}

	for _, line := range file.Lines() {
		if line.Hits == 0 {
			row.UncoveredLines = append(row.UncoveredLines, line.Nr)
		}
	}

	return row
}

func summarize(counters coverage.Counters) Summary {
	return Summary{
		Instructions: categorySummary(counters.Instructions),
		Branches:     categorySummary(counters.Branches),
		Lines:        categorySummary(counters.Lines),
		Complexity:   categorySummary(counters.Complexity),
		Methods:      categorySummary(counters.Methods),
	}
}

func categorySummary(counter coverage.Counter) CategorySummary {
	return CategorySummary{
		Missed:  counter.Missed,
		Covered: counter.Covered,
		Percent: counter.CoveredPercent(),
	}
}

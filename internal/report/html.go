package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Chart layout constants.
const (
	chartWidth     = "900px"
	chartHeight    = "500px"
	xAxisRotate    = 60
	percentMax     = 100
	axisLabelSize  = 10
	pieLabelFormat = "{b}: {c} ({d}%)"
)

// Bar colors by covered percentage.
const (
	colorGood = "#91cc75"
	colorFair = "#fac858"
	colorPoor = "#ee6666"
)

// writeHTML renders a self-contained chart page: per-package line
// coverage as a bar chart and total covered vs missed lines as a pie.
func writeHTML(doc *Document, writer io.Writer) error {
	page := components.NewPage()
	page.PageTitle = "Coverage: " + doc.Name

	page.AddCharts(
		buildPackageBarChart(doc),
		buildLinesPieChart(doc),
	)

	err := page.Render(writer)
	if err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	return nil
}

func percentColor(percent float64) string {
	switch {
	case percent >= percentGood:
		return colorGood
	case percent >= percentFair:
		return colorFair
	default:
		return colorPoor
	}
}

// buildPackageBarChart creates a bar chart of line coverage percentage
// per package.
func buildPackageBarChart(doc *Document) *charts.Bar {
	labels := make([]string, len(doc.Packages))
	values := make([]opts.BarData, len(doc.Packages))

	for i, pkg := range doc.Packages {
		name := pkg.Name
		if name == "" {
			name = "(default)"
		}

		percent := pkg.Summary.Lines.Percent
		labels[i] = name
		values[i] = opts.BarData{
			Value:     percent,
			ItemStyle: &opts.ItemStyle{Color: percentColor(percent)},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Line coverage by package",
			Subtitle: doc.Name,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, FontSize: axisLabelSize, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Covered %",
			Min:  0,
			Max:  percentMax,
		}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("Line %", values)

	return bar
}

// buildLinesPieChart creates a pie chart of total covered vs missed
// lines.
func buildLinesPieChart(doc *Document) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lines covered vs missed"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	pieData := []opts.PieData{
		{
			Name:      "Covered",
			Value:     doc.Totals.Lines.Covered,
			ItemStyle: &opts.ItemStyle{Color: colorGood},
		},
		{
			Name:      "Missed",
			Value:     doc.Totals.Lines.Missed,
			ItemStyle: &opts.ItemStyle{Color: colorPoor},
		},
	}

	pie.AddSeries("Lines", pieData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: pieLabelFormat,
			}),
		)

	return pie
}

package main

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// writeHTMLReport renders interactive skill charts for all methods into a
// single HTML page.
func writeHTMLReport(result *EvalResult, path string) error {
	leads := leadLabels(result)

	csi := charts.NewLine()
	csi.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Nowcast Skill", Theme: "dark", Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Critical Success Index by Lead Time",
			Subtitle: fmt.Sprintf("threshold code %d (%.1f dBZ), %dx%d grid, seed %d", result.Threshold, result.ThresholdDBZ, result.Rows, result.Cols, result.Seed),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "CSI"}),
	)
	csi.SetXAxis(leads)
	addMethodSeries(csi, result, func(s StepReport) float64 { return s.CSI })

	mae := charts.NewLine()
	mae.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Mean Absolute Error by Lead Time",
			Subtitle: "code units (0-254)",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MAE"}),
	)
	mae.SetXAxis(leads)
	addMethodSeries(mae, result, func(s StepReport) float64 { return s.MAE })

	page := components.NewPage()
	page.AddCharts(csi, mae)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return page.Render(f)
}

// leadLabels returns the x-axis labels from the first method that produced
// steps.
func leadLabels(result *EvalResult) []string {
	for _, mr := range result.Methods {
		if mr.Error != "" || len(mr.Steps) == 0 {
			continue
		}
		labels := make([]string, 0, len(mr.Steps))
		for _, s := range mr.Steps {
			labels = append(labels, fmt.Sprintf("%.0fmin", s.LeadMinutes))
		}
		return labels
	}
	return nil
}

func addMethodSeries(line *charts.Line, result *EvalResult, value func(StepReport) float64) {
	for _, mr := range result.Methods {
		if mr.Error != "" || len(mr.Steps) == 0 {
			continue
		}
		data := make([]opts.LineData, 0, len(mr.Steps))
		for _, s := range mr.Steps {
			data = append(data, opts.LineData{Value: value(s)})
		}
		line.AddSeries(mr.Method, data)
	}
}

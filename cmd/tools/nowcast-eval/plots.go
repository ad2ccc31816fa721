package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// seriesColors is the palette cycled across method lines.
var seriesColors = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}, // blue
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}, // red
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255}, // green
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255}, // purple
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255}, // orange
}

// metricPlot describes one skill-versus-lead plot file.
type metricPlot struct {
	title  string
	file   string
	yLabel string
	value  func(StepReport) float64
}

// generatePlots writes one PNG per skill metric into dir and returns the
// number of files written.
func generatePlots(result *EvalResult, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create plot dir: %w", err)
	}

	metrics := []metricPlot{
		{
			title:  fmt.Sprintf("Critical Success Index (threshold %.1f dBZ)", result.ThresholdDBZ),
			file:   "skill_csi.png",
			yLabel: "CSI",
			value:  func(s StepReport) float64 { return s.CSI },
		},
		{
			title:  fmt.Sprintf("Probability of Detection (threshold %.1f dBZ)", result.ThresholdDBZ),
			file:   "skill_pod.png",
			yLabel: "POD",
			value:  func(s StepReport) float64 { return s.POD },
		},
		{
			title:  "Mean Absolute Error",
			file:   "error_mae.png",
			yLabel: "MAE (code units)",
			value:  func(s StepReport) float64 { return s.MAE },
		},
	}

	count := 0
	for _, m := range metrics {
		if err := writeMetricPlot(result, dir, m); err != nil {
			return count, fmt.Errorf("%s: %w", m.file, err)
		}
		count++
	}

	return count, nil
}

func writeMetricPlot(result *EvalResult, dir string, m metricPlot) error {
	p := plot.New()
	p.Title.Text = m.title
	p.X.Label.Text = "Lead time (min)"
	p.Y.Label.Text = m.yLabel

	for i, mr := range result.Methods {
		if mr.Error != "" || len(mr.Steps) == 0 {
			continue
		}

		pts := make(plotter.XYs, 0, len(mr.Steps))
		for _, s := range mr.Steps {
			pts = append(pts, plotter.XY{X: s.LeadMinutes, Y: m.value(s)})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = seriesColors[i%len(seriesColors)]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(mr.Method, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false

	return p.Save(10*vg.Inch, 5*vg.Inch, filepath.Join(dir, m.file))
}

package render

import (
	"io"

	"statdash/domain/core"
	"statdash/domain/table"
	"statdash/internal/analysis"
	"statdash/internal/presentation"

	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	barWidth   = 40
	barSpacing = 16
)

// countsSVG draws value-count pies and bars with go-chart, which labels slices
// and bars directly.
func (r *Renderer) countsSVG(w io.Writer, t *table.Table, spec presentation.ChartSpec) error {
	counts, err := r.counts(t, spec.X)
	if err != nil {
		return err
	}
	values := make([]chart.Value, len(counts))
	for i, vc := range counts {
		values[i] = chart.Value{Value: float64(vc.Count), Label: vc.Value}
	}

	width, height := int(r.Width.Dots(96)), int(r.Height.Dots(96))

	if spec.Kind == analysis.ChartPie {
		pie := chart.PieChart{
			Title:  spec.Title,
			Width:  height,
			Height: height,
			Values: values,
		}
		if err := pie.Render(chart.SVG, w); err != nil {
			return core.NewComputationError("charts", "pie chart for "+spec.X, err)
		}
		return nil
	}

	// go-chart refuses bars that do not fit the canvas
	if need := len(values)*(barWidth+barSpacing) + 2*barSpacing + 80; need > width {
		width = need
	}
	bars := chart.BarChart{
		Title: spec.Title,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Bars:       values,
	}
	if err := bars.Render(chart.SVG, w); err != nil {
		return core.NewComputationError("charts", "bar chart for "+spec.X, err)
	}
	return nil
}

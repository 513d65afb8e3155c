// Package render draws chart descriptions as SVG images and lays report charts
// out on a PDF page.
package render

import (
	"fmt"
	"io"
	"math"

	"statdash/domain/core"
	"statdash/domain/table"
	"statdash/internal/analysis"
	"statdash/internal/presentation"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Renderer draws charts at a fixed size
type Renderer struct {
	Width, Height vg.Length
	// MaxCategories caps the slices and bars drawn for value counts; the
	// remainder is folded into an "Other" entry.
	MaxCategories int
}

// NewRenderer returns a renderer with dashboard defaults
func NewRenderer() *Renderer {
	return &Renderer{
		Width:         16 * vg.Centimeter,
		Height:        11 * vg.Centimeter,
		MaxCategories: 12,
	}
}

// SVG renders spec against t as an SVG document
func (r *Renderer) SVG(w io.Writer, t *table.Table, spec presentation.ChartSpec) error {
	if spec.Counts || spec.Kind == analysis.ChartPie {
		return r.countsSVG(w, t, spec)
	}

	p, err := r.Plot(t, spec)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(r.Width, r.Height, "svg")
	if err != nil {
		return fmt.Errorf("failed to prepare svg: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Plot builds a gonum plot for spec. Value-count charts are drawn as a gonum bar
// chart or pie so they can share a page with other plots.
func (r *Renderer) Plot(t *table.Table, spec presentation.ChartSpec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = spec.Title

	var err error
	switch {
	case spec.Kind == analysis.ChartPie:
		err = r.addPie(p, t, spec.X)
	case spec.Kind == analysis.ChartBar && spec.Counts:
		err = r.addCountBars(p, t, spec.X)
	case spec.Kind == analysis.ChartBox:
		err = addBoxes(p, t, spec.Columns)
	case spec.Kind == analysis.ChartHistogram:
		err = addHistogram(p, t, spec.Columns)
	case spec.Kind == analysis.ChartScatter:
		err = addScatter(p, t, spec.X, spec.Y)
	case spec.Kind == analysis.ChartLine:
		err = addLine(p, t, spec.X, spec.Limit)
	case spec.Kind == analysis.ChartBar:
		err = addBars(p, t, spec.X, spec.Y)
	default:
		err = fmt.Errorf("unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func column(t *table.Table, name string) (*table.Column, error) {
	if t == nil {
		return nil, core.ErrNoData
	}
	c, ok := t.Column(name)
	if !ok {
		return nil, core.NewSelectionError(core.ReasonUnknownColumn, name, "no such column")
	}
	return c, nil
}

func numericColumn(t *table.Table, name string) (*table.Column, error) {
	c, err := column(t, name)
	if err != nil {
		return nil, err
	}
	if !c.IsNumeric() {
		return nil, core.NewSelectionError(core.ReasonNonNumeric, name, "chart needs a numeric column")
	}
	return c, nil
}

func addBoxes(p *plot.Plot, t *table.Table, names []string) error {
	for i, name := range names {
		c, err := numericColumn(t, name)
		if err != nil {
			return err
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(c.Finite()))
		if err != nil {
			return core.NewComputationError("charts", "box plot for "+name, err)
		}
		b.FillColor = plotutil.Color(i)
		p.Add(b)
	}
	p.NominalX(names...)
	return nil
}

func addHistogram(p *plot.Plot, t *table.Table, names []string) error {
	for i, name := range names {
		c, err := numericColumn(t, name)
		if err != nil {
			return err
		}
		vals := c.Finite()
		h, err := plotter.NewHist(plotter.Values(vals), sturges(vals))
		if err != nil {
			return core.NewComputationError("charts", "histogram for "+name, err)
		}
		h.FillColor = plotutil.Color(i)
		p.Add(h)
		if len(names) > 1 {
			p.Legend.Add(name, h)
		}
	}
	if len(names) == 1 {
		p.X.Label.Text = names[0]
	}
	p.Y.Label.Text = "count"
	return nil
}

// sturges picks ceil(log2 n)+1 bins, one bin for constant data
func sturges(vals []float64) int {
	if len(vals) < 2 {
		return 1
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(len(vals))))) + 1
}

func addScatter(p *plot.Plot, t *table.Table, xName, yName string) error {
	x, err := numericColumn(t, xName)
	if err != nil {
		return err
	}
	y, err := numericColumn(t, yName)
	if err != nil {
		return err
	}
	rows := table.CompleteRows(x, y)
	xys := make(plotter.XYs, len(rows[0]))
	for i := range xys {
		xys[i].X, xys[i].Y = rows[0][i], rows[1][i]
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return core.NewComputationError("charts", "scatter plot", err)
	}
	s.GlyphStyle.Color = plotutil.Color(0)
	p.Add(s)
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	return nil
}

func addLine(p *plot.Plot, t *table.Table, name string, limit int) error {
	c, err := numericColumn(t, name)
	if err != nil {
		return err
	}
	vals := c.Values
	if limit > 0 {
		vals = c.Head(limit)
	}
	var xys plotter.XYs
	for i, v := range vals {
		if table.IsFinite(v) {
			xys = append(xys, plotter.XY{X: float64(i), Y: v})
		}
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return core.NewComputationError("charts", "line chart for "+name, err)
	}
	l.Color = plotutil.Color(0)
	p.Add(l)
	p.X.Label.Text = "row"
	p.Y.Label.Text = name
	return nil
}

// addBars plots y per row, labelled by the raw x cell
func addBars(p *plot.Plot, t *table.Table, xName, yName string) error {
	x, err := column(t, xName)
	if err != nil {
		return err
	}
	y, err := numericColumn(t, yName)
	if err != nil {
		return err
	}
	var vals plotter.Values
	var labels []string
	for i, v := range y.Values {
		if !table.IsFinite(v) || i >= x.Len() {
			continue
		}
		vals = append(vals, v)
		labels = append(labels, x.Raw[i])
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(12))
	if err != nil {
		return core.NewComputationError("charts", "bar chart", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	return nil
}

func (r *Renderer) addCountBars(p *plot.Plot, t *table.Table, name string) error {
	counts, err := r.counts(t, name)
	if err != nil {
		return err
	}
	vals := make(plotter.Values, len(counts))
	labels := make([]string, len(counts))
	for i, vc := range counts {
		vals[i] = float64(vc.Count)
		labels[i] = vc.Value
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(14))
	if err != nil {
		return core.NewComputationError("charts", "bar chart for "+name, err)
	}
	bars.Color = plotutil.Color(1)
	p.Add(bars)
	p.NominalX(labels...)
	p.Y.Label.Text = "count"
	return nil
}

func (r *Renderer) addPie(p *plot.Plot, t *table.Table, name string) error {
	counts, err := r.counts(t, name)
	if err != nil {
		return err
	}
	pie := NewPie(counts)
	p.Add(pie)
	p.HideAxes()
	p.Legend.Top = true
	for i, vc := range counts {
		p.Legend.Add(vc.Value, swatch{color: pie.Colors[i]})
	}
	return nil
}

// counts returns the value counts of a column, folding the tail into "Other"
func (r *Renderer) counts(t *table.Table, name string) ([]table.ValueCount, error) {
	c, err := column(t, name)
	if err != nil {
		return nil, err
	}
	counts := c.ValueCounts()
	if len(counts) == 0 {
		return nil, core.NewComputationError("charts", "column "+name+" has no values", nil)
	}
	if r.MaxCategories > 0 && len(counts) > r.MaxCategories {
		other := 0
		for _, vc := range counts[r.MaxCategories-1:] {
			other += vc.Count
		}
		counts = append(counts[:r.MaxCategories-1:r.MaxCategories-1], table.ValueCount{Value: "Other", Count: other})
	}
	return counts, nil
}

package render

import (
	"fmt"
	"io"

	"statdash/domain/table"
	"statdash/internal/presentation"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"
)

const (
	panelWidth  = 7 * vg.Centimeter
	panelHeight = 6 * vg.Centimeter
	reportCols  = 3
)

// PDFGrid writes the report page: one row per column holding a line chart of the
// first head values, a pie and a bar chart of value counts. A panel that cannot be
// drawn for a column (for example a line chart of text) is left with its title only.
func (r *Renderer) PDFGrid(w io.Writer, t *table.Table, columns []string, head int) error {
	if len(columns) == 0 {
		return fmt.Errorf("report needs at least one column")
	}
	for _, name := range columns {
		if _, err := column(t, name); err != nil {
			return err
		}
	}

	specs := presentation.ReportCharts(columns, head)
	plots := make([][]*plot.Plot, len(columns))
	for i := range columns {
		plots[i] = make([]*plot.Plot, reportCols)
		for j := 0; j < reportCols; j++ {
			spec := specs[i*reportCols+j]
			p, err := r.Plot(t, spec)
			if err != nil {
				p = plot.New()
				p.Title.Text = spec.Title + " (n/a)"
				p.HideAxes()
			}
			plots[i][j] = p
		}
	}

	canvas := vgpdf.New(reportCols*panelWidth, vg.Length(len(columns))*panelHeight)
	dc := draw.New(canvas)
	tiles := draw.Tiles{
		Rows:      len(columns),
		Cols:      reportCols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}

	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

package render

import (
	"image/color"
	"math"

	"statdash/domain/table"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Pie is a gonum plotter drawing value counts as slices of a disc
type Pie struct {
	Values []float64
	Colors []color.Color
	// Radius is the fraction of the half-extent of the data area used for the disc
	Radius float64
}

// NewPie creates a pie of value counts with the default palette
func NewPie(counts []table.ValueCount) *Pie {
	p := &Pie{Radius: 0.9}
	for i, vc := range counts {
		p.Values = append(p.Values, float64(vc.Count))
		p.Colors = append(p.Colors, plotutil.Color(i))
	}
	return p
}

// Plot implements plot.Plotter. Slices run clockwise from twelve o'clock.
func (pie *Pie) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, v := range pie.Values {
		total += v
	}
	if total <= 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	half := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < half {
		half = h
	}
	radius := half / 2 * vg.Length(pie.Radius)

	start := math.Pi / 2
	for i, v := range pie.Values {
		sweep := -2 * math.Pi * v / total
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(pie.Colors[i])
		c.Fill(path)
		start += sweep
	}
}

// DataRange implements plot.DataRanger with a fixed unit box so the disc is not
// distorted by axis autoscaling.
func (pie *Pie) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

// swatch is a filled legend thumbnail
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

// Derived from https://github.com/gonum/plot/blob/v0.16.0/plotter/barchart.go:
// Copyright ©2015 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cibar

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// groupBars draws the bars of one group across categories, each with a
// symmetric error bar.
type groupBars struct {
	// The category position (X) and height (Y) of each bar.
	Bars plotter.XYs

	// HalfWidths holds the error bar half-width of each bar. Zero draws no
	// error bar.
	HalfWidths []float64

	// Labels, if set, are drawn above each bar.
	Labels []string

	// Width is the width of the bars.
	Width vg.Length

	// Color is the fill color of the bars.
	Color color.Color

	// LineStyle is the style of the outline of the bars.
	draw.LineStyle

	// ErrorStyle is the style of the error bars.
	ErrorStyle draw.LineStyle

	// CapWidth is the width of the error bar caps. Zero draws no caps.
	CapWidth vg.Length

	// LabelStyle is the style of the label text.
	LabelStyle text.Style

	// LabelOffset is added to the position of each label.
	LabelOffset vg.Point

	// Offset is added to the X location of each bar. When the Offset is
	// zero, the bars are drawn centered at their X location.
	Offset vg.Length
}

func newGroupBars(bars []Bar, categoryIndex []float64, width vg.Length) (*groupBars, error) {
	if width <= 0 {
		return nil, errors.New("bar width was not positive")
	}
	if len(bars) != len(categoryIndex) {
		return nil, errors.New("bar and category counts differ")
	}
	g := &groupBars{
		Bars:       make(plotter.XYs, len(bars)),
		HalfWidths: make([]float64, len(bars)),
		Width:      width,
		Color:      color.Black,
		LineStyle:  plotter.DefaultLineStyle,
		ErrorStyle: plotter.DefaultLineStyle,
		CapWidth:   width / 2,
		LabelStyle: text.Style{
			Font:    font.From(plotter.DefaultFont, plotter.DefaultFontSize),
			Handler: plot.DefaultTextHandler,
		},
	}
	for i, b := range bars {
		g.Bars[i] = plotter.XY{X: categoryIndex[i], Y: b.Mean}
		g.HalfWidths[i] = math.Abs(b.HalfWidth)
	}
	return g, nil
}

// Plot implements the plot.Plotter interface.
func (b *groupBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trCat, trVal := plt.Transforms(&c)

	for i, bar := range b.Bars {
		cat := trCat(bar.X)
		if !c.ContainsX(cat) {
			continue
		}
		cat += b.Offset
		catMin := cat - b.Width/2
		catMax := catMin + b.Width
		valMin := trVal(0)
		valMax := trVal(bar.Y)

		pts := []vg.Point{
			{X: catMin, Y: valMin},
			{X: catMin, Y: valMax},
			{X: catMax, Y: valMax},
			{X: catMax, Y: valMin},
		}
		c.FillPolygon(b.Color, c.ClipPolygonY(pts))

		if b.LineStyle.Width > 0 {
			pts = append(pts, vg.Point{X: catMin, Y: valMin})
			c.StrokeLines(b.LineStyle, c.ClipLinesY(pts)...)
		}

		top := max(valMin, valMax)
		if hw := b.HalfWidths[i]; hw > 0 {
			low := trVal(bar.Y - hw)
			high := trVal(bar.Y + hw)
			top = max(top, high)

			errBar := c.ClipLinesY([]vg.Point{{X: cat, Y: low}, {X: cat, Y: high}})
			c.StrokeLines(b.ErrorStyle, errBar...)
			if b.CapWidth > 0 {
				drawCap := func(y vg.Length) {
					if c.ContainsY(y) {
						c.StrokeLine2(b.ErrorStyle, cat-b.CapWidth/2, y, cat+b.CapWidth/2, y)
					}
				}
				drawCap(low)
				drawCap(high)
			}
		}

		if len(b.Labels) > 0 {
			pt := vg.Point{X: cat + b.LabelOffset.X, Y: top + b.LabelOffset.Y}
			if c.ContainsY(pt.Y) {
				c.FillText(b.LabelStyle, pt, b.Labels[i])
			}
		}
	}
}

// DataRange implements the plot.DataRanger interface.
func (b *groupBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	catMin := math.Inf(1)
	catMax := math.Inf(-1)
	valMin := math.Inf(1)
	valMax := math.Inf(-1)
	for i, bar := range b.Bars {
		catMin = math.Min(catMin, bar.X)
		catMax = math.Max(catMax, bar.X)

		hw := b.HalfWidths[i]
		valMin = math.Min(valMin, math.Min(0, bar.Y-hw))
		valMax = math.Max(valMax, math.Max(0, bar.Y+hw))
	}
	return catMin, catMax, valMin, valMax
}

// GlyphBoxes implements the GlyphBoxer interface.
func (b *groupBars) GlyphBoxes(plt *plot.Plot) []plot.GlyphBox {
	boxes := make([]plot.GlyphBox, len(b.Bars)+len(b.Labels))
	for i, bar := range b.Bars {
		boxes[i].X = plt.X.Norm(bar.X)
		boxes[i].Rectangle = vg.Rectangle{
			Min: vg.Point{X: b.Offset - b.Width/2},
			Max: vg.Point{X: b.Offset + b.Width/2},
		}
	}

	for i, label := range b.Labels {
		box := &boxes[len(b.Bars)+i]
		labelRect := b.LabelStyle.Rectangle(label)
		*box = boxes[i]
		box.Min.X += b.LabelOffset.X
		box.Max.X += b.LabelOffset.X
		box.Min.Y += b.LabelOffset.Y
		box.Max.Y += b.LabelOffset.Y + labelRect.Max.Y
		box.Y = plt.Y.Norm(b.Bars[i].Y + b.HalfWidths[i])
	}
	return boxes
}

// Thumbnail fulfills the plot.Thumbnailer interface.
func (b *groupBars) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(b.Color, c.ClipPolygonY(pts))

	if b.LineStyle.Width > 0 {
		pts = append(pts, vg.Point{X: c.Min.X, Y: c.Min.Y})
		c.StrokeLines(b.LineStyle, c.ClipLinesY(pts)...)
	}
}

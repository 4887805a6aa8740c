// Package profile draws the axial section of a turned cone as a 2D chart.
package profile

import (
	"fmt"
	"image/color"
	"io"

	"Taper/internal/geometry"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Outline returns the closed section polygon: the cone lies along X from 0 to L,
// the large diameter at x = 0.
func Outline(s geometry.Solution) plotter.XYs {
	R1, R2 := s.LargeDiameter/2, s.SmallDiameter/2
	return plotter.XYs{
		{X: 0, Y: -R1},
		{X: 0, Y: R1},
		{X: s.Length, Y: R2},
		{X: s.Length, Y: -R2},
		{X: 0, Y: -R1},
	}
}

// New builds the chart for s. title is drawn above the section.
func New(s geometry.Solution, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "L (mm)"
	p.Y.Label.Text = "r (mm)"
	p.Add(plotter.NewGrid())

	section, err := plotter.NewLine(Outline(s))
	if err != nil {
		return nil, err
	}
	section.Color = color.RGBA{R: 0x46, G: 0x89, B: 0x66, A: 0xff}
	section.Width = vg.Points(2)
	p.Add(section)

	axis, err := plotter.NewLine(plotter.XYs{{X: -0.05 * s.Length, Y: 0}, {X: 1.05 * s.Length, Y: 0}})
	if err != nil {
		return nil, err
	}
	axis.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(axis)

	// keep the section undistorted
	R := s.LargeDiameter / 2
	span := max(1.1*s.Length, 2.2*R)
	p.X.Min, p.X.Max = -0.05*s.Length, -0.05*s.Length+span
	p.Y.Min, p.Y.Max = -span/2, span/2
	return p, nil
}

// WritePNG renders the chart as a side x side PNG.
func WritePNG(w io.Writer, s geometry.Solution, title string, side vg.Length) error {
	p, err := New(s, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(side, side, "png")
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

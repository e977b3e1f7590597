package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
)

// WritePlanViewPNG renders the track's XY path as a PNG: path line plus
// start and end markers, with equal axis spans so turns keep their shape.
func WritePlanViewPNG(w io.Writer, name string, track kinematics.OutputTrack) error {
	if len(track) == 0 {
		return fmt.Errorf("track is empty")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Plan View - %s", name)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	pts := make(plotter.XYs, len(track))
	minX, maxX := track[0].X, track[0].X
	minY, maxY := track[0].Y, track[0].Y
	for i, tp := range track {
		pts[i] = plotter.XY{X: tp.X, Y: tp.Y}
		if tp.X < minX {
			minX = tp.X
		}
		if tp.X > maxX {
			maxX = tp.X
		}
		if tp.Y < minY {
			minY = tp.Y
		}
		if tp.Y > maxY {
			maxY = tp.Y
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build path line: %w", err)
	}
	line.Color = color.RGBA{R: 66, G: 135, B: 245, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("path", line)

	start, err := plotter.NewScatter(plotter.XYs{{X: track[0].X, Y: track[0].Y}})
	if err != nil {
		return fmt.Errorf("failed to build start marker: %w", err)
	}
	start.GlyphStyle.Color = color.RGBA{G: 200, A: 255}
	start.GlyphStyle.Radius = vg.Points(4)
	p.Add(start)
	p.Legend.Add("start", start)

	last := track[len(track)-1]
	end, err := plotter.NewScatter(plotter.XYs{{X: last.X, Y: last.Y}})
	if err != nil {
		return fmt.Errorf("failed to build end marker: %w", err)
	}
	end.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
	end.GlyphStyle.Radius = vg.Points(4)
	p.Add(end)
	p.Legend.Add("end", end)

	p.Legend.Top = true
	p.Legend.Left = false

	// Equal axis spans centred on the path keep the geometry undistorted.
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	half := (maxX - minX) / 2
	if h := (maxY - minY) / 2; h > half {
		half = h
	}
	half *= 1.05
	if half == 0 {
		half = 1.0
	}
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

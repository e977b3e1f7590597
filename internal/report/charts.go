package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trajectory.report/internal/kinematics"
	"github.com/banshee-data/trajectory.report/internal/units"
)

// RenderCharts writes an HTML page with the trajectory scatter and the
// speed-vs-time line for a baked track.
func RenderCharts(w io.Writer, name string, track kinematics.OutputTrack, fps float64, displayUnits string) error {
	if len(track) == 0 {
		return fmt.Errorf("track is empty")
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", fps)
	}

	page := components.NewPage()
	page.AddCharts(
		trajectoryScatter(name, track),
		speedLine(name, track, fps, displayUnits),
	)
	return page.Render(w)
}

// trajectoryScatter plots the XY path with symmetric axis ranges so the
// geometry is not distorted by autoscaling.
func trajectoryScatter(name string, track kinematics.OutputTrack) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(track))
	maxAbs := 0.0
	for _, p := range track {
		if math.Abs(p.X) > maxAbs {
			maxAbs = math.Abs(p.X)
		}
		if math.Abs(p.Y) > maxAbs {
			maxAbs = math.Abs(p.Y)
		}
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Frame}})
	}

	// Small padding so points at the edges stay visible.
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectory", Subtitle: fmt.Sprintf("run=%s points=%d", name, len(data))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("trajectory", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

func speedLine(name string, track kinematics.OutputTrack, fps float64, displayUnits string) *charts.Line {
	x := make([]string, 0, len(track))
	y := make([]opts.LineData, 0, len(track))
	for _, p := range track {
		x = append(x, fmt.Sprintf("%.2f", float64(p.Frame)/fps))
		y = append(y, opts.LineData{Value: units.ConvertSpeed(p.Speed, displayUnits)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Speed", Subtitle: fmt.Sprintf("run=%s units=%s", name, displayUnits)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Speed (%s)", displayUnits), NameLocation: "middle", NameGap: 30}),
	)
	line.SetXAxis(x).AddSeries("speed", y)
	return line
}

// Package render turns provider results into chat replies.
package render

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/adityagautam-dev/aws-telegram-bot/lib/gateway"
	"github.com/adityagautam-dev/aws-telegram-bot/lib/replies"
)

const (
	chartTitle  = "CPU Utilization (%)"
	chartXLabel = "Time"
	chartYLabel = "Utilization"

	chartWidth  = 8 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// SortedPoints returns a copy of series ordered by timestamp ascending.
// The input is left untouched.
func SortedPoints(series gateway.MetricSeries) gateway.MetricSeries {
	sorted := slices.Clone(series)
	slices.SortStableFunc(sorted, func(a, b gateway.Datapoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// CPUChart renders series as a PNG line chart. An empty series yields the
// no-data text instead of an image.
func CPUChart(series gateway.MetricSeries, caption string) (replies.Reply, error) {
	if len(series) == 0 {
		return replies.Text{Body: NoDataText}, nil
	}

	png, err := encodeChart(SortedPoints(series))
	if err != nil {
		return nil, err
	}
	return replies.Image{PNG: png, Caption: caption}, nil
}

func encodeChart(sorted gateway.MetricSeries) ([]byte, error) {
	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = chartXLabel
	p.Y.Label.Text = chartYLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "15:04"}
	p.Y.Min = 0

	pts := plotter.XYs(lo.Map(sorted, func(dp gateway.Datapoint, _ int) plotter.XY {
		return plotter.XY{X: float64(dp.Timestamp.Unix()), Y: dp.Value}
	}))

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("build line: %w", err)
	}
	p.Add(plotter.NewGrid(), line, points)

	w, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("create png canvas: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

package service

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cotizador/models"
	"cotizador/utils"
)

var chartAccent = drawing.ColorFromHex("89CFF0")

// SalesChartSVG renders one bar per day as an SVG document sized width x height.
// It returns an empty string when there are no days.
func SalesChartSVG(days []models.SalesByDay, width, height int) (template.HTML, error) {
	if len(days) == 0 {
		return "", nil
	}

	hi := 0.0
	bars := make([]chart.Value, 0, len(days))
	for _, d := range days {
		amount := math.Max(0, d.Amount)
		hi = math.Max(hi, amount)
		bars = append(bars, chart.Value{
			Value: amount,
			Label: d.Date,
			Style: chart.Style{FillColor: chartAccent, StrokeColor: chartAccent, StrokeWidth: 1},
		})
	}
	if hi == 0 {
		hi = 1
	}

	slot := (width - 2*salesChartPad) / len(days)
	barWidth := max(1, slot*4/5)
	graph := chart.BarChart{
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: max(0, slot-barWidth),
		Background: chart.Style{Padding: chart.Box{Top: salesChartPad, Left: 8, Right: 8, Bottom: 8}},
		XAxis:      chart.Hidden(),
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: hi},
			ValueFormatter: chartAmount,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("failed to render sales chart: %w", err)
	}
	// The SVG is generated from numbers and formatted amounts only
	return template.HTML(buf.String()), nil
}

func chartAmount(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return "$" + utils.FormatMXN(&f)
}

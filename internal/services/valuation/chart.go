package valuation

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/MarcosLaine/Controle-se-sub003/internal/models"
)

// RenderSeriesChart renders a PNG line chart of a valuation series.
// Two lines: Current Value (blue solid) and Invested (gray dashed).
// Returns raw PNG bytes.
func RenderSeriesChart(series *models.ValuationSeries) ([]byte, error) {
	if series.Points < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", series.Points)
	}

	xValues := make([]float64, series.Points)
	for i := range xValues {
		xValues[i] = float64(i)
	}

	currentSeries := chart.ContinuousSeries{
		Name: "Current Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: series.Current,
	}

	investedSeries := chart.ContinuousSeries{
		Name: "Invested",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: series.Invested,
	}

	labels := series.Labels
	graph := chart.Chart{
		Title:  "Portfolio Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					idx := int(f)
					if idx >= 0 && idx < len(labels) {
						return labels[idx]
					}
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			currentSeries,
			investedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

package market

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Ranjith-H7/backend/internal/models"
)

// RenderHistoryChart renders an asset's price history as a PNG line chart.
// Returns raw PNG bytes.
func RenderHistoryChart(asset *models.Asset) ([]byte, error) {
	points := asset.PriceHistory
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 history points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Timestamp
		yValues[i] = p.Price
	}

	priceSeries := chart.TimeSeries{
		Name: asset.Name,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: yValues,
	}

	referenceSeries := chart.TimeSeries{
		Name: "Reference",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: []time.Time{xValues[0], xValues[len(xValues)-1]},
		YValues: []float64{asset.ReferencePrice, asset.ReferencePrice},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Price History", asset.Name),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02 Jan 15:04"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{priceSeries, referenceSeries},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/gripinvest/internal/models"
)

// RenderPerformanceChart renders a PNG line chart of a performance series.
// Two series: Portfolio Value (blue solid) and Contributions (gray dashed).
// Returns raw PNG bytes.
func RenderPerformanceChart(points []models.PerformancePoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	valueY := make([]float64, len(points))
	contribY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = p.Month
		valueY[i] = p.Value.InexactFloat64()
		contribY[i] = p.Contributions.InexactFloat64()
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	contribSeries := chart.TimeSeries{
		Name: "Contributions",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: contribY,
	}

	graph := chart.Chart{
		Title:  "Portfolio Performance",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			contribSeries,
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

// GetPerformanceChart values the portfolio and renders its 1Y series.
func (s *Service) GetPerformanceChart(ctx context.Context, userID string) ([]byte, error) {
	snapshot, err := s.GetPortfolioDetails(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RenderPerformanceChart(snapshot.PerformanceData.OneYear)
}

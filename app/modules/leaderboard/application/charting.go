package leaderboardservice

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// ChartPalette holds the colours used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	TextColor  drawing.Color
}

// DefaultChartPalette is a dark background with gold bars.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorFromHex("1b2421"),
	Bar:        drawing.ColorFromHex("d4a72c"),
	TextColor:  drawing.ColorFromHex("e8e6e3"),
}

// RenderWeeklyChart renders the week's points per player as a PNG bar chart.
func (s *LeaderboardService) RenderWeeklyChart(ctx context.Context, roomCode string, week time.Time) ([]byte, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "RenderWeeklyChart", roomCode, func(ctx context.Context) ([]byte, error) {
		weekStart := leaderboarddomain.WeekStart(week)
		entries, err := s.weeklyLeaderboard(ctx, roomCode, weekStart)
		if err != nil {
			return nil, err
		}
		title := fmt.Sprintf("%s week of %s", roomCode, weekStart.Format(statisticsdomain.DateLayout))
		return GenerateWeeklyPointsChart(title, entries, DefaultChartPalette)
	})
}

// GenerateWeeklyPointsChart produces a PNG bar chart of ranked weekly points.
func GenerateWeeklyPointsChart(title string, entries []RankedEntry, palette ChartPalette) ([]byte, error) {
	total := 0
	for _, e := range entries {
		total += e.WeeklyPoints
	}
	// go-chart cannot scale a bar chart whose values are all zero.
	if len(entries) == 0 || total == 0 {
		return renderNoDataPlaceholder("No points awarded this week", palette)
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		bars[i] = chart.Value{
			Label: e.PlayerID,
			Value: float64(e.WeeklyPoints),
			Style: chart.Style{
				FillColor:   palette.Bar,
				StrokeColor: palette.Bar,
			},
		}
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: palette.TextColor},
		Width:      800,
		Height:     400,
		BarWidth:   40,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
		},
		YAxis: chart.YAxis{
			Name: "Points",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string, palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		// Render refuses a chart without series.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

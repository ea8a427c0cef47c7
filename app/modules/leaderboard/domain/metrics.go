package leaderboarddomain

import (
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// Metric names a scored daily statistic.
type Metric string

const (
	MetricBestSingle Metric = "best_single"
	MetricMeanOf5    Metric = "mean_of5"
	MetricMeanOf12   Metric = "mean_of12"
)

// Metrics lists the scored metrics in reporting order.
var Metrics = []Metric{MetricBestSingle, MetricMeanOf5, MetricMeanOf12}

// Label is the human readable metric name used in charts and exports.
func (m Metric) Label() string {
	switch m {
	case MetricBestSingle:
		return "Best single"
	case MetricMeanOf5:
		return "Mean of 5"
	case MetricMeanOf12:
		return "Mean of 12"
	default:
		return string(m)
	}
}

// StatRow is the scorer's view of one DailyStatistics row.
type StatRow struct {
	PlayerID   string
	BestSingle statisticsdomain.Result
	MeanOf5    statisticsdomain.Result
	MeanOf12   statisticsdomain.Result
}

// Value returns the row's value for metric m.
func (r StatRow) Value(m Metric) statisticsdomain.Result {
	switch m {
	case MetricBestSingle:
		return r.BestSingle
	case MetricMeanOf5:
		return r.MeanOf5
	case MetricMeanOf12:
		return r.MeanOf12
	default:
		return statisticsdomain.Absent()
	}
}

// PointTable holds the points awarded for winning each metric.
type PointTable struct {
	BestSingle int `json:"best_single" yaml:"best_single_points"`
	MeanOf5    int `json:"mean_of5" yaml:"mean_of5_points"`
	MeanOf12   int `json:"mean_of12" yaml:"mean_of12_points"`
}

// DefaultPointTable returns 4 points for best single and 3 for each mean.
func DefaultPointTable() PointTable {
	return PointTable{BestSingle: 4, MeanOf5: 3, MeanOf12: 3}
}

// For returns the points for winning metric m.
func (p PointTable) For(m Metric) int {
	switch m {
	case MetricBestSingle:
		return p.BestSingle
	case MetricMeanOf5:
		return p.MeanOf5
	case MetricMeanOf12:
		return p.MeanOf12
	default:
		return 0
	}
}

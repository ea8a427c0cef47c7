package leaderboarddomain

import (
	"cmp"
	"slices"
)

// MetricBest is the best value of one metric in a room for a week.
type MetricBest struct {
	Seconds  float64 `json:"seconds"`
	PlayerID string  `json:"player_id"`
}

// WeeklyBest holds the room-wide best per metric. A nil field means nothing
// has been recorded for that metric this week.
type WeeklyBest struct {
	BestSingle *MetricBest `json:"best_single"`
	MeanOf5    *MetricBest `json:"mean_of5"`
	MeanOf12   *MetricBest `json:"mean_of12"`
}

// Get returns the stored best for metric m.
func (w WeeklyBest) Get(m Metric) *MetricBest {
	switch m {
	case MetricBestSingle:
		return w.BestSingle
	case MetricMeanOf5:
		return w.MeanOf5
	case MetricMeanOf12:
		return w.MeanOf12
	default:
		return nil
	}
}

func (w *WeeklyBest) set(m Metric, b *MetricBest) {
	switch m {
	case MetricBestSingle:
		w.BestSingle = b
	case MetricMeanOf5:
		w.MeanOf5 = b
	case MetricMeanOf12:
		w.MeanOf12 = b
	}
}

// IsEmpty reports whether no metric has a value.
func (w WeeklyBest) IsEmpty() bool {
	return w.BestSingle == nil && w.MeanOf5 == nil && w.MeanOf12 == nil
}

// BestChange describes a metric whose weekly best was replaced.
type BestChange struct {
	Metric   Metric      `json:"metric"`
	Current  MetricBest  `json:"current"`
	Previous *MetricBest `json:"previous,omitempty"`
}

// MergeWeeklyBest folds candidates into current. A metric is replaced only by
// a time strictly lower than the stored one, or when nothing is stored.
// Candidates are visited in player id order so the outcome does not depend on
// input order; an equal time never displaces the existing owner.
func MergeWeeklyBest(current WeeklyBest, candidates []StatRow) (WeeklyBest, []BestChange) {
	sorted := slices.Clone(candidates)
	slices.SortFunc(sorted, func(a, b StatRow) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	merged := current
	var changes []BestChange
	for _, metric := range Metrics {
		previous := current.Get(metric)
		best := previous
		for _, c := range sorted {
			seconds, ok := c.Value(metric).Seconds()
			if !ok {
				continue
			}
			if best == nil || seconds < best.Seconds {
				best = &MetricBest{Seconds: seconds, PlayerID: c.PlayerID}
			}
		}
		if best == previous {
			continue
		}
		merged.set(metric, best)
		change := BestChange{Metric: metric, Current: *best}
		if previous != nil {
			prev := *previous
			change.Previous = &prev
		}
		changes = append(changes, change)
	}
	return merged, changes
}

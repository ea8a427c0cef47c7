package leaderboarddomain

import (
	"cmp"
	"fmt"
	"slices"
)

// MetricWinner records who won a metric and with which value.
type MetricWinner struct {
	Metric   Metric  `json:"metric"`
	PlayerID string  `json:"player_id"`
	Seconds  float64 `json:"seconds"`
	Points   int     `json:"points"`
}

// InvalidMetricValue flags a row excluded from one metric because its stored
// value is neither a time, a fault nor empty.
type InvalidMetricValue struct {
	PlayerID string `json:"player_id"`
	Metric   Metric `json:"metric"`
	Raw      string `json:"raw"`
}

func (e InvalidMetricValue) Error() string {
	return fmt.Sprintf("invalid %s value %q for player %s", e.Metric, e.Raw, e.PlayerID)
}

// ScoreResult is the outcome of scoring one room for one day.
type ScoreResult struct {
	// Awards holds every input player, with zero for players who won nothing.
	Awards   map[string]int
	Winners  []MetricWinner
	Warnings []InvalidMetricValue
}

// TotalPoints sums the awarded points.
func (s ScoreResult) TotalPoints() int {
	total := 0
	for _, p := range s.Awards {
		total += p
	}
	return total
}

// ScoreRoom picks the winner of each metric among one room's rows for one day.
//
// Only times compete; absent, fault and invalid values never win. The lowest
// time wins and equal times go to the lexicographically smallest player id.
func ScoreRoom(rows []StatRow, table PointTable) ScoreResult {
	result := ScoreResult{Awards: make(map[string]int, len(rows))}
	if len(rows) == 0 {
		return result
	}

	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b StatRow) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	for _, row := range sorted {
		result.Awards[row.PlayerID] = 0
	}

	for _, metric := range Metrics {
		var (
			winner string
			best   float64
			found  bool
		)
		for _, row := range sorted {
			value := row.Value(metric)
			if value.IsInvalid() {
				result.Warnings = append(result.Warnings, InvalidMetricValue{
					PlayerID: row.PlayerID,
					Metric:   metric,
					Raw:      value.Raw(),
				})
				continue
			}
			seconds, ok := value.Seconds()
			if !ok {
				continue
			}
			// Strictly lower only: rows are in player order so ties keep the first.
			if !found || seconds < best {
				winner, best, found = row.PlayerID, seconds, true
			}
		}
		if !found {
			continue
		}
		points := table.For(metric)
		result.Awards[winner] += points
		result.Winners = append(result.Winners, MetricWinner{
			Metric:   metric,
			PlayerID: winner,
			Seconds:  best,
			Points:   points,
		})
	}

	return result
}

// PlayerAward is one entry of a sorted award list.
type PlayerAward struct {
	PlayerID string `json:"player_id"`
	Points   int    `json:"points"`
}

// SortedAwards returns awards ordered by points descending, then player id.
func SortedAwards(awards map[string]int) []PlayerAward {
	out := make([]PlayerAward, 0, len(awards))
	for player, points := range awards {
		out = append(out, PlayerAward{PlayerID: player, Points: points})
	}
	slices.SortFunc(out, func(a, b PlayerAward) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	return out
}

// CompetitionRanks assigns 1-based ranks to scores already sorted best first.
// Equal scores share a rank and the next distinct score skips ahead.
func CompetitionRanks(scores []int) []int {
	ranks := make([]int, len(scores))
	for i, s := range scores {
		if i > 0 && s == scores[i-1] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}
	return ranks
}

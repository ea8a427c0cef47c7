package leaderboarddomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeProcessingHash generates a deterministic hash of one room's rows for a day.
// A stored hash that matches means the day was already scored with the same data;
// a different hash means the rows were corrected and the day must be recalculated.
func ComputeProcessingHash(rows []StatRow) string {
	sorted := make([]StatRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	var sb strings.Builder
	for _, row := range sorted {
		fmt.Fprintf(&sb, "%s|%s|%s|%s;", row.PlayerID, row.BestSingle, row.MeanOf5, row.MeanOf12)
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}

package leaderboardservice

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	leaderboarddomain "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/domain"
)

// Sheet names of the weekly workbook.
const (
	SheetLeaderboard = "Leaderboard"
	SheetWeeklyBest  = "Weekly Best"
	SheetPlayers     = "Players"
)

// ExportWeekly renders the week's overview as an XLSX workbook.
func (s *LeaderboardService) ExportWeekly(ctx context.Context, roomCode string, week time.Time) ([]byte, error) {
	roomCode = normalizeRoom(roomCode)
	return withTelemetry(s, ctx, "ExportWeekly", roomCode, func(ctx context.Context) ([]byte, error) {
		overview, err := s.weeklyOverview(ctx, roomCode, leaderboarddomain.WeekStart(week))
		if err != nil {
			return nil, err
		}
		return BuildWeeklyWorkbook(overview)
	})
}

// BuildWeeklyWorkbook writes an overview into a three-sheet workbook.
func BuildWeeklyWorkbook(overview *WeeklyOverview) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLeaderboard); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetWeeklyBest, SheetPlayers} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	leaderboardRows := [][]any{{"Rank", "Player", "Weekly Points"}}
	for _, e := range overview.Entries {
		leaderboardRows = append(leaderboardRows, []any{e.Rank, e.PlayerID, e.WeeklyPoints})
	}

	bestRows := [][]any{{"Metric", "Seconds", "Player"}}
	for _, m := range leaderboarddomain.Metrics {
		row := []any{m.Label(), "", ""}
		if overview.Best != nil {
			if b := overview.Best.Get(m); b != nil {
				row = []any{m.Label(), b.Seconds, b.PlayerID}
			}
		}
		bestRows = append(bestRows, row)
	}

	playerRows := [][]any{{"Player", "Days Played", "Weekly Points", "Best Single", "Mean of 5", "Mean of 12"}}
	for _, p := range overview.Players {
		playerRows = append(playerRows, []any{
			p.PlayerID,
			p.DaysPlayed,
			p.WeeklyPoints,
			p.BestSingle.String(),
			p.MeanOf5.String(),
			p.MeanOf12.String(),
		})
	}

	for sheet, rows := range map[string][][]any{
		SheetLeaderboard: leaderboardRows,
		SheetWeeklyBest:  bestRows,
		SheetPlayers:     playerRows,
	} {
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

package statisticsservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
	statisticsdb "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-rooms/app/observability"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func newTestService(repo statisticsdb.Repository, policy statisticsdomain.FaultPolicy) *StatisticsService {
	return NewStatisticsService(repo, slog.New(slog.DiscardHandler), observability.NoopMetrics{}, nil, nil, policy)
}

func session(values ...any) []statisticsdomain.Attempt {
	out := make([]statisticsdomain.Attempt, len(values))
	for i, v := range values {
		r := statisticsdomain.Fault()
		if f, ok := v.(float64); ok {
			r = statisticsdomain.Time(f)
		}
		out[i] = statisticsdomain.Attempt{Result: r, Sequence: i, Timestamp: day.Add(time.Duration(i+60) * time.Minute)}
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestRecordSession(t *testing.T) {
	tests := []struct {
		name     string
		cmd      RecordSessionCommand
		policy   statisticsdomain.FaultPolicy
		wantErr  error
		wantBest string
		wantMo5  string
	}{
		{
			name: "computes trimmed mean and best single",
			cmd: RecordSessionCommand{
				RoomCode: " ab12cd ", PlayerID: "alice",
				Attempts: session(10.00, 12.00, 11.00, 13.50, 9.50),
			},
			wantBest: "9.50",
			wantMo5:  "11.00",
		},
		{
			name: "lenient policy tolerates one fault",
			cmd: RecordSessionCommand{
				RoomCode: "AB12CD", PlayerID: "bob", Day: day,
				Attempts: session(10.0, "DNF", 11.0, 12.0, 9.0),
			},
			policy:   statisticsdomain.FaultPolicyLenient,
			wantBest: "9.00",
			wantMo5:  "11.00",
		},
		{
			name: "strict policy reports DNF",
			cmd: RecordSessionCommand{
				RoomCode: "AB12CD", PlayerID: "bob", Day: day,
				Attempts: session(10.0, "DNF", 11.0, 12.0, 9.0),
			},
			policy:   statisticsdomain.FaultPolicyStrict,
			wantBest: "9.00",
			wantMo5:  "DNF",
		},
		{
			name:    "missing player",
			cmd:     RecordSessionCommand{RoomCode: "AB12CD", Attempts: session(10.0)},
			wantErr: ErrMissingIdentity,
		},
		{
			name: "negative attempt rejected",
			cmd: RecordSessionCommand{
				RoomCode: "AB12CD", PlayerID: "carol",
				Attempts: []statisticsdomain.Attempt{{Result: statisticsdomain.Time(-3), Timestamp: day}},
			},
			wantErr: statisticsdomain.ErrInvalidAttempt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeStatisticsRepo()
			svc := newTestService(repo, tt.policy)

			got, err := svc.RecordSession(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotContains(t, repo.Trace(), "UpsertDailyStatistics")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "AB12CD", got.RoomCode)
			assert.Equal(t, "2024-03-04", got.Day)
			assert.Equal(t, tt.wantBest, got.BestSingle.String())
			assert.Equal(t, tt.wantMo5, got.MeanOf5.String())
			assert.True(t, got.MeanOf12.IsAbsent())
			assert.Equal(t, []string{"UpsertDailyStatistics", "GetDailyStatistics"}, repo.Trace())
		})
	}
}

func TestUpdateStatistics(t *testing.T) {
	tests := []struct {
		name    string
		cmd     UpdateStatisticsCommand
		wantErr error
	}{
		{
			name: "valid values",
			cmd: UpdateStatisticsCommand{
				RoomCode: "ab12cd", PlayerID: "alice", Day: day.Add(15 * time.Hour),
				BestSingle: strPtr("8.11"), MeanOf5: strPtr("11"), MeanOf12: strPtr("DNF"),
			},
		},
		{
			name:    "non numeric rejected",
			cmd:     UpdateStatisticsCommand{RoomCode: "AB12CD", PlayerID: "alice", Day: day, MeanOf5: strPtr("fast")},
			wantErr: ErrInvalidStatistics,
		},
		{
			name:    "NaN rejected",
			cmd:     UpdateStatisticsCommand{RoomCode: "AB12CD", PlayerID: "alice", Day: day, BestSingle: strPtr("NaN")},
			wantErr: ErrInvalidStatistics,
		},
		{
			name:    "best single cannot be a fault",
			cmd:     UpdateStatisticsCommand{RoomCode: "AB12CD", PlayerID: "alice", Day: day, BestSingle: strPtr("DNF")},
			wantErr: ErrInvalidStatistics,
		},
		{
			name:    "room required",
			cmd:     UpdateStatisticsCommand{PlayerID: "alice"},
			wantErr: ErrMissingIdentity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeStatisticsRepo()
			svc := newTestService(repo, "")

			got, err := svc.UpdateStatistics(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "AB12CD", got.RoomCode)
			assert.Equal(t, "2024-03-04", got.Day)
			assert.Equal(t, "8.11", got.BestSingle.String())
			assert.Equal(t, "11.00", got.MeanOf5.String())
			assert.True(t, got.MeanOf12.IsFault())
		})
	}
}

func TestUpdateStatisticsKeepsDailyPoints(t *testing.T) {
	repo := NewFakeStatisticsRepo()
	repo.rows[rowKey("AB12CD", "alice", day)] = &statisticsdb.DailyStatistics{
		RoomCode: "AB12CD", PlayerID: "alice", Day: day, DailyPoints: 4,
	}
	svc := newTestService(repo, "")

	got, err := svc.UpdateStatistics(context.Background(), UpdateStatisticsCommand{
		RoomCode: "AB12CD", PlayerID: "alice", Day: day, BestSingle: strPtr("7.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, got.DailyPoints)
}

func TestRecordSessionStoreFailure(t *testing.T) {
	repo := NewFakeStatisticsRepo()
	repo.UpsertDailyStatisticsFunc = func(ctx context.Context, db bun.IDB, stats *statisticsdb.DailyStatistics) error {
		return errors.New("connection reset")
	}
	svc := newTestService(repo, "")

	_, err := svc.RecordSession(context.Background(), RecordSessionCommand{
		RoomCode: "AB12CD", PlayerID: "alice", Attempts: session(10.0),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RecordSession")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetDailyStatisticsNotFound(t *testing.T) {
	svc := newTestService(NewFakeStatisticsRepo(), "")

	_, err := svc.GetDailyStatistics(context.Background(), "AB12CD", "nobody", day)
	assert.ErrorIs(t, err, statisticsdb.ErrNotFound)
}

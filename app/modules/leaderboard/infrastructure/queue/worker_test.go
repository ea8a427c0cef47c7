package leaderboardqueue

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leaderboardservice "github.com/Black-And-White-Club/cube-rooms/app/modules/leaderboard/application"
)

type fakeUpdater struct {
	calls []time.Time
	opts  int
	fn    func(day time.Time) (*leaderboardservice.Report, error)
}

func (f *fakeUpdater) RunDailyUpdate(ctx context.Context, day time.Time, opts ...leaderboardservice.RunOption) (*leaderboardservice.Report, error) {
	f.calls = append(f.calls, day)
	f.opts = len(opts)
	return f.fn(day)
}

func newJob(args DailyUpdateJob) *river.Job[DailyUpdateJob] {
	return &river.Job[DailyUpdateJob]{
		JobRow: &rivertype.JobRow{ID: 42, Attempt: 1, Kind: args.Kind()},
		Args:   args,
	}
}

func isCancel(err error) bool {
	var cancel *rivertype.JobCancelError
	return errors.As(err, &cancel)
}

func TestDailyUpdateWorker(t *testing.T) {
	day := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)
	storeErr := errors.New("connection refused")

	tests := []struct {
		name       string
		args       DailyUpdateJob
		fn         func(day time.Time) (*leaderboardservice.Report, error)
		wantErr    bool
		wantCancel bool
		wantCalls  int
		wantOpts   int
	}{
		{
			name: "all rooms applied",
			args: DailyUpdateJob{Day: "2024-03-06"},
			fn: func(time.Time) (*leaderboardservice.Report, error) {
				return &leaderboardservice.Report{Rooms: []leaderboardservice.RoomReport{
					{RoomCode: "AB12CD", Status: leaderboardservice.RoomStatusApplied},
				}}, nil
			},
			wantCalls: 1,
		},
		{
			name: "room restricted job passes the room option",
			args: DailyUpdateJob{Day: "2024-03-06", RoomCode: "AB12CD"},
			fn: func(time.Time) (*leaderboardservice.Report, error) {
				return &leaderboardservice.Report{}, nil
			},
			wantCalls: 1,
			wantOpts:  1,
		},
		{
			name: "failed room fails the attempt for retry",
			args: DailyUpdateJob{Day: "2024-03-06"},
			fn: func(time.Time) (*leaderboardservice.Report, error) {
				return &leaderboardservice.Report{Rooms: []leaderboardservice.RoomReport{
					{RoomCode: "R1", Status: leaderboardservice.RoomStatusApplied},
					{
						RoomCode: "R2",
						Status:   leaderboardservice.RoomStatusFailed,
						Err:      &leaderboardservice.StoreWriteFailure{RoomCode: "R2", Err: storeErr},
					},
				}}, nil
			},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "missing statistics cancel the job",
			args: DailyUpdateJob{Day: "2024-03-06"},
			fn: func(time.Time) (*leaderboardservice.Report, error) {
				return nil, leaderboardservice.ErrDataUnavailable
			},
			wantErr:    true,
			wantCancel: true,
			wantCalls:  1,
		},
		{
			name:       "invalid day cancels without running",
			args:       DailyUpdateJob{Day: "06/03/2024"},
			wantErr:    true,
			wantCancel: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater := &fakeUpdater{fn: tt.fn}
			worker := NewDailyUpdateWorker(slog.New(slog.DiscardHandler), updater)

			err := worker.Work(context.Background(), newJob(tt.args))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCancel, isCancel(err))
			require.Len(t, updater.calls, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, day, updater.calls[0])
			}
			assert.Equal(t, tt.wantOpts, updater.opts)
		})
	}
}

func TestDailyUpdateWorkerWrapsRoomFailures(t *testing.T) {
	storeErr := errors.New("deadlock detected")
	updater := &fakeUpdater{fn: func(time.Time) (*leaderboardservice.Report, error) {
		return &leaderboardservice.Report{Rooms: []leaderboardservice.RoomReport{{
			RoomCode: "R2",
			Status:   leaderboardservice.RoomStatusFailed,
			Err:      &leaderboardservice.StoreWriteFailure{RoomCode: "R2", Err: storeErr},
		}}}, nil
	}}
	worker := NewDailyUpdateWorker(slog.New(slog.DiscardHandler), updater)

	err := worker.Work(context.Background(), newJob(DailyUpdateJob{Day: "2024-03-06"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "1 of 1 rooms failed")
}

func TestDailyUpdateJobKind(t *testing.T) {
	assert.Equal(t, "leaderboard_daily_update", DailyUpdateJob{}.Kind())
}

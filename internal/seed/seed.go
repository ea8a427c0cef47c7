// Package seed generates realistic solve sessions for local development.
package seed

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	statisticsservice "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/application"
	statisticsdomain "github.com/Black-And-White-Club/cube-rooms/app/modules/statistics/domain"
)

// Options sizes the generated data set.
type Options struct {
	Rooms     int
	Players   int // per room
	Days      int
	Attempts  int // per session
	FaultRate float64
	// PlayRate is the chance a player records a session on a given day.
	PlayRate float64
	// Start is the first day generated.
	Start time.Time
	Seed  uint64
}

// DefaultOptions generates a week of twelve-solve sessions ending yesterday.
func DefaultOptions(now time.Time) Options {
	return Options{
		Rooms:     3,
		Players:   6,
		Days:      7,
		Attempts:  12,
		FaultRate: 0.05,
		PlayRate:  0.8,
		Start:     statisticsdomain.DayStart(now).AddDate(0, 0, -7),
		Seed:      uint64(now.UnixNano()),
	}
}

// SessionRecorder is the slice of the statistics service the loader needs.
type SessionRecorder interface {
	RecordSession(ctx context.Context, cmd statisticsservice.RecordSessionCommand) (*statisticsservice.DailyStatisticsView, error)
}

type player struct {
	id    string
	skill float64 // typical solve in seconds
}

// Generator produces deterministic sessions for a seed.
type Generator struct {
	faker *gofakeit.Faker
	opts  Options
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	return &Generator{faker: gofakeit.New(opts.Seed), opts: opts}
}

// Sessions returns one command per (room, player, day) that was played.
func (g *Generator) Sessions() []statisticsservice.RecordSessionCommand {
	var out []statisticsservice.RecordSessionCommand
	start := statisticsdomain.DayStart(g.opts.Start)

	for _, room := range g.roomCodes() {
		players := g.players()
		for d := 0; d < g.opts.Days; d++ {
			day := start.AddDate(0, 0, d)
			for _, p := range players {
				if g.faker.Float64Range(0, 1) >= g.opts.PlayRate {
					continue
				}
				out = append(out, statisticsservice.RecordSessionCommand{
					RoomCode: room,
					PlayerID: p.id,
					Day:      day,
					Attempts: g.attempts(p, day),
				})
			}
		}
	}
	return out
}

func (g *Generator) roomCodes() []string {
	seen := make(map[string]bool, g.opts.Rooms)
	codes := make([]string, 0, g.opts.Rooms)
	for len(codes) < g.opts.Rooms {
		code := g.faker.Regex("[A-Z]{2}[0-9]{2}[A-Z]{2}")
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

func (g *Generator) players() []player {
	seen := make(map[string]bool, g.opts.Players)
	players := make([]player, 0, g.opts.Players)
	for len(players) < g.opts.Players {
		id := g.faker.Username()
		if seen[id] {
			continue
		}
		seen[id] = true
		players = append(players, player{id: id, skill: g.faker.Float64Range(7, 25)})
	}
	return players
}

func (g *Generator) attempts(p player, day time.Time) []statisticsdomain.Attempt {
	attempts := make([]statisticsdomain.Attempt, g.opts.Attempts)
	ts := day.Add(time.Duration(g.faker.IntRange(8, 20)) * time.Hour)
	for i := range attempts {
		result := statisticsdomain.Fault()
		if g.faker.Float64Range(0, 1) >= g.opts.FaultRate {
			v := p.skill + g.faker.Float64Range(-0.2*p.skill, 0.35*p.skill)
			result = statisticsdomain.Time(math.Round(v*100) / 100)
		}
		ts = ts.Add(time.Duration(g.faker.IntRange(30, 180)) * time.Second)
		attempts[i] = statisticsdomain.Attempt{Result: result, Sequence: i, Timestamp: ts}
	}
	return attempts
}

// Load records every session and returns how many were stored.
func Load(ctx context.Context, svc SessionRecorder, sessions []statisticsservice.RecordSessionCommand) (int, error) {
	for i, cmd := range sessions {
		if _, err := svc.RecordSession(ctx, cmd); err != nil {
			return i, fmt.Errorf("failed to record session for %s/%s: %w", cmd.RoomCode, cmd.PlayerID, err)
		}
	}
	return len(sessions), nil
}

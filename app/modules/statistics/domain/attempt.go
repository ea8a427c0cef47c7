package statisticsdomain

import (
	"fmt"
	"math"
	"time"
)

// Attempt is one timed solve within a (room, player, day) session.
type Attempt struct {
	Result    Result    `json:"result"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateAttempts rejects attempts aggregation cannot handle: absent or
// invalid values, negative or non-finite durations, and missing timestamps.
func ValidateAttempts(attempts []Attempt) error {
	for i, a := range attempts {
		switch a.Result.Kind() {
		case KindFault:
		case KindTime:
			v, _ := a.Result.Seconds()
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: attempt %d has duration %v", ErrInvalidAttempt, i, v)
			}
		default:
			return fmt.Errorf("%w: attempt %d has %s value", ErrInvalidAttempt, i, a.Result.Kind())
		}
		if a.Timestamp.IsZero() {
			return fmt.Errorf("%w: attempt %d has no timestamp", ErrInvalidAttempt, i)
		}
	}
	return nil
}

package leaderboardservice

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable is returned when no statistics exist for the requested day.
// It is the only error that aborts a daily update.
var ErrDataUnavailable = errors.New("no statistics available for the requested day")

// StoreWriteFailure records a store error that stopped one room's update.
// The room's transaction was rolled back; other rooms are unaffected.
type StoreWriteFailure struct {
	RoomCode string
	Err      error
}

func (e *StoreWriteFailure) Error() string {
	return fmt.Sprintf("room %s: store write failed: %v", e.RoomCode, e.Err)
}

func (e *StoreWriteFailure) Unwrap() error { return e.Err }

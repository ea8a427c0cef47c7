package statisticsservice

import "errors"

var (
	// ErrInvalidStatistics is returned when client reported metrics fail validation.
	ErrInvalidStatistics = errors.New("invalid statistics")
	// ErrMissingIdentity is returned when the room code or player id is empty.
	ErrMissingIdentity = errors.New("room code and player id are required")
)

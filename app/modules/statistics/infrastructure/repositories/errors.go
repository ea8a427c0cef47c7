package statisticsdb

import "errors"

var (
	// ErrNotFound indicates the requested statistics row does not exist.
	ErrNotFound = errors.New("statistics not found")
)

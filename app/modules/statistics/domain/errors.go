package statisticsdomain

import "errors"

var (
	// ErrInvalidValue is returned when a metric value is neither a time, a fault nor empty.
	ErrInvalidValue = errors.New("invalid metric value")
	// ErrInvalidAttempt is returned when an attempt fails ingestion validation.
	ErrInvalidAttempt = errors.New("invalid attempt")
	// ErrInvalidFaultPolicy is returned for an unknown fault policy name.
	ErrInvalidFaultPolicy = errors.New("invalid fault policy")
)

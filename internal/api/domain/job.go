package domain

import (
	"errors"
)

// Job status values as stored and exposed by the API. pending is set at
// creation; the worker owns every later transition.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

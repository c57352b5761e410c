package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEvent is returned when a stream entry is missing required
	// job-event fields. Such entries are dropped, not retried, to avoid
	// poison-message loops.
	ErrMalformedEvent = errors.New("malformed job event")

	// ErrJobNotFound is returned when the job record for an event does not
	// exist (typically deleted by the user before processing started)
	ErrJobNotFound = errors.New("job record not found")

	// ErrMaxDeliveries is returned when an entry has been delivered more
	// times than the configured cap and is moved to the dead-letter stream
	ErrMaxDeliveries = errors.New("max deliveries exceeded")
)

// TransientStoreError wraps a record-store failure (network, throttling)
// that should leave the stream entry pending for redelivery
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

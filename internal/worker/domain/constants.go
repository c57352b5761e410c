package domain

// Job status constants. pending is written by the producer; every later
// transition belongs to the worker.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

package domain

// JobEvent is the message the producer places on the stream. It is minimal
// by design; everything else about the job is looked up or derived by the
// pipeline.
type JobEvent struct {
	ID     string
	UserID string
	URL    string
}

// Stream field names for a job event
const (
	EventFieldID     = "id"
	EventFieldUserID = "userId"
	EventFieldURL    = "url"
)

// EventFromValues validates and decodes the raw stream fields of one entry.
// Any missing required field makes the whole event malformed; there is one
// typed outcome instead of scattered presence checks.
func EventFromValues(values map[string]string) (*JobEvent, error) {
	event := &JobEvent{
		ID:     values[EventFieldID],
		UserID: values[EventFieldUserID],
		URL:    values[EventFieldURL],
	}

	if event.ID == "" || event.UserID == "" || event.URL == "" {
		return nil, ErrMalformedEvent
	}

	return event, nil
}

// Values renders the event back into stream fields, used when forwarding an
// entry to the dead-letter stream
func (e *JobEvent) Values() map[string]any {
	return map[string]any{
		EventFieldID:     e.ID,
		EventFieldUserID: e.UserID,
		EventFieldURL:    e.URL,
	}
}

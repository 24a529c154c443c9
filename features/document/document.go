package document

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a submitted URL.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// transitions encodes the lifecycle state machine. processing -> processing
// is allowed on purpose: duplicate jobs for one URL are a legal queue state,
// and resubmitting a URL stuck in processing (worker died mid-job) is the
// operator's recovery path.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusProcessing, StatusCompleted, StatusFailed},
	StatusCompleted:  {StatusProcessing},
	StatusFailed:     {StatusProcessing},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Document tracks one URL through the ingestion lifecycle. Exactly one row
// exists per distinct URL; resubmission reuses it.
type Document struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ErrorMessage *string   `json:"errorMessage,omitempty"`
	ChunksCount  int       `json:"chunksCount"`
}

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidURL        = errors.New("invalid url")
	ErrQueueUnavailable  = errors.New("queue service is not available")
	ErrIllegalTransition = errors.New("illegal status transition")
)

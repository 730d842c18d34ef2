package transaction

import (
	"time"

	"github.com/corebank/corebank/internal/apperror"
)

// Suspended has no outgoing edges: a suspended transaction stays parked
// until an operator intervenes out of band.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusSuspended},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled, StatusSuspended},
	StatusCompleted:  {StatusReversed},
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Updatable reports whether input fields may still change in status s.
func (s Status) Updatable() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSuspended:
		return true
	}
	return false
}

// Transition moves the transaction to next and stamps the matching
// timestamp.
func (t *Transaction) Transition(next Status, at time.Time) error {
	if !next.Valid() {
		return apperror.Validation("status", "unknown status %q", next)
	}
	if !t.Status.CanTransition(next) {
		return apperror.InvalidTransition("status", t.Status, next)
	}
	switch next {
	case StatusProcessing:
		t.ProcessedAt = timestamp(at)
	case StatusCompleted:
		if t.ProcessedAt == nil {
			t.ProcessedAt = timestamp(at)
		}
		t.CompletedAt = timestamp(at)
	case StatusReversed:
		t.ReversedAt = timestamp(at)
	}
	t.Status = next
	t.UpdatedAt = at
	return nil
}

func timestamp(at time.Time) *time.Time { return &at }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

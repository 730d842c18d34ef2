package cryptowallet

import (
	"time"

	"github.com/corebank/corebank/internal/apperror"
)

var statusTransitions = map[Status][]Status{
	StatusActive:    {StatusSuspended, StatusLocked, StatusArchived},
	StatusSuspended: {StatusActive, StatusLocked, StatusArchived},
	StatusLocked:    {StatusActive, StatusSuspended},
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ChangeStatus moves the wallet to next. Archiving requires an empty wallet.
func (w *Wallet) ChangeStatus(next Status, at time.Time) error {
	if !next.Valid() {
		return apperror.Validation("status", "must be one of active, suspended, locked, archived")
	}
	if !w.Status.CanTransition(next) {
		return apperror.InvalidTransition("status", w.Status, next)
	}
	if next == StatusArchived && !w.Balance.IsZero() {
		return apperror.Validation("balance", "must be zero to archive the wallet")
	}
	w.Status = next
	w.UpdatedAt = at
	return nil
}

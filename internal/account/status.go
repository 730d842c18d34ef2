package account

import (
	"time"

	"github.com/corebank/corebank/internal/apperror"
)

var statusTransitions = map[Status][]Status{
	StatusActive:    {StatusSuspended, StatusFrozen, StatusClosed},
	StatusSuspended: {StatusActive, StatusFrozen, StatusClosed},
	StatusFrozen:    {StatusActive, StatusClosed},
	StatusClosed:    nil,
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ChangeStatus moves the account to next. Closing requires a zero balance and
// no outstanding holds; accounts are never deleted.
func (a *Account) ChangeStatus(next Status, at time.Time) error {
	if !next.Valid() {
		return apperror.Validation("status", "must be one of active, suspended, closed, frozen")
	}
	if !a.Status.CanTransition(next) {
		return apperror.InvalidTransition("status", a.Status, next)
	}
	if next == StatusClosed {
		if !a.Balance.IsZero() {
			return apperror.Validation("balance", "must be zero to close the account")
		}
		if !a.BlockedAmount.IsZero() {
			return apperror.Validation("blocked_amount", "must be zero to close the account")
		}
	}
	a.Status = next
	a.UpdatedAt = at
	return nil
}

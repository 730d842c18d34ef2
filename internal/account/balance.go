package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/money"
)

// Every mutator below validates first and only then assigns, so a returned
// error leaves the account untouched.

// Credit adds amount to the ledger balance.
func (a *Account) Credit(amount decimal.Decimal, at time.Time) error {
	if err := a.requireStatus(StatusActive); err != nil {
		return err
	}
	if err := money.Positive("amount", amount, money.FiatScale); err != nil {
		return err
	}
	next := a.Balance.Add(amount)
	if err := money.FiatRange("balance", next); err != nil {
		return err
	}
	if err := money.FiatRange("available_balance", next.Sub(a.BlockedAmount)); err != nil {
		return err
	}
	a.Balance = next
	a.stamp(at)
	a.Recompute()
	return nil
}

// Debit removes amount from the ledger balance. The available balance may go
// below zero only as far as the overdraft limit allows.
func (a *Account) Debit(amount decimal.Decimal, at time.Time) error {
	if err := a.requireStatus(StatusActive); err != nil {
		return err
	}
	if err := money.Positive("amount", amount, money.FiatScale); err != nil {
		return err
	}
	if a.AvailableBalance.Sub(amount).LessThan(a.OverdraftLimit.Neg()) {
		return apperror.InsufficientFunds("amount", "debit of %s exceeds available balance %s and overdraft limit %s",
			amount.StringFixed(money.FiatScale), a.AvailableBalance.StringFixed(money.FiatScale), a.OverdraftLimit.StringFixed(money.FiatScale))
	}
	next := a.Balance.Sub(amount)
	if err := money.FiatRange("balance", next); err != nil {
		return err
	}
	a.Balance = next
	a.stamp(at)
	a.Recompute()
	return nil
}

// BlockFunds places a hold of amount against the account.
func (a *Account) BlockFunds(amount decimal.Decimal, at time.Time) error {
	if err := a.requireStatus(StatusActive); err != nil {
		return err
	}
	if err := money.Positive("amount", amount, money.FiatScale); err != nil {
		return err
	}
	next := a.BlockedAmount.Add(amount)
	if err := money.FiatRange("blocked_amount", next); err != nil {
		return err
	}
	if err := money.FiatRange("available_balance", a.Balance.Sub(next)); err != nil {
		return err
	}
	a.BlockedAmount = next
	a.UpdatedAt = at
	a.Recompute()
	return nil
}

// UnblockFunds releases up to amount of held funds. Releasing more than is
// blocked clamps the hold at zero rather than failing.
func (a *Account) UnblockFunds(amount decimal.Decimal, at time.Time) error {
	if a.Status == StatusClosed {
		return apperror.InvalidTransition("status", a.Status, "unblock")
	}
	if err := money.Positive("amount", amount, money.FiatScale); err != nil {
		return err
	}
	next := a.BlockedAmount.Sub(amount)
	if next.IsNegative() {
		next = decimal.Zero
	}
	a.BlockedAmount = next
	a.UpdatedAt = at
	a.Recompute()
	return nil
}

// CanWithdraw reports whether the available balance covers amount.
func (a Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.AvailableBalance.GreaterThanOrEqual(amount)
}

// CanOverdraft reports whether debiting amount keeps the ledger balance
// within the overdraft limit.
func (a Account) CanOverdraft(amount decimal.Decimal) bool {
	return a.Balance.Sub(amount).GreaterThanOrEqual(a.OverdraftLimit.Neg())
}

// Recompute refreshes the derived available balance.
func (a *Account) Recompute() {
	a.AvailableBalance = a.Balance.Sub(a.BlockedAmount)
}

func (a *Account) stamp(at time.Time) {
	t := at
	a.LastTransactionDate = &t
	a.UpdatedAt = at
}

func (a *Account) requireStatus(want Status) error {
	if a.Status != want {
		return apperror.InvalidTransition("status", a.Status, "balance mutation")
	}
	return nil
}

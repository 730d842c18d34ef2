package cryptowallet

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
)

var testNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func checkDerived(t *testing.T, w Wallet) {
	t.Helper()
	if !w.Balance.Equal(w.ConfirmedBalance.Add(w.UnconfirmedBalance)) {
		t.Fatalf("balance %s != %s + %s", w.Balance, w.ConfirmedBalance, w.UnconfirmedBalance)
	}
	if !w.FiatBalance.Equal(w.Balance.Mul(w.ExchangeRate).Round(8)) {
		t.Fatalf("fiat balance %s != %s x %s", w.FiatBalance, w.Balance, w.ExchangeRate)
	}
}

func TestWalletScenario(t *testing.T) {
	w := Wallet{Status: StatusActive}
	if err := w.UpdateBalance(d("0.5"), d("0.1"), testNow); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	if err := w.UpdateExchangeRate(d("30000"), testNow); err != nil {
		t.Fatalf("update rate: %v", err)
	}
	if w.Balance.String() != "0.6" {
		t.Fatalf("expected balance 0.6, got %s", w.Balance)
	}
	if w.FiatBalance.StringFixed(2) != "18000.00" {
		t.Fatalf("expected fiat balance 18000.00, got %s", w.FiatBalance.StringFixed(2))
	}
	if w.LastSyncDate == nil || w.LastExchangeRateUpdate == nil {
		t.Fatalf("expected sync timestamps to be stamped")
	}
	checkDerived(t, w)
}

func TestDerivedFieldsAfterEachUpdate(t *testing.T) {
	w := Wallet{Status: StatusActive}
	steps := []func() error{
		func() error { return w.UpdateExchangeRate(d("2150.12345678"), testNow) },
		func() error { return w.UpdateBalance(d("1.23456789"), d("0"), testNow) },
		func() error { return w.UpdateBalance(d("0"), d("0.00000001"), testNow) },
		func() error { return w.UpdateExchangeRate(d("0"), testNow) },
		func() error { return w.UpdateBalance(d("10"), d("5"), testNow) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		checkDerived(t, w)
	}
}

func TestUpdateBalanceRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"negative confirmed":   {"-0.1", "0"},
		"negative unconfirmed": {"1", "-1"},
		"too precise":          {"0.000000001", "0"},
	}
	for name, c := range cases {
		w := Wallet{Status: StatusActive, ConfirmedBalance: d("3")}
		w.Recompute()
		err := w.UpdateBalance(d(c[0]), d(c[1]), testNow)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
		if !w.Balance.Equal(d("3")) || w.LastSyncDate != nil {
			t.Fatalf("%s: wallet mutated on failure: %+v", name, w)
		}
	}
}

func TestArchivedWalletRejectsUpdates(t *testing.T) {
	w := Wallet{Status: StatusArchived}
	if err := w.UpdateBalance(d("1"), d("0"), testNow); !errors.Is(err, apperror.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
	if err := w.UpdateExchangeRate(d("1"), testNow); !errors.Is(err, apperror.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid state transition, got %v", err)
	}
}

func TestCanWithdraw(t *testing.T) {
	w := Wallet{Status: StatusActive, ConfirmedBalance: d("1"), UnconfirmedBalance: d("0.5")}
	w.Recompute()

	if !w.CanWithdraw(d("1.5")) {
		t.Fatalf("expected withdrawal of full balance to be allowed")
	}
	if w.CanWithdraw(d("1.50000001")) {
		t.Fatalf("expected withdrawal above balance to be refused")
	}

	w.Status = StatusLocked
	if w.CanWithdraw(d("0")) || w.CanWithdraw(d("0.1")) {
		t.Fatalf("locked wallet must never allow withdrawals")
	}
}

func TestWalletStatusTransitions(t *testing.T) {
	w := Wallet{Status: StatusActive, ConfirmedBalance: d("1")}
	w.Recompute()

	if err := w.ChangeStatus(StatusLocked, testNow); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := w.ChangeStatus(StatusArchived, testNow); !errors.Is(err, apperror.ErrInvalidStateTransition) {
		t.Fatalf("expected locked -> archived to be refused, got %v", err)
	}
	if err := w.ChangeStatus(StatusActive, testNow); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := w.ChangeStatus(StatusArchived, testNow); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected non-empty archive to be refused, got %v", err)
	}
	if err := w.UpdateBalance(d("0"), d("0"), testNow); err != nil {
		t.Fatalf("empty wallet: %v", err)
	}
	if err := w.ChangeStatus(StatusArchived, testNow); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := w.ChangeStatus(StatusActive, testNow); !errors.Is(err, apperror.ErrInvalidStateTransition) {
		t.Fatalf("archived wallets must stay archived, got %v", err)
	}
}

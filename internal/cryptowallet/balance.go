package cryptowallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/money"
)

// Recompute derives Balance and FiatBalance. The fiat value is rounded half
// away from zero to eight places.
func (w *Wallet) Recompute() {
	w.Balance = w.ConfirmedBalance.Add(w.UnconfirmedBalance)
	w.FiatBalance = w.Balance.Mul(w.ExchangeRate).Round(money.CryptoScale)
}

// UpdateBalance replaces both balances and stamps the sync time.
func (w *Wallet) UpdateBalance(confirmed, unconfirmed decimal.Decimal, at time.Time) error {
	if w.Status == StatusArchived {
		return apperror.InvalidTransition("status", w.Status, "balance update")
	}
	if err := money.NonNegative("confirmed_balance", confirmed, money.CryptoScale); err != nil {
		return err
	}
	if err := money.CryptoRange("confirmed_balance", confirmed); err != nil {
		return err
	}
	if err := money.NonNegative("unconfirmed_balance", unconfirmed, money.CryptoScale); err != nil {
		return err
	}
	if err := money.CryptoRange("unconfirmed_balance", unconfirmed); err != nil {
		return err
	}
	if err := money.CryptoRange("balance", confirmed.Add(unconfirmed)); err != nil {
		return err
	}
	w.ConfirmedBalance = confirmed
	w.UnconfirmedBalance = unconfirmed
	w.LastSyncDate = timestamp(at)
	w.UpdatedAt = at
	w.Recompute()
	return nil
}

// UpdateExchangeRate sets the fiat price of one coin and revalues the wallet.
func (w *Wallet) UpdateExchangeRate(rate decimal.Decimal, at time.Time) error {
	if w.Status == StatusArchived {
		return apperror.InvalidTransition("status", w.Status, "exchange rate update")
	}
	if err := money.NonNegative("exchange_rate", rate, money.RateScale); err != nil {
		return err
	}
	if err := money.CryptoRange("exchange_rate", rate); err != nil {
		return err
	}
	w.ExchangeRate = rate
	w.LastExchangeRateUpdate = timestamp(at)
	w.UpdatedAt = at
	w.Recompute()
	return nil
}

// CanWithdraw reports whether amount may leave the wallet. Locked wallets
// never allow withdrawals.
func (w Wallet) CanWithdraw(amount decimal.Decimal) bool {
	if w.Status == StatusLocked {
		return false
	}
	return w.Balance.GreaterThanOrEqual(amount)
}

func timestamp(at time.Time) *time.Time { return &at }

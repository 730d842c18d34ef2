// Package rates caches the latest market price of each cryptocurrency in a
// fiat currency. Wallets read from it when syncing their exchange rate.
package rates

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/money"
)

// Quote is one cached market rate: units of Fiat per one unit of Symbol.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Fiat      string          `json:"fiat"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Cache stores quotes with an expiry.
type Cache interface {
	Put(ctx context.Context, q Quote) error
	Get(ctx context.Context, symbol, fiat string) (Quote, error)
}

// Normalize upper-cases the pair and validates the quote.
func Normalize(q Quote) (Quote, error) {
	q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
	q.Fiat = strings.ToUpper(strings.TrimSpace(q.Fiat))
	if err := Symbol("symbol", q.Symbol); err != nil {
		return Quote{}, err
	}
	if err := money.Currency("fiat", q.Fiat); err != nil {
		return Quote{}, err
	}
	if err := money.Positive("rate", q.Rate, money.RateScale); err != nil {
		return Quote{}, err
	}
	if err := money.CryptoRange("rate", q.Rate); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// Symbol validates a cryptocurrency ticker: 2 to 10 upper-case letters or digits.
func Symbol(field, s string) error {
	if len(s) < 2 || len(s) > 10 {
		return apperror.Validation(field, "must be 2 to 10 characters")
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return apperror.Validation(field, "must be upper-case letters or digits")
		}
	}
	return nil
}

func pair(symbol, fiat string) string {
	return strings.ToUpper(symbol) + "/" + strings.ToUpper(fiat)
}

func missing(symbol, fiat string) error {
	return apperror.NotFound("exchange_rate", pair(symbol, fiat))
}

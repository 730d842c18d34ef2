package cryptowallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/compliance"
)

// WalletType describes where the keys live.
type WalletType string

const (
	TypeHot      WalletType = "hot"
	TypeWarm     WalletType = "warm"
	TypeCold     WalletType = "cold"
	TypeHardware WalletType = "hardware"
)

func (t WalletType) Valid() bool {
	switch t {
	case TypeHot, TypeWarm, TypeCold, TypeHardware:
		return true
	}
	return false
}

// Status is a wallet lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusLocked    Status = "locked"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusLocked, StatusArchived:
		return true
	}
	return false
}

const maxAddressLen = 128

// Wallet holds a customer's balance in one cryptocurrency. Balance and
// FiatBalance are derived from the confirmed and unconfirmed balances and
// the exchange rate.
type Wallet struct {
	ID                     string
	CustomerID             string
	AccountID              string
	Cryptocurrency         string
	Address                string
	Type                   WalletType
	Status                 Status
	RiskLevel              compliance.RiskLevel
	ConfirmedBalance       decimal.Decimal
	UnconfirmedBalance     decimal.Decimal
	Balance                decimal.Decimal
	ExchangeRate           decimal.Decimal
	FiatCurrency           string
	FiatBalance            decimal.Decimal
	DailyLimit             decimal.Decimal
	MonthlyLimit           decimal.Decimal
	LastSyncDate           *time.Time
	LastExchangeRateUpdate *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CreateInput captures a new wallet. Nil limits are filled from the default
// limit table.
type CreateInput struct {
	ID             string
	CustomerID     string
	AccountID      string
	Cryptocurrency string
	Address        string
	Type           WalletType
	RiskLevel      compliance.RiskLevel
	FiatCurrency   string
	DailyLimit     *decimal.Decimal
	MonthlyLimit   *decimal.Decimal
}

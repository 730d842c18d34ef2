package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/compliance"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusClosed    Status = "closed"
	StatusFrozen    Status = "frozen"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusClosed, StatusFrozen:
		return true
	}
	return false
}

const (
	minNumberLen = 8
	maxNumberLen = 34
	minIBANLen   = 15
	maxIBANLen   = 34
)

// Account is a fiat ledger account. AvailableBalance is derived and always
// equals Balance minus BlockedAmount once a mutation returns.
type Account struct {
	ID                  string
	CustomerID          string
	Number              string
	IBAN                string
	Currency            string
	Balance             decimal.Decimal
	BlockedAmount       decimal.Decimal
	AvailableBalance    decimal.Decimal
	OverdraftLimit      decimal.Decimal
	Status              Status
	RiskLevel           compliance.RiskLevel
	KYCStatus           compliance.KYCStatus
	AMLStatus           compliance.AMLStatus
	LastTransactionDate *time.Time
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateInput captures data for opening an account. Number and IBAN are
// generated when empty.
type CreateInput struct {
	CustomerID     string
	Number         string
	IBAN           string
	Currency       string
	OpeningBalance decimal.Decimal
	OverdraftLimit decimal.Decimal
	RiskLevel      compliance.RiskLevel
	KYCStatus      compliance.KYCStatus
	AMLStatus      compliance.AMLStatus
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	CustomerID string
	Status     Status
	Limit      int
	Offset     int
}

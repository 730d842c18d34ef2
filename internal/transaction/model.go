package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies the movement of funds.
type Type string

const (
	TypeDeposit    Type = "deposit"
	TypeWithdrawal Type = "withdrawal"
	TypeTransfer   Type = "transfer"
	TypePayment    Type = "payment"
	TypeFee        Type = "fee"
	TypeInterest   Type = "interest"
	TypeExchange   Type = "exchange"
	TypeRefund     Type = "refund"
	TypeChargeback Type = "chargeback"
	TypeAdjustment Type = "adjustment"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransfer, TypePayment, TypeFee,
		TypeInterest, TypeExchange, TypeRefund, TypeChargeback, TypeAdjustment:
		return true
	}
	return false
}

// Status is a transaction lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusReversed   Status = "reversed"
	StatusSuspended  Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed,
		StatusCancelled, StatusReversed, StatusSuspended:
		return true
	}
	return false
}

const (
	maxTextLen        = 255
	highRiskThreshold = 70
	maxRiskScore      = 100
)

// Transaction records a movement of funds against an account. NetAmount and
// AmountInBaseCurrency are derived from Amount, Fee, Tax and ExchangeRate.
type Transaction struct {
	ID                    string
	AccountID             string
	CounterpartyAccountID string
	Type                  Type
	Currency              string
	BaseCurrency          string
	Amount                decimal.Decimal
	Fee                   decimal.Decimal
	Tax                   decimal.Decimal
	ExchangeRate          decimal.Decimal
	NetAmount             decimal.Decimal
	AmountInBaseCurrency  decimal.Decimal
	Status                Status
	RiskScore             int
	ManualReview          bool
	FraudFlag             bool
	ComplianceFlag        bool
	Description           string
	Reference             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ProcessedAt           *time.Time
	CompletedAt           *time.Time
	ReversedAt            *time.Time
}

// CreateInput captures a new transaction. A zero ExchangeRate means 1 and an
// empty BaseCurrency means Currency.
type CreateInput struct {
	ID                    string
	AccountID             string
	CounterpartyAccountID string
	Type                  Type
	Currency              string
	BaseCurrency          string
	Amount                decimal.Decimal
	Fee                   decimal.Decimal
	Tax                   decimal.Decimal
	ExchangeRate          decimal.Decimal
	RiskScore             int
	ManualReview          bool
	FraudFlag             bool
	ComplianceFlag        bool
	Description           string
	Reference             string
}

// UpdateInput lists the fields a caller wants to change. Nil pointers leave
// the stored value alone.
type UpdateInput struct {
	Amount         *decimal.Decimal
	Fee            *decimal.Decimal
	Tax            *decimal.Decimal
	ExchangeRate   *decimal.Decimal
	RiskScore      *int
	ManualReview   *bool
	FraudFlag      *bool
	ComplianceFlag *bool
	Description    *string
	Reference      *string
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	AccountID string
	Status    Status
	Type      Type
	Limit     int
	Offset    int
}

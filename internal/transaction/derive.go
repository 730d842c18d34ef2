package transaction

import (
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/money"
)

var maxRate = decimal.RequireFromString("99999999999.99999999")

// Recompute derives NetAmount and AmountInBaseCurrency from the current
// inputs. The base amount is rounded half away from zero to fiat scale.
func (t *Transaction) Recompute() {
	t.NetAmount = t.Amount.Sub(t.Fee).Sub(t.Tax)
	t.AmountInBaseCurrency = t.Amount.Mul(t.ExchangeRate).Round(money.FiatScale)
}

// TotalAmount is what the payer is charged: amount plus fee and tax.
func (t Transaction) TotalAmount() decimal.Decimal {
	return t.Amount.Add(t.Fee).Add(t.Tax)
}

// IsHighRisk reports a risk score at or above the review threshold.
func (t Transaction) IsHighRisk() bool {
	return t.RiskScore >= highRiskThreshold
}

// RequiresReview reports whether any flag or the risk score calls for a human.
func (t Transaction) RequiresReview() bool {
	return t.ManualReview || t.FraudFlag || t.ComplianceFlag || t.IsHighRisk()
}

// Apply writes the changed fields and recomputes derived values from the
// resulting record. Nothing is assigned unless every field validates.
func (t *Transaction) Apply(in UpdateInput, at time.Time) error {
	if !t.Status.Updatable() {
		return apperror.InvalidTransition("status", t.Status, "update")
	}

	next := *t
	if in.Amount != nil {
		next.Amount = *in.Amount
	}
	if in.Fee != nil {
		next.Fee = *in.Fee
	}
	if in.Tax != nil {
		next.Tax = *in.Tax
	}
	if in.ExchangeRate != nil {
		next.ExchangeRate = *in.ExchangeRate
	}
	if in.RiskScore != nil {
		next.RiskScore = *in.RiskScore
	}
	if in.ManualReview != nil {
		next.ManualReview = *in.ManualReview
	}
	if in.FraudFlag != nil {
		next.FraudFlag = *in.FraudFlag
	}
	if in.ComplianceFlag != nil {
		next.ComplianceFlag = *in.ComplianceFlag
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Reference != nil {
		next.Reference = *in.Reference
	}

	if err := next.validate(); err != nil {
		return err
	}
	next.Recompute()
	if err := next.validateDerived(); err != nil {
		return err
	}
	next.UpdatedAt = at
	*t = next
	return nil
}

func (t Transaction) validate() error {
	if err := money.Positive("amount", t.Amount, money.FiatScale); err != nil {
		return err
	}
	if err := money.FiatRange("amount", t.Amount); err != nil {
		return err
	}
	if err := money.NonNegative("fee", t.Fee, money.FiatScale); err != nil {
		return err
	}
	if err := money.FiatRange("fee", t.Fee); err != nil {
		return err
	}
	if err := money.NonNegative("tax", t.Tax, money.FiatScale); err != nil {
		return err
	}
	if err := money.FiatRange("tax", t.Tax); err != nil {
		return err
	}
	if err := money.Positive("exchange_rate", t.ExchangeRate, money.RateScale); err != nil {
		return err
	}
	if t.ExchangeRate.GreaterThan(maxRate) {
		return apperror.Validation("exchange_rate", "must not exceed %s", maxRate.String())
	}
	if t.RiskScore < 0 || t.RiskScore > maxRiskScore {
		return apperror.Validation("risk_score", "must be between 0 and %d", maxRiskScore)
	}
	if utf8.RuneCountInString(t.Description) > maxTextLen {
		return apperror.Validation("description", "must be at most %d characters", maxTextLen)
	}
	if utf8.RuneCountInString(t.Reference) > maxTextLen {
		return apperror.Validation("reference", "must be at most %d characters", maxTextLen)
	}
	return nil
}

func (t Transaction) validateDerived() error {
	if err := money.FiatRange("net_amount", t.NetAmount); err != nil {
		return err
	}
	return money.FiatRange("amount_in_base_currency", t.AmountInBaseCurrency)
}

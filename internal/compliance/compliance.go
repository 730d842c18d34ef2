// Package compliance defines the risk and screening vocabularies shared by
// customers, accounts and wallets.
package compliance

import "github.com/corebank/corebank/internal/apperror"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

type KYCStatus string

const (
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

func (k KYCStatus) Valid() bool {
	switch k {
	case KYCPending, KYCVerified, KYCRejected:
		return true
	}
	return false
}

type AMLStatus string

const (
	AMLClean   AMLStatus = "clean"
	AMLFlagged AMLStatus = "flagged"
	AMLBlocked AMLStatus = "blocked"
)

func (a AMLStatus) Valid() bool {
	switch a {
	case AMLClean, AMLFlagged, AMLBlocked:
		return true
	}
	return false
}

// Defaults fills empty values with low / pending / clean and validates the rest.
func Defaults(risk *RiskLevel, kyc *KYCStatus, aml *AMLStatus) error {
	if risk != nil {
		if *risk == "" {
			*risk = RiskLow
		}
		if !risk.Valid() {
			return apperror.Validation("risk_level", "must be one of low, medium, high")
		}
	}
	if kyc != nil {
		if *kyc == "" {
			*kyc = KYCPending
		}
		if !kyc.Valid() {
			return apperror.Validation("kyc_status", "must be one of pending, verified, rejected")
		}
	}
	if aml != nil {
		if *aml == "" {
			*aml = AMLClean
		}
		if !aml.Valid() {
			return apperror.Validation("aml_status", "must be one of clean, flagged, blocked")
		}
	}
	return nil
}

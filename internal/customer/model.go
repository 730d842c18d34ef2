package customer

import (
	"time"

	"github.com/corebank/corebank/internal/compliance"
)

// Customer owns accounts and crypto wallets.
type Customer struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasscodeHash []byte
	KYCStatus    compliance.KYCStatus
	RiskLevel    compliance.RiskLevel
	CreatedAt    time.Time
}

// RegisterInput carries onboarding data.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Passcode  string
	RiskLevel compliance.RiskLevel
}

// Credentials identify a customer for passcode verification.
type Credentials struct {
	Email    string
	Passcode string
}

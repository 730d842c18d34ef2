package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/idgen"
)

const minPasscodeLength = 6

// ErrInvalidCredentials is returned for unknown emails and wrong passcodes alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service manages the customer lifecycle.
type Service struct {
	repo Repository
	ids  idgen.Generator
}

// NewService creates a customer service.
func NewService(repo Repository, ids idgen.Generator) *Service {
	return &Service{repo: repo, ids: ids}
}

// Register creates a customer with a bcrypt-hashed passcode and pending KYC.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Customer, error) {
	if strings.TrimSpace(in.FirstName) == "" {
		return Customer{}, apperror.Validation("first_name", "is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return Customer{}, apperror.Validation("last_name", "is required")
	}
	if !strings.Contains(in.Email, "@") {
		return Customer{}, apperror.Validation("email", "must be a valid email address")
	}
	if len(in.Passcode) < minPasscodeLength {
		return Customer{}, apperror.Validation("passcode", "must be at least %d characters", minPasscodeLength)
	}

	risk := in.RiskLevel
	kyc := compliance.KYCPending
	if err := compliance.Defaults(&risk, &kyc, nil); err != nil {
		return Customer{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Passcode), bcrypt.DefaultCost)
	if err != nil {
		return Customer{}, err
	}

	c := Customer{
		ID:           s.ids.NewID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:        in.Phone,
		PasscodeHash: hash,
		KYCStatus:    kyc,
		RiskLevel:    risk,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// Get retrieves a customer.
func (s *Service) Get(ctx context.Context, id string) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// Authenticate verifies a customer's passcode.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (Customer, error) {
	c, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return Customer{}, ErrInvalidCredentials
		}
		return Customer{}, err
	}
	if err := bcrypt.CompareHashAndPassword(c.PasscodeHash, []byte(creds.Passcode)); err != nil {
		return Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

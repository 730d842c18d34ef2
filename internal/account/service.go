package account

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/customer"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/money"
)

const (
	defaultCurrency    = "USD"
	defaultIBANCountry = "DE"
	defaultBankCode    = "NOVA"
)

// CustomerLookup is the part of the customer registry accounts depend on.
type CustomerLookup interface {
	Get(ctx context.Context, id string) (customer.Customer, error)
}

// Options tune a Service. Zero values pick sensible defaults.
type Options struct {
	IBANCountry string
	BankCode    string
	Metrics     *metrics.Collector
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Service runs the account balance engine on top of a Repository.
type Service struct {
	repo      Repository
	customers CustomerLookup
	ids       idgen.Generator
	country   string
	bankCode  string
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds an account service. customers may be nil, in which case
// CustomerID is stored without an existence check.
func NewService(repo Repository, customers CustomerLookup, ids idgen.Generator, opts Options) *Service {
	s := &Service{
		repo:      repo,
		customers: customers,
		ids:       ids,
		country:   opts.IBANCountry,
		bankCode:  opts.BankCode,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if s.country == "" {
		s.country = defaultIBANCountry
	}
	if s.bankCode == "" {
		s.bankCode = defaultBankCode
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Create opens an account after validating every field.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if in.CustomerID != "" && s.customers != nil {
		if _, err := s.customers.Get(ctx, in.CustomerID); err != nil {
			return Account{}, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if err := money.Currency("currency", currency); err != nil {
		return Account{}, err
	}

	if err := money.NonNegative("opening_balance", in.OpeningBalance, money.FiatScale); err != nil {
		return Account{}, err
	}
	if err := money.FiatRange("opening_balance", in.OpeningBalance); err != nil {
		return Account{}, err
	}
	if err := money.NonNegative("overdraft_limit", in.OverdraftLimit, money.FiatScale); err != nil {
		return Account{}, err
	}
	if err := money.FiatRange("overdraft_limit", in.OverdraftLimit); err != nil {
		return Account{}, err
	}

	risk, kyc, aml := in.RiskLevel, in.KYCStatus, in.AMLStatus
	if err := compliance.Defaults(&risk, &kyc, &aml); err != nil {
		return Account{}, err
	}

	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = s.ids.AccountNumber()
	}
	if len(number) < minNumberLen || len(number) > maxNumberLen {
		return Account{}, apperror.Validation("account_number", "must be between %d and %d characters", minNumberLen, maxNumberLen)
	}

	iban := strings.ToUpper(strings.ReplaceAll(in.IBAN, " ", ""))
	if iban == "" {
		generated, err := idgen.IBAN(s.country, s.bankCode, number)
		if err != nil {
			return Account{}, apperror.Validation("iban", "%v", err)
		}
		iban = generated
	}
	if len(iban) < minIBANLen || len(iban) > maxIBANLen {
		return Account{}, apperror.Validation("iban", "must be between %d and %d characters", minIBANLen, maxIBANLen)
	}
	if !idgen.ValidIBAN(iban) {
		return Account{}, apperror.Validation("iban", "check digits do not match")
	}

	now := s.now()
	acc := Account{
		ID:             s.ids.NewID(),
		CustomerID:     in.CustomerID,
		Number:         number,
		IBAN:           iban,
		Currency:       currency,
		Balance:        in.OpeningBalance,
		BlockedAmount:  decimal.Zero,
		OverdraftLimit: in.OverdraftLimit,
		Status:         StatusActive,
		RiskLevel:      risk,
		KYCStatus:      kyc,
		AMLStatus:      aml,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	acc.Recompute()

	if err := s.repo.Create(ctx, acc); err != nil {
		return Account{}, err
	}
	s.logger.Info("account opened",
		slog.String("account_id", acc.ID),
		slog.String("account_number", acc.Number),
		slog.String("currency", acc.Currency),
	)
	return acc, nil
}

// Get retrieves an account.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.Get(ctx, id)
}

// List returns accounts matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("status", "must be one of active, suspended, closed, frozen")
	}
	return s.repo.List(ctx, filter)
}

// Credit adds amount to the account balance.
func (s *Service) Credit(ctx context.Context, id string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, id, "credit", amount, func(a *Account) error { return a.Credit(amount, s.now()) })
}

// Debit withdraws amount, honouring the overdraft limit.
func (s *Service) Debit(ctx context.Context, id string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, id, "debit", amount, func(a *Account) error { return a.Debit(amount, s.now()) })
}

// BlockFunds holds amount against the account.
func (s *Service) BlockFunds(ctx context.Context, id string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, id, "block", amount, func(a *Account) error { return a.BlockFunds(amount, s.now()) })
}

// UnblockFunds releases a hold.
func (s *Service) UnblockFunds(ctx context.Context, id string, amount decimal.Decimal) (Account, error) {
	return s.mutate(ctx, id, "unblock", amount, func(a *Account) error { return a.UnblockFunds(amount, s.now()) })
}

// CanWithdraw reports whether the account's available balance covers amount.
func (s *Service) CanWithdraw(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return acc.CanWithdraw(amount), nil
}

// CanOverdraft reports whether debiting amount stays within the overdraft limit.
func (s *Service) CanOverdraft(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return acc.CanOverdraft(amount), nil
}

// ChangeStatus moves the account through its lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, id string, next Status) (Account, error) {
	var from Status
	acc, err := s.repo.Update(ctx, id, func(a *Account) error {
		from = a.Status
		return a.ChangeStatus(next, s.now())
	})
	if err != nil {
		return Account{}, err
	}
	s.metrics.StatusTransition("account", string(from), string(next))
	s.logger.Info("account status changed",
		slog.String("account_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
	)
	return acc, nil
}

func (s *Service) mutate(ctx context.Context, id, op string, amount decimal.Decimal, fn MutateFunc) (Account, error) {
	acc, err := s.repo.Update(ctx, id, fn)
	s.metrics.BalanceMutation("account_"+op, err)
	if err != nil {
		s.logger.Warn("account mutation rejected",
			slog.String("account_id", id),
			slog.String("operation", op),
			slog.String("amount", amount.String()),
			slog.Any("error", err),
		)
		return Account{}, err
	}
	s.logger.Info("account mutated",
		slog.String("account_id", id),
		slog.String("operation", op),
		slog.String("amount", amount.String()),
		slog.String("balance", acc.Balance.StringFixed(money.FiatScale)),
		slog.String("available_balance", acc.AvailableBalance.StringFixed(money.FiatScale)),
		slog.Int64("version", acc.Version),
	)
	return acc, nil
}

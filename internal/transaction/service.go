package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/notification"
)

// AccountLookup resolves the accounts a transaction references.
type AccountLookup interface {
	Get(ctx context.Context, id string) (account.Account, error)
}

// Options tune a Service.
type Options struct {
	Notifier notification.Notifier
	Metrics  *metrics.Collector
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Service records transactions and drives their lifecycle.
type Service struct {
	repo     Repository
	accounts AccountLookup
	ids      idgen.Generator
	notifier notification.Notifier
	metrics  *metrics.Collector
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a transaction service.
func NewService(repo Repository, accounts AccountLookup, ids idgen.Generator, opts Options) *Service {
	s := &Service{
		repo:     repo,
		accounts: accounts,
		ids:      ids,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Clock,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.notifier == nil {
		s.notifier = notification.NewLoggerNotifier(s.logger)
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Create records a pending transaction with its derived amounts.
func (s *Service) Create(ctx context.Context, in CreateInput) (Transaction, error) {
	if strings.TrimSpace(in.AccountID) == "" {
		return Transaction{}, apperror.Validation("account_id", "is required")
	}
	if !in.Type.Valid() {
		return Transaction{}, apperror.Validation("transaction_type", "unknown transaction type %q", in.Type)
	}
	acc, err := s.accounts.Get(ctx, in.AccountID)
	if err != nil {
		return Transaction{}, err
	}
	if in.CounterpartyAccountID != "" {
		if in.CounterpartyAccountID == in.AccountID {
			return Transaction{}, apperror.Validation("counterparty_account_id", "must differ from account_id")
		}
		if _, err := s.accounts.Get(ctx, in.CounterpartyAccountID); err != nil {
			return Transaction{}, err
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = acc.Currency
	}
	if err := money.Currency("currency", currency); err != nil {
		return Transaction{}, err
	}
	base := strings.ToUpper(strings.TrimSpace(in.BaseCurrency))
	if base == "" {
		base = currency
	}
	if err := money.Currency("base_currency", base); err != nil {
		return Transaction{}, err
	}

	rate := in.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.ids.TransactionID()
	}

	now := s.now()
	t := Transaction{
		ID:                    id,
		AccountID:             in.AccountID,
		CounterpartyAccountID: in.CounterpartyAccountID,
		Type:                  in.Type,
		Currency:              currency,
		BaseCurrency:          base,
		Amount:                in.Amount,
		Fee:                   in.Fee,
		Tax:                   in.Tax,
		ExchangeRate:          rate,
		Status:                StatusPending,
		RiskScore:             in.RiskScore,
		ManualReview:          in.ManualReview,
		FraudFlag:             in.FraudFlag,
		ComplianceFlag:        in.ComplianceFlag,
		Description:           in.Description,
		Reference:             in.Reference,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := t.validate(); err != nil {
		return Transaction{}, err
	}
	t.Recompute()
	if err := t.validateDerived(); err != nil {
		return Transaction{}, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Transaction{}, err
	}
	s.metrics.TransactionCreated(string(t.Type), t.RiskScore)
	s.logger.Info("transaction recorded",
		slog.String("transaction_id", t.ID),
		slog.String("account_id", t.AccountID),
		slog.String("type", string(t.Type)),
		slog.String("amount", t.Amount.StringFixed(money.FiatScale)),
		slog.Bool("requires_review", t.RequiresReview()),
	)
	return t, nil
}

// Get retrieves a transaction.
func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns transactions matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.Validation("status", "unknown status %q", filter.Status)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, apperror.Validation("transaction_type", "unknown transaction type %q", filter.Type)
	}
	return s.repo.List(ctx, filter)
}

// ListByAccount returns the transactions touching an account, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountID string, filter ListFilter) ([]Transaction, error) {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	filter.AccountID = accountID
	return s.List(ctx, filter)
}

// Update changes the supplied fields and recomputes derived amounts.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Transaction, error) {
	t, err := s.repo.Update(ctx, id, func(t *Transaction) error {
		return t.Apply(in, s.now())
	})
	if err != nil {
		return Transaction{}, err
	}
	s.logger.Info("transaction updated",
		slog.String("transaction_id", t.ID),
		slog.String("net_amount", t.NetAmount.StringFixed(money.FiatScale)),
		slog.String("amount_in_base_currency", t.AmountInBaseCurrency.StringFixed(money.FiatScale)),
	)
	return t, nil
}

// Transition moves a transaction through its lifecycle and notifies the
// account holder of settlement outcomes.
func (s *Service) Transition(ctx context.Context, id string, next Status) (Transaction, error) {
	var from Status
	t, err := s.repo.Update(ctx, id, func(t *Transaction) error {
		from = t.Status
		return t.Transition(next, s.now())
	})
	if err != nil {
		return Transaction{}, err
	}
	s.metrics.StatusTransition("transaction", string(from), string(next))
	s.logger.Info("transaction status changed",
		slog.String("transaction_id", t.ID),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
	)
	s.notify(ctx, t)
	return t, nil
}

func (s *Service) notify(ctx context.Context, t Transaction) {
	var kind string
	switch t.Status {
	case StatusCompleted:
		kind = notification.KindTransactionCompleted
	case StatusFailed:
		kind = notification.KindTransactionFailed
	case StatusReversed:
		kind = notification.KindTransactionReversed
	default:
		return
	}
	msg := notification.Message{
		Kind:        kind,
		Destination: t.AccountID,
		Reference:   t.ID,
		Body:        fmt.Sprintf("%s %s %s is %s", t.Type, t.Amount.StringFixed(money.FiatScale), t.Currency, t.Status),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.String("transaction_id", t.ID), slog.Any("error", err))
	}
}

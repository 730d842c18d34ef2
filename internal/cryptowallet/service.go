package cryptowallet

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/customer"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/money"
	"github.com/corebank/corebank/internal/rates"
)

const defaultFiat = "USD"

// CustomerLookup resolves wallet owners.
type CustomerLookup interface {
	Get(ctx context.Context, id string) (customer.Customer, error)
}

// AccountLookup resolves the fiat account a wallet settles against.
type AccountLookup interface {
	Get(ctx context.Context, id string) (account.Account, error)
}

// Options tune a Service.
type Options struct {
	Metrics *metrics.Collector
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Service manages crypto wallets.
type Service struct {
	repo      Repository
	customers CustomerLookup
	accounts  AccountLookup
	rates     rates.Cache
	ids       idgen.Generator
	metrics   *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds a wallet service. rates may be nil, in which case
// SyncExchangeRate always reports a missing rate.
func NewService(repo Repository, customers CustomerLookup, accounts AccountLookup, rateCache rates.Cache, ids idgen.Generator, opts Options) *Service {
	s := &Service{
		repo:      repo,
		customers: customers,
		accounts:  accounts,
		rates:     rateCache,
		ids:       ids,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Create opens a wallet for a customer's account with default limits.
func (s *Service) Create(ctx context.Context, in CreateInput) (Wallet, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return Wallet{}, apperror.Validation("customer_id", "is required")
	}
	if strings.TrimSpace(in.AccountID) == "" {
		return Wallet{}, apperror.Validation("account_id", "is required")
	}
	symbol := strings.ToUpper(strings.TrimSpace(in.Cryptocurrency))
	if err := rates.Symbol("cryptocurrency", symbol); err != nil {
		return Wallet{}, err
	}
	if utf8.RuneCountInString(in.Address) > maxAddressLen {
		return Wallet{}, apperror.Validation("address", "must be at most %d characters", maxAddressLen)
	}

	walletType := in.Type
	if walletType == "" {
		walletType = TypeHot
	}
	if !walletType.Valid() {
		return Wallet{}, apperror.Validation("wallet_type", "must be one of hot, warm, cold, hardware")
	}
	risk := in.RiskLevel
	if err := compliance.Defaults(&risk, nil, nil); err != nil {
		return Wallet{}, err
	}
	fiat := strings.ToUpper(strings.TrimSpace(in.FiatCurrency))
	if fiat == "" {
		fiat = defaultFiat
	}
	if err := money.Currency("fiat_currency", fiat); err != nil {
		return Wallet{}, err
	}

	daily, monthly := DefaultLimits(risk, symbol)
	if in.DailyLimit != nil {
		daily = *in.DailyLimit
		monthly = daily.Mul(decimal.NewFromInt(monthlyDays))
	}
	if in.MonthlyLimit != nil {
		monthly = *in.MonthlyLimit
	}
	if err := money.NonNegative("daily_limit", daily, money.CryptoScale); err != nil {
		return Wallet{}, err
	}
	if err := money.CryptoRange("daily_limit", daily); err != nil {
		return Wallet{}, err
	}
	if err := money.NonNegative("monthly_limit", monthly, money.CryptoScale); err != nil {
		return Wallet{}, err
	}
	if err := money.CryptoRange("monthly_limit", monthly); err != nil {
		return Wallet{}, err
	}

	if _, err := s.customers.Get(ctx, in.CustomerID); err != nil {
		return Wallet{}, err
	}
	acc, err := s.accounts.Get(ctx, in.AccountID)
	if err != nil {
		return Wallet{}, err
	}
	if acc.CustomerID != "" && acc.CustomerID != in.CustomerID {
		return Wallet{}, apperror.Validation("account_id", "account belongs to another customer")
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.ids.WalletID()
	}
	now := s.now()
	w := Wallet{
		ID:                 id,
		CustomerID:         in.CustomerID,
		AccountID:          in.AccountID,
		Cryptocurrency:     symbol,
		Address:            in.Address,
		Type:               walletType,
		Status:             StatusActive,
		RiskLevel:          risk,
		ConfirmedBalance:   decimal.Zero,
		UnconfirmedBalance: decimal.Zero,
		ExchangeRate:       decimal.Zero,
		FiatCurrency:       fiat,
		DailyLimit:         daily,
		MonthlyLimit:       monthly,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	w.Recompute()

	if err := s.repo.Create(ctx, w); err != nil {
		return Wallet{}, err
	}
	s.logger.Info("crypto wallet created",
		slog.String("wallet_id", w.ID),
		slog.String("customer_id", w.CustomerID),
		slog.String("cryptocurrency", w.Cryptocurrency),
		slog.String("daily_limit", w.DailyLimit.String()),
	)
	return w, nil
}

// Get retrieves a wallet.
func (s *Service) Get(ctx context.Context, id string) (Wallet, error) {
	return s.repo.Get(ctx, id)
}

// UpdateBalance replaces the confirmed and unconfirmed balances.
func (s *Service) UpdateBalance(ctx context.Context, id string, confirmed, unconfirmed decimal.Decimal) (Wallet, error) {
	return s.mutate(ctx, id, "wallet_balance", func(w *Wallet) error {
		return w.UpdateBalance(confirmed, unconfirmed, s.now())
	})
}

// UpdateExchangeRate sets the wallet's fiat rate explicitly.
func (s *Service) UpdateExchangeRate(ctx context.Context, id string, rate decimal.Decimal) (Wallet, error) {
	return s.mutate(ctx, id, "wallet_exchange_rate", func(w *Wallet) error {
		return w.UpdateExchangeRate(rate, s.now())
	})
}

// SyncExchangeRate applies the cached market rate for the wallet's pair.
func (s *Service) SyncExchangeRate(ctx context.Context, id string) (Wallet, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Wallet{}, err
	}
	if s.rates == nil {
		return Wallet{}, apperror.NotFound("exchange_rate", current.Cryptocurrency+"/"+current.FiatCurrency)
	}
	q, err := s.rates.Get(ctx, current.Cryptocurrency, current.FiatCurrency)
	if err != nil {
		return Wallet{}, err
	}
	return s.UpdateExchangeRate(ctx, id, q.Rate)
}

// CanWithdraw reports whether amount may leave the wallet.
func (s *Service) CanWithdraw(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return w.CanWithdraw(amount), nil
}

// ChangeStatus moves a wallet through its lifecycle.
func (s *Service) ChangeStatus(ctx context.Context, id string, next Status) (Wallet, error) {
	var from Status
	w, err := s.repo.Update(ctx, id, func(w *Wallet) error {
		from = w.Status
		return w.ChangeStatus(next, s.now())
	})
	if err != nil {
		return Wallet{}, err
	}
	s.metrics.StatusTransition("wallet", string(from), string(next))
	s.logger.Info("crypto wallet status changed",
		slog.String("wallet_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
	)
	return w, nil
}

func (s *Service) mutate(ctx context.Context, id, op string, fn MutateFunc) (Wallet, error) {
	w, err := s.repo.Update(ctx, id, fn)
	s.metrics.BalanceMutation(op, err)
	if err != nil {
		return Wallet{}, err
	}
	s.metrics.WalletValuation(w.Cryptocurrency, w.FiatCurrency, w.FiatBalance)
	s.logger.Info("crypto wallet updated",
		slog.String("wallet_id", w.ID),
		slog.String("operation", op),
		slog.String("balance", w.Balance.String()),
		slog.String("fiat_balance", w.FiatBalance.StringFixed(money.CryptoScale)),
	)
	return w, nil
}

package cryptowallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/customer"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/rates"
)

type fixture struct {
	svc      *Service
	rates    *rates.MemoryCache
	customer customer.Customer
	account  account.Account
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	ids := idgen.NewSequence()

	customers := customer.NewService(customer.NewMemoryRepository(), ids)
	cust, err := customers.Register(ctx, customer.RegisterInput{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Passcode: "cobol-59"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	accounts := account.NewService(account.NewMemoryRepository(), customers, ids, account.Options{})
	acc, err := accounts.Create(ctx, account.CreateInput{CustomerID: cust.ID})
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	cache := rates.NewMemoryCache(time.Hour)
	svc := NewService(NewMemoryRepository(), customers, accounts, cache, ids, Options{})
	return fixture{svc: svc, rates: cache, customer: cust, account: acc}
}

func (f fixture) create(t *testing.T, in CreateInput) Wallet {
	t.Helper()
	in.CustomerID, in.AccountID = f.customer.ID, f.account.ID
	w, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return w
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	w := f.create(t, CreateInput{Cryptocurrency: "btc", RiskLevel: compliance.RiskMedium})

	if w.ID == "" || w.ID[:3] != "WAL" {
		t.Fatalf("expected generated wallet id, got %q", w.ID)
	}
	if w.Cryptocurrency != "BTC" || w.Type != TypeHot || w.Status != StatusActive || w.FiatCurrency != "USD" {
		t.Fatalf("unexpected defaults: %+v", w)
	}
	if !w.DailyLimit.Equal(d("0.5")) || !w.MonthlyLimit.Equal(d("15")) {
		t.Fatalf("unexpected limits %s/%s", w.DailyLimit, w.MonthlyLimit)
	}
}

func TestCreateExplicitDailyLimitDerivesMonthly(t *testing.T) {
	f := newFixture(t)
	daily := d("0.25")
	w := f.create(t, CreateInput{Cryptocurrency: "ETH", DailyLimit: &daily})
	if !w.MonthlyLimit.Equal(d("7.5")) {
		t.Fatalf("expected monthly 7.5, got %s", w.MonthlyLimit)
	}
}

func TestCreateChecksOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{CustomerID: "nobody", AccountID: f.account.ID, Cryptocurrency: "BTC"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown customer, got %v", err)
	}
	_, err = f.svc.Create(ctx, CreateInput{CustomerID: f.customer.ID, AccountID: "nothing", Cryptocurrency: "BTC"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}
	_, err = f.svc.Create(ctx, CreateInput{CustomerID: f.customer.ID, AccountID: f.account.ID, Cryptocurrency: "B"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for short symbol, got %v", err)
	}
	_, err = f.svc.Create(ctx, CreateInput{CustomerID: f.customer.ID, AccountID: f.account.ID, Cryptocurrency: "BTC", Type: "paper"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for wallet type, got %v", err)
	}
}

func TestSyncExchangeRateFromCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, CreateInput{Cryptocurrency: "BTC"})

	if _, err := f.svc.SyncExchangeRate(ctx, w.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected missing rate, got %v", err)
	}

	if _, err := f.svc.UpdateBalance(ctx, w.ID, d("0.5"), d("0.1")); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	if err := f.rates.Put(ctx, rates.Quote{Symbol: "BTC", Fiat: "USD", Rate: d("30000")}); err != nil {
		t.Fatalf("put rate: %v", err)
	}

	synced, err := f.svc.SyncExchangeRate(ctx, w.ID)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if synced.FiatBalance.StringFixed(2) != "18000.00" {
		t.Fatalf("expected 18000.00, got %s", synced.FiatBalance.StringFixed(2))
	}

	stored, err := f.svc.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.ExchangeRate.Equal(d("30000")) || stored.LastExchangeRateUpdate == nil {
		t.Fatalf("rate not persisted: %+v", stored)
	}
}

func TestLockedWalletCannotWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.create(t, CreateInput{Cryptocurrency: "SOL"})
	if _, err := f.svc.UpdateBalance(ctx, w.ID, d("100"), d("0")); err != nil {
		t.Fatalf("update balance: %v", err)
	}

	ok, err := f.svc.CanWithdraw(ctx, w.ID, d("10"))
	if err != nil || !ok {
		t.Fatalf("expected withdrawal allowed, got %v %v", ok, err)
	}
	if _, err := f.svc.ChangeStatus(ctx, w.ID, StatusLocked); err != nil {
		t.Fatalf("lock: %v", err)
	}
	ok, err = f.svc.CanWithdraw(ctx, w.ID, d("10"))
	if err != nil || ok {
		t.Fatalf("expected locked wallet to refuse, got %v %v", ok, err)
	}
}

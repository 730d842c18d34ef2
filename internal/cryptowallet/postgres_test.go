package cryptowallet

import (
	"context"
	"errors"
	"testing"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/customer"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/infra/pgtest"
	"github.com/corebank/corebank/internal/rates"
)

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()
	pool, cleanup, err := pgtest.Start(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(cleanup)
	if err := pgtest.Truncate(ctx, pool); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	ids := idgen.NewSequence()
	customers := customer.NewService(customer.NewPostgresRepository(pool), ids)
	accounts := account.NewService(account.NewPostgresRepository(pool), customers, ids, account.Options{})
	cache := rates.NewMemoryCache(0)
	repo := NewPostgresRepository(pool)
	svc := NewService(repo, customers, accounts, cache, ids, Options{})

	cust, err := customers.Register(ctx, customer.RegisterInput{FirstName: "Satoshi", LastName: "N", Email: "sn@example.com", Passcode: "123456"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	acc, err := accounts.Create(ctx, account.CreateInput{CustomerID: cust.ID})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	w, err := svc.Create(ctx, CreateInput{CustomerID: cust.ID, AccountID: acc.ID, Cryptocurrency: "ETH", RiskLevel: "medium"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if _, err := svc.UpdateBalance(ctx, w.ID, d("1.25"), d("0.75")); err != nil {
		t.Fatalf("update balance: %v", err)
	}
	if err := cache.Put(ctx, rates.Quote{Symbol: "ETH", Fiat: "USD", Rate: d("2500.5")}); err != nil {
		t.Fatalf("put quote: %v", err)
	}
	if _, err := svc.SyncExchangeRate(ctx, w.ID); err != nil {
		t.Fatalf("sync rate: %v", err)
	}

	got, err := repo.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if got.Balance.StringFixed(8) != "2.00000000" {
		t.Fatalf("expected balance 2, got %s", got.Balance)
	}
	if got.FiatBalance.StringFixed(8) != "5001.00000000" {
		t.Fatalf("expected fiat balance 5001, got %s", got.FiatBalance)
	}
	if got.DailyLimit.StringFixed(8) != "10.00000000" || got.MonthlyLimit.StringFixed(8) != "300.00000000" {
		t.Fatalf("unexpected limits %s / %s", got.DailyLimit, got.MonthlyLimit)
	}
	if got.LastSyncDate == nil || got.LastExchangeRateUpdate == nil {
		t.Fatalf("expected sync timestamps to persist")
	}

	if _, err := svc.ChangeStatus(ctx, w.ID, StatusArchived); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error archiving funded wallet, got %v", err)
	}
	if _, err := repo.Get(ctx, "WAL-missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

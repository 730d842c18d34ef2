package cryptowallet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/compliance"
	"github.com/corebank/corebank/internal/infra"
)

// MutateFunc changes a wallet in place. Returning an error discards the change.
type MutateFunc func(*Wallet) error

// Repository persists crypto wallets.
type Repository interface {
	Create(ctx context.Context, w Wallet) error
	Get(ctx context.Context, id string) (Wallet, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `id, customer_id::text, account_id::text, cryptocurrency, address, wallet_type, status,
        risk_level, confirmed_balance, unconfirmed_balance, balance, exchange_rate, fiat_currency,
        fiat_balance, daily_limit, monthly_limit, last_sync_date, last_exchange_rate_update,
        created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, w Wallet) error {
	w.Recompute()
	_, err := r.db.Exec(ctx, `INSERT INTO crypto_wallets (id, customer_id, account_id, cryptocurrency, address,
        wallet_type, status, risk_level, confirmed_balance, unconfirmed_balance, balance, exchange_rate,
        fiat_currency, fiat_balance, daily_limit, monthly_limit, last_sync_date, last_exchange_rate_update,
        created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		w.ID, w.CustomerID, w.AccountID, w.Cryptocurrency, w.Address, string(w.Type), string(w.Status),
		string(w.RiskLevel), w.ConfirmedBalance, w.UnconfirmedBalance, w.Balance, w.ExchangeRate,
		w.FiatCurrency, w.FiatBalance, w.DailyLimit, w.MonthlyLimit, w.LastSyncDate, w.LastExchangeRateUpdate,
		w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return apperror.Conflict("id", "wallet %s exists", w.ID)
	}
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	w, err := scanWallet(r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM crypto_wallets WHERE id = $1`, id))
	if infra.IsNoRows(err) {
		return Wallet{}, apperror.NotFound("wallet", id)
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("select wallet: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, mutate MutateFunc) (Wallet, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Wallet{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	w, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM crypto_wallets WHERE id = $1 FOR UPDATE`, id))
	if infra.IsNoRows(err) {
		return Wallet{}, apperror.NotFound("wallet", id)
	}
	if err != nil {
		return Wallet{}, fmt.Errorf("lock wallet: %w", err)
	}

	if err := mutate(&w); err != nil {
		return Wallet{}, err
	}
	w.Recompute()

	_, err = tx.Exec(ctx, `UPDATE crypto_wallets SET status = $1, confirmed_balance = $2, unconfirmed_balance = $3,
        balance = $4, exchange_rate = $5, fiat_balance = $6, last_sync_date = $7,
        last_exchange_rate_update = $8, updated_at = $9
        WHERE id = $10`,
		string(w.Status), w.ConfirmedBalance, w.UnconfirmedBalance, w.Balance, w.ExchangeRate, w.FiatBalance,
		w.LastSyncDate, w.LastExchangeRateUpdate, w.UpdatedAt.UTC(), id)
	if err != nil {
		return Wallet{}, fmt.Errorf("update wallet: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Wallet{}, fmt.Errorf("commit wallet: %w", err)
	}
	return w, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w                             Wallet
		walletType, status, riskLevel string
		createdAt, updatedAt          time.Time
	)
	if err := row.Scan(&w.ID, &w.CustomerID, &w.AccountID, &w.Cryptocurrency, &w.Address, &walletType, &status,
		&riskLevel, &w.ConfirmedBalance, &w.UnconfirmedBalance, &w.Balance, &w.ExchangeRate, &w.FiatCurrency,
		&w.FiatBalance, &w.DailyLimit, &w.MonthlyLimit, &w.LastSyncDate, &w.LastExchangeRateUpdate,
		&createdAt, &updatedAt); err != nil {
		return Wallet{}, err
	}
	w.Type = WalletType(walletType)
	w.Status = Status(status)
	w.RiskLevel = compliance.RiskLevel(riskLevel)
	w.FiatCurrency = strings.TrimSpace(w.FiatCurrency)
	w.CreatedAt = createdAt.UTC()
	w.UpdatedAt = updatedAt.UTC()
	return w, nil
}

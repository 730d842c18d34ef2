package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/infra"
)

// MutateFunc changes a transaction in place. Returning an error discards the
// change.
type MutateFunc func(*Transaction) error

// Repository persists transactions.
type Repository interface {
	Create(ctx context.Context, tx Transaction) error
	Get(ctx context.Context, id string) (Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (Transaction, error)
}

// PostgresRepository stores transactions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const transactionColumns = `id, account_id::text, COALESCE(counterparty_account_id::text, ''), transaction_type,
        currency, base_currency, amount, fee, tax, exchange_rate, net_amount, amount_in_base_currency,
        status, risk_score, manual_review, fraud_flag, compliance_flag, description, reference,
        created_at, updated_at, processed_at, completed_at, reversed_at`

// Create inserts a transaction record.
func (r *PostgresRepository) Create(ctx context.Context, t Transaction) error {
	var counterparty any
	if t.CounterpartyAccountID != "" {
		counterparty = t.CounterpartyAccountID
	}
	_, err := r.db.Exec(ctx, `INSERT INTO transactions (id, account_id, counterparty_account_id, transaction_type,
        currency, base_currency, amount, fee, tax, exchange_rate, net_amount, amount_in_base_currency, status,
        risk_score, manual_review, fraud_flag, compliance_flag, description, reference, created_at, updated_at,
        processed_at, completed_at, reversed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		t.ID, t.AccountID, counterparty, string(t.Type), t.Currency, t.BaseCurrency, t.Amount, t.Fee, t.Tax,
		t.ExchangeRate, t.NetAmount, t.AmountInBaseCurrency, string(t.Status), t.RiskScore, t.ManualReview,
		t.FraudFlag, t.ComplianceFlag, t.Description, t.Reference, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		t.ProcessedAt, t.CompletedAt, t.ReversedAt)
	if infra.IsUniqueViolation(err) {
		return apperror.Conflict("id", "transaction %s exists", t.ID)
	}
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Get fetches a transaction by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if infra.IsNoRows(err) {
		return Transaction{}, apperror.NotFound("transaction", id)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

// List returns transactions newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.AccountID != "" {
		if !infra.IsUUID(filter.AccountID) {
			return []Transaction{}, nil
		}
		args = append(args, filter.AccountID)
		where = append(where, fmt.Sprintf("(account_id = $%d OR counterparty_account_id = $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update locks the row, applies mutate and stores the result atomically.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate MutateFunc) (Transaction, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	t, err := scanTransaction(tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
	if infra.IsNoRows(err) {
		return Transaction{}, apperror.NotFound("transaction", id)
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("lock transaction: %w", err)
	}

	if err := mutate(&t); err != nil {
		return Transaction{}, err
	}
	t.Recompute()

	_, err = tx.Exec(ctx, `UPDATE transactions SET amount = $1, fee = $2, tax = $3, exchange_rate = $4,
        net_amount = $5, amount_in_base_currency = $6, status = $7, risk_score = $8, manual_review = $9,
        fraud_flag = $10, compliance_flag = $11, description = $12, reference = $13, updated_at = $14,
        processed_at = $15, completed_at = $16, reversed_at = $17
        WHERE id = $18`,
		t.Amount, t.Fee, t.Tax, t.ExchangeRate, t.NetAmount, t.AmountInBaseCurrency, string(t.Status),
		t.RiskScore, t.ManualReview, t.FraudFlag, t.ComplianceFlag, t.Description, t.Reference,
		t.UpdatedAt.UTC(), t.ProcessedAt, t.CompletedAt, t.ReversedAt, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}
	return t, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t                    Transaction
		txType, status       string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&t.ID, &t.AccountID, &t.CounterpartyAccountID, &txType, &t.Currency, &t.BaseCurrency,
		&t.Amount, &t.Fee, &t.Tax, &t.ExchangeRate, &t.NetAmount, &t.AmountInBaseCurrency, &status,
		&t.RiskScore, &t.ManualReview, &t.FraudFlag, &t.ComplianceFlag, &t.Description, &t.Reference,
		&createdAt, &updatedAt, &t.ProcessedAt, &t.CompletedAt, &t.ReversedAt); err != nil {
		return Transaction{}, err
	}
	t.Type = Type(txType)
	t.Status = Status(status)
	t.Currency = strings.TrimSpace(t.Currency)
	t.BaseCurrency = strings.TrimSpace(t.BaseCurrency)
	t.CreatedAt = createdAt.UTC()
	t.UpdatedAt = updatedAt.UTC()
	return t, nil
}

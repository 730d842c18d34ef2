package account

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

// MutateFunc changes an account in place. Returning an error discards the
// change.
type MutateFunc func(*Account) error

// Repository persists accounts. Update serialises writers per account: the
// record is locked, mutated and stored as one atomic step.
type Repository interface {
	Create(ctx context.Context, acc Account) error
	Get(ctx context.Context, id string) (Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	Update(ctx context.Context, id string, mutate MutateFunc) (Account, error)
}

// PostgresRepository stores accounts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = `id::text, COALESCE(customer_id::text, ''), account_number, iban, currency,
        balance, blocked_amount, available_balance, overdraft_limit, status, risk_level, kyc_status,
        aml_status, last_transaction_date, version, created_at, updated_at`

// Create inserts an account record.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) error {
	acc.Recompute()
	var customerID any
	if acc.CustomerID != "" {
		customerID = acc.CustomerID
	}
	_, err := r.db.Exec(ctx, `INSERT INTO accounts (id, customer_id, account_number, iban, currency, balance,
        blocked_amount, available_balance, overdraft_limit, status, risk_level, kyc_status, aml_status,
        last_transaction_date, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		acc.ID, customerID, acc.Number, acc.IBAN, acc.Currency, acc.Balance, acc.BlockedAmount,
		acc.AvailableBalance, acc.OverdraftLimit, string(acc.Status), string(acc.RiskLevel),
		string(acc.KYCStatus), string(acc.AMLStatus), acc.LastTransactionDate, acc.Version,
		acc.CreatedAt.UTC(), acc.UpdatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return apperror.Conflict("account_number", "account number or iban already in use")
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get fetches an account by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Account, error) {
	if !infra.IsUUID(id) {
		return Account{}, apperror.NotFound("account", id)
	}
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	acc, err := scanAccount(row)
	if infra.IsMissing(err) {
		return Account{}, apperror.NotFound("account", id)
	}
	if err != nil {
		return Account{}, fmt.Errorf("select account: %w", err)
	}
	return acc, nil
}

// List returns accounts ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	var (
		where []string
		args  []any
	)
	if filter.CustomerID != "" {
		if !infra.IsUUID(filter.CustomerID) {
			return []Account{}, nil
		}
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"
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
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// Update locks the account row, applies mutate and writes the result back in
// the same transaction.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate MutateFunc) (Account, error) {
	if !infra.IsUUID(id) {
		return Account{}, apperror.NotFound("account", id)
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	acc, err := scanAccount(row)
	if infra.IsMissing(err) {
		return Account{}, apperror.NotFound("account", id)
	}
	if err != nil {
		return Account{}, fmt.Errorf("lock account: %w", err)
	}

	if err := mutate(&acc); err != nil {
		return Account{}, err
	}
	acc.Recompute()
	acc.Version++

	_, err = tx.Exec(ctx, `UPDATE accounts SET balance = $1, blocked_amount = $2, available_balance = $3,
        overdraft_limit = $4, status = $5, risk_level = $6, kyc_status = $7, aml_status = $8,
        last_transaction_date = $9, version = $10, updated_at = $11
        WHERE id = $12`,
		acc.Balance, acc.BlockedAmount, acc.AvailableBalance, acc.OverdraftLimit, string(acc.Status),
		string(acc.RiskLevel), string(acc.KYCStatus), string(acc.AMLStatus), acc.LastTransactionDate,
		acc.Version, acc.UpdatedAt.UTC(), id)
	if err != nil {
		return Account{}, fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Account{}, fmt.Errorf("commit account: %w", err)
	}
	return acc, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		acc                    Account
		status, risk, kyc, aml string
		lastTx                 *time.Time
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&acc.ID, &acc.CustomerID, &acc.Number, &acc.IBAN, &acc.Currency,
		&acc.Balance, &acc.BlockedAmount, &acc.AvailableBalance, &acc.OverdraftLimit,
		&status, &risk, &kyc, &aml, &lastTx, &acc.Version, &createdAt, &updatedAt); err != nil {
		return Account{}, err
	}
	acc.Status = Status(status)
	acc.RiskLevel = compliance.RiskLevel(risk)
	acc.KYCStatus = compliance.KYCStatus(kyc)
	acc.AMLStatus = compliance.AMLStatus(aml)
	if lastTx != nil {
		t := lastTx.UTC()
		acc.LastTransactionDate = &t
	}
	acc.CreatedAt = createdAt.UTC()
	acc.UpdatedAt = updatedAt.UTC()
	return acc, nil
}

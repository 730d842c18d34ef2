package customer

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

// Repository persists customers.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, id string) (Customer, error)
	FindByEmail(ctx context.Context, email string) (Customer, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed customer repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `SELECT id::text, first_name, last_name, email, phone, passcode_hash, kyc_status, risk_level, created_at FROM customers`

// Create inserts a new customer.
func (r *PostgresRepository) Create(ctx context.Context, c Customer) error {
	_, err := r.db.Exec(ctx, `INSERT INTO customers (id, first_name, last_name, email, phone, passcode_hash, kyc_status, risk_level, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.FirstName, c.LastName, strings.ToLower(c.Email), c.Phone, c.PasscodeHash, string(c.KYCStatus), string(c.RiskLevel), c.CreatedAt.UTC())
	if infra.IsUniqueViolation(err) {
		return apperror.Conflict("email", "email %s already registered", c.Email)
	}
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Get fetches a customer by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Customer, error) {
	if !infra.IsUUID(id) {
		return Customer{}, apperror.NotFound("customer", id)
	}
	c, err := scanCustomer(r.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
	if infra.IsMissing(err) {
		return Customer{}, apperror.NotFound("customer", id)
	}
	return c, err
}

// FindByEmail fetches a customer by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, selectColumns+` WHERE email = $1`, strings.ToLower(email)))
	if infra.IsNoRows(err) {
		return Customer{}, apperror.NotFound("customer", email)
	}
	return c, err
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var (
		c         Customer
		kyc, risk string
		createdAt time.Time
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.PasscodeHash, &kyc, &risk, &createdAt); err != nil {
		return Customer{}, err
	}
	c.KYCStatus = compliance.KYCStatus(kyc)
	c.RiskLevel = compliance.RiskLevel(risk)
	c.CreatedAt = createdAt.UTC()
	return c, nil
}

package infra

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgresErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	malformed := fmt.Errorf("select: %w", &pgconn.PgError{Code: "22P02"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(malformed))

	assert.True(t, IsInvalidText(malformed))
	assert.True(t, IsMissing(malformed))
	assert.True(t, IsMissing(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, IsMissing(unique))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("00000000-0000-4000-8000-000000000001"))
	assert.False(t, IsUUID("not-a-uuid"))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("acc-1"))
}

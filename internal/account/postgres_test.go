package account

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/corebank/internal/apperror"
	"github.com/corebank/corebank/internal/idgen"
	"github.com/corebank/corebank/internal/infra/pgtest"
)

func TestPostgresRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
	}
	ctx := context.Background()
	pool, cleanup, err := pgtest.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	repo := NewPostgresRepository(pool)
	svc := NewService(repo, nil, idgen.NewSequence(), Options{})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, pgtest.Truncate(ctx, pool))
		acc, err := svc.Create(ctx, CreateInput{OpeningBalance: d("1000.1234"), OverdraftLimit: d("50")})
		require.NoError(t, err)

		got, err := repo.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "1000.1234", got.Balance.StringFixed(4))
		assert.Equal(t, acc.IBAN, got.IBAN)
		assert.Equal(t, StatusActive, got.Status)
	})

	t.Run("failed mutation persists nothing", func(t *testing.T) {
		require.NoError(t, pgtest.Truncate(ctx, pool))
		acc, err := svc.Create(ctx, CreateInput{OpeningBalance: d("100")})
		require.NoError(t, err)

		_, err = svc.Debit(ctx, acc.ID, d("100.0001"))
		assert.True(t, errors.Is(err, apperror.ErrInsufficientFunds))

		got, err := repo.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "100.0000", got.Balance.StringFixed(4))
		assert.EqualValues(t, 1, got.Version)
	})

	t.Run("concurrent blocks serialise on the row lock", func(t *testing.T) {
		require.NoError(t, pgtest.Truncate(ctx, pool))
		acc, err := svc.Create(ctx, CreateInput{OpeningBalance: d("1000")})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.BlockFunds(ctx, acc.ID, d("25"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, "500.0000", got.BlockedAmount.StringFixed(4))
		assert.Equal(t, "500.0000", got.AvailableBalance.StringFixed(4))
		assert.EqualValues(t, 21, got.Version)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.Get(ctx, "00000000-0000-4000-8000-999999999999")
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})

	t.Run("offset applies without a limit", func(t *testing.T) {
		require.NoError(t, pgtest.Truncate(ctx, pool))
		for i := 0; i < 5; i++ {
			_, err := svc.Create(ctx, CreateInput{})
			require.NoError(t, err)
		}

		tail, err := repo.List(ctx, ListFilter{Offset: 3})
		require.NoError(t, err)
		assert.Len(t, tail, 2)

		page, err := repo.List(ctx, ListFilter{Limit: 1, Offset: 3})
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})

	t.Run("malformed ids are not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "not-a-uuid")
		assert.True(t, errors.Is(err, apperror.ErrNotFound))

		_, err = svc.Credit(ctx, "not-a-uuid", d("1"))
		assert.True(t, errors.Is(err, apperror.ErrNotFound))

		accounts, err := repo.List(ctx, ListFilter{CustomerID: "not-a-uuid"})
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})
}

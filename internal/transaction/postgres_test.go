package transaction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/corebank/internal/account"
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

	ids := idgen.NewSequence()
	accounts := account.NewService(account.NewPostgresRepository(pool), nil, ids, account.Options{})
	repo := NewPostgresRepository(pool)
	svc := NewService(repo, accounts, ids, Options{})

	require.NoError(t, pgtest.Truncate(ctx, pool))
	acc, err := accounts.Create(ctx, account.CreateInput{OpeningBalance: d("500")})
	require.NoError(t, err)
	other, err := accounts.Create(ctx, account.CreateInput{})
	require.NoError(t, err)

	t.Run("derived fields persist", func(t *testing.T) {
		tx, err := svc.Create(ctx, CreateInput{
			AccountID:    acc.ID,
			Type:         TypeDeposit,
			Amount:       d("100.00"),
			Fee:          d("2.50"),
			Tax:          d("1.00"),
			ExchangeRate: d("1.1"),
		})
		require.NoError(t, err)

		got, err := repo.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "96.5000", got.NetAmount.StringFixed(4))
		assert.Equal(t, "110.0000", got.AmountInBaseCurrency.StringFixed(4))
		assert.Equal(t, StatusPending, got.Status)
	})

	t.Run("update and transition under row lock", func(t *testing.T) {
		tx, err := svc.Create(ctx, CreateInput{AccountID: acc.ID, Type: TypeWithdrawal, Amount: d("40")})
		require.NoError(t, err)

		_, err = svc.Update(ctx, tx.ID, UpdateInput{Fee: ptr(d("4"))})
		require.NoError(t, err)
		done, err := svc.Transition(ctx, tx.ID, StatusCompleted)
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)

		_, err = svc.Update(ctx, tx.ID, UpdateInput{Fee: ptr(d("1"))})
		assert.True(t, errors.Is(err, apperror.ErrInvalidStateTransition))

		got, err := repo.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "36.0000", got.NetAmount.StringFixed(4))
		assert.Equal(t, StatusCompleted, got.Status)
		assert.NotNil(t, got.CompletedAt)
	})

	t.Run("list matches counterparty side", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{AccountID: acc.ID, CounterpartyAccountID: other.ID, Type: TypeTransfer, Amount: d("5")})
		require.NoError(t, err)

		mine, err := svc.ListByAccount(ctx, acc.ID, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, mine, 3)

		theirs, err := svc.ListByAccount(ctx, other.ID, ListFilter{})
		require.NoError(t, err)
		assert.Len(t, theirs, 1)

		completed, err := svc.ListByAccount(ctx, acc.ID, ListFilter{Status: StatusCompleted})
		require.NoError(t, err)
		assert.Len(t, completed, 1)

		older, err := svc.ListByAccount(ctx, acc.ID, ListFilter{Offset: 1})
		require.NoError(t, err)
		assert.Len(t, older, 2)

		none, err := repo.List(ctx, ListFilter{AccountID: "not-a-uuid"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("missing transaction", func(t *testing.T) {
		_, err := repo.Get(ctx, "TXN-missing")
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

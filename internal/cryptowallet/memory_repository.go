package cryptowallet

import (
	"context"
	"sync"
	"time"

	"github.com/corebank/corebank/internal/apperror"
)

type memoryRepository struct {
	mu      sync.Mutex
	wallets map[string]Wallet
}

// NewMemoryRepository builds an in-memory wallet store.
func NewMemoryRepository() Repository {
	return &memoryRepository{wallets: make(map[string]Wallet)}
}

func (r *memoryRepository) Create(_ context.Context, w Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wallets[w.ID]; exists {
		return apperror.Conflict("id", "wallet %s exists", w.ID)
	}
	w.Recompute()
	r.wallets[w.ID] = clone(w)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return Wallet{}, apperror.NotFound("wallet", id)
	}
	return clone(w), nil
}

func (r *memoryRepository) Update(_ context.Context, id string, mutate MutateFunc) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.wallets[id]
	if !ok {
		return Wallet{}, apperror.NotFound("wallet", id)
	}
	w := clone(stored)
	if err := mutate(&w); err != nil {
		return Wallet{}, err
	}
	w.Recompute()
	r.wallets[id] = w
	return clone(w), nil
}

func clone(w Wallet) Wallet {
	w.LastSyncDate = copyTime(w.LastSyncDate)
	w.LastExchangeRateUpdate = copyTime(w.LastExchangeRateUpdate)
	return w
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

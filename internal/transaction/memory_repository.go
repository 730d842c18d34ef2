package transaction

import (
	"context"
	"sort"
	"sync"

	"github.com/corebank/corebank/internal/apperror"
)

type memoryRepository struct {
	mu           sync.Mutex
	transactions map[string]Transaction
}

// NewMemoryRepository builds an in-memory transaction store.
func NewMemoryRepository() Repository {
	return &memoryRepository{transactions: make(map[string]Transaction)}
}

func (r *memoryRepository) Create(_ context.Context, t Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[t.ID]; exists {
		return apperror.Conflict("id", "transaction %s exists", t.ID)
	}
	r.transactions[t.ID] = clone(t)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return Transaction{}, apperror.NotFound("transaction", id)
	}
	return clone(t), nil
}

func (r *memoryRepository) List(_ context.Context, filter ListFilter) ([]Transaction, error) {
	r.mu.Lock()
	out := make([]Transaction, 0)
	for _, t := range r.transactions {
		if filter.AccountID != "" && t.AccountID != filter.AccountID && t.CounterpartyAccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		out = append(out, clone(t))
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Transaction{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, mutate MutateFunc) (Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[id]
	if !ok {
		return Transaction{}, apperror.NotFound("transaction", id)
	}
	t := clone(stored)
	if err := mutate(&t); err != nil {
		return Transaction{}, err
	}
	t.Recompute()
	r.transactions[id] = t
	return clone(t), nil
}

func clone(t Transaction) Transaction {
	t.ProcessedAt = copyTime(t.ProcessedAt)
	t.CompletedAt = copyTime(t.CompletedAt)
	t.ReversedAt = copyTime(t.ReversedAt)
	return t
}

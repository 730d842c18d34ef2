package account

import (
	"context"
	"sort"
	"sync"

	"github.com/corebank/corebank/internal/apperror"
)

type memoryRepository struct {
	mu       sync.Mutex
	accounts map[string]Account
	numbers  map[string]string
	ibans    map[string]string
}

// NewMemoryRepository builds an in-memory account store. A single mutex is
// held across each load-mutate-store, so concurrent updates never interleave.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		accounts: make(map[string]Account),
		numbers:  make(map[string]string),
		ibans:    make(map[string]string),
	}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[acc.ID]; exists {
		return apperror.Conflict("id", "account %s exists", acc.ID)
	}
	if _, exists := r.numbers[acc.Number]; exists {
		return apperror.Conflict("account_number", "account number %s already in use", acc.Number)
	}
	if _, exists := r.ibans[acc.IBAN]; exists {
		return apperror.Conflict("iban", "iban %s already in use", acc.IBAN)
	}
	acc.Recompute()
	r.accounts[acc.ID] = acc
	r.numbers[acc.Number] = acc.ID
	r.ibans[acc.IBAN] = acc.ID
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return Account{}, apperror.NotFound("account", id)
	}
	return acc, nil
}

func (r *memoryRepository) List(_ context.Context, filter ListFilter) ([]Account, error) {
	r.mu.Lock()
	out := make([]Account, 0, len(r.accounts))
	for _, acc := range r.accounts {
		if filter.CustomerID != "" && acc.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && acc.Status != filter.Status {
			continue
		}
		out = append(out, acc)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []Account{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, mutate MutateFunc) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok {
		return Account{}, apperror.NotFound("account", id)
	}
	if acc.LastTransactionDate != nil {
		t := *acc.LastTransactionDate
		acc.LastTransactionDate = &t
	}
	if err := mutate(&acc); err != nil {
		return Account{}, err
	}
	acc.Recompute()
	acc.Version++
	r.accounts[id] = acc
	return acc, nil
}

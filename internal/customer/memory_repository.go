package customer

import (
	"context"
	"strings"
	"sync"

	"github.com/corebank/corebank/internal/apperror"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]Customer
	byEmail map[string]string
}

// NewMemoryRepository builds an in-memory customer store.
func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[string]Customer), byEmail: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(c.Email)
	if _, exists := r.byEmail[email]; exists {
		return apperror.Conflict("email", "email %s already registered", c.Email)
	}
	if _, exists := r.byID[c.ID]; exists {
		return apperror.Conflict("id", "customer %s exists", c.ID)
	}
	c.Email = email
	r.byID[c.ID] = c
	r.byEmail[email] = c.ID
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return Customer{}, apperror.NotFound("customer", id)
	}
	return c, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return Customer{}, apperror.NotFound("customer", email)
	}
	return r.byID[id], nil
}

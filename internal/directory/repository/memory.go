package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mallops-console/internal/directory/domain"
)

// Memory is an in-memory Repository, seeded from the YAML account table.
// It stands in for the real user directory behind the workflow backend.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account // keyed by lowercase username
	malls    map[int]domain.Mall
	shops    map[int]domain.Shop
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]*domain.Account),
		malls:    make(map[int]domain.Mall),
		shops:    make(map[int]domain.Shop),
	}
}

// GetAccountByUsername returns a copy of the account, or nil when unknown.
func (m *Memory) GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, nil
	}
	copied := *a
	copied.Profile = *a.Profile.Clone()
	return &copied, nil
}

// ListMalls returns all malls.
func (m *Memory) ListMalls(ctx context.Context) ([]domain.Mall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Mall, 0, len(m.malls))
	for _, mall := range m.malls {
		out = append(out, mall)
	}
	return out, nil
}

// ListShops returns all shops.
func (m *Memory) ListShops(ctx context.Context) ([]domain.Shop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Shop, 0, len(m.shops))
	for _, shop := range m.shops {
		out = append(out, shop)
	}
	return out, nil
}

// CreateAccount stores the account. Usernames are unique case-insensitively.
func (m *Memory) CreateAccount(ctx context.Context, a *domain.Account) error {
	key := strings.ToLower(strings.TrimSpace(a.Profile.Username))
	if key == "" {
		return fmt.Errorf("account username is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[key]; exists {
		return fmt.Errorf("account %q already exists", key)
	}
	copied := *a
	copied.Profile = *a.Profile.Clone()
	m.accounts[key] = &copied
	return nil
}

// CreateMall stores the mall.
func (m *Memory) CreateMall(ctx context.Context, mall *domain.Mall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malls[mall.ID] = *mall
	return nil
}

// CreateShop stores the shop.
func (m *Memory) CreateShop(ctx context.Context, s *domain.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shops[s.ID] = *s
	return nil
}

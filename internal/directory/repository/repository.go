package repository

import (
	"context"

	"mallops-console/internal/directory/domain"
)

// Repository defines persistence for the account directory and the tenant
// catalog. Get operations return (nil, nil) for missing records; errors are
// reserved for storage failures.
type Repository interface {
	// GetAccountByUsername looks up an account case-insensitively.
	GetAccountByUsername(ctx context.Context, username string) (*domain.Account, error)
	ListMalls(ctx context.Context) ([]domain.Mall, error)
	ListShops(ctx context.Context) ([]domain.Shop, error)
	CreateAccount(ctx context.Context, a *domain.Account) error
	CreateMall(ctx context.Context, m *domain.Mall) error
	CreateShop(ctx context.Context, s *domain.Shop) error
}

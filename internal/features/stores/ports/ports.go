package ports

import (
	"context"

	"postnet-delivery/internal/features/stores/domain"
)

// Directory is the remote PostNet store directory.
// This is a Secondary Port (Driven Port).
type Directory interface {
	FetchAll(ctx context.Context) ([]domain.Store, error)
	Locate(ctx context.Context, address string) ([]domain.Store, error)
	Details(ctx context.Context, code string) (*domain.StoreDetail, error)
}

// StoreService is the primary port for store lookups.
type StoreService interface {
	ListStores(ctx context.Context, address domain.Address) ([]domain.Store, error)
	StoreDetails(ctx context.Context, code string) (*domain.StoreDetail, error)
	StoreEmail(ctx context.Context, code string) (string, error)
}

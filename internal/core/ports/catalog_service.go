package ports

import (
	"context"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// CatalogService exposes the read side of the product catalog.
type CatalogService interface {
	List(ctx context.Context, category string) ([]*domain.Product, error)
	// GetByID resolves a business id first and falls back to a storage id.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Snapshot(ctx context.Context, storageIDs []string) ([]*domain.Product, error)
}

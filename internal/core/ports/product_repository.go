package ports

import (
	"context"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// ProductRepository defines read access to the catalog plus the bulk load used by the seeder.
type ProductRepository interface {
	// List returns every product, or those tagged with category when non-empty.
	List(ctx context.Context, category string) ([]*domain.Product, error)
	FindByBusinessID(ctx context.Context, id string) (*domain.Product, error)
	FindByStorageID(ctx context.Context, storageID string) (*domain.Product, error)
	// FindByStorageIDs returns the products found; unknown ids are ignored.
	FindByStorageIDs(ctx context.Context, storageIDs []string) ([]*domain.Product, error)
	// ReplaceAll drops the current catalog and inserts products.
	ReplaceAll(ctx context.Context, products []*domain.Product) (int, error)
}

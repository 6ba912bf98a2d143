package ports

import (
	"context"
	"time"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// WishlistItem is a wishlist entry resolved against the catalog. Product is
// nil when the referenced product no longer exists.
type WishlistItem struct {
	ProductID string
	AddedAt   time.Time
	Product   *domain.Product
}

type WishlistService interface {
	List(ctx context.Context, userID string) ([]WishlistItem, error)
	// Add is idempotent; added is false when the product was already present.
	Add(ctx context.Context, userID, productID string) (added bool, err error)
	Remove(ctx context.Context, userID, productID string) ([]WishlistItem, error)
}

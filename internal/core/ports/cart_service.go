package ports

import (
	"context"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// CartService manages user and guest carts and reconciles them at login.
type CartService interface {
	Get(ctx context.Context, owner domain.CartOwner) ([]domain.LineItem, error)
	Add(ctx context.Context, owner domain.CartOwner, productID string, quantity int) ([]domain.LineItem, error)
	SetQuantity(ctx context.Context, owner domain.CartOwner, productID string, quantity int) ([]domain.LineItem, error)
	Remove(ctx context.Context, owner domain.CartOwner, productID string) ([]domain.LineItem, error)
	// Merge reconciles guest lines into the user's persisted cart.
	Merge(ctx context.Context, userID string, guest []domain.LineItem) ([]domain.LineItem, error)
	// AdoptGuestCart merges the session's server-side cart into the user's
	// cart and deletes it. A missing or empty guest cart is a no-op.
	AdoptGuestCart(ctx context.Context, userID, sessionID string) error
}

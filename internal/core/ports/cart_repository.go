package ports

import (
	"context"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// CartRepository persists the single cart owned by each signed-in user.
type CartRepository interface {
	// FindByUser returns domain.ErrCartNotFound when the user has no cart yet.
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// Save writes the whole line list in one upsert keyed by user.
	Save(ctx context.Context, cart *domain.Cart) error
}

// GuestCartStore keeps transient carts for guest sessions.
type GuestCartStore interface {
	// Load returns an empty cart when the session has none.
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

package ports

import (
	"context"
	"time"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts and their embedded wishlist.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetPasswordReset stores the hash of a freshly issued reset token,
	// replacing any previous one.
	SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// ConsumePasswordReset swaps in passwordHash and clears the reset token in
	// a single conditional update. It returns domain.ErrInvalidResetToken when
	// no user matches id, tokenHash and an expiry after now.
	ConsumePasswordReset(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) error

	// AddWishlistEntry appends entry unless the product is already present.
	// added is false when it was.
	AddWishlistEntry(ctx context.Context, userID string, entry domain.WishlistEntry) (added bool, err error)
	// RemoveWishlistEntry pulls every entry referencing productID.
	// removed is false when none matched.
	RemoveWishlistEntry(ctx context.Context, userID, productID string) (removed bool, err error)
}

package ports

import (
	"time"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// TokenService issues and verifies signed session tokens.
type TokenService interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
	// Verify returns domain.ErrTokenExpired or domain.ErrTokenInvalid (both
	// wrapping domain.ErrUnauthenticated) on failure.
	Verify(token string) (*domain.Identity, error)
}

package ports

import (
	"context"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	// RequestPasswordReset never reveals whether the account exists: it
	// returns nil for unknown emails.
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, userID, token, newPassword string) error
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidResetToken  = errors.New("invalid or expired token")

	ErrProductNotFound      = errors.New("product not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("item not found")
	ErrWishlistItemNotFound = errors.New("not in wishlist")
)

// Token verification failures. Both wrap ErrUnauthenticated so callers that
// only care about "logged in or not" can match the parent.
var (
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenInvalid = fmt.Errorf("%w: token invalid", ErrUnauthenticated)
)

// Invalid builds a validation error carrying a client-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

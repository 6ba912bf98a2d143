package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/api/middleware"
	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// identity returns the verified identity attached by the session middleware.
// Routes behind RequireSession always have one; the check keeps a
// misconfigured route from running anonymously.
func identity(c echo.Context) (*domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok || id.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return id, nil
}

// cartOwner resolves whose cart the request targets: the signed-in user when
// there is one, otherwise the guest session.
func cartOwner(c echo.Context) (domain.CartOwner, error) {
	ctx := c.Request().Context()
	if id, ok := middleware.IdentityFrom(ctx); ok {
		return domain.CartOwner{UserID: id.UserID}, nil
	}
	sid := middleware.GuestSessionFrom(ctx)
	if sid == "" {
		return domain.CartOwner{}, domain.Invalid("missing cart session")
	}
	return domain.CartOwner{SessionID: sid}, nil
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}

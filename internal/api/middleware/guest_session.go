package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/api/session"
)

type guestKey struct{}

// GuestSessionFrom returns the guest session id placed on ctx by GuestSession.
func GuestSessionFrom(ctx context.Context) string {
	sid, _ := ctx.Value(guestKey{}).(string)
	return sid
}

// GuestSession gives requests without a signed-in identity a guest session
// id, issuing a new cookie when the request carries none or a malformed one.
// It must run after OptionalSession.
func GuestSession(cookies *session.Cookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c.Request().Context()); ok {
				return next(c)
			}

			sid := session.GuestID(c)
			if _, err := uuid.Parse(sid); err != nil {
				sid = uuid.NewString()
				cookies.SetGuest(c, sid)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), guestKey{}, sid)))
			return next(c)
		}
	}
}

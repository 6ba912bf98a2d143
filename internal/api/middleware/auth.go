package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/api/session"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the verified identity.
func WithIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity placed on ctx by RequireSession or
// OptionalSession.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return id, ok && id != nil
}

// RequireSession verifies the session token and rejects the request with
// domain.ErrUnauthenticated when it is missing, expired or invalid. The
// client never learns which; the log does.
func RequireSession(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c)
			if raw == "" {
				return domain.ErrUnauthenticated
			}
			id, err := tokens.Verify(raw)
			if err != nil {
				log.Info().Str("reason", reason(err)).Str("path", c.Path()).Err(err).Msg("session rejected")
				return domain.ErrUnauthenticated
			}
			attach(c, id)
			return next(c)
		}
	}
}

// OptionalSession attaches the identity when a valid token is present and
// otherwise lets the request through as a guest.
func OptionalSession(tokens ports.TokenService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := tokenFrom(c); raw != "" {
				id, err := tokens.Verify(raw)
				if err == nil {
					attach(c, id)
				} else {
					log.Debug().Str("reason", reason(err)).Str("path", c.Path()).Msg("ignoring invalid session token")
				}
			}
			return next(c)
		}
	}
}

func attach(c echo.Context, id *domain.Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))
}

// tokenFrom prefers the session cookie and falls back to a bearer header.
func tokenFrom(c echo.Context) string {
	if tok := session.Token(c); tok != "" {
		return tok
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "invalid"
	default:
		return "unknown"
	}
}

// Package session writes and clears the cookies that carry the signed-in
// user's token and the guest cart session id.
//
// A cookie is only removed by the browser when the clearing Set-Cookie uses
// the same name, path, domain and security attributes as the one that set
// it, so every cookie here is built from a single template.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	TokenCookie = "token"
	GuestCookie = "guest_sid"
)

// Cookies builds host-scoped, HTTP-only cookies. Production cookies are
// SameSite=None and Secure so a frontend on another origin can send them.
type Cookies struct {
	production bool
	tokenTTL   time.Duration
	guestTTL   time.Duration
}

func NewCookies(production bool, tokenTTL, guestTTL time.Duration) *Cookies {
	return &Cookies{production: production, tokenTTL: tokenTTL, guestTTL: guestTTL}
}

func (c *Cookies) SetToken(ec echo.Context, token string) {
	ec.SetCookie(c.build(TokenCookie, token, c.tokenTTL))
}

func (c *Cookies) ClearToken(ec echo.Context) {
	ec.SetCookie(c.expired(TokenCookie))
}

func (c *Cookies) SetGuest(ec echo.Context, sessionID string) {
	ec.SetCookie(c.build(GuestCookie, sessionID, c.guestTTL))
}

func (c *Cookies) ClearGuest(ec echo.Context) {
	ec.SetCookie(c.expired(GuestCookie))
}

// Token returns the session token cookie value, or "".
func Token(ec echo.Context) string {
	return value(ec, TokenCookie)
}

// GuestID returns the guest session cookie value, or "".
func GuestID(ec echo.Context) string {
	return value(ec, GuestCookie)
}

func value(ec echo.Context, name string) string {
	ck, err := ec.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c *Cookies) build(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
	if c.production {
		ck.Secure = true
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}

func (c *Cookies) expired(name string) *http.Cookie {
	ck := c.build(name, "", 0)
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	return ck
}

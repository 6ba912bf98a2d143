package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.Invalid("productId required"), http.StatusBadRequest, "productId required"},
		{"bare validation", domain.ErrValidation, http.StatusBadRequest, "invalid request"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "not logged in"},
		{"forged token", domain.ErrTokenInvalid, http.StatusUnauthorized, "not logged in"},
		{"reset token", domain.ErrInvalidResetToken, http.StatusBadRequest, "invalid or expired token"},
		{"product", fmt.Errorf("find product: %w", domain.ErrProductNotFound), http.StatusNotFound, "product not found"},
		{"cart item", domain.ErrCartItemNotFound, http.StatusNotFound, "item not found"},
		{"wishlist", domain.ErrWishlistItemNotFound, http.StatusNotFound, "not in wishlist"},
		{"email taken", domain.ErrUserExists, http.StatusConflict, "email already registered"},
		{"phone taken", domain.ErrPhoneTaken, http.StatusConflict, "phone already registered"},
		{"echo", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			rec := c.Response().Writer.(*httptest.ResponseRecorder)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("expected %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_LogsUnexpectedCause(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/cart", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&buf))(errors.New("redis: i/o timeout"), c)

	if strings.Contains(rec.Body.String(), "redis") {
		t.Fatalf("cause leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "redis: i/o timeout") {
		t.Fatalf("cause not logged: %s", buf.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrProductNotFound, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}

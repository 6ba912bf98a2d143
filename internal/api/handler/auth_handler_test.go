package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/api/session"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

func newAuthHandler(auth ports.AuthService, carts ports.CartService, mergeOnLogin bool) *AuthHandler {
	cookies := session.NewCookies(false, time.Hour, time.Hour)
	return NewAuthHandler(auth, stubTokenService{}, carts, cookies, mergeOnLogin, zerolog.Nop())
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.FullName != "Ada Obi" || in.Email != "ada@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: testUserID, FullName: in.FullName, Email: in.Email, PasswordHash: "hash"}, nil
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, rec := newContext(http.MethodPost, "/api/auth/signup", `{"fullName":"Ada Obi","email":"ada@example.com","password":"secret1"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "Signup successful" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}

	ck := responseCookie(rec, session.TokenCookie)
	if ck == nil || ck.Value != "token-for-"+testUserID {
		t.Fatalf("expected session cookie, got %+v", ck)
	}
	if !ck.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
}

func TestAuthHandler_Signup_ValidationFailsBeforeService(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, rec := newContext(http.MethodPost, "/api/auth/signup", `{"email":"not-an-email","password":"x"}`)
	err := h.Signup(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if responseCookie(rec, session.TokenCookie) != nil {
		t.Fatal("no session cookie on failed signup")
	}
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, _ := newContext(http.MethodPost, "/api/auth/signup", `{"fullName":"Ada","email":"ada@example.com","password":"secret1"}`)
	if err := h.Signup(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if responseCookie(rec, session.TokenCookie) != nil {
		t.Fatal("no session cookie on failed login")
	}
}

func TestAuthHandler_Login_AdoptsGuestCart(t *testing.T) {
	auth := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.User, error) {
			return &domain.User{ID: testUserID, Email: "ada@example.com"}, nil
		},
	}
	var adopted string
	carts := &stubCartService{
		adoptFn: func(_ context.Context, userID, sessionID string) error {
			if userID != testUserID {
				t.Fatalf("unexpected user %q", userID)
			}
			adopted = sessionID
			return nil
		},
	}
	h := newAuthHandler(auth, carts, true)

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"secret1"}`)
	c.Request().AddCookie(&http.Cookie{Name: session.GuestCookie, Value: "3f1e4c1a-8a55-4c1e-9a9b-0d6c0c1b2a33"})

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if adopted != "3f1e4c1a-8a55-4c1e-9a9b-0d6c0c1b2a33" {
		t.Fatalf("guest cart not adopted, got %q", adopted)
	}
	if ck := responseCookie(rec, session.GuestCookie); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected guest cookie to be cleared, got %+v", ck)
	}
}

func TestAuthHandler_Login_AdoptFailureKeepsSession(t *testing.T) {
	auth := &stubAuthService{
		authenticateFn: func(context.Context, string, string) (*domain.User, error) {
			return &domain.User{ID: testUserID}, nil
		},
	}
	carts := &stubCartService{
		adoptFn: func(context.Context, string, string) error { return errors.New("redis down") },
	}
	h := newAuthHandler(auth, carts, true)

	c, rec := newContext(http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"secret1"}`)
	c.Request().AddCookie(&http.Cookie{Name: session.GuestCookie, Value: "3f1e4c1a-8a55-4c1e-9a9b-0d6c0c1b2a33"})

	if err := h.Login(c); err != nil {
		t.Fatalf("login must succeed when the guest cart cannot be merged: %v", err)
	}
	if responseCookie(rec, session.TokenCookie) == nil {
		t.Fatal("expected session cookie")
	}
	if responseCookie(rec, session.GuestCookie) != nil {
		t.Fatal("guest cookie must survive a failed merge")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := newAuthHandler(&stubAuthService{}, nil, false)

	c, rec := newContext(http.MethodPost, "/api/auth/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	ck := responseCookie(rec, session.TokenCookie)
	if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", ck)
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	stub := &stubAuthService{
		currentUserFn: func(_ context.Context, userID string) (*domain.User, error) {
			return &domain.User{
				ID:       userID,
				Email:    "ada@example.com",
				Wishlist: []domain.WishlistEntry{{ProductID: "64b7f0c2a1b2c3d4e5f60718"}},
			}, nil
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, rec := newContext(http.MethodGet, "/api/auth/user", "")
	signedIn(c, testUserID)
	if err := h.CurrentUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != testUserID || len(resp.User.Wishlist) != 1 {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestAuthHandler_CurrentUser_WithoutIdentity(t *testing.T) {
	h := newAuthHandler(&stubAuthService{}, nil, false)

	c, _ := newContext(http.MethodGet, "/api/auth/user", "")
	if err := h.CurrentUser(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_ForgotPassword_AlwaysSucceeds(t *testing.T) {
	for _, svcErr := range []error{nil, errors.New("db down")} {
		stub := &stubAuthService{
			requestResetFn: func(context.Context, string) error { return svcErr },
		}
		h := newAuthHandler(stub, nil, false)

		c, rec := newContext(http.MethodPost, "/api/auth/password/forgot", `{"email":"nobody@example.com"}`)
		if err := h.ForgotPassword(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp messageResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Message != resetRequestedMessage {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	var gotID, gotToken string
	stub := &stubAuthService{
		resetFn: func(_ context.Context, userID, token, _ string) error {
			gotID, gotToken = userID, token
			return nil
		},
	}
	h := newAuthHandler(stub, nil, false)

	c, rec := newContext(http.MethodPost, "/api/auth/password/reset?id="+testUserID+"&token=abc", `{"password":"newsecret"}`)
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotID != testUserID || gotToken != "abc" {
		t.Fatalf("unexpected args %q %q", gotID, gotToken)
	}
}

func TestAuthHandler_ResetPassword_MissingQuery(t *testing.T) {
	h := newAuthHandler(&stubAuthService{}, nil, false)

	c, _ := newContext(http.MethodPost, "/api/auth/password/reset?id="+testUserID, `{"password":"newsecret"}`)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_ChangePassword_WrongCurrent(t *testing.T) {
	stub := &stubAuthService{
		changeFn: func(context.Context, string, string, string) error { return domain.ErrInvalidCredentials },
	}
	h := newAuthHandler(stub, nil, false)

	c, _ := newContext(http.MethodPut, "/api/auth/password", `{"currentPassword":"nope","newPassword":"newsecret"}`)
	signedIn(c, testUserID)
	if err := h.ChangePassword(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/api/middleware"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

const testUserID = "64b7f0c2a1b2c3d4e5f60700"

type stubAuthService struct {
	registerFn     func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	currentUserFn  func(ctx context.Context, userID string) (*domain.User, error)
	changeFn       func(ctx context.Context, userID, current, next string) error
	requestResetFn func(ctx context.Context, email string) error
	resetFn        func(ctx context.Context, userID, token, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, email, password)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.currentUserFn(ctx, userID)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.changeFn(ctx, userID, current, next)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestResetFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, userID, token, newPassword string) error {
	return s.resetFn(ctx, userID, token, newPassword)
}

type stubTokenService struct{}

func (stubTokenService) Issue(user *domain.User) (string, time.Time, error) {
	return "token-for-" + user.ID, time.Now().Add(time.Hour), nil
}

func (stubTokenService) Verify(token string) (*domain.Identity, error) {
	if id, ok := strings.CutPrefix(token, "token-for-"); ok {
		return &domain.Identity{UserID: id}, nil
	}
	return nil, domain.ErrTokenInvalid
}

type stubCartService struct {
	getFn    func(ctx context.Context, owner domain.CartOwner) ([]domain.LineItem, error)
	addFn    func(ctx context.Context, owner domain.CartOwner, productID string, qty int) ([]domain.LineItem, error)
	setFn    func(ctx context.Context, owner domain.CartOwner, productID string, qty int) ([]domain.LineItem, error)
	removeFn func(ctx context.Context, owner domain.CartOwner, productID string) ([]domain.LineItem, error)
	mergeFn  func(ctx context.Context, userID string, guest []domain.LineItem) ([]domain.LineItem, error)
	adoptFn  func(ctx context.Context, userID, sessionID string) error
}

func (s *stubCartService) Get(ctx context.Context, owner domain.CartOwner) ([]domain.LineItem, error) {
	return s.getFn(ctx, owner)
}

func (s *stubCartService) Add(ctx context.Context, owner domain.CartOwner, productID string, qty int) ([]domain.LineItem, error) {
	return s.addFn(ctx, owner, productID, qty)
}

func (s *stubCartService) SetQuantity(ctx context.Context, owner domain.CartOwner, productID string, qty int) ([]domain.LineItem, error) {
	return s.setFn(ctx, owner, productID, qty)
}

func (s *stubCartService) Remove(ctx context.Context, owner domain.CartOwner, productID string) ([]domain.LineItem, error) {
	return s.removeFn(ctx, owner, productID)
}

func (s *stubCartService) Merge(ctx context.Context, userID string, guest []domain.LineItem) ([]domain.LineItem, error) {
	return s.mergeFn(ctx, userID, guest)
}

func (s *stubCartService) AdoptGuestCart(ctx context.Context, userID, sessionID string) error {
	return s.adoptFn(ctx, userID, sessionID)
}

type stubCatalogService struct {
	listFn     func(ctx context.Context, category string) ([]*domain.Product, error)
	getFn      func(ctx context.Context, id string) (*domain.Product, error)
	snapshotFn func(ctx context.Context, ids []string) ([]*domain.Product, error)
}

func (s *stubCatalogService) List(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.listFn(ctx, category)
}

func (s *stubCatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Snapshot(ctx context.Context, ids []string) ([]*domain.Product, error) {
	return s.snapshotFn(ctx, ids)
}

type stubWishlistService struct {
	listFn   func(ctx context.Context, userID string) ([]ports.WishlistItem, error)
	addFn    func(ctx context.Context, userID, productID string) (bool, error)
	removeFn func(ctx context.Context, userID, productID string) ([]ports.WishlistItem, error)
}

func (s *stubWishlistService) List(ctx context.Context, userID string) ([]ports.WishlistItem, error) {
	return s.listFn(ctx, userID)
}

func (s *stubWishlistService) Add(ctx context.Context, userID, productID string) (bool, error) {
	return s.addFn(ctx, userID, productID)
}

func (s *stubWishlistService) Remove(ctx context.Context, userID, productID string) ([]ports.WishlistItem, error) {
	return s.removeFn(ctx, userID, productID)
}

// newContext builds an echo context for method/target with an optional JSON body.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// signedIn attaches a verified identity as RequireSession would.
func signedIn(c echo.Context, userID string) {
	req := c.Request()
	c.SetRequest(req.WithContext(middleware.WithIdentity(req.Context(), &domain.Identity{UserID: userID})))
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

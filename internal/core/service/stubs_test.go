package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
	err    error // if set, every call returns it
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Wishlist != nil {
		clone.Wishlist = make([]domain.WishlistEntry, len(u.Wishlist))
		copy(clone.Wishlist, u.Wishlist)
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
		if user.Phone != "" && u.Phone == user.Phone {
			return nil, domain.ErrPhoneTaken
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("%024x", r.nextID)
	r.byID[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetPasswordReset(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetExpiresAt = expiresAt
	return nil
}

func (r *stubUserRepo) ConsumePasswordReset(_ context.Context, id, tokenHash string, now time.Time, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || u.ResetTokenHash == "" || u.ResetTokenHash != tokenHash || !u.ResetExpiresAt.After(now) {
		return domain.ErrInvalidResetToken
	}
	u.PasswordHash = hash
	u.ResetTokenHash = ""
	u.ResetExpiresAt = time.Time{}
	return nil
}

func (r *stubUserRepo) AddWishlistEntry(_ context.Context, userID string, entry domain.WishlistEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if u.HasWishlisted(entry.ProductID) {
		return false, nil
	}
	u.Wishlist = append(u.Wishlist, entry)
	return true, nil
}

func (r *stubUserRepo) RemoveWishlistEntry(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	i := domain.WishlistIndex(u.Wishlist, productID)
	if i < 0 {
		return false, nil
	}
	u.Wishlist = append(u.Wishlist[:i], u.Wishlist[i+1:]...)
	return true, nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	products []*domain.Product
	lookups  []string // records "business:<id>" / "storage:<id>"
}

func (r *stubProductRepo) List(_ context.Context, category string) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range r.products {
		if category == "" || p.HasCategory(category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByBusinessID(_ context.Context, id string) (*domain.Product, error) {
	r.lookups = append(r.lookups, "business:"+id)
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindByStorageID(_ context.Context, id string) (*domain.Product, error) {
	r.lookups = append(r.lookups, "storage:"+id)
	for _, p := range r.products {
		if p.StorageID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *stubProductRepo) FindByStorageIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, id := range ids {
		for _, p := range r.products {
			if p.StorageID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (r *stubProductRepo) ReplaceAll(_ context.Context, products []*domain.Product) (int, error) {
	r.products = products
	return len(products), nil
}

const (
	wigStorageID    ="64b7f0c2a1b2c3d4e5f60718"
	bundleStorageID = "64b7f0c2a1b2c3d4e5f60719"
)

func seededCatalog() *stubProductRepo {
	return &stubProductRepo{products: []*domain.Product{
		{
			StorageID:     wigStorageID,
			ID:            "wig-001",
			Title:         "Body Wave Wig",
			Categories:    []string{"wigs"},
			PriceByLength: map[string]float64{"14": 120, "18": 150},
			Image:         "https://cdn.example.com/wig.jpg",
		},
		{
			StorageID:     bundleStorageID,
			ID:            "bundle-002",
			Title:         "Straight Bundle",
			Categories:    []string{"bundles"},
			PriceByLength: map[string]float64{"12": 60},
			Image:         "https://cdn.example.com/bundle.jpg",
		},
	}}
}

// ---------------------------------------------------------------------------
// Carts
// ---------------------------------------------------------------------------

type stubCartRepo struct {
	byUser  map[string]*domain.Cart
	saves   int
	findErr error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{byUser: make(map[string]*domain.Cart)}
}

func cloneCart(c *domain.Cart) *domain.Cart {
	clone := *c
	clone.Items = append([]domain.LineItem{}, c.Items...)
	return &clone
}

func (r *stubCartRepo) FindByUser(_ context.Context, userID string) (*domain.Cart, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *stubCartRepo) Save(_ context.Context, cart *domain.Cart) error {
	r.saves++
	r.byUser[cart.UserID] = cloneCart(cart)
	return nil
}

type stubGuestStore struct {
	bySession map[string]*domain.Cart
	deleted   []string
	deleteErr error
}

func newStubGuestStore() *stubGuestStore {
	return &stubGuestStore{bySession: make(map[string]*domain.Cart)}
}

func (s *stubGuestStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	c, ok := s.bySession[sessionID]
	if !ok {
		return &domain.Cart{SessionID: sessionID, Items: []domain.LineItem{}}, nil
	}
	return cloneCart(c), nil
}

func (s *stubGuestStore) Save(_ context.Context, cart *domain.Cart) error {
	s.bySession[cart.SessionID] = cloneCart(cart)
	return nil
}

func (s *stubGuestStore) Delete(_ context.Context, sessionID string) error {
	s.deleted = append(s.deleted, sessionID)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.bySession, sessionID)
	return nil
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotifier struct {
	notices []ports.PasswordResetNotice
}

func (n *stubNotifier) NotifyPasswordReset(notice ports.PasswordResetNotice) {
	n.notices = append(n.notices, notice)
}

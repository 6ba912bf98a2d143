package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type WishlistService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	catalog  ports.CatalogService
	log      zerolog.Logger
	now      func() time.Time
}

func NewWishlistService(users ports.UserRepository, products ports.ProductRepository, catalog ports.CatalogService, log zerolog.Logger) *WishlistService {
	return &WishlistService{users: users, products: products, catalog: catalog, log: log, now: time.Now}
}

// List returns the wishlist in insertion order with each entry resolved
// against the catalog.
func (s *WishlistService) List(ctx context.Context, userID string) ([]ports.WishlistItem, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user.Wishlist)
}

// Add accepts a business or storage id and stores the product's storage id.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) (bool, error) {
	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}

	added, err := s.users.AddWishlistEntry(ctx, userID, domain.WishlistEntry{
		ProductID: product.StorageID,
		AddedAt:   s.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("add to wishlist: %w", err)
	}
	return added, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) ([]ports.WishlistItem, error) {
	ref := productID
	if !domain.IsStorageID(ref) {
		// Business ids are translated; unknown ones cannot be on the list.
		product, err := s.catalog.GetByID(ctx, productID)
		if err != nil {
			return nil, domain.ErrWishlistItemNotFound
		}
		ref = product.StorageID
	}

	removed, err := s.users.RemoveWishlistEntry(ctx, userID, ref)
	if err != nil {
		return nil, fmt.Errorf("remove from wishlist: %w", err)
	}
	if !removed {
		return nil, domain.ErrWishlistItemNotFound
	}
	return s.List(ctx, userID)
}

func (s *WishlistService) resolve(ctx context.Context, entries []domain.WishlistEntry) ([]ports.WishlistItem, error) {
	items := make([]ports.WishlistItem, 0, len(entries))
	if len(entries) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	products, err := s.products.FindByStorageIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve wishlist: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[domain.NormalizeRef(p.StorageID)] = p
	}

	for _, e := range entries {
		items = append(items, ports.WishlistItem{
			ProductID: e.ProductID,
			AddedAt:   e.AddedAt,
			Product:   byID[domain.NormalizeRef(e.ProductID)],
		})
	}
	return items, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

// CartService routes every operation to the user's persisted cart or the
// guest session's transient cart. Each mutation is one load, an in-memory
// change and one write; concurrent writers to the same cart are last write
// wins.
type CartService struct {
	carts   ports.CartRepository
	guests  ports.GuestCartStore
	catalog ports.CatalogService
	policy  domain.MergePolicy
	log     zerolog.Logger
	now     func() time.Time
}

func NewCartService(
	carts ports.CartRepository,
	guests ports.GuestCartStore,
	catalog ports.CatalogService,
	policy domain.MergePolicy,
	log zerolog.Logger,
) *CartService {
	if policy == "" {
		policy = domain.MergeTakeIncoming
	}
	return &CartService{
		carts:   carts,
		guests:  guests,
		catalog: catalog,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

func (s *CartService) Get(ctx context.Context, owner domain.CartOwner) ([]domain.LineItem, error) {
	cart, _, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (s *CartService) Add(ctx context.Context, owner domain.CartOwner, productID string, quantity int) ([]domain.LineItem, error) {
	if productID == "" {
		return nil, domain.Invalid("productId required")
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, _, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.Add(domain.NewLineItem(product, quantity))

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// SetQuantity returns domain.ErrCartItemNotFound when the line is absent,
// whether or not the cart exists, on both user and guest paths.
func (s *CartService) SetQuantity(ctx context.Context, owner domain.CartOwner, productID string, quantity int) ([]domain.LineItem, error) {
	if productID == "" {
		return nil, domain.Invalid("itemId required")
	}
	if quantity < 0 {
		quantity = 0
	}

	cart, exists, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCartItemNotFound
	}
	if err := cart.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Remove is idempotent: an absent cart or line returns the current lines.
func (s *CartService) Remove(ctx context.Context, owner domain.CartOwner, productID string) ([]domain.LineItem, error) {
	cart, exists, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !exists || !cart.Remove(productID) {
		return cart.Items, nil
	}

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// Merge reconciles guest lines into the user's cart in one read-modify-write.
// Lines with a malformed product reference are skipped, not rejected.
func (s *CartService) Merge(ctx context.Context, userID string, guest []domain.LineItem) ([]domain.LineItem, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	owner := domain.CartOwner{UserID: userID}

	valid := make([]domain.LineItem, 0, len(guest))
	for _, it := range guest {
		if !domain.IsStorageID(it.ProductID) {
			s.log.Warn().Str("user_id", userID).Str("product_id", it.ProductID).Msg("skipping invalid productId during merge")
			continue
		}
		valid = append(valid, it)
	}

	cart, _, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	res := cart.Merge(valid, s.policy)

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int("merged", res.Merged).
		Int("appended", res.Appended).
		Int("skipped", len(guest)-len(valid)).
		Msg("cart merged")
	return cart.Items, nil
}

func (s *CartService) AdoptGuestCart(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return nil
	}
	guest, err := s.guests.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("adopt guest cart: %w", err)
	}
	if len(guest.Items) == 0 {
		return nil
	}

	if _, err := s.Merge(ctx, userID, guest.Items); err != nil {
		return fmt.Errorf("adopt guest cart: %w", err)
	}
	// The merge has already been written at this point.
	if err := s.guests.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to delete adopted guest cart")
	}
	return nil
}

// load returns the owner's cart, or a fresh empty one with exists=false.
func (s *CartService) load(ctx context.Context, owner domain.CartOwner) (*domain.Cart, bool, error) {
	if owner.IsUser() {
		cart, err := s.carts.FindByUser(ctx, owner.UserID)
		if errors.Is(err, domain.ErrCartNotFound) {
			return &domain.Cart{UserID: owner.UserID, Items: []domain.LineItem{}}, false, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("load cart: %w", err)
		}
		return cart, true, nil
	}

	if owner.SessionID == "" {
		return nil, false, domain.Invalid("missing cart session")
	}
	cart, err := s.guests.Load(ctx, owner.SessionID)
	if err != nil {
		return nil, false, fmt.Errorf("load guest cart: %w", err)
	}
	return cart, !cart.CreatedAt.IsZero(), nil
}

func (s *CartService) save(ctx context.Context, owner domain.CartOwner, cart *domain.Cart) error {
	now := s.now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	if owner.IsUser() {
		cart.UserID = owner.UserID
		if err := s.carts.Save(ctx, cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		return nil
	}

	cart.SessionID = owner.SessionID
	if err := s.guests.Save(ctx, cart); err != nil {
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

const defaultGuestCartTTL = 7 * 24 * time.Hour

// GuestCartStore keeps guest carts as JSON documents.
// Key format: guestcart:<session_id>. Every write refreshes the TTL.
type GuestCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestCartStore creates a GuestCartStore wrapping the given Redis client.
func NewGuestCartStore(client *redis.Client, ttl time.Duration) *GuestCartStore {
	if ttl <= 0 {
		ttl = defaultGuestCartTTL
	}
	return &GuestCartStore{client: client, ttl: ttl}
}

// Load returns the session's cart, or an empty one with a zero CreatedAt.
func (s *GuestCartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return emptyGuestCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("guest cart get: %w", err)
	}
	return decodeGuestCart(sessionID, raw)
}

func (s *GuestCartStore) Save(ctx context.Context, cart *domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("guest cart encode: %w", err)
	}
	if err := s.client.Set(ctx, s.key(cart.SessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("guest cart set: %w", err)
	}
	return nil
}

func (s *GuestCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("guest cart delete: %w", err)
	}
	return nil
}

func (s *GuestCartStore) key(sessionID string) string {
	return guestCartKey(sessionID)
}

func guestCartKey(sessionID string) string {
	return "guestcart:" + sessionID
}

func emptyGuestCart(sessionID string) *domain.Cart {
	return &domain.Cart{SessionID: sessionID, Items: []domain.LineItem{}}
}

// decodeGuestCart treats an unreadable document as an empty cart so a
// corrupted entry does not lock the guest out.
func decodeGuestCart(sessionID string, raw []byte) (*domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return emptyGuestCart(sessionID), nil
	}
	cart.SessionID = sessionID
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	return &cart, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type CatalogService struct {
	repo ports.ProductRepository
}

func NewCatalogService(repo ports.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List returns the whole catalog for an empty or "all" category.
func (s *CatalogService) List(ctx context.Context, category string) ([]*domain.Product, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, domain.CategoryAll) {
		category = ""
	}
	return s.repo.List(ctx, category)
}

// GetByID resolves id in two stages. The business id always takes precedence;
// the storage id is only tried when the business lookup misses and id is
// shaped like a storage identifier.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrProductNotFound
	}

	p, err := s.repo.FindByBusinessID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProductNotFound) || !domain.IsStorageID(id) {
		return nil, err
	}
	return s.repo.FindByStorageID(ctx, id)
}

// Snapshot returns the products for the given storage ids, skipping
// malformed ids.
func (s *CatalogService) Snapshot(ctx context.Context, storageIDs []string) ([]*domain.Product, error) {
	valid := make([]string, 0, len(storageIDs))
	for _, id := range storageIDs {
		if domain.IsStorageID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*domain.Product{}, nil
	}
	return s.repo.FindByStorageIDs(ctx, valid)
}

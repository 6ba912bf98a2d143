// Package seed reads the catalog file loaded by cmd/seed.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

// DecodeProducts parses a JSON array of products and prepares each one for
// insertion: a missing slug is derived from the title, the price range is
// recomputed from the per-length prices and timestamps are set to now.
// Storage ids in the file are ignored; the store assigns fresh ones.
func DecodeProducts(r io.Reader, now time.Time) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	seenID := make(map[string]int, len(products))
	seenSlug := make(map[string]int, len(products))
	for i, p := range products {
		if p == nil {
			return nil, fmt.Errorf("product %d: null entry", i)
		}
		p.ID = strings.TrimSpace(p.ID)
		p.Title = strings.TrimSpace(p.Title)
		if p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("product %d: id and title are required", i)
		}
		if j, dup := seenID[p.ID]; dup {
			return nil, fmt.Errorf("product %d: id %q already used by product %d", i, p.ID, j)
		}
		seenID[p.ID] = i

		if p.Slug == "" {
			p.Slug = slug.Make(p.Title)
		}
		if j, dup := seenSlug[p.Slug]; dup {
			// Same title twice: disambiguate with the business id.
			p.Slug = slug.Make(p.Title + " " + p.ID)
			if _, again := seenSlug[p.Slug]; again {
				return nil, fmt.Errorf("product %d: slug %q already used by product %d", i, p.Slug, j)
			}
		}
		seenSlug[p.Slug] = i

		if p.Categories == nil {
			p.Categories = []string{}
		}
		p.RefreshPriceRange()
		p.StorageID = ""
		p.CreatedAt = now
		p.UpdatedAt = now
	}
	return products, nil
}

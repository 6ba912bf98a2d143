package domain

import (
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll is the sentinel category that selects the whole catalog.
const CategoryAll = "all"

const pricePrecision = 3

// Product is a catalog item. ID is the stable business id loaded by the
// seeder; StorageID is the document store's own identifier.
type Product struct {
	StorageID        string             `json:"_id"`
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	ShortDescription string             `json:"short_description,omitempty"`
	Description      string             `json:"description,omitempty"`
	Categories       []string           `json:"categories"`
	Lengths          []float64          `json:"lengths"`
	PriceByLength    map[string]float64 `json:"price_by_length"`
	BasePrice        string             `json:"base_price,omitempty"`
	Image            string             `json:"images,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// RefreshPriceRange recomputes BasePrice as "min - max" from PriceByLength.
// An empty map leaves BasePrice untouched.
func (p *Product) RefreshPriceRange() {
	lo, hi, ok := p.priceBounds()
	if !ok {
		return
	}
	p.BasePrice = lo.StringFixed(pricePrecision) + " - " + hi.StringFixed(pricePrecision)
}

// FromPrice is the lowest length price, used as the cart price snapshot.
func (p *Product) FromPrice() float64 {
	lo, _, ok := p.priceBounds()
	if !ok {
		return 0
	}
	return lo.InexactFloat64()
}

// HasCategory reports whether the product is tagged with category.
func (p *Product) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}

func (p *Product) priceBounds() (decimal.Decimal, decimal.Decimal, bool) {
	if len(p.PriceByLength) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	first := true
	var lo, hi decimal.Decimal
	for _, v := range p.PriceByLength {
		d := decimal.NewFromFloat(v)
		if first {
			lo, hi, first = d, d, false
			continue
		}
		lo = decimal.Min(lo, d)
		hi = decimal.Max(hi, d)
	}
	return lo, hi, true
}

// IsStorageID reports whether id is syntactically a document store
// identifier (24 hex characters).
func IsStorageID(id string) bool {
	if len(id) != 24 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

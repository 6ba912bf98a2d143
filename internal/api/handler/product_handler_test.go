package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/lumenhair/storefront-api/internal/core/domain"
)

func TestProductHandler_List_PassesCategory(t *testing.T) {
	var got string
	catalog := &stubCatalogService{
		listFn: func(_ context.Context, category string) ([]*domain.Product, error) {
			got = category
			return []*domain.Product{{ID: "wig-001"}}, nil
		},
	}
	h := NewProductHandler(catalog)

	c, rec := newContext(http.MethodGet, "/api/products?category=wigs", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "wigs" {
		t.Fatalf("expected category wigs, got %q", got)
	}
	var resp productListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(resp.Products))
	}
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	catalog := &stubCatalogService{
		getFn: func(context.Context, string) (*domain.Product, error) { return nil, domain.ErrProductNotFound },
	}
	h := NewProductHandler(catalog)

	c, _ := newContext(http.MethodGet, "/api/products/missing", "")
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := h.Get(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductHandler_Get_WrapsProduct(t *testing.T) {
	catalog := &stubCatalogService{
		getFn: func(_ context.Context, id string) (*domain.Product, error) {
			return &domain.Product{ID: id, Title: "Body Wave Wig"}, nil
		},
	}
	h := NewProductHandler(catalog)

	c, rec := newContext(http.MethodGet, "/api/products/wig-001", "")
	c.SetParamNames("id")
	c.SetParamValues("wig-001")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp productResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Product == nil || resp.Product.ID != "wig-001" {
		t.Fatalf("unexpected product %+v", resp.Product)
	}
}

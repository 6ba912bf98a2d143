package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/api/metrics"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type CartHandler struct {
	carts   ports.CartService
	catalog ports.CatalogService
}

func NewCartHandler(carts ports.CartService, catalog ports.CatalogService) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

// Quantities arrive loosely typed from the storefront: numbers, numeric
// strings or nothing at all.
type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  any    `json:"quantity" swaggertype:"integer"`
}

type updateCartItemRequest struct {
	Quantity any `json:"quantity" swaggertype:"integer"`
}

type mergeCartRequest struct {
	Items []json.RawMessage `json:"items" swaggertype:"array,object"`
}

// guestLine is one client-held cart line. Both the cart shape and the
// product shape (id/title/images) are accepted.
type guestLine struct {
	ProductID string   `json:"productId"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Price     any      `json:"price"`
	Image     string   `json:"image"`
	Images    []string `json:"images"`
	Quantity  any      `json:"quantity"`
}

type productSnapshotRequest struct {
	ProductIDs []string `json:"productIds"`
}

type cartItemResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Images   []string `json:"images"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
}

func toCartResponse(items []domain.LineItem) cartResponse {
	out := make([]cartItemResponse, 0, len(items))
	for _, it := range items {
		images := []string{}
		if it.Image != "" {
			images = append(images, it.Image)
		}
		out = append(out, cartItemResponse{
			ID:       it.ProductID,
			Title:    it.Name,
			Images:   images,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return cartResponse{Items: out}
}

// Get returns the cart of the signed-in user or guest session.
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  cartResponse
// @Router       /api/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return err
	}
	items, err := h.carts.Get(c.Request().Context(), owner)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("get", owner.Kind()).Inc()
	return c.JSON(http.StatusOK, toCartResponse(items))
}

// Add puts a product in the cart, summing quantities for an existing line.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addToCartRequest  true  "Product and quantity"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/cart [post]
func (h *CartHandler) Add(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return err
	}
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.Invalid("productId required")
	}

	qty := domain.CoerceQuantity(req.Quantity, 1, 1)
	items, err := h.carts.Add(c.Request().Context(), owner, req.ProductID, qty)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("add", owner.Kind()).Inc()
	return c.JSON(http.StatusOK, toCartResponse(items))
}

// Update sets a line's quantity; zero or a non-numeric value removes it.
//
// @Summary      Update cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        itemId  path      string                 true  "Product storage id"
// @Param        body    body      updateCartItemRequest  true  "New quantity"
// @Success      200     {object}  cartResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/cart/{itemId} [put]
func (h *CartHandler) Update(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return err
	}
	itemID := c.Param("itemId")
	if itemID == "" {
		return domain.Invalid("itemId required")
	}
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if req.Quantity == nil {
		return domain.Invalid("quantity required")
	}

	qty := domain.CoerceQuantity(req.Quantity, 0, 0)
	items, err := h.carts.SetQuantity(c.Request().Context(), owner, itemID, qty)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("set_quantity", owner.Kind()).Inc()
	return c.JSON(http.StatusOK, toCartResponse(items))
}

// Remove deletes a line. Removing an absent line succeeds.
//
// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        itemId  path      string  true  "Product storage id"
// @Success      200     {object}  cartResponse
// @Router       /api/cart/{itemId} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	owner, err := cartOwner(c)
	if err != nil {
		return err
	}
	items, err := h.carts.Remove(c.Request().Context(), owner, c.Param("itemId"))
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("remove", owner.Kind()).Inc()
	return c.JSON(http.StatusOK, toCartResponse(items))
}

// Merge folds a client-held guest cart into the signed-in user's cart.
//
// @Summary      Merge guest cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      mergeCartRequest  true  "Guest cart lines"
// @Success      200   {object}  cartResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/cart/merge [post]
func (h *CartHandler) Merge(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	// A body without items merges nothing and returns the current cart.
	var req mergeCartRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid items")
	}

	lines := make([]domain.LineItem, 0, len(req.Items))
	for _, raw := range req.Items {
		line, ok := decodeGuestLine(raw)
		if !ok || !domain.IsStorageID(line.ProductID) {
			metrics.CartMergeLinesTotal.WithLabelValues("skipped").Inc()
			continue
		}
		metrics.CartMergeLinesTotal.WithLabelValues("accepted").Inc()
		lines = append(lines, line)
	}

	items, err := h.carts.Merge(c.Request().Context(), id.UserID, lines)
	if err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("merge", "user").Inc()
	return c.JSON(http.StatusOK, toCartResponse(items))
}

// ProductSnapshot returns current catalog data for the given storage ids.
//
// @Summary      Product snapshot
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      productSnapshotRequest  true  "Product storage ids"
// @Success      200   {object}  productListResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/cart/product-snapshot [post]
func (h *CartHandler) ProductSnapshot(c echo.Context) error {
	var req productSnapshotRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	products, err := h.catalog.Snapshot(c.Request().Context(), req.ProductIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Products: products})
}

// decodeGuestLine accepts a bare product id string or a line object.
// ok is false when nothing usable could be read.
func decodeGuestLine(raw json.RawMessage) (domain.LineItem, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.LineItem{}, false
	}

	var bare string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &bare); err != nil {
			return domain.LineItem{}, false
		}
		return domain.LineItem{ProductID: strings.TrimSpace(bare), Quantity: 1}, true
	}

	var g guestLine
	if err := json.Unmarshal(raw, &g); err != nil {
		return domain.LineItem{}, false
	}
	line := domain.LineItem{
		ProductID: firstNonEmpty(g.ProductID, g.ID),
		Name:      firstNonEmpty(g.Name, g.Title),
		Image:     g.Image,
		Quantity:  domain.CoerceQuantity(g.Quantity, 1, 1),
	}
	if line.Image == "" && len(g.Images) > 0 {
		line.Image = g.Images[0]
	}
	line.Price = coercePrice(g.Price)
	return line, true
}

// coercePrice reads a number or numeric string; anything else is 0, which
// the merge treats as "no price supplied".
func coercePrice(v any) float64 {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return t
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil && f > 0 {
			return f
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

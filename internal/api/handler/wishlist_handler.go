package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/api/metrics"
	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type WishlistHandler struct {
	wishlist ports.WishlistService
}

func NewWishlistHandler(wishlist ports.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

type wishlistAddRequest struct {
	ProductID string `json:"productId"`
}

type wishlistItemResponse struct {
	ProductID string          `json:"productId"`
	AddedAt   time.Time       `json:"addedAt"`
	Product   *domain.Product `json:"product"`
}

type wishlistResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Items   []wishlistItemResponse `json:"items"`
}

type wishlistAddResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func toWishlistItems(items []ports.WishlistItem) []wishlistItemResponse {
	out := make([]wishlistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, wishlistItemResponse{
			ProductID: it.ProductID,
			AddedAt:   it.AddedAt,
			Product:   it.Product,
		})
	}
	return out
}

// List returns the signed-in user's wishlist with product details.
//
// @Summary      List wishlist
// @Tags         wishlist
// @Produce      json
// @Success      200  {object}  wishlistResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/wishlist [get]
func (h *WishlistHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	items, err := h.wishlist.List(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wishlistResponse{Success: true, Items: toWishlistItems(items)})
}

// Add puts a product on the wishlist. Adding it twice is not an error.
//
// @Summary      Add to wishlist
// @Tags         wishlist
// @Accept       json
// @Produce      json
// @Param        body  body      wishlistAddRequest  true  "Business id or storage id"
// @Success      201   {object}  wishlistAddResponse
// @Success      200   {object}  wishlistAddResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/wishlist [post]
func (h *WishlistHandler) Add(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req wishlistAddRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return domain.Invalid("productId required")
	}

	added, err := h.wishlist.Add(c.Request().Context(), id.UserID, strings.TrimSpace(req.ProductID))
	if err != nil {
		metrics.WishlistOperationsTotal.WithLabelValues("add", "error").Inc()
		return err
	}
	if !added {
		metrics.WishlistOperationsTotal.WithLabelValues("add", "exists").Inc()
		return c.JSON(http.StatusOK, wishlistAddResponse{Success: true, Message: "Already in wishlist"})
	}
	metrics.WishlistOperationsTotal.WithLabelValues("add", "added").Inc()
	return c.JSON(http.StatusCreated, wishlistAddResponse{Success: true, Message: "Added to wishlist"})
}

// Remove takes a product off the wishlist.
//
// @Summary      Remove from wishlist
// @Tags         wishlist
// @Produce      json
// @Param        productId  path      string  true  "Business id or storage id"
// @Success      200        {object}  wishlistResponse
// @Failure      404        {object}  map[string]string
// @Router       /api/wishlist/{productId} [delete]
func (h *WishlistHandler) Remove(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	items, err := h.wishlist.Remove(c.Request().Context(), id.UserID, c.Param("productId"))
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrWishlistItemNotFound) {
			result = "not_found"
		}
		metrics.WishlistOperationsTotal.WithLabelValues("remove", result).Inc()
		return err
	}
	metrics.WishlistOperationsTotal.WithLabelValues("remove", "removed").Inc()
	return c.JSON(http.StatusOK, wishlistResponse{
		Success: true,
		Message: "Removed from wishlist",
		Items:   toWishlistItems(items),
	})
}

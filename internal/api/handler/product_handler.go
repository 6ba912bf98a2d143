package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumenhair/storefront-api/internal/core/domain"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

type ProductHandler struct {
	catalog ports.CatalogService
}

func NewProductHandler(catalog ports.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productListResponse struct {
	Products []*domain.Product `json:"products"`
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

// List returns the catalog, optionally filtered by category.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Category tag, or \"all\""
// @Success      200       {object}  productListResponse
// @Failure      500       {object}  map[string]string
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.catalog.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productListResponse{Products: products})
}

// Get returns one product by business id or storage id.
//
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Business id or storage id"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.catalog.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productResponse{Product: product})
}

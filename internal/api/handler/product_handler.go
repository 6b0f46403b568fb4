package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agriscience/catalog/internal/core/ports"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service ports.ProductService
	log     zerolog.Logger
}

func NewProductHandler(service ports.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: service, log: log}
}

// List returns the catalog newest first.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        category  query     string  false  "Exact category, case-insensitive"
// @Param        q         query     string  false  "Substring of name, description or origin"
// @Success      200       {array}   domain.Product
// @Failure      500       {object}  ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context(), ports.ListProductsFilter{
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Categories returns the distinct product categories.
//
// @Summary      List categories
// @Tags         products
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Router       /api/products/categories [get]
func (h *ProductHandler) Categories(c echo.Context) error {
	categories, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: categories})
}

// Get returns a single product.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a product. Requires an owner session.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.service.CreateProduct(c.Request().Context(), toProductInput(req))
	if err != nil {
		return err
	}

	h.log.Info().Str("product_id", p.ID).Str("session_id", session.TokenID).Msg("product created via api")
	return c.JSON(http.StatusCreated, p)
}

// Update merges the supplied fields onto a product. Requires an owner session.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/products/{id} [put]
// @Router       /api/products/{id} [patch]
func (h *ProductHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id := c.Param("id")
	p, err := h.service.UpdateProduct(c.Request().Context(), id, toProductPatch(req))
	if err != nil {
		return err
	}

	h.log.Info().Str("product_id", id).Str("session_id", session.TokenID).Msg("product updated via api")
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product permanently. Requires an owner session.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}

	h.log.Info().Str("product_id", id).Str("session_id", session.TokenID).Msg("product deleted via api")
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Product deleted successfully"})
}

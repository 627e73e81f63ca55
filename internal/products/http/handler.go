package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"product-catalog/internal/products"

	"github.com/gin-gonic/gin"
)

type ProductService interface {
	ListProducts(ctx context.Context) ([]products.Product, error)
	GetProduct(ctx context.Context, id int64) (products.Product, error)
	CreateProduct(ctx context.Context, in products.Input) (products.Product, error)
	UpdateProduct(ctx context.Context, id int64, in products.Input) (products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type Handler struct {
	service ProductService
	logger  *slog.Logger
}

func NewHandler(svc ProductService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type errorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

type validationErrorResponse struct {
	Error      string               `json:"error" example:"validation failed"`
	Violations []products.Violation `json:"violations"`
}

// ListProducts godoc
// @Summary      List all products
// @Tags         products
// @Produce      json
// @Success      200  {array}   products.Product
// @Failure      500  {object}  errorResponse
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	items, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.internalError(c, "failed to get products", err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  products.Product
// @Failure      400  {object}  errorResponse
// @Failure      404
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		h.internalError(c, "failed to get product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct godoc
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body      products.Input  true  "Product data"
// @Success      201   {object}  products.Product
// @Failure      400   {object}  validationErrorResponse
// @Failure      500   {object}  errorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req products.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if h.writeValidationError(c, err) {
			return
		}
		h.internalError(c, "failed to create product", err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct godoc
// @Summary      Replace name, description and price of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Product ID"
// @Param        body  body      products.Input  true  "Product data"
// @Success      200   {object}  products.Product
// @Failure      400   {object}  validationErrorResponse
// @Failure      404
// @Failure      500   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req products.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		if h.writeValidationError(c, err) {
			return
		}
		h.internalError(c, "failed to update product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
// @Summary      Delete a product by ID
// @Description  Deleting an unknown ID also succeeds.
// @Tags         products
// @Param        id   path      int  true  "Product ID"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		h.internalError(c, "failed to delete product", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeValidationError(c *gin.Context, err error) bool {
	var verr *products.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	c.JSON(http.StatusBadRequest, validationErrorResponse{
		Error:      "validation failed",
		Violations: verr.Violations,
	})
	return true
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.logger.ErrorContext(c.Request.Context(), msg,
		"error", err,
		"request_id", c.GetString(requestIDHeader),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/services"
	"storefront-functions/pkg/lambda"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	productService services.ProductService
	logger         *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService services.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// Routes returns the product route table for the Lambda router
func (h *ProductHandler) Routes() []lambda.Route {
	return []lambda.Route{
		{Method: http.MethodGet, Pattern: "/products", Handler: h.HandleListProducts},
		{Method: http.MethodPost, Pattern: "/products", Handler: h.HandleCreateProduct},
		{Method: http.MethodGet, Pattern: "/products/:id", Handler: h.HandleGetProduct},
	}
}

func (h *ProductHandler) createProduct(ctx context.Context, req *services.CreateProductRequest) result {
	product, err := h.productService.CreateProduct(ctx, req)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(product)
}

// listProducts pages the catalogue when page or pageSize is given and
// returns every product otherwise
func (h *ProductHandler) listProducts(ctx context.Context, page, pageSize *string) result {
	if page != nil || pageSize != nil {
		p, err := h.productService.ListProductsPage(ctx, page, pageSize)
		if err != nil {
			return failed(err, http.StatusBadRequest, h.logger)
		}
		return ok(p)
	}

	products, err := h.productService.ListProducts(ctx)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(products)
}

func (h *ProductHandler) getProduct(ctx context.Context, id string) result {
	product, err := h.productService.GetProduct(ctx, id)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(product)
}

// @Summary Create a new product
// @Description Create a new product in the catalogue
// @Tags products
// @Accept json
// @Produce json
// @Param product body services.CreateProductRequest true "Product data"
// @Success 200 {object} map[string]models.Product
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failed(malformedBody(err), http.StatusBadRequest, h.logger).gin(c)
		return
	}

	h.createProduct(c.Request.Context(), &req).gin(c)
}

// @Summary List products
// @Description List the catalogue. With page or pageSize a paginated window is returned instead of the full list.
// @Tags products
// @Produce json
// @Param page query int false "Zero-based page index" default(0)
// @Param pageSize query int false "Rows per page" default(12)
// @Success 200 {object} map[string]pagination.Page[models.Product]
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	h.listProducts(c.Request.Context(), ginQueryParam(c, "page"), ginQueryParam(c, "pageSize")).gin(c)
}

// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]models.Product
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	h.getProduct(c.Request.Context(), c.Param("id")).gin(c)
}

// Lambda handler methods

// HandleCreateProduct handles POST /products
func (h *ProductHandler) HandleCreateProduct(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var createReq services.CreateProductRequest
	if err := json.Unmarshal(req.Body, &createReq); err != nil {
		return failed(malformedBody(err), http.StatusBadRequest, h.logger).lambda()
	}

	return h.createProduct(ctx, &createReq).lambda()
}

// HandleListProducts handles GET /products
func (h *ProductHandler) HandleListProducts(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.listProducts(ctx, queryParam(req, "page"), queryParam(req, "pageSize")).lambda()
}

// HandleGetProduct handles GET /products/:id
func (h *ProductHandler) HandleGetProduct(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.getProduct(ctx, req.PathParams.Get("id")).lambda()
}

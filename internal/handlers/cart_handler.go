package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/middleware"
	"storefront-functions/internal/services"
	"storefront-functions/pkg/lambda"
)

// CartHandler handles shopping cart requests. Every route acts for the user
// named by the uid header.
type CartHandler struct {
	cartService services.CartService
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService services.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// Routes returns the cart route table for the Lambda router
func (h *CartHandler) Routes() []lambda.Route {
	requireUser := lambda.RequireUser()

	return []lambda.Route{
		{Method: http.MethodGet, Pattern: "/carts", Handler: lambda.Chain(h.HandleListCart, requireUser)},
		{Method: http.MethodPost, Pattern: "/carts", Handler: lambda.Chain(h.HandleAddToCart, requireUser)},
		{Method: http.MethodPut, Pattern: "/carts", Handler: lambda.Chain(h.HandleRemoveManyFromCart, requireUser)},
		{Method: http.MethodDelete, Pattern: "/carts/:id", Handler: lambda.Chain(h.HandleRemoveFromCart, requireUser)},
	}
}

func (h *CartHandler) listCart(ctx context.Context, userID string) result {
	entries, err := h.cartService.ListCart(ctx, userID)
	if err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(entries)
}

func (h *CartHandler) addToCart(ctx context.Context, userID string, req *services.AddToCartRequest) result {
	item, err := h.cartService.AddToCart(ctx, userID, req)
	if err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(item)
}

func (h *CartHandler) removeMany(ctx context.Context, userID string, req *services.RemoveCartItemsRequest) result {
	if err := h.cartService.RemoveManyFromCart(ctx, userID, req); err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(success)
}

func (h *CartHandler) removeOne(ctx context.Context, userID, id string) result {
	if err := h.cartService.RemoveFromCart(ctx, userID, id); err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(success)
}

func ginUserID(c *gin.Context) string {
	userID, _ := middleware.GetUserID(c)
	return userID
}

// @Summary List cart
// @Description List the acting user's cart with product details
// @Tags carts
// @Produce json
// @Param uid header string true "Acting user"
// @Success 200 {object} map[string][]models.CartEntry
// @Failure 403 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /carts [get]
func (h *CartHandler) ListCart(c *gin.Context) {
	h.listCart(c.Request.Context(), ginUserID(c)).gin(c)
}

// @Summary Add to cart
// @Description Add a product to the acting user's cart. Adding a product already in the cart returns the existing row.
// @Tags carts
// @Accept json
// @Produce json
// @Param uid header string true "Acting user"
// @Param item body services.AddToCartRequest true "Product reference"
// @Success 200 {object} map[string]models.CartItem
// @Failure 403 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /carts [post]
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req services.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failed(malformedBody(err), http.StatusInternalServerError, h.logger).gin(c)
		return
	}

	h.addToCart(c.Request.Context(), ginUserID(c), &req).gin(c)
}

// @Summary Remove cart items
// @Description Remove the given cart rows. Unknown ids are ignored.
// @Tags carts
// @Accept json
// @Produce json
// @Param uid header string true "Acting user"
// @Param ids body services.RemoveCartItemsRequest true "Cart row ids"
// @Success 200 {object} map[string]SuccessResponse
// @Failure 403 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /carts [put]
func (h *CartHandler) RemoveManyFromCart(c *gin.Context) {
	var req services.RemoveCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failed(malformedBody(err), http.StatusInternalServerError, h.logger).gin(c)
		return
	}

	h.removeMany(c.Request.Context(), ginUserID(c), &req).gin(c)
}

// @Summary Remove cart item
// @Tags carts
// @Produce json
// @Param uid header string true "Acting user"
// @Param id path string true "Cart row ID"
// @Success 200 {object} map[string]SuccessResponse
// @Failure 403 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /carts/{id} [delete]
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	h.removeOne(c.Request.Context(), ginUserID(c), c.Param("id")).gin(c)
}

// HandleListCart handles GET /carts
func (h *CartHandler) HandleListCart(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.listCart(ctx, lambda.UserID(ctx)).lambda()
}

// HandleAddToCart handles POST /carts
func (h *CartHandler) HandleAddToCart(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var addReq services.AddToCartRequest
	if err := json.Unmarshal(req.Body, &addReq); err != nil {
		return failed(malformedBody(err), http.StatusInternalServerError, h.logger).lambda()
	}

	return h.addToCart(ctx, lambda.UserID(ctx), &addReq).lambda()
}

// HandleRemoveManyFromCart handles PUT /carts
func (h *CartHandler) HandleRemoveManyFromCart(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var removeReq services.RemoveCartItemsRequest
	if err := json.Unmarshal(req.Body, &removeReq); err != nil {
		return failed(malformedBody(err), http.StatusInternalServerError, h.logger).lambda()
	}

	return h.removeMany(ctx, lambda.UserID(ctx), &removeReq).lambda()
}

// HandleRemoveFromCart handles DELETE /carts/:id
func (h *CartHandler) HandleRemoveFromCart(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.removeOne(ctx, lambda.UserID(ctx), req.PathParams.Get("id")).lambda()
}

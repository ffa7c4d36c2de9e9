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

// OrderHandler handles order requests for the user named by the uid header
type OrderHandler struct {
	orderService services.OrderService
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService services.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Routes returns the order route table for the Lambda router
func (h *OrderHandler) Routes() []lambda.Route {
	requireUser := lambda.RequireUser()

	return []lambda.Route{
		{Method: http.MethodGet, Pattern: "/orders", Handler: lambda.Chain(h.HandleListOrders, requireUser)},
		{Method: http.MethodPost, Pattern: "/orders", Handler: lambda.Chain(h.HandleCreateOrder, requireUser)},
		{Method: http.MethodGet, Pattern: "/orders/:id", Handler: lambda.Chain(h.HandleGetOrder, requireUser)},
		{Method: http.MethodPut, Pattern: "/orders/:id", Handler: lambda.Chain(h.HandleMarkOrderPaid, requireUser)},
	}
}

func (h *OrderHandler) listOrders(ctx context.Context, userID string) result {
	orders, err := h.orderService.ListOrders(ctx, userID)
	if err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(orders)
}

func (h *OrderHandler) getOrder(ctx context.Context, userID, id string) result {
	order, err := h.orderService.GetOrder(ctx, userID, id)
	if err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(order)
}

func (h *OrderHandler) createOrder(ctx context.Context, userID string, req *services.CreateOrderRequest) result {
	order, err := h.orderService.CreateOrder(ctx, userID, req)
	if err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(IDResponse{ID: order.ID})
}

func (h *OrderHandler) markPaid(ctx context.Context, userID, id string) result {
	if err := h.orderService.MarkOrderPaid(ctx, userID, id); err != nil {
		return failed(err, http.StatusInternalServerError, h.logger)
	}
	return ok(success)
}

// @Summary List orders
// @Description List the acting user's orders with their lines
// @Tags orders
// @Produce json
// @Param uid header string true "Acting user"
// @Success 200 {object} map[string][]models.OrderView
// @Failure 403 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	h.listOrders(c.Request.Context(), ginUserID(c)).gin(c)
}

// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param uid header string true "Acting user"
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]models.OrderView
// @Failure 403 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	h.getOrder(c.Request.Context(), ginUserID(c), c.Param("id")).gin(c)
}

// @Summary Create an order
// @Description Create an order and its lines in one transaction. Repeated product ids are merged.
// @Tags orders
// @Accept json
// @Produce json
// @Param uid header string true "Acting user"
// @Param order body services.CreateOrderRequest true "Order lines"
// @Success 200 {object} map[string]IDResponse
// @Failure 403 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failed(malformedBody(err), http.StatusInternalServerError, h.logger).gin(c)
		return
	}

	h.createOrder(c.Request.Context(), ginUserID(c), &req).gin(c)
}

// @Summary Mark order paid
// @Description Flag the order as paid and empty the acting user's cart
// @Tags orders
// @Produce json
// @Param uid header string true "Acting user"
// @Param id path string true "Order ID"
// @Success 200 {object} map[string]SuccessResponse
// @Failure 403 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /orders/{id} [put]
func (h *OrderHandler) MarkOrderPaid(c *gin.Context) {
	h.markPaid(c.Request.Context(), ginUserID(c), c.Param("id")).gin(c)
}

// HandleListOrders handles GET /orders
func (h *OrderHandler) HandleListOrders(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.listOrders(ctx, lambda.UserID(ctx)).lambda()
}

// HandleGetOrder handles GET /orders/:id
func (h *OrderHandler) HandleGetOrder(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.getOrder(ctx, lambda.UserID(ctx), req.PathParams.Get("id")).lambda()
}

// HandleCreateOrder handles POST /orders
func (h *OrderHandler) HandleCreateOrder(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var createReq services.CreateOrderRequest
	if err := json.Unmarshal(req.Body, &createReq); err != nil {
		return failed(malformedBody(err), http.StatusInternalServerError, h.logger).lambda()
	}

	return h.createOrder(ctx, lambda.UserID(ctx), &createReq).lambda()
}

// HandleMarkOrderPaid handles PUT /orders/:id
func (h *OrderHandler) HandleMarkOrderPaid(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.markPaid(ctx, lambda.UserID(ctx), req.PathParams.Get("id")).lambda()
}

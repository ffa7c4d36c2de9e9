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

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService services.UserService
	logger      *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Routes returns the user route table for the Lambda router
func (h *UserHandler) Routes() []lambda.Route {
	return []lambda.Route{
		{Method: http.MethodGet, Pattern: "/user", Handler: h.HandleListUsers},
		{Method: http.MethodPost, Pattern: "/user", Handler: h.HandleCreateUser},
		{Method: http.MethodGet, Pattern: "/user/:id", Handler: h.HandleGetUser},
	}
}

func (h *UserHandler) createUser(ctx context.Context, req *services.CreateUserRequest) result {
	user, err := h.userService.CreateUser(ctx, req)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(user)
}

func (h *UserHandler) listUsers(ctx context.Context) result {
	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(users)
}

func (h *UserHandler) getUser(ctx context.Context, id string) result {
	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		return failed(err, http.StatusBadRequest, h.logger)
	}
	return ok(user)
}

// @Summary Create a user
// @Tags user
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User data"
// @Success 200 {object} map[string]models.User
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /user [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failed(malformedBody(err), http.StatusBadRequest, h.logger).gin(c)
		return
	}

	h.createUser(c.Request.Context(), &req).gin(c)
}

// @Summary List users
// @Tags user
// @Produce json
// @Success 200 {object} map[string][]models.User
// @Failure 500 {object} CodeResponse
// @Router /user [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.listUsers(c.Request.Context()).gin(c)
}

// @Summary Get user by ID
// @Tags user
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]models.User
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} CodeResponse
// @Router /user/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	h.getUser(c.Request.Context(), c.Param("id")).gin(c)
}

// HandleCreateUser handles POST /user
func (h *UserHandler) HandleCreateUser(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var createReq services.CreateUserRequest
	if err := json.Unmarshal(req.Body, &createReq); err != nil {
		return failed(malformedBody(err), http.StatusBadRequest, h.logger).lambda()
	}

	return h.createUser(ctx, &createReq).lambda()
}

// HandleListUsers handles GET /user
func (h *UserHandler) HandleListUsers(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.listUsers(ctx).lambda()
}

// HandleGetUser handles GET /user/:id
func (h *UserHandler) HandleGetUser(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	return h.getUser(ctx, req.PathParams.Get("id")).lambda()
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront-functions/internal/middleware"
	"storefront-functions/internal/services"
	"storefront-functions/pkg/lambda"
	"storefront-functions/pkg/server"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	ProductService services.ProductService
	UserService    services.UserService
	CartService    services.CartService
	OrderService   services.OrderService

	// AuthService is nil when no JWT secret is configured
	AuthService  *middleware.AuthService
	AuthRequired bool

	RoutePrefix       string
	RequestsPerSecond float64
	Burst             int
	HealthCheck       func(ctx context.Context) error
	Logger            *logrus.Logger
}

func (c *RouterConfig) logger() *logrus.Logger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	logger := config.logger()

	productHandler := NewProductHandler(config.ProductService, logger)
	userHandler := NewUserHandler(config.UserService, logger)
	cartHandler := NewCartHandler(config.CartService, logger)
	orderHandler := NewOrderHandler(config.OrderService, logger)

	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = false
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		if config.HealthCheck != nil {
			if err := config.HealthCheck(c.Request.Context()); err != nil {
				logger.WithError(err).Error("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"message": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "storefront-functions",
			"version": "1.0.0",
		})
	})

	api := router.Group(config.RoutePrefix)
	if config.AuthService != nil {
		api.Use(middleware.Authentication(config.AuthService, config.AuthRequired))
	}
	{
		products := api.Group("/products")
		{
			products.GET("", productHandler.ListProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
		}

		users := api.Group("/user")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
		}

		carts := api.Group("/carts")
		carts.Use(middleware.RequireUser())
		{
			carts.GET("", cartHandler.ListCart)
			carts.POST("", cartHandler.AddToCart)
			carts.PUT("", cartHandler.RemoveManyFromCart)
			carts.DELETE("/:id", cartHandler.RemoveFromCart)
		}

		orders := api.Group("/orders")
		orders.Use(middleware.RequireUser())
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", orderHandler.MarkOrderPaid)
		}
	}
}

// TrimTrailingSlash routes "/carts/" like "/carts", the way the function
// router matches paths. Swagger paths are left alone.
func TrimTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if len(path) > 1 && strings.HasSuffix(path, "/") && !strings.HasPrefix(path, "/swagger/") {
			r.URL.Path = "/" + strings.Trim(path, "/")
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, config *RouterConfig) {
	logger := config.logger()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// Request size limit (1MB)
	router.Use(middleware.RequestSizeLimit(1 << 20))

	if config.RequestsPerSecond > 0 {
		router.Use(middleware.RateLimiter(config.RequestsPerSecond, config.Burst))
	}

	router.Use(middleware.StructuredLogger(logger))
}

// LambdaRoutes returns the route table of every resource
func LambdaRoutes(config *RouterConfig) []lambda.Route {
	logger := config.logger()

	var routes []lambda.Route
	routes = append(routes, NewProductHandler(config.ProductService, logger).Routes()...)
	routes = append(routes, NewUserHandler(config.UserService, logger).Routes()...)
	routes = append(routes, NewCartHandler(config.CartService, logger).Routes()...)
	routes = append(routes, NewOrderHandler(config.OrderService, logger).Routes()...)
	return routes
}

// NewLambdaRouter builds a function router over routes with the logging,
// rate limiting and token middleware configured in config
func NewLambdaRouter(config *RouterConfig, routes []lambda.Route) *lambda.Router {
	logger := config.logger()

	chain := []lambda.Middleware{lambda.Logging(logger)}
	if config.RequestsPerSecond > 0 {
		chain = append(chain, lambda.RateLimit(config.RequestsPerSecond, config.Burst))
	}
	if config.AuthService != nil {
		chain = append(chain, lambda.Authenticate(config.AuthService, config.AuthRequired))
	}

	return lambda.NewRouter(routes,
		lambda.WithPrefix(config.RoutePrefix, "/functions/v1"),
		lambda.WithMiddleware(chain...),
		lambda.WithLogger(logger),
	)
}

// NewRouterConfig builds the router configuration from a wired container
func NewRouterConfig(container *server.Container) *RouterConfig {
	cfg := container.Config

	return &RouterConfig{
		ProductService:    container.ProductService,
		UserService:       container.UserService,
		CartService:       container.CartService,
		OrderService:      container.OrderService,
		AuthService:       container.AuthService,
		AuthRequired:      cfg.Auth.Required,
		RoutePrefix:       cfg.RoutePrefix,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		HealthCheck:       container.HealthCheck,
		Logger:            container.Logger,
	}
}

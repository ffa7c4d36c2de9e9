package server

import (
	"context"
	"fmt"
	"time"

	"storefront-functions/internal/cache"
	"storefront-functions/internal/config"
	"storefront-functions/internal/database"
	"storefront-functions/internal/middleware"
	"storefront-functions/internal/repositories/sqlite"
	"storefront-functions/internal/services"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *logrus.Logger
	ProductService services.ProductService
	UserService    services.UserService
	CartService    services.CartService
	OrderService   services.OrderService
	AuthService    *middleware.AuthService

	// Internal dependencies
	connections  *database.ConnectionManager
	productCache cache.Cache
}

// NewContainer opens the database, wires the repositories and services and
// connects the product cache when one is configured
func NewContainer(cfg *config.Config) (*Container, error) {
	logger := cfg.Log.NewLogger()

	connections := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
	if err := connections.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	productCache := newProductCache(cfg.Cache, logger)

	repos := sqlite.NewRepositoryContainer(connections.GetDB(), logger)
	serviceContainer, err := services.NewServiceContainer(repos, &services.ServiceConfig{
		ProductCache:    productCache,
		ProductCacheTTL: cfg.Cache.TTL,
		Logger:          logger,
	})
	if err != nil {
		productCache.Close()
		connections.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}

	if err := serviceContainer.Validate(); err != nil {
		productCache.Close()
		connections.Close()
		return nil, fmt.Errorf("invalid service container: %w", err)
	}

	container := &Container{
		Config:         cfg,
		Logger:         logger,
		ProductService: serviceContainer.ProductService,
		UserService:    serviceContainer.UserService,
		CartService:    serviceContainer.CartService,
		OrderService:   serviceContainer.OrderService,
		connections:    connections,
		productCache:   productCache,
	}

	if cfg.Auth.Enabled() {
		container.AuthService = middleware.NewAuthService(&middleware.AuthConfig{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenDuration: time.Duration(cfg.Auth.ExpiryHours) * time.Hour,
			Issuer:        cfg.Auth.Issuer,
		})
	}

	return container, nil
}

// newProductCache connects Redis when configured and falls back to no
// caching when the connection fails
func newProductCache(cfg config.CacheConfig, logger *logrus.Logger) cache.Cache {
	if !cfg.Enabled() {
		return cache.NewNoopCache()
	}

	redisCache, err := cache.NewRedisCache(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "storefront:",
	}, logger)
	if err != nil {
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Product cache unavailable, continuing without it")
		return cache.NewNoopCache()
	}

	return redisCache
}

// HealthCheck verifies the database connection
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.connections == nil {
		return fmt.Errorf("container is closed")
	}
	return c.connections.HealthCheck(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.productCache != nil {
		if err := c.productCache.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close product cache")
		}
		c.productCache = nil
	}

	if c.connections != nil {
		if err := c.connections.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		c.connections = nil
	}

	return nil
}

package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-functions/internal/cache"
	"storefront-functions/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	ProductService ProductService
	UserService    UserService
	CartService    CartService
	OrderService   OrderService
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	ProductCache    cache.Cache
	ProductCacheTTL time.Duration
	Logger          *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos *repositories.RepositoryContainer, config *ServiceConfig) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository container cannot be nil")
	}
	if repos.Transactions == nil {
		return nil, fmt.Errorf("transaction manager cannot be nil")
	}

	if config == nil {
		config = &ServiceConfig{}
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.ProductCacheTTL <= 0 {
		config.ProductCacheTTL = 5 * time.Minute
	}

	return &ServiceContainer{
		ProductService: NewProductService(repos.ProductRepo, repos.Transactions, config.ProductCache, config.ProductCacheTTL, config.Logger),
		UserService:    NewUserService(repos.UserRepo),
		CartService:    NewCartService(repos.CartRepo, repos.ProductRepo, repos.Transactions, config.Logger),
		OrderService:   NewOrderService(repos.OrderRepo, repos.CartRepo, repos.Transactions, config.Logger),
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.ProductService == nil {
		return fmt.Errorf("product service is nil")
	}
	if sc.UserService == nil {
		return fmt.Errorf("user service is nil")
	}
	if sc.CartService == nil {
		return fmt.Errorf("cart service is nil")
	}
	if sc.OrderService == nil {
		return fmt.Errorf("order service is nil")
	}

	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/cache"
	"storefront-functions/internal/models"
	"storefront-functions/internal/pagination"
	"storefront-functions/internal/repositories"
)

const productCacheKeyPrefix = "product:"

// productService implements the ProductService interface
type productService struct {
	productRepo  repositories.ProductRepository
	transactions repositories.TransactionManager
	cache        cache.Cache
	cacheTTL     time.Duration
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewProductService creates a new product service instance. A nil cache
// disables read-through caching.
func NewProductService(
	productRepo repositories.ProductRepository,
	transactions repositories.TransactionManager,
	productCache cache.Cache,
	cacheTTL time.Duration,
	logger *logrus.Logger,
) ProductService {
	if productCache == nil {
		productCache = cache.NewNoopCache()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &productService{
		productRepo:  productRepo,
		transactions: transactions,
		cache:        productCache,
		cacheTTL:     cacheTTL,
		validator:    validator.New(),
		logger:       logger,
	}
}

// CreateProduct creates a new product
func (s *productService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: create product request cannot be nil", ErrInvalidArgument)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	product := models.NewProduct(req.Name, req.Price, req.ImageURL)
	if err := product.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct retrieves a product by ID, reading through the cache
func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: product ID cannot be empty", ErrInvalidArgument)
	}

	key := productCacheKeyPrefix + id

	if data, err := s.cache.Get(ctx, key); err == nil {
		product := &models.Product{}
		if err := json.Unmarshal(data, product); err == nil {
			return product, nil
		}
		s.logger.WithField("key", key).Warn("Discarding undecodable cached product")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WithError(err).WithField("key", key).Warn("Product cache read failed")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if data, err := json.Marshal(product); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("Product cache write failed")
		}
	}

	return product, nil
}

// ListProducts retrieves every product
func (s *productService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListProductsPage counts and fetches the requested window inside one read
// transaction so the metadata and content describe the same snapshot
func (s *productService) ListProductsPage(ctx context.Context, pageRaw, pageSizeRaw *string) (*pagination.Page[*models.Product], error) {
	req, err := pagination.ParseRequest(pageRaw, pageSizeRaw)
	if err != nil {
		return nil, err
	}

	var page pagination.Page[*models.Product]
	err = s.transactions.WithReadTransaction(ctx, func(ctx context.Context) error {
		total, err := s.productRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}

		d := pagination.Compute(req, total)

		var content []*models.Product
		if !d.Empty() {
			content, err = s.productRepo.ListRange(ctx, d.RangeStart, d.Limit())
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
		}

		page = pagination.NewPage(d, content)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"page":           page.Page,
		"page_size":      page.PageSize,
		"total_elements": page.TotalElements,
		"returned":       len(page.Content),
	}).Debug("Product page computed")

	return &page, nil
}

package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"
)

// cartService implements the CartService interface
type cartService struct {
	cartRepo     repositories.CartRepository
	productRepo  repositories.ProductRepository
	transactions repositories.TransactionManager
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewCartService creates a new cart service instance
func NewCartService(
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	transactions repositories.TransactionManager,
	logger *logrus.Logger,
) CartService {
	if logger == nil {
		logger = logrus.New()
	}
	return &cartService{
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		transactions: transactions,
		validator:    validator.New(),
		logger:       logger,
	}
}

// ListCart returns the user's cart with product details
func (s *cartService) ListCart(ctx context.Context, userID string) ([]*models.CartEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	entries, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart: %w", err)
	}
	return entries, nil
}

// AddToCart adds the product to the user's cart
func (s *cartService) AddToCart(ctx context.Context, userID string, req *AddToCartRequest) (*models.CartItem, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: add to cart request cannot be nil", ErrInvalidArgument)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	productID := req.Product.ID

	var item *models.CartItem
	err := s.transactions.WithTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.productRepo.Exists(ctx, productID)
		if err != nil {
			return fmt.Errorf("failed to check product: %w", err)
		}
		if !exists {
			return repositories.NotFoundError("product", productID)
		}

		existing, err := s.cartRepo.FindByUserAndProduct(ctx, userID, productID)
		if err == nil {
			item = existing
			return nil
		}
		if !repositories.IsNotFound(err) {
			return fmt.Errorf("failed to look up cart: %w", err)
		}

		item = models.NewCartItem(userID, productID)
		if err := s.cartRepo.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to add to cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
		"cart_id":    item.ID,
	}).Debug("Product added to cart")

	return item, nil
}

// RemoveFromCart removes one of the user's cart rows
func (s *cartService) RemoveFromCart(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: cart ID cannot be empty", ErrInvalidArgument)
	}

	if _, err := s.cartRepo.DeleteForUser(ctx, id, userID); err != nil {
		return fmt.Errorf("failed to remove from cart: %w", err)
	}
	return nil
}

// RemoveManyFromCart removes the listed cart rows owned by the user
func (s *cartService) RemoveManyFromCart(ctx context.Context, userID string, req *RemoveCartItemsRequest) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: remove cart items request cannot be nil", ErrInvalidArgument)
	}
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}

	removed, err := s.cartRepo.DeleteManyForUser(ctx, req.IDs, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart items: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"requested": len(req.IDs),
		"removed":   removed,
	}).Debug("Cart items removed")

	return nil
}

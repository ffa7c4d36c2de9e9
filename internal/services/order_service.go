package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"
)

// orderService implements the OrderService interface
type orderService struct {
	orderRepo    repositories.OrderRepository
	cartRepo     repositories.CartRepository
	transactions repositories.TransactionManager
	validator    *validator.Validate
	logger       *logrus.Logger
}

// NewOrderService creates a new order service instance
func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	transactions repositories.TransactionManager,
	logger *logrus.Logger,
) OrderService {
	if logger == nil {
		logger = logrus.New()
	}
	return &orderService{
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		transactions: transactions,
		validator:    validator.New(),
		logger:       logger,
	}
}

// ListOrders returns the user's orders with their details
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]*models.OrderView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one of the user's orders
func (s *orderService) GetOrder(ctx context.Context, userID, id string) (*models.OrderView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: order ID cannot be empty", ErrInvalidArgument)
	}

	order, err := s.orderRepo.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// CreateOrder stores the order header and its lines in one transaction
func (s *orderService) CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*models.Order, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: create order request cannot be nil", ErrInvalidArgument)
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	order := models.NewOrder(userID)
	merged := req.MergedLines()

	lines := make([]*models.OrderLine, 0, len(merged))
	for _, line := range merged {
		lines = append(lines, &models.OrderLine{
			OrderID:   order.ID,
			ProductID: line.ID,
			Quantity:  line.Quantity,
		})
	}

	err := s.transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := s.orderRepo.CreateLines(ctx, lines); err != nil {
			if repositories.IsConstraint(err) {
				s.logger.WithFields(logrus.Fields{
					"user_id":  userID,
					"order_id": order.ID,
				}).Warn("Order references an unknown product")
			}
			return fmt.Errorf("failed to create order lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"order_id": order.ID,
		"lines":    len(lines),
	}).Info("Order created")

	return order, nil
}

// MarkOrderPaid flags the order as paid and clears the user's cart
func (s *orderService) MarkOrderPaid(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: order ID cannot be empty", ErrInvalidArgument)
	}

	var cleared int64
	err := s.transactions.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orderRepo.MarkPaid(ctx, id, userID); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		n, err := s.cartRepo.DeleteByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		cleared = n
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"order_id":      id,
		"cleared_items": cleared,
	}).Info("Order marked paid")

	return nil
}

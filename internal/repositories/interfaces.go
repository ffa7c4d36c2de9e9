package repositories

import (
	"context"

	"storefront-functions/internal/models"
)

// ProductRepository defines product catalogue persistence
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *models.Product) error

	// GetByID retrieves a product by its ID
	GetByID(ctx context.Context, id string) (*models.Product, error)

	// List retrieves every product in insertion order
	List(ctx context.Context) ([]*models.Product, error)

	// Count returns the total number of products
	Count(ctx context.Context) (int64, error)

	// ListRange retrieves at most limit products starting at offset. Ranges
	// past the last row yield an empty slice.
	ListRange(ctx context.Context, offset, limit int64) ([]*models.Product, error)

	// Exists checks if a product with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// UserRepository defines user persistence
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// CartRepository defines shopping cart persistence. Every mutation is scoped
// to the owning user.
type CartRepository interface {
	// ListByUser returns the user's cart rows joined with their products
	ListByUser(ctx context.Context, userID string) ([]*models.CartEntry, error)

	// FindByUserAndProduct returns the existing row or an ErrNotFound error
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.CartItem, error)

	// Create inserts a new cart row
	Create(ctx context.Context, item *models.CartItem) error

	// DeleteForUser removes one row; absent rows are not an error
	DeleteForUser(ctx context.Context, id, userID string) (int64, error)

	// DeleteManyForUser removes the listed rows; absent ids are ignored
	DeleteManyForUser(ctx context.Context, ids []string, userID string) (int64, error)

	// DeleteByUser empties the user's cart
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// OrderRepository defines order and order line persistence
type OrderRepository interface {
	// Create inserts the order header
	Create(ctx context.Context, order *models.Order) error

	// CreateLines inserts the order lines
	CreateLines(ctx context.Context, lines []*models.OrderLine) error

	// ListByUser returns the user's orders with flattened order details
	ListByUser(ctx context.Context, userID string) ([]*models.OrderView, error)

	// GetForUser returns one of the user's orders or an ErrNotFound error
	GetForUser(ctx context.Context, id, userID string) (*models.OrderView, error)

	// MarkPaid flags the user's order as paid or returns an ErrNotFound error
	MarkPaid(ctx context.Context, id, userID string) error
}

// RepositoryContainer holds all repository instances
type RepositoryContainer struct {
	ProductRepo  ProductRepository
	UserRepo     UserRepository
	CartRepo     CartRepository
	OrderRepo    OrderRepository
	Transactions TransactionManager
}

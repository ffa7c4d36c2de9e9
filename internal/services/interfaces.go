package services

import (
	"context"

	"storefront-functions/internal/models"
	"storefront-functions/internal/pagination"
)

// ProductService defines the product catalogue operations
type ProductService interface {
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)

	// ListProductsPage returns one page of products. Raw values come straight
	// from the query string; nil selects the default.
	ListProductsPage(ctx context.Context, pageRaw, pageSizeRaw *string) (*pagination.Page[*models.Product], error)
}

// UserService defines the user operations
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// CartService defines the shopping cart operations. Every call acts on
// behalf of userID.
type CartService interface {
	ListCart(ctx context.Context, userID string) ([]*models.CartEntry, error)

	// AddToCart returns the existing row when the product is already in
	// the user's cart
	AddToCart(ctx context.Context, userID string, req *AddToCartRequest) (*models.CartItem, error)

	RemoveFromCart(ctx context.Context, userID, id string) error

	// RemoveManyFromCart succeeds even when some ids do not exist
	RemoveManyFromCart(ctx context.Context, userID string, req *RemoveCartItemsRequest) error
}

// OrderService defines the order operations. Every call acts on behalf of
// userID.
type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]*models.OrderView, error)
	GetOrder(ctx context.Context, userID, id string) (*models.OrderView, error)

	// CreateOrder stores the order and its lines atomically
	CreateOrder(ctx context.Context, userID string, req *CreateOrderRequest) (*models.Order, error)

	// MarkOrderPaid flags the order as paid and empties the user's cart
	// in the same transaction
	MarkOrderPaid(ctx context.Context, userID, id string) error
}

// Request types for service operations

// CreateProductRequest is the body of POST /products
type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Price    float64 `json:"price" validate:"gte=0"`
	ImageURL string  `json:"imageUrl" validate:"omitempty,url"`
}

// CreateUserRequest is the body of POST /user
type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CartProductRef identifies the product being added
type CartProductRef struct {
	ID string `json:"id" validate:"required"`
}

// AddToCartRequest is the body of POST /carts
type AddToCartRequest struct {
	Product *CartProductRef `json:"product" validate:"required"`
}

// RemoveCartItemsRequest is the body of PUT /carts
type RemoveCartItemsRequest struct {
	IDs []string `json:"ids" validate:"required,dive,required"`
}

// CreateOrderLine is one requested product and quantity
type CreateOrderLine struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	OrderDetails []CreateOrderLine `json:"orderDetails" validate:"required,min=1,dive"`
}

// MergedLines returns the requested lines with duplicate products folded
// into one line, keeping first-seen order
func (r *CreateOrderRequest) MergedLines() []CreateOrderLine {
	merged := make([]CreateOrderLine, 0, len(r.OrderDetails))
	index := make(map[string]int, len(r.OrderDetails))

	for _, line := range r.OrderDetails {
		if i, ok := index[line.ID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ID] = len(merged)
		merged = append(merged, line)
	}

	return merged
}

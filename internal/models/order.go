package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Order is a user's checkout record
type Order struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	IsPaid    bool      `json:"isPaid" db:"is_paid"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// NewOrder creates a new unpaid order for the user
func NewOrder(userID string) *Order {
	return &Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate validates the order header
func (o *Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order ID is required")
	}
	if o.UserID == "" {
		return fmt.Errorf("order user ID is required")
	}
	return nil
}

// OrderLine is one product and quantity owned by an order
type OrderLine struct {
	OrderID   string `json:"orderId" db:"order_id"`
	ProductID string `json:"productId" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// Validate validates the order line
func (l *OrderLine) Validate() error {
	if l.OrderID == "" {
		return fmt.Errorf("order line order ID is required")
	}
	if l.ProductID == "" {
		return fmt.Errorf("order line product ID is required")
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("order line quantity must be positive")
	}
	return nil
}

// OrderDetail is an order line flattened with its product fields
type OrderDetail struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

// OrderView is the read model returned for order listings
type OrderView struct {
	ID           string        `json:"id"`
	IsPaid       bool          `json:"isPaid"`
	OrderDetails []OrderDetail `json:"orderDetails"`
}

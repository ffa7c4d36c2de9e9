package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CartItem is one (user, product) pairing in a shopping cart. A user holds
// at most one row per product.
type CartItem struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	ProductID string    `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// NewCartItem creates a new cart row for the user and product
func NewCartItem(userID, productID string) *CartItem {
	return &CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate validates the cart row
func (c *CartItem) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cart item ID is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("cart item user ID is required")
	}
	if c.ProductID == "" {
		return fmt.Errorf("cart item product ID is required")
	}
	return nil
}

// CartEntry is the read model of a cart row joined with its product
type CartEntry struct {
	ID      string  `json:"id"`
	Product Product `json:"product"`
}

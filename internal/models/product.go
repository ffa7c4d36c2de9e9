package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalogue
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// NewProduct creates a new product with generated ID and timestamp
func NewProduct(name string, price float64, imageURL string) *Product {
	return &Product{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Price:     price,
		ImageURL:  strings.TrimSpace(imageURL),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate validates the product data
func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product ID is required")
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}

	if len(p.Name) > 255 {
		return fmt.Errorf("product name cannot exceed 255 characters")
	}

	if p.Price < 0 {
		return fmt.Errorf("product price cannot be negative")
	}

	if p.ImageURL != "" && !IsValidImageURL(p.ImageURL) {
		return fmt.Errorf("product image URL must be an absolute http(s) URL")
	}

	return nil
}

// IsValidImageURL accepts absolute http and https URLs
func IsValidImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a shopper record
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// NewUser creates a new user with generated ID and timestamp
func NewUser(name string) *User {
	return &User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
}

// Validate validates the user data
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user name is required")
	}
	if len(u.Name) > 255 {
		return fmt.Errorf("user name cannot exceed 255 characters")
	}
	return nil
}

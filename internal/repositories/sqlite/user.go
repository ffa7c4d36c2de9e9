package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserRepository implements the UserRepository interface for SQLite
type UserRepository struct {
	*BaseRepository[models.User]
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(db *sql.DB, logger *logrus.Logger) repositories.UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository[models.User](db, "users", logger),
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return repositories.ValidationError("user", user.ID, err)
	}

	query := `INSERT INTO users (id, name, created_at) VALUES (?, ?, ?)`

	if _, err := r.executeExec(ctx, "create", query, user.ID, user.Name, user.CreatedAt); err != nil {
		if repositories.IsDuplicate(err) {
			return repositories.DuplicateError("user", "id", user.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	user := &models.User{}
	err := r.executeQueryRow(ctx, "get_by_id", "SELECT id, name, created_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("user", id)
		}
		return nil, r.translateError("get_by_id", id, err)
	}

	return user, nil
}

// List retrieves every user in insertion order
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.executeQuery(ctx, "list", "SELECT id, name, created_at FROM users ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, r.translateError("list", "", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, r.translateError("list", "", err)
	}

	return users, nil
}

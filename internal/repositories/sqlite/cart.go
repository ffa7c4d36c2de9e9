package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CartRepository implements the CartRepository interface for SQLite
type CartRepository struct {
	*BaseRepository[models.CartItem]
}

// NewCartRepository creates a new SQLite cart repository
func NewCartRepository(db *sql.DB, logger *logrus.Logger) repositories.CartRepository {
	return &CartRepository{
		BaseRepository: NewBaseRepository[models.CartItem](db, "cart", logger),
	}
}

// ListByUser returns the user's cart joined with the product catalogue
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]*models.CartEntry, error) {
	query := `
		SELECT c.id, p.id, p.name, p.price, p.image_url, p.created_at
		FROM cart c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = ?
		ORDER BY c.rowid`

	rows, err := r.executeQuery(ctx, "list_by_user", query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.CartEntry{}
	for rows.Next() {
		entry := &models.CartEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Product.ID,
			&entry.Product.Name,
			&entry.Product.Price,
			&entry.Product.ImageURL,
			&entry.Product.CreatedAt,
		)
		if err != nil {
			return nil, r.translateError("list_by_user", "", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.translateError("list_by_user", "", err)
	}

	return entries, nil
}

// FindByUserAndProduct returns the user's row for the product
func (r *CartRepository) FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	query := `SELECT id, user_id, product_id, created_at FROM cart WHERE user_id = ? AND product_id = ?`

	item := &models.CartItem{}
	err := r.executeQueryRow(ctx, "find_by_user_and_product", query, userID, productID).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("cart", productID)
		}
		return nil, r.translateError("find_by_user_and_product", productID, err)
	}

	return item, nil
}

// Create inserts a new cart row
func (r *CartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := item.Validate(); err != nil {
		return repositories.ValidationError("cart", item.ID, err)
	}

	query := `INSERT INTO cart (id, user_id, product_id, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	return err
}

// DeleteForUser removes one of the user's rows
func (r *CartRepository) DeleteForUser(ctx context.Context, id, userID string) (int64, error) {
	if err := r.validateID(id); err != nil {
		return 0, err
	}

	result, err := r.executeExec(ctx, "delete", "DELETE FROM cart WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return 0, err
	}

	return r.rowsAffected(result, "delete")
}

// DeleteManyForUser removes the listed rows owned by the user
func (r *CartRepository) DeleteManyForUser(ctx context.Context, ids []string, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	query := "DELETE FROM cart WHERE user_id = ? AND id IN (" + placeholders(len(ids)) + ")"

	result, err := r.executeExec(ctx, "delete_many", query, args...)
	if err != nil {
		return 0, err
	}

	return r.rowsAffected(result, "delete_many")
}

// DeleteByUser empties the user's cart
func (r *CartRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.executeExec(ctx, "delete_by_user", "DELETE FROM cart WHERE user_id = ?", userID)
	if err != nil {
		return 0, err
	}

	return r.rowsAffected(result, "delete_by_user")
}

package sqlite

import (
	"context"
	"database/sql"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

const orderViewQuery = `
	SELECT o.id, o.is_paid, p.id, p.name, p.price, p.image_url, od.quantity
	FROM orders o
	LEFT JOIN order_details od ON od.order_id = o.id
	LEFT JOIN products p ON p.id = od.product_id
	WHERE o.user_id = ?`

// OrderRepository implements the OrderRepository interface for SQLite
type OrderRepository struct {
	*BaseRepository[models.Order]
}

// NewOrderRepository creates a new SQLite order repository
func NewOrderRepository(db *sql.DB, logger *logrus.Logger) repositories.OrderRepository {
	return &OrderRepository{
		BaseRepository: NewBaseRepository[models.Order](db, "orders", logger),
	}
}

// Create inserts the order header
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := order.Validate(); err != nil {
		return repositories.ValidationError("order", order.ID, err)
	}

	query := `INSERT INTO orders (id, user_id, is_paid, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query, order.ID, order.UserID, order.IsPaid, order.CreatedAt)
	return err
}

// CreateLines inserts the order lines
func (r *OrderRepository) CreateLines(ctx context.Context, lines []*models.OrderLine) error {
	query := `INSERT INTO order_details (order_id, product_id, quantity) VALUES (?, ?, ?)`

	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return repositories.ValidationError("order_details", line.OrderID, err)
		}
		if _, err := r.executeExec(ctx, "create_line", query, line.OrderID, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	return nil
}

// ListByUser returns the user's orders with their details
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*models.OrderView, error) {
	return r.queryViews(ctx, "list_by_user", orderViewQuery+" ORDER BY o.rowid, od.rowid", userID)
}

// GetForUser returns one of the user's orders
func (r *OrderRepository) GetForUser(ctx context.Context, id, userID string) (*models.OrderView, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	views, err := r.queryViews(ctx, "get_for_user", orderViewQuery+" AND o.id = ? ORDER BY od.rowid", userID, id)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, repositories.NotFoundError("order", id)
	}

	return views[0], nil
}

// MarkPaid flags the user's order as paid
func (r *OrderRepository) MarkPaid(ctx context.Context, id, userID string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	result, err := r.executeExec(ctx, "mark_paid", "UPDATE orders SET is_paid = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "mark_paid", id)
}

// queryViews folds the joined rows into one view per order, keeping row order
func (r *OrderRepository) queryViews(ctx context.Context, operation, query string, args ...interface{}) ([]*models.OrderView, error) {
	rows, err := r.executeQuery(ctx, operation, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []*models.OrderView{}
	byID := make(map[string]*models.OrderView)

	for rows.Next() {
		var (
			orderID   string
			isPaid    bool
			productID sql.NullString
			name      sql.NullString
			price     sql.NullFloat64
			imageURL  sql.NullString
			quantity  sql.NullInt64
		)
		if err := rows.Scan(&orderID, &isPaid, &productID, &name, &price, &imageURL, &quantity); err != nil {
			return nil, r.translateError(operation, "", err)
		}

		view, ok := byID[orderID]
		if !ok {
			view = &models.OrderView{ID: orderID, IsPaid: isPaid, OrderDetails: []models.OrderDetail{}}
			byID[orderID] = view
			views = append(views, view)
		}

		if productID.Valid {
			view.OrderDetails = append(view.OrderDetails, models.OrderDetail{
				ID:       productID.String,
				Name:     name.String,
				Price:    price.Float64,
				ImageURL: imageURL.String,
				Quantity: int(quantity.Int64),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, r.translateError(operation, "", err)
	}

	return views, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

const productColumns = "id, name, price, image_url, created_at"

// ProductRepository implements the ProductRepository interface for SQLite
type ProductRepository struct {
	*BaseRepository[models.Product]
}

// NewProductRepository creates a new SQLite product repository
func NewProductRepository(db *sql.DB, logger *logrus.Logger) repositories.ProductRepository {
	return &ProductRepository{
		BaseRepository: NewBaseRepository[models.Product](db, "products", logger),
	}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := product.Validate(); err != nil {
		return repositories.ValidationError("product", product.ID, err)
	}

	query := `INSERT INTO products (id, name, price, image_url, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.executeExec(ctx, "create", query,
		product.ID,
		product.Name,
		product.Price,
		product.ImageURL,
		product.CreatedAt,
	)
	if err != nil {
		if repositories.IsDuplicate(err) {
			return repositories.DuplicateError("product", "id", product.ID)
		}
		return err
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	query := "SELECT " + productColumns + " FROM products WHERE id = ?"

	product, err := scanProduct(r.executeQueryRow(ctx, "get_by_id", query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.NotFoundError("product", id)
		}
		return nil, r.translateError("get_by_id", id, err)
	}

	return product, nil
}

// List retrieves every product in insertion order
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := "SELECT " + productColumns + " FROM products ORDER BY rowid"
	return r.queryProducts(ctx, "list", query)
}

// Count returns the total number of products
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.countRows(ctx, "")
}

// ListRange retrieves a window of products in insertion order
func (r *ProductRepository) ListRange(ctx context.Context, offset, limit int64) ([]*models.Product, error) {
	if offset < 0 || limit < 0 {
		return nil, repositories.NewRepositoryError("list_range", "product", "", repositories.ErrValidation)
	}

	query := "SELECT " + productColumns + " FROM products ORDER BY rowid LIMIT ? OFFSET ?"
	return r.queryProducts(ctx, "list_range", query, limit, offset)
}

func (r *ProductRepository) queryProducts(ctx context.Context, operation, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := r.executeQuery(ctx, operation, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, r.translateError(operation, "", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, r.translateError(operation, "", err)
	}

	return products, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(s scanner) (*models.Product, error) {
	product := &models.Product{}
	err := s.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.ImageURL,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

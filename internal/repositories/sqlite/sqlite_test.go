package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"storefront-functions/internal/database"
	"storefront-functions/internal/models"
	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

func setupTestDB(t *testing.T) (*sql.DB, *logrus.Logger, func()) {
	tempDir, err := os.MkdirTemp("", "sqlite_repo_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.InitializeDatabase(filepath.Join(tempDir, "test.db"), "", true, logger)
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to initialize database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(tempDir)
	}

	return db, logger, cleanup
}

func seedProducts(t *testing.T, repo repositories.ProductRepository, n int) []*models.Product {
	products := make([]*models.Product, 0, n)
	for i := 0; i < n; i++ {
		p := models.NewProduct(fmt.Sprintf("Product %02d", i), float64(i)+0.5, "")
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
		products = append(products, p)
	}
	return products
}

func TestProductRepository(t *testing.T) {
	db, logger, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db, logger)
	ctx := context.Background()

	products := seedProducts(t, repo, 25)

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, products[3].ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.Name != products[3].Name || got.Price != products[3].Price {
			t.Errorf("GetByID() = %+v, want %+v", got, products[3])
		}
	})

	t.Run("GetByID not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		if !repositories.IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("Create rejects invalid product", func(t *testing.T) {
		err := repo.Create(ctx, models.NewProduct("", -1, ""))
		if !errors.Is(err, repositories.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("Create duplicate", func(t *testing.T) {
		err := repo.Create(ctx, products[0])
		if !repositories.IsDuplicate(err) {
			t.Errorf("Expected duplicate error, got %v", err)
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != 25 {
			t.Errorf("Count() = %d, want 25", count)
		}
	})

	t.Run("List keeps insertion order", func(t *testing.T) {
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(list) != 25 {
			t.Fatalf("List() returned %d products, want 25", len(list))
		}
		for i, p := range list {
			if p.ID != products[i].ID {
				t.Errorf("List()[%d] = %s, want %s", i, p.ID, products[i].ID)
			}
		}
	})

	t.Run("ListRange", func(t *testing.T) {
		tests := []struct {
			name   string
			offset int64
			limit  int64
			want   int
			first  int
		}{
			{name: "first page", offset: 0, limit: 12, want: 12, first: 0},
			{name: "last partial page", offset: 24, limit: 12, want: 1, first: 24},
			{name: "beyond the end", offset: 36, limit: 12, want: 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.ListRange(ctx, tt.offset, tt.limit)
				if err != nil {
					t.Fatalf("ListRange() failed: %v", err)
				}
				if got == nil {
					t.Fatal("ListRange() must return an empty slice, not nil")
				}
				if len(got) != tt.want {
					t.Fatalf("ListRange() returned %d products, want %d", len(got), tt.want)
				}
				if tt.want > 0 && got[0].ID != products[tt.first].ID {
					t.Errorf("ListRange() first = %s, want %s", got[0].ID, products[tt.first].ID)
				}
			})
		}
	})

	t.Run("Exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, products[0].ID)
		if err != nil || !exists {
			t.Errorf("Exists() = %v, %v; want true", exists, err)
		}
		exists, err = repo.Exists(ctx, "missing")
		if err != nil || exists {
			t.Errorf("Exists() = %v, %v; want false", exists, err)
		}
	})
}

func TestUserRepository(t *testing.T) {
	db, logger, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(db, logger)
	ctx := context.Background()

	ada := models.NewUser("Ada")
	if err := repo.Create(ctx, ada); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := repo.Create(ctx, models.NewUser("Grace")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := repo.GetByID(ctx, ada.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Name != "Ada" {
		t.Errorf("Expected name Ada, got %s", got.Name)
	}

	if _, err := repo.GetByID(ctx, "missing"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(users) != 2 || users[0].ID != ada.ID {
		t.Errorf("Unexpected user list: %+v", users)
	}
}

func TestCartRepository(t *testing.T) {
	db, logger, cleanup := setupTestDB(t)
	defer cleanup()

	products := seedProducts(t, NewProductRepository(db, logger), 3)
	repo := NewCartRepository(db, logger)
	ctx := context.Background()

	items := []*models.CartItem{
		models.NewCartItem("alice", products[0].ID),
		models.NewCartItem("alice", products[1].ID),
		models.NewCartItem("alice", products[2].ID),
		models.NewCartItem("bob", products[0].ID),
	}
	for _, item := range items {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	t.Run("unique per user and product", func(t *testing.T) {
		err := repo.Create(ctx, models.NewCartItem("alice", products[0].ID))
		if !repositories.IsDuplicate(err) {
			t.Errorf("Expected duplicate error, got %v", err)
		}
		if code := repositories.Code(err); code != "SQLITE_2067" {
			t.Errorf("Expected unique constraint code SQLITE_2067, got %s", code)
		}
	})

	t.Run("unknown product violates foreign key", func(t *testing.T) {
		err := repo.Create(ctx, models.NewCartItem("alice", "nope"))
		if !repositories.IsConstraint(err) {
			t.Errorf("Expected constraint error, got %v", err)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		entries, err := repo.ListByUser(ctx, "alice")
		if err != nil {
			t.Fatalf("ListByUser() failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(entries))
		}
		if entries[0].ID != items[0].ID || entries[0].Product.Name != products[0].Name {
			t.Errorf("Unexpected first entry: %+v", entries[0])
		}

		empty, err := repo.ListByUser(ctx, "nobody")
		if err != nil || empty == nil || len(empty) != 0 {
			t.Errorf("Expected empty non-nil cart, got %v, %v", empty, err)
		}
	})

	t.Run("FindByUserAndProduct", func(t *testing.T) {
		found, err := repo.FindByUserAndProduct(ctx, "alice", products[1].ID)
		if err != nil {
			t.Fatalf("FindByUserAndProduct() failed: %v", err)
		}
		if found.ID != items[1].ID {
			t.Errorf("Expected %s, got %s", items[1].ID, found.ID)
		}
		if _, err := repo.FindByUserAndProduct(ctx, "bob", products[1].ID); !repositories.IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("DeleteForUser is owner scoped", func(t *testing.T) {
		n, err := repo.DeleteForUser(ctx, items[3].ID, "alice")
		if err != nil || n != 0 {
			t.Errorf("Deleting another user's row: n=%d err=%v", n, err)
		}
		n, err = repo.DeleteForUser(ctx, items[3].ID, "bob")
		if err != nil || n != 1 {
			t.Errorf("DeleteForUser() n=%d err=%v, want 1", n, err)
		}
	})

	t.Run("DeleteManyForUser ignores absent ids", func(t *testing.T) {
		n, err := repo.DeleteManyForUser(ctx, []string{items[0].ID, items[1].ID, "missing"}, "alice")
		if err != nil || n != 2 {
			t.Errorf("DeleteManyForUser() n=%d err=%v, want 2", n, err)
		}
		n, err = repo.DeleteManyForUser(ctx, nil, "alice")
		if err != nil || n != 0 {
			t.Errorf("DeleteManyForUser(nil) n=%d err=%v, want 0", n, err)
		}
	})

	t.Run("DeleteByUser", func(t *testing.T) {
		n, err := repo.DeleteByUser(ctx, "alice")
		if err != nil || n != 1 {
			t.Errorf("DeleteByUser() n=%d err=%v, want 1", n, err)
		}
	})
}

func TestOrderRepository(t *testing.T) {
	db, logger, cleanup := setupTestDB(t)
	defer cleanup()

	products := seedProducts(t, NewProductRepository(db, logger), 2)
	repo := NewOrderRepository(db, logger)
	ctx := context.Background()

	order := models.NewOrder("alice")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	lines := []*models.OrderLine{
		{OrderID: order.ID, ProductID: products[0].ID, Quantity: 2},
		{OrderID: order.ID, ProductID: products[1].ID, Quantity: 1},
	}
	if err := repo.CreateLines(ctx, lines); err != nil {
		t.Fatalf("CreateLines() failed: %v", err)
	}

	if err := repo.Create(ctx, models.NewOrder("bob")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	t.Run("GetForUser", func(t *testing.T) {
		view, err := repo.GetForUser(ctx, order.ID, "alice")
		if err != nil {
			t.Fatalf("GetForUser() failed: %v", err)
		}
		if view.IsPaid {
			t.Error("New order should be unpaid")
		}
		if len(view.OrderDetails) != 2 {
			t.Fatalf("Expected 2 details, got %d", len(view.OrderDetails))
		}
		first := view.OrderDetails[0]
		if first.ID != products[0].ID || first.Name != products[0].Name || first.Quantity != 2 {
			t.Errorf("Unexpected first detail: %+v", first)
		}
	})

	t.Run("GetForUser other user", func(t *testing.T) {
		if _, err := repo.GetForUser(ctx, order.ID, "bob"); !repositories.IsNotFound(err) {
			t.Errorf("Expected not found error, got %v", err)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		views, err := repo.ListByUser(ctx, "bob")
		if err != nil {
			t.Fatalf("ListByUser() failed: %v", err)
		}
		if len(views) != 1 || len(views[0].OrderDetails) != 0 || views[0].OrderDetails == nil {
			t.Errorf("Unexpected orders for bob: %+v", views)
		}
	})

	t.Run("CreateLines rejects zero quantity", func(t *testing.T) {
		err := repo.CreateLines(ctx, []*models.OrderLine{{OrderID: order.ID, ProductID: products[0].ID}})
		if !errors.Is(err, repositories.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})

	t.Run("MarkPaid", func(t *testing.T) {
		if err := repo.MarkPaid(ctx, order.ID, "bob"); !repositories.IsNotFound(err) {
			t.Errorf("Expected not found for another user, got %v", err)
		}
		if err := repo.MarkPaid(ctx, order.ID, "alice"); err != nil {
			t.Fatalf("MarkPaid() failed: %v", err)
		}
		view, err := repo.GetForUser(ctx, order.ID, "alice")
		if err != nil {
			t.Fatalf("GetForUser() failed: %v", err)
		}
		if !view.IsPaid {
			t.Error("Order should be paid")
		}
	})
}

func TestTransactionManager(t *testing.T) {
	db, logger, cleanup := setupTestDB(t)
	defer cleanup()

	container := NewRepositoryContainer(db, logger)
	ctx := context.Background()

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := container.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			if err := container.ProductRepo.Create(ctx, models.NewProduct("Rolled back", 1, "")); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected boom, got %v", err)
		}

		count, err := container.ProductRepo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() failed: %v", err)
		}
		if count != 0 {
			t.Errorf("Expected rollback to discard the insert, got %d products", count)
		}
	})

	t.Run("commit", func(t *testing.T) {
		err := container.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			return container.ProductRepo.Create(ctx, models.NewProduct("Committed", 1, ""))
		})
		if err != nil {
			t.Fatalf("WithTransaction() failed: %v", err)
		}

		count, _ := container.ProductRepo.Count(ctx)
		if count != 1 {
			t.Errorf("Expected 1 product, got %d", count)
		}
	})

	t.Run("nested call joins outer transaction", func(t *testing.T) {
		err := container.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			return container.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
				_, err := container.ProductRepo.Count(ctx)
				return err
			})
		})
		if err != nil {
			t.Errorf("Nested WithTransaction() failed: %v", err)
		}
	})

	t.Run("read transaction", func(t *testing.T) {
		var count int64
		var page []*models.Product
		err := container.Transactions.WithReadTransaction(ctx, func(ctx context.Context) error {
			var err error
			if count, err = container.ProductRepo.Count(ctx); err != nil {
				return err
			}
			page, err = container.ProductRepo.ListRange(ctx, 0, 12)
			return err
		})
		if err != nil {
			t.Fatalf("WithReadTransaction() failed: %v", err)
		}
		if count != int64(len(page)) {
			t.Errorf("Count %d and page size %d disagree", count, len(page))
		}
	})

	t.Run("panic rolls back", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic to propagate")
			}
			count, _ := container.ProductRepo.Count(ctx)
			if count != 1 {
				t.Errorf("Expected panic to roll back, got %d products", count)
			}
		}()

		container.Transactions.WithTransaction(ctx, func(ctx context.Context) error {
			container.ProductRepo.Create(ctx, models.NewProduct("Panics", 1, ""))
			panic("boom")
		})
	})
}

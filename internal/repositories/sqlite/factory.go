package sqlite

import (
	"database/sql"

	"storefront-functions/internal/repositories"

	"github.com/sirupsen/logrus"
)

// NewRepositoryContainer wires every SQLite repository onto one pool
func NewRepositoryContainer(db *sql.DB, logger *logrus.Logger) *repositories.RepositoryContainer {
	if logger == nil {
		logger = logrus.New()
	}

	return &repositories.RepositoryContainer{
		ProductRepo:  NewProductRepository(db, logger),
		UserRepo:     NewUserRepository(db, logger),
		CartRepo:     NewCartRepository(db, logger),
		OrderRepo:    NewOrderRepository(db, logger),
		Transactions: NewSQLiteTransactionManager(db, logger),
	}
}

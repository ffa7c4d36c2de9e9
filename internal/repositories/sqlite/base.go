package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-functions/internal/repositories"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// querier is the subset of *sql.DB and *sql.Tx used by repositories
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// withTx returns a context that makes repositories join tx
func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// BaseRepository provides common functionality for all SQLite repositories
type BaseRepository[T any] struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

// NewBaseRepository creates a new base repository
func NewBaseRepository[T any](db *sql.DB, table string, logger *logrus.Logger) *BaseRepository[T] {
	if logger == nil {
		logger = logrus.New()
	}
	return &BaseRepository[T]{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// conn returns the transaction carried by ctx, or the pool
func (r *BaseRepository[T]) conn(ctx context.Context) querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return r.db
}

// Exists checks if an entity with the given ID exists
func (r *BaseRepository[T]) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE id = ? LIMIT 1", r.table)

	var exists int
	err := r.executeQueryRow(ctx, "exists", query, id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, r.translateError("exists", id, err)
	}

	return exists == 1, nil
}

// countRows counts rows matching an optional WHERE clause
func (r *BaseRepository[T]) countRows(ctx context.Context, where string, args ...interface{}) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", r.table, where)

	var count int64
	if err := r.executeQueryRow(ctx, "count", query, args...).Scan(&count); err != nil {
		return 0, r.translateError("count", "", err)
	}
	return count, nil
}

// logQuery logs a query with its execution time
func (r *BaseRepository[T]) logQuery(ctx context.Context, operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     compactQuery(query),
		"args":      args,
		"duration":  duration,
	}
	if _, ok := txFromContext(ctx); ok {
		fields["tx"] = true
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *BaseRepository[T]) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.conn(ctx).QueryContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(ctx, operation, query, args, duration, err)

	if err != nil {
		return nil, r.translateError(operation, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *BaseRepository[T]) executeQueryRow(ctx context.Context, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.conn(ctx).QueryRowContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(ctx, operation, query, args, duration, nil)

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *BaseRepository[T]) executeExec(ctx context.Context, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.conn(ctx).ExecContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(ctx, operation, query, args, duration, err)

	if err != nil {
		return nil, r.translateError(operation, "", err)
	}

	return result, nil
}

// checkRowsAffected checks that at least one row was affected
func (r *BaseRepository[T]) checkRowsAffected(result sql.Result, operation, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return repositories.NewRepositoryError(operation, r.table, id, err)
	}

	if rowsAffected == 0 {
		return repositories.NotFoundError(r.table, id)
	}

	return nil
}

// rowsAffected returns the number of affected rows
func (r *BaseRepository[T]) rowsAffected(result sql.Result, operation string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, repositories.NewRepositoryError(operation, r.table, "", err)
	}
	return n, nil
}

// validateID validates that an ID is not empty
func (r *BaseRepository[T]) validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return repositories.NewRepositoryError("validate", r.table, id, repositories.ErrInvalidID)
	}
	return nil
}

// translateError classifies driver errors into repository sentinels and
// keeps the SQLite extended result code for callers
func (r *BaseRepository[T]) translateError(operation, id string, err error) error {
	if err == nil {
		return nil
	}

	var repoErr *repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return repositories.NewRepositoryError(operation, r.table, id, fmt.Errorf("%w: %v", repositories.ErrTimeout, err))
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return repositories.NewRepositoryError(operation, r.table, id, err)
	}

	code := fmt.Sprintf("SQLITE_%d", int(sqliteErr.ExtendedCode))

	var kind error
	switch {
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
		kind = repositories.ErrDuplicateEntry
	case sqliteErr.Code == sqlite3.ErrConstraint:
		kind = repositories.ErrConstraint
	case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
		kind = repositories.ErrTimeout
	case sqliteErr.Code == sqlite3.ErrCantOpen || sqliteErr.Code == sqlite3.ErrIoErr:
		kind = repositories.ErrConnection
	default:
		return repositories.NewDriverError(operation, r.table, id, code, err)
	}

	return repositories.NewDriverError(operation, r.table, id, code, fmt.Errorf("%w: %v", kind, err))
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func compactQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

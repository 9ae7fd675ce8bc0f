package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schwarzesbrett/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotFound is returned for missing rows.
var ErrNotFound = domain.ErrNotFound

type PgRepository struct {
	db *sqlx.DB
}

func NewPgRepository(dsn string) *PgRepository {
	db := sqlx.MustConnect("postgres", dsn)

	// Connection pool configuration
	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PgRepository{db: db}
}

// NewPgRepositoryFromDB wraps an existing connection.
func NewPgRepositoryFromDB(db *sqlx.DB) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) Close() error {
	return r.db.Close()
}

func (r *PgRepository) DB() *sqlx.DB {
	return r.db
}

// GetPoolStats returns current connection pool statistics
func (r *PgRepository) GetPoolStats() map[string]interface{} {
	stats := r.db.Stats()
	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

// Ping verifies the database is reachable.
func (r *PgRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// selectPage runs a page query built with '?' placeholders.
func selectPage[T any](ctx context.Context, db *sqlx.DB, b *Builder) ([]T, error) {
	query, args := b.Build()
	rows := make([]T, 0)
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func selectCount(ctx context.Context, db *sqlx.DB, b *Builder) (int, error) {
	query, args := b.Count().Build()
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return count, nil
}

// mustAffect turns a zero-row write into ErrNotFound.
func mustAffect(op string, res interface{ RowsAffected() (int64, error) }, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func userExists(ctx context.Context, db *sqlx.DB, id int64) error {
	var exists bool
	if err := db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

// translate maps constraint failures onto domain errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrInUse, err)
	default:
		return err
	}
}

// getNamed runs a named query returning one row into dest.
func getNamed(ctx context.Context, db *sqlx.DB, dest any, query string, arg any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return translate(db.GetContext(ctx, dest, db.Rebind(bound), args...))
}

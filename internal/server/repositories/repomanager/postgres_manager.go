package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/logging"
	"github.com/dmitrijs2005/idkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/idkeeper/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories sharing one
// connection pool and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	pool *pgxpool.Pool
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// openSQLDB is a seam for testing the database/sql view goose needs.
var openSQLDB = func(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

// NewPostgresRepositoryManager wraps an already connected pool.
func NewPostgresRepositoryManager(pool *pgxpool.Pool) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{pool: pool}
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return users.NewPostgresRepository(m.pool)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	db := openSQLDB(m.pool)
	defer db.Close()

	return gooseUpContext(ctx, db, ".")
}

func (m *PostgresRepositoryManager) Close() {
	if m.pool != nil {
		m.pool.Close()
	}
}

// Connect opens a pool for dsn and waits for the database to answer a ping,
// retrying with exponential backoff. An unparsable dsn fails immediately.
func Connect(ctx context.Context, dsn string, attempts uint64, logger logging.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(200*time.Millisecond))

	var pool *pgxpool.Pool
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.Warn(ctx, "database not ready, retrying", "error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return pool, nil
}

// New returns the repository manager for mode. For postgres it connects and
// runs migrations before returning.
func New(ctx context.Context, mode, dsn string, logger logging.Logger) (RepositoryManager, error) {
	switch mode {
	case ModeMemory:
		logger.Warn(ctx, "using in-memory storage, accounts are lost on restart")
		return NewInMemoryRepositoryManager(), nil
	case ModePostgres:
		pool, err := Connect(ctx, dsn, 5, logger)
		if err != nil {
			return nil, err
		}
		m := NewPostgresRepositoryManager(pool)
		if err := m.RunMigrations(ctx); err != nil {
			m.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage mode %q", mode)
	}
}

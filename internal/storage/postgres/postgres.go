// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
//
// Queries are built with goqu and executed through a pgx connection pool. Inside InTx,
// book lookups lock the row (SELECT ... FOR UPDATE) so concurrent rental transitions on
// the same book are serialized by the database.
package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/booklibrary/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const (
	tableBooks   = "books"
	tableRentals = "rentals"

	colID        = "id"
	colISBN      = "isbn"
	colTitle     = "title"
	colAuthor    = "author"
	colStatus    = "status"
	colBookID    = "book_id"
	colBeginTime = "begin_time"
	colEndTime   = "end_time"
)

var dialect = goqu.Dialect("postgres")

const schema = `
CREATE TABLE IF NOT EXISTS books (
    id BIGSERIAL PRIMARY KEY,
    isbn TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    status SMALLINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS rentals (
    id BIGSERIAL PRIMARY KEY,
    book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
    begin_time TIMESTAMPTZ NOT NULL,
    end_time TIMESTAMPTZ,
    CHECK (end_time IS NULL OR end_time >= begin_time)
);

CREATE INDEX IF NOT EXISTS idx_rentals_book_id ON rentals(book_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentals_open_book ON rentals(book_id) WHERE end_time IS NULL;
`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements storage.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	repo
}

// New connects to the database described by dsn and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{pool: pool, repo: repo{q: pool}}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// InTx runs fn in a single PostgreSQL transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, repo{q: tx, forUpdate: true})
	})
}

// toSQL renders a prepared statement, returning SQL with $n placeholders and its arguments.
type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func toSQL(b sqlBuilder) (string, []any, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return query, args, nil
}

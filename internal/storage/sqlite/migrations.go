package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Timestamps are stored as Unix nanoseconds (UTC).
const schema = `
CREATE TABLE IF NOT EXISTS books (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    isbn TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    author TEXT NOT NULL DEFAULT '',
    status INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS rentals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id INTEGER NOT NULL,
    begin_time INTEGER NOT NULL,
    end_time INTEGER,
    FOREIGN KEY (book_id) REFERENCES books(id) ON DELETE CASCADE,
    CHECK (end_time IS NULL OR end_time >= begin_time)
);

CREATE INDEX IF NOT EXISTS idx_rentals_book_id ON rentals(book_id);

-- At most one open rental per book.
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentals_open_book ON rentals(book_id) WHERE end_time IS NULL;
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

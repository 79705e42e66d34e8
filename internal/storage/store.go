// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/booklibrary/internal/models"
)

// Repository defines the book and rental persistence operations.
// Lookups return nil and no error when the record does not exist.
// Any returned error is a storage failure.
type Repository interface {
	// FindBook retrieves a book without its rentals.
	FindBook(ctx context.Context, id int64) (*models.Book, error)

	// FindBookWithRentals retrieves a book with its rental history, newest first.
	FindBookWithRentals(ctx context.Context, id int64) (*models.Book, error)

	// SaveBook inserts the book when book.ID is zero (populating the ID) and updates it otherwise.
	SaveBook(ctx context.Context, book *models.Book) error

	// DeleteBook removes the book and, by cascade, its rentals.
	DeleteBook(ctx context.Context, book *models.Book) error

	// ListBooks returns every book ordered by ID, without rentals.
	ListBooks(ctx context.Context) ([]*models.Book, error)

	// ListBooksWithRentals returns every book ordered by ID, each with its rentals newest first.
	ListBooksWithRentals(ctx context.Context) ([]*models.Book, error)

	// SaveRental inserts the rental when rental.ID is zero (populating the ID) and updates it otherwise.
	SaveRental(ctx context.Context, rental *models.Rental) error

	// FindOpenRentalsByBook returns the rentals of a book that have no end time.
	FindOpenRentalsByBook(ctx context.Context, bookID int64) ([]*models.Rental, error)
}

// Store is a Repository that can run a sequence of operations atomically.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, memory)
// without changing the library core.
type Store interface {
	Repository

	// InTx runs fn inside a transaction. The Repository passed to fn is bound to that
	// transaction. If fn returns an error nothing it wrote is persisted, and the error is
	// returned unchanged.
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error

	// Close releases any resources held by the store.
	Close() error
}

package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/booklibrary/internal/models"
)

// Listing is a book as shown in catalog listings.
type Listing struct {
	Book *models.Book

	// RentalOpen is derived from the rental records, independently of Book.Status.
	RentalOpen bool
}

// Queries serves read-only views of the catalog. It never mutates state.
type Queries struct {
	*core
}

// ListAllBooks returns every book ordered by ID.
func (q *Queries) ListAllBooks(ctx context.Context) ([]Listing, error) {
	return q.list(ctx, func(Listing) bool { return true })
}

// ListAvailableBooks returns the books that have no open rental.
func (q *Queries) ListAvailableBooks(ctx context.Context) ([]Listing, error) {
	return q.list(ctx, func(l Listing) bool { return !l.RentalOpen })
}

// ListRentedBooks returns the books that are currently out on a rental.
func (q *Queries) ListRentedBooks(ctx context.Context) ([]Listing, error) {
	return q.list(ctx, func(l Listing) bool { return l.RentalOpen })
}

func (q *Queries) list(ctx context.Context, keep func(Listing) bool) ([]Listing, error) {
	books, err := q.store.ListBooksWithRentals(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	listings := make([]Listing, 0, len(books))
	for _, book := range books {
		if err := CheckConsistency(book); err != nil {
			slog.Warn("Inconsistent book state", "book_id", book.ID, "error", err)
		}
		l := Listing{Book: book, RentalOpen: book.HasOpenRental()}
		if keep(l) {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

// GetBook returns a book with its full rental history, newest first.
func (q *Queries) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := q.store.FindBookWithRentals(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	if book == nil {
		return nil, bookNotFound(id)
	}
	if book.Rentals == nil {
		book.Rentals = []*models.Rental{}
	}
	models.SortNewestFirst(book.Rentals)
	return book, nil
}

// ListBookRentals returns the rental history of a book, newest first.
func (q *Queries) ListBookRentals(ctx context.Context, id int64) ([]*models.Rental, error) {
	book, err := q.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	return book.Rentals, nil
}

// GetCurrentRental returns the most recently started rental of the book, or nil if it has
// never been rented. The result may be closed.
func GetCurrentRental(book *models.Book) *models.Rental {
	return book.CurrentRental()
}

// CheckConsistency reports whether the book's Status agrees with its loaded rentals.
// The book must have been loaded with its rentals.
func CheckConsistency(book *models.Book) error {
	open := len(book.OpenRentals())
	switch book.Status {
	case models.StatusRented:
		if open != 1 {
			return fmt.Errorf("book %d is Rented with %d open rentals", book.ID, open)
		}
	case models.StatusAvailable:
		if open != 0 {
			return fmt.Errorf("book %d is Available with %d open rentals", book.ID, open)
		}
	default:
		if open != 0 {
			return fmt.Errorf("book %d is %s with %d open rentals", book.ID, book.Status, open)
		}
	}
	return nil
}

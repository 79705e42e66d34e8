package library

import (
	"context"
	"log/slog"

	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
)

// BookInput carries the caller-editable fields of a book.
type BookInput struct {
	ISBN   string
	Title  string
	Author string

	// Status is optional. On create it may only be Unknown or Available;
	// on edit it must match the stored status when set.
	Status *models.Status
}

// Catalog manages the book records themselves.
type Catalog struct {
	*core
}

// CreateBook adds a book to the catalog. New books start Available unless the caller
// explicitly asks for Unknown; a book can never be created Rented.
func (c *Catalog) CreateBook(ctx context.Context, in BookInput) (*models.Book, error) {
	status := models.StatusAvailable
	if in.Status != nil {
		switch *in.Status {
		case models.StatusUnknown, models.StatusAvailable:
			status = *in.Status
		default:
			return nil, invalidState("a new book cannot start as %s", *in.Status)
		}
	}

	book := &models.Book{
		ISBN:   in.ISBN,
		Title:  in.Title,
		Author: in.Author,
		Status: status,
	}
	if err := c.store.SaveBook(ctx, book); err != nil {
		return nil, storageError(err)
	}
	book.Rentals = []*models.Rental{}

	slog.Debug("Book created", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// EditBook replaces the descriptive fields of a book. Status is only ever changed by
// the rental ledger.
func (c *Catalog) EditBook(ctx context.Context, id int64, in BookInput) (*models.Book, error) {
	var book *models.Book
	err := c.writeBook(ctx, id, func(ctx context.Context, repo storage.Repository) error {
		var err error
		book, err = repo.FindBookWithRentals(ctx, id)
		if err != nil {
			return storageError(err)
		}
		if book == nil {
			return bookNotFound(id)
		}
		if in.Status != nil && *in.Status != book.Status {
			return invalidState("book %d status is %s and cannot be edited to %s", id, book.Status, *in.Status)
		}

		book.ISBN = in.ISBN
		book.Title = in.Title
		book.Author = in.Author
		return storageError(repo.SaveBook(ctx, book))
	})
	if err != nil {
		return nil, err
	}

	if book.Rentals == nil {
		book.Rentals = []*models.Rental{}
	}
	slog.Debug("Book edited", "book_id", id)
	return book, nil
}

// DeleteBook removes a book together with its rental history.
func (c *Catalog) DeleteBook(ctx context.Context, id int64) error {
	err := c.writeBook(ctx, id, func(ctx context.Context, repo storage.Repository) error {
		book, err := repo.FindBook(ctx, id)
		if err != nil {
			return storageError(err)
		}
		if book == nil {
			return bookNotFound(id)
		}
		return storageError(repo.DeleteBook(ctx, book))
	})
	if err != nil {
		return err
	}

	slog.Debug("Book deleted", "book_id", id)
	return nil
}

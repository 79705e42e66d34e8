package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/booklibrary/internal/models"
)

// repo implements storage.Repository on top of either the database or a transaction.
type repo struct {
	q sqlx.ExtContext
}

type bookRow struct {
	ID     int64  `db:"id"`
	ISBN   string `db:"isbn"`
	Title  string `db:"title"`
	Author string `db:"author"`
	Status int    `db:"status"`
}

func (r bookRow) toModel() *models.Book {
	return &models.Book{
		ID:     r.ID,
		ISBN:   r.ISBN,
		Title:  r.Title,
		Author: r.Author,
		Status: models.Status(r.Status),
	}
}

// FindBook retrieves a book by ID. Returns nil if it does not exist.
func (r repo) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	var row bookRow
	err := sqlx.GetContext(ctx, r.q, &row,
		"SELECT id, isbn, title, author, status FROM books WHERE id = ?",
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Book not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return row.toModel(), nil
}

// FindBookWithRentals retrieves a book and its rentals, newest first.
func (r repo) FindBookWithRentals(ctx context.Context, id int64) (*models.Book, error) {
	book, err := r.FindBook(ctx, id)
	if err != nil || book == nil {
		return book, err
	}

	rentals, err := r.selectRentals(ctx,
		"SELECT id, book_id, begin_time, end_time FROM rentals WHERE book_id = ? ORDER BY begin_time DESC, id DESC",
		id,
	)
	if err != nil {
		return nil, err
	}
	book.Rentals = rentals
	if book.Rentals == nil {
		book.Rentals = []*models.Rental{}
	}
	return book, nil
}

// SaveBook inserts a new book or updates an existing one.
func (r repo) SaveBook(ctx context.Context, book *models.Book) error {
	if book.ID == 0 {
		res, err := r.q.ExecContext(ctx,
			"INSERT INTO books (isbn, title, author, status) VALUES (?, ?, ?, ?)",
			book.ISBN, book.Title, book.Author, int(book.Status),
		)
		if err != nil {
			return fmt.Errorf("failed to insert book: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read book id: %w", err)
		}
		book.ID = id
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		"UPDATE books SET isbn = ?, title = ?, author = ?, status = ? WHERE id = ?",
		book.ISBN, book.Title, book.Author, int(book.Status), book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return expectOneRow(res, "book", book.ID)
}

// DeleteBook removes a book. Its rentals are removed by the foreign key cascade.
func (r repo) DeleteBook(ctx context.Context, book *models.Book) error {
	res, err := r.q.ExecContext(ctx, "DELETE FROM books WHERE id = ?", book.ID)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return expectOneRow(res, "book", book.ID)
}

// ListBooks retrieves all books ordered by ID.
func (r repo) ListBooks(ctx context.Context) ([]*models.Book, error) {
	var rows []bookRow
	if err := sqlx.SelectContext(ctx, r.q, &rows,
		"SELECT id, isbn, title, author, status FROM books ORDER BY id",
	); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	books := make([]*models.Book, len(rows))
	for i, row := range rows {
		books[i] = row.toModel()
	}
	return books, nil
}

// ListBooksWithRentals retrieves all books ordered by ID with their rentals attached.
func (r repo) ListBooksWithRentals(ctx context.Context) ([]*models.Book, error) {
	books, err := r.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	rentals, err := r.selectRentals(ctx,
		"SELECT id, book_id, begin_time, end_time FROM rentals ORDER BY book_id, begin_time DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}

	byBook := make(map[int64][]*models.Rental, len(books))
	for _, rental := range rentals {
		byBook[rental.BookID] = append(byBook[rental.BookID], rental)
	}
	for _, book := range books {
		book.Rentals = byBook[book.ID]
		if book.Rentals == nil {
			book.Rentals = []*models.Rental{}
		}
	}
	return books, nil
}

// expectOneRow turns an update or delete that matched nothing into an error.
func expectOneRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %d", entity, id)
	}
	return nil
}

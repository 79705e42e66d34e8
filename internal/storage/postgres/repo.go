package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/booklibrary/internal/models"
)

// repo implements storage.Repository over the pool or a transaction.
type repo struct {
	q         querier
	forUpdate bool
}

func (r repo) selectBooks() *goqu.SelectDataset {
	return dialect.From(tableBooks).
		Prepared(true).
		Select(colID, colISBN, colTitle, colAuthor, colStatus).
		Order(goqu.C(colID).Asc())
}

func (r repo) selectRentals() *goqu.SelectDataset {
	return dialect.From(tableRentals).
		Prepared(true).
		Select(colID, colBookID, colBeginTime, colEndTime).
		Order(goqu.C(colBookID).Asc(), goqu.C(colBeginTime).Desc(), goqu.C(colID).Desc())
}

// FindBook retrieves a book by ID. Returns nil if it does not exist.
func (r repo) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	ds := r.selectBooks().Where(goqu.C(colID).Eq(id))
	if r.forUpdate {
		ds = ds.ForUpdate(exp.Wait)
	}
	query, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}

	book, err := scanBook(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // Book not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

// FindBookWithRentals retrieves a book and its rentals, newest first.
func (r repo) FindBookWithRentals(ctx context.Context, id int64) (*models.Book, error) {
	book, err := r.FindBook(ctx, id)
	if err != nil || book == nil {
		return book, err
	}

	rentals, err := r.queryRentals(ctx, r.selectRentals().Where(goqu.C(colBookID).Eq(id)))
	if err != nil {
		return nil, err
	}
	book.Rentals = rentals
	return book, nil
}

// SaveBook inserts a new book or updates an existing one.
func (r repo) SaveBook(ctx context.Context, book *models.Book) error {
	record := goqu.Record{
		colISBN:   book.ISBN,
		colTitle:  book.Title,
		colAuthor: book.Author,
		colStatus: int(book.Status),
	}

	if book.ID == 0 {
		query, args, err := toSQL(dialect.Insert(tableBooks).Prepared(true).Rows(record).Returning(colID))
		if err != nil {
			return err
		}
		if err := r.q.QueryRow(ctx, query, args...).Scan(&book.ID); err != nil {
			return fmt.Errorf("failed to insert book: %w", err)
		}
		return nil
	}

	query, args, err := toSQL(dialect.Update(tableBooks).Prepared(true).Set(record).Where(goqu.C(colID).Eq(book.ID)))
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book not found: %d", book.ID)
	}
	return nil
}

// DeleteBook removes a book. Its rentals are removed by the foreign key cascade.
func (r repo) DeleteBook(ctx context.Context, book *models.Book) error {
	query, args, err := toSQL(dialect.Delete(tableBooks).Prepared(true).Where(goqu.C(colID).Eq(book.ID)))
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("book not found: %d", book.ID)
	}
	return nil
}

// ListBooks retrieves all books ordered by ID.
func (r repo) ListBooks(ctx context.Context) ([]*models.Book, error) {
	query, args, err := toSQL(r.selectBooks())
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// ListBooksWithRentals retrieves all books ordered by ID with their rentals attached.
func (r repo) ListBooksWithRentals(ctx context.Context) ([]*models.Book, error) {
	books, err := r.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	rentals, err := r.queryRentals(ctx, r.selectRentals())
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

// SaveRental inserts a new rental or updates an existing one.
func (r repo) SaveRental(ctx context.Context, rental *models.Rental) error {
	var end any
	if rental.EndTime != nil {
		end = rental.EndTime.UTC()
	}
	record := goqu.Record{
		colBookID:    rental.BookID,
		colBeginTime: rental.BeginTime.UTC(),
		colEndTime:   end,
	}

	if rental.ID == 0 {
		query, args, err := toSQL(dialect.Insert(tableRentals).Prepared(true).Rows(record).Returning(colID))
		if err != nil {
			return err
		}
		if err := r.q.QueryRow(ctx, query, args...).Scan(&rental.ID); err != nil {
			return fmt.Errorf("failed to insert rental: %w", err)
		}
		return nil
	}

	query, args, err := toSQL(dialect.Update(tableRentals).Prepared(true).Set(record).Where(goqu.C(colID).Eq(rental.ID)))
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rental not found: %d", rental.ID)
	}
	return nil
}

// FindOpenRentalsByBook retrieves the rentals of a book that have not ended.
func (r repo) FindOpenRentalsByBook(ctx context.Context, bookID int64) ([]*models.Rental, error) {
	return r.queryRentals(ctx, r.selectRentals().Where(
		goqu.C(colBookID).Eq(bookID),
		goqu.C(colEndTime).IsNull(),
	))
}

func (r repo) queryRentals(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Rental, error) {
	query, args, err := toSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get rentals: %w", err)
	}
	defer rows.Close()

	rentals := []*models.Rental{}
	for rows.Next() {
		rental := &models.Rental{}
		var end *time.Time
		if err := rows.Scan(&rental.ID, &rental.BookID, &rental.BeginTime, &end); err != nil {
			return nil, fmt.Errorf("failed to scan rental: %w", err)
		}
		rental.BeginTime = rental.BeginTime.UTC()
		if end != nil {
			utc := end.UTC()
			rental.EndTime = &utc
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rentals: %w", err)
	}
	return rentals, nil
}

// scanBook reads one book from a row with the column order of selectBooks.
func scanBook(row pgx.Row) (*models.Book, error) {
	book := &models.Book{}
	var status int16
	if err := row.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author, &status); err != nil {
		return nil, err
	}
	book.Status = models.Status(status)
	return book, nil
}

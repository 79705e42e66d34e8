package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/booklibrary/internal/models"
)

type rentalRow struct {
	ID        int64         `db:"id"`
	BookID    int64         `db:"book_id"`
	BeginTime int64         `db:"begin_time"`
	EndTime   sql.NullInt64 `db:"end_time"`
}

func (r rentalRow) toModel() *models.Rental {
	rental := &models.Rental{
		ID:        r.ID,
		BookID:    r.BookID,
		BeginTime: time.Unix(0, r.BeginTime).UTC(),
	}
	if r.EndTime.Valid {
		end := time.Unix(0, r.EndTime.Int64).UTC()
		rental.EndTime = &end
	}
	return rental
}

func endTimeValue(rental *models.Rental) sql.NullInt64 {
	if rental.EndTime == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: rental.EndTime.UnixNano(), Valid: true}
}

// SaveRental inserts a new rental or updates an existing one.
func (r repo) SaveRental(ctx context.Context, rental *models.Rental) error {
	if rental.ID == 0 {
		res, err := r.q.ExecContext(ctx,
			"INSERT INTO rentals (book_id, begin_time, end_time) VALUES (?, ?, ?)",
			rental.BookID, rental.BeginTime.UnixNano(), endTimeValue(rental),
		)
		if err != nil {
			return fmt.Errorf("failed to insert rental: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read rental id: %w", err)
		}
		rental.ID = id
		return nil
	}

	res, err := r.q.ExecContext(ctx,
		"UPDATE rentals SET book_id = ?, begin_time = ?, end_time = ? WHERE id = ?",
		rental.BookID, rental.BeginTime.UnixNano(), endTimeValue(rental), rental.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}
	return expectOneRow(res, "rental", rental.ID)
}

// FindOpenRentalsByBook retrieves the rentals of a book that have not ended.
func (r repo) FindOpenRentalsByBook(ctx context.Context, bookID int64) ([]*models.Rental, error) {
	return r.selectRentals(ctx,
		"SELECT id, book_id, begin_time, end_time FROM rentals WHERE book_id = ? AND end_time IS NULL ORDER BY begin_time DESC, id DESC",
		bookID,
	)
}

func (r repo) selectRentals(ctx context.Context, query string, args ...any) ([]*models.Rental, error) {
	var rows []rentalRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get rentals: %w", err)
	}

	rentals := make([]*models.Rental, len(rows))
	for i, row := range rows {
		rentals[i] = row.toModel()
	}
	return rentals, nil
}

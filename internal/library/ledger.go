package library

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/booklibrary/internal/lock"
	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
)

// Ledger enforces the book availability state machine:
//
//	Available --StartRental--> Rented --FinishRental--> Available
//
// A book has at most one open rental, and Status always agrees with it.
type Ledger struct {
	*core
}

// StartRental opens a new rental on an Available book and marks it Rented.
// It returns the new rental's ID.
func (l *Ledger) StartRental(ctx context.Context, bookID int64) (rentalID int64, err error) {
	defer func() { l.observe(OpStartRental, err) }()

	err = l.writeBook(ctx, bookID, func(ctx context.Context, repo storage.Repository) error {
		book, err := repo.FindBook(ctx, bookID)
		if err != nil {
			return storageError(err)
		}
		if book == nil {
			return bookNotFound(bookID)
		}
		if book.Status != models.StatusAvailable {
			return invalidState("book %d is %s, not Available", bookID, book.Status)
		}

		open, err := repo.FindOpenRentalsByBook(ctx, bookID)
		if err != nil {
			return storageError(err)
		}
		if len(open) > 0 {
			return invalidState("book %d is marked Available but rental %d is still open", bookID, open[0].ID)
		}

		rental := &models.Rental{BookID: bookID, BeginTime: l.now()}
		if err := repo.SaveRental(ctx, rental); err != nil {
			return storageError(err)
		}

		book.Status = models.StatusRented
		if err := repo.SaveBook(ctx, book); err != nil {
			return storageError(err)
		}

		rentalID = rental.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("Rental started", "book_id", bookID, "rental_id", rentalID)
	return rentalID, nil
}

// FinishRental closes the open rental of a Rented book and marks it Available.
func (l *Ledger) FinishRental(ctx context.Context, bookID int64) (err error) {
	defer func() { l.observe(OpFinishRental, err) }()

	var rentalID int64
	err = l.writeBook(ctx, bookID, func(ctx context.Context, repo storage.Repository) error {
		book, err := repo.FindBookWithRentals(ctx, bookID)
		if err != nil {
			return storageError(err)
		}
		if book == nil {
			return bookNotFound(bookID)
		}
		if book.Status != models.StatusRented {
			return invalidState("book %d is %s, not Rented", bookID, book.Status)
		}

		current := book.CurrentRental()
		if current == nil || !current.Open() {
			return invalidState("book %d is marked Rented but has no open rental", bookID)
		}

		end := l.now()
		if end.Before(current.BeginTime) {
			return invalidState("rental %d would end at %s, before it began at %s",
				current.ID, end.Format(timeLayout), current.BeginTime.Format(timeLayout))
		}

		current.EndTime = &end
		if err := repo.SaveRental(ctx, current); err != nil {
			return storageError(err)
		}

		book.Status = models.StatusAvailable
		if err := repo.SaveBook(ctx, book); err != nil {
			return storageError(err)
		}

		rentalID = current.ID
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Rental finished", "book_id", bookID, "rental_id", rentalID)
	return nil
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (l *Ledger) observe(op Op, err error) {
	if l.hook != nil {
		l.hook(op, err)
	}
}

func isLockError(err error) bool {
	return errors.Is(err, lock.ErrTimeout)
}

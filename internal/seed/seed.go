// Package seed fills an empty catalog with a small demo data set.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
)

type seedRental struct {
	begin time.Time
	end   *time.Time
}

type seedBook struct {
	book    models.Book
	rentals []seedRental
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

// demo is written in order; the first book is out on loan.
var demo = []seedBook{
	{
		book: models.Book{ISBN: "978-83-749-5905-6", Title: "Rok 1984", Author: "George Orwell", Status: models.StatusRented},
		rentals: []seedRental{
			{begin: at(2021, time.March, 1, 12), end: ptr(at(2021, time.March, 8, 10))},
			{begin: at(2021, time.March, 30, 8)},
		},
	},
	{
		book: models.Book{ISBN: "978-83-7648-809-7", Title: "Lśnienie", Author: "Stephen King", Status: models.StatusAvailable},
		rentals: []seedRental{
			{begin: at(2021, time.March, 10, 14), end: ptr(at(2021, time.March, 20, 16))},
		},
	},
	{
		book: models.Book{ISBN: "978-83-274-3154-7", Title: "Mały Książę", Author: "Antoine de Saint-Exupéry", Status: models.StatusAvailable},
	},
}

// Run seeds the store when it holds no books. It reports whether anything was written.
func Run(ctx context.Context, store storage.Store) (bool, error) {
	seeded := false
	err := store.InTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		existing, err := repo.ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}

		for _, sb := range demo {
			book := sb.book
			if err := repo.SaveBook(ctx, &book); err != nil {
				return fmt.Errorf("failed to seed book %q: %w", book.Title, err)
			}
			for _, sr := range sb.rentals {
				rental := &models.Rental{BookID: book.ID, BeginTime: sr.begin, EndTime: sr.end}
				if err := repo.SaveRental(ctx, rental); err != nil {
					return fmt.Errorf("failed to seed rental for %q: %w", book.Title, err)
				}
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		slog.Info("Seeded demo catalog", "books", len(demo))
	}
	return seeded, nil
}

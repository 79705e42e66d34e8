package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, "TRUNCATE rentals, books RESTART IDENTITY CASCADE")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreIntegration(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	book := &models.Book{ISBN: "978-83-749-5905-6", Title: "Rok 1984", Author: "George Orwell", Status: models.StatusAvailable}
	require.NoError(t, store.SaveBook(ctx, book))
	require.NotZero(t, book.ID)

	begin := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	end := begin.Add(7 * 24 * time.Hour)
	require.NoError(t, store.SaveRental(ctx, &models.Rental{BookID: book.ID, BeginTime: begin, EndTime: &end}))

	err := store.InTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		locked, err := repo.FindBook(ctx, book.ID)
		if err != nil {
			return err
		}
		locked.Status = models.StatusRented
		if err := repo.SaveRental(ctx, &models.Rental{BookID: book.ID, BeginTime: end.Add(time.Hour)}); err != nil {
			return err
		}
		return repo.SaveBook(ctx, locked)
	})
	require.NoError(t, err)

	got, err := store.FindBookWithRentals(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRented, got.Status)
	require.Len(t, got.Rentals, 2)
	assert.True(t, got.Rentals[0].Open(), "newest rental is the open one")
	assert.True(t, got.Rentals[1].EndTime.Equal(end))

	open, err := store.FindOpenRentalsByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	assert.Error(t, store.SaveRental(ctx, &models.Rental{BookID: book.ID, BeginTime: time.Now()}), "second open rental")

	require.NoError(t, store.DeleteBook(ctx, book))
	open, err = store.FindOpenRentalsByBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	missing, err := store.FindBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBuildQueries(t *testing.T) {
	query, args, err := toSQL(repo{}.selectBooks().Where(goqu.C(colID).Eq(int64(7))).ForUpdate(exp.Wait))
	require.NoError(t, err)
	assert.Contains(t, query, `FROM "books"`)
	assert.Contains(t, query, `"id" = $1`)
	assert.Contains(t, query, "FOR UPDATE")
	assert.Equal(t, []any{int64(7)}, args)

	query, _, err = toSQL(repo{}.selectRentals().Where(goqu.C(colEndTime).IsNull()))
	require.NoError(t, err)
	assert.Contains(t, query, `"end_time" IS NULL`)
	assert.Contains(t, query, `"begin_time" DESC`)
}

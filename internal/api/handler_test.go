package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
	"github.com/mmynk/booklibrary/internal/storage/memory"
	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
)

func setupRouter(t *testing.T, store storage.Store) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	NewHandler(library.New(store)).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBooksCRUD(t *testing.T) {
	r := setupRouter(t, memory.New())

	// setup
	rec := do(t, r, http.MethodPost, "/api/books", `{"isbn":"978-83-240-0000-0","title":"Rok 1984","author":"George Orwell"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[libraryv1.Book](t, rec)
	assert.NotZero(t, created.Id)
	assert.Equal(t, libraryv1.StatusAvailable, created.Status)

	// act / assert
	rec = do(t, r, http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, rec.Code)
	books := decode[[]libraryv1.Book](t, rec)
	require.Len(t, books, 1)
	assert.Equal(t, "Rok 1984", books[0].Title)

	rec = do(t, r, http.MethodPut, "/api/books/1", `{"id":1,"isbn":"0-452-28423-6","title":"1984","author":"George Orwell"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1984", decode[libraryv1.Book](t, rec).Title)

	rec = do(t, r, http.MethodGet, "/api/books/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[libraryv1.Book](t, rec)
	assert.Equal(t, "0-452-28423-6", got.Isbn)

	rec = do(t, r, http.MethodDelete, "/api/books/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/books/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookRequestErrors(t *testing.T) {
	r := setupRouter(t, memory.New())
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/books", `{"title":"Lśnienie"}`).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/books", `{"title":`, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/books", `{"isbn":"0306406152"}`, http.StatusBadRequest},
		{"bad isbn", http.MethodPost, "/api/books", `{"isbn":"abc","title":"x"}`, http.StatusBadRequest},
		{"client id on create", http.MethodPost, "/api/books", `{"id":9,"title":"x"}`, http.StatusBadRequest},
		{"create rented", http.MethodPost, "/api/books", `{"title":"x","status":"Rented"}`, http.StatusBadRequest},
		{"unknown status", http.MethodPost, "/api/books", `{"title":"x","status":"Lost"}`, http.StatusBadRequest},
		{"id mismatch", http.MethodPut, "/api/books/1", `{"id":2,"title":"x"}`, http.StatusBadRequest},
		{"edit status", http.MethodPut, "/api/books/1", `{"title":"x","status":"Rented"}`, http.StatusBadRequest},
		{"edit missing", http.MethodPut, "/api/books/9", `{"title":"x"}`, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/books/9", "", http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/api/books/abc", "", http.StatusNotFound},
		{"id overflow", http.MethodGet, "/api/books/99999999999999999999", "", http.StatusBadRequest},
		{"wrong method", http.MethodPost, "/api/rentals/startrental/1", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestRentalRoutes(t *testing.T) {
	r := setupRouter(t, memory.New())
	for _, title := range []string{"Rok 1984", "Lśnienie"} {
		require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/books", `{"title":"`+title+`"}`).Code)
	}

	rec := do(t, r, http.MethodPut, "/api/rentals/startrental/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotZero(t, decode[libraryv1.StartRentalResponse](t, rec).RentalId)

	rec = do(t, r, http.MethodPut, "/api/rentals/startrental/1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "invalid state")

	rec = do(t, r, http.MethodPut, "/api/rentals/finishrental/2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/rentals/startrental/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rented := decode[[]libraryv1.Book](t, do(t, r, http.MethodGet, "/api/rentals/rentedbooks", ""))
	require.Len(t, rented, 1)
	assert.Equal(t, int64(1), rented[0].Id)
	assert.True(t, rented[0].RentalOpen)

	available := decode[[]libraryv1.Book](t, do(t, r, http.MethodGet, "/api/rentals/availablebooks", ""))
	require.Len(t, available, 1)
	assert.Equal(t, int64(2), available[0].Id)

	all := decode[[]libraryv1.Book](t, do(t, r, http.MethodGet, "/api/rentals", ""))
	assert.Len(t, all, 2)

	rec = do(t, r, http.MethodPut, "/api/rentals/finishrental/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rentals := decode[[]libraryv1.Rental](t, do(t, r, http.MethodGet, "/api/books/1/rentals", ""))
	require.Len(t, rentals, 1)
	assert.NotNil(t, rentals[0].EndTime)

	book := decode[libraryv1.Book](t, do(t, r, http.MethodGet, "/api/books/1", ""))
	assert.Equal(t, libraryv1.StatusAvailable, book.Status)
	assert.Len(t, book.Rentals, 1)
}

func TestEmptyListIsArray(t *testing.T) {
	r := setupRouter(t, memory.New())

	rec := do(t, r, http.MethodGet, "/api/rentals/rentedbooks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

type brokenStore struct {
	storage.Store
}

func (brokenStore) ListBooksWithRentals(ctx context.Context) ([]*models.Book, error) {
	return nil, errors.New("connection reset")
}

func (brokenStore) InTx(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
	return errors.New("connection reset")
}

func TestStorageFailure(t *testing.T) {
	r := setupRouter(t, brokenStore{Store: memory.New()})

	rec := do(t, r, http.MethodGet, "/api/books", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode[errorResponse](t, rec).Error)

	rec = do(t, r, http.MethodPut, "/api/rentals/startrental/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListRoutes(t *testing.T) {
	paths := []string{"/api/books", "/api/rentals", "/api/rentals/availablebooks", "/api/rentals/rentedbooks"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := do(t, setupRouter(t, memory.New()), http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `[]`, rec.Body.String())

			rec = do(t, setupRouter(t, brokenStore{Store: memory.New()}), http.MethodGet, path, "")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "internal error", decode[errorResponse](t, rec).Error)
		})
	}
}

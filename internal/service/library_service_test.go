package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/booklibrary/internal/auth"
	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/middleware"
	"github.com/mmynk/booklibrary/internal/storage/sqlite"
	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
	"github.com/mmynk/booklibrary/pkg/libraryv1/libraryv1connect"
)

// setupTestServer creates a test server with LibraryService over a temp SQLite database.
func setupTestServer(t *testing.T, opts ...connect.HandlerOption) (*libraryv1connect.LibraryServiceClient, func()) {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	svc := NewLibraryService(library.New(store))
	path, handler := libraryv1connect.NewLibraryServiceHandler(svc, opts...)

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	server := httptest.NewServer(mux)

	client := libraryv1connect.NewLibraryServiceClient(
		http.DefaultClient,
		server.URL,
	)

	cleanup := func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return client, cleanup
}

func createBook(t *testing.T, client *libraryv1connect.LibraryServiceClient, title string) *libraryv1.Book {
	t.Helper()
	resp, err := client.CreateBook(context.Background(), connect.NewRequest(&libraryv1.CreateBookRequest{
		Isbn:   "978-83-240-0000-0",
		Title:  title,
		Author: "Author",
	}))
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	return resp.Msg.Book
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCreateBook(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	book := createBook(t, client, "Rok 1984")

	if book.Id == 0 {
		t.Error("expected book ID to be set")
	}
	if book.Status != libraryv1.StatusAvailable {
		t.Errorf("expected status Available, got %q", book.Status)
	}
	if book.RentalOpen {
		t.Error("expected new book to have no open rental")
	}
}

func TestCreateBookValidation(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		req  *libraryv1.CreateBookRequest
		code connect.Code
	}{
		{"missing title", &libraryv1.CreateBookRequest{Isbn: "0306406152"}, connect.CodeInvalidArgument},
		{"bad isbn", &libraryv1.CreateBookRequest{Isbn: "12-34", Title: "x"}, connect.CodeInvalidArgument},
		{"unknown status", &libraryv1.CreateBookRequest{Title: "x", Status: "Lost"}, connect.CodeInvalidArgument},
		{"rented status", &libraryv1.CreateBookRequest{Title: "x", Status: libraryv1.StatusRented}, connect.CodeFailedPrecondition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateBook(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, tt.code)
		})
	}
}

func TestRentalLifecycle(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	book := createBook(t, client, "Rok 1984")

	startResp, err := client.StartRental(ctx, connect.NewRequest(&libraryv1.StartRentalRequest{BookId: book.Id}))
	if err != nil {
		t.Fatalf("StartRental failed: %v", err)
	}
	if startResp.Msg.RentalId == 0 {
		t.Error("expected rental ID to be set")
	}

	// Second start is rejected
	_, err = client.StartRental(ctx, connect.NewRequest(&libraryv1.StartRentalRequest{BookId: book.Id}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	rented, err := client.ListRentedBooks(ctx, connect.NewRequest(&libraryv1.ListBooksRequest{}))
	if err != nil {
		t.Fatalf("ListRentedBooks failed: %v", err)
	}
	if len(rented.Msg.Books) != 1 || rented.Msg.Books[0].Id != book.Id {
		t.Fatalf("expected only book %d rented, got %+v", book.Id, rented.Msg.Books)
	}
	if !rented.Msg.Books[0].RentalOpen || rented.Msg.Books[0].Status != libraryv1.StatusRented {
		t.Errorf("expected rented listing, got %+v", rented.Msg.Books[0])
	}

	getResp, err := client.GetBook(ctx, connect.NewRequest(&libraryv1.GetBookRequest{BookId: book.Id}))
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	current := getResp.Msg.CurrentRental
	if current == nil || current.Id != startResp.Msg.RentalId || current.EndTime != nil {
		t.Fatalf("expected open current rental %d, got %+v", startResp.Msg.RentalId, current)
	}

	if _, err := client.FinishRental(ctx, connect.NewRequest(&libraryv1.FinishRentalRequest{BookId: book.Id})); err != nil {
		t.Fatalf("FinishRental failed: %v", err)
	}

	// Second finish is rejected
	_, err = client.FinishRental(ctx, connect.NewRequest(&libraryv1.FinishRentalRequest{BookId: book.Id}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	available, err := client.ListAvailableBooks(ctx, connect.NewRequest(&libraryv1.ListBooksRequest{}))
	if err != nil {
		t.Fatalf("ListAvailableBooks failed: %v", err)
	}
	if len(available.Msg.Books) != 1 {
		t.Fatalf("expected 1 available book, got %d", len(available.Msg.Books))
	}

	rentals, err := client.ListBookRentals(ctx, connect.NewRequest(&libraryv1.ListBookRentalsRequest{BookId: book.Id}))
	if err != nil {
		t.Fatalf("ListBookRentals failed: %v", err)
	}
	if len(rentals.Msg.Rentals) != 1 {
		t.Fatalf("expected 1 rental, got %d", len(rentals.Msg.Rentals))
	}
	r := rentals.Msg.Rentals[0]
	if r.EndTime == nil || r.EndTime.Before(r.BeginTime) {
		t.Errorf("expected closed rental with end >= begin, got %+v", r)
	}
}

func TestNotFound(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	_, err := client.GetBook(ctx, connect.NewRequest(&libraryv1.GetBookRequest{BookId: 404}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.StartRental(ctx, connect.NewRequest(&libraryv1.StartRentalRequest{BookId: 404}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.FinishRental(ctx, connect.NewRequest(&libraryv1.FinishRentalRequest{BookId: 404}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.DeleteBook(ctx, connect.NewRequest(&libraryv1.DeleteBookRequest{BookId: 404}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.EditBook(ctx, connect.NewRequest(&libraryv1.EditBookRequest{BookId: 404, Title: "x"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestEditAndDeleteBook(t *testing.T) {
	client, cleanup := setupTestServer(t)
	defer cleanup()
	ctx := context.Background()

	book := createBook(t, client, "Lśnienie")

	editResp, err := client.EditBook(ctx, connect.NewRequest(&libraryv1.EditBookRequest{
		BookId: book.Id,
		Isbn:   "0-385-12167-9",
		Title:  "The Shining",
		Author: "Stephen King",
	}))
	if err != nil {
		t.Fatalf("EditBook failed: %v", err)
	}
	if editResp.Msg.Book.Title != "The Shining" || editResp.Msg.Book.Status != libraryv1.StatusAvailable {
		t.Errorf("unexpected edited book: %+v", editResp.Msg.Book)
	}

	_, err = client.EditBook(ctx, connect.NewRequest(&libraryv1.EditBookRequest{
		BookId: book.Id,
		Title:  "The Shining",
		Status: libraryv1.StatusRented,
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	if _, err := client.DeleteBook(ctx, connect.NewRequest(&libraryv1.DeleteBookRequest{BookId: book.Id})); err != nil {
		t.Fatalf("DeleteBook failed: %v", err)
	}

	all, err := client.ListAllBooks(ctx, connect.NewRequest(&libraryv1.ListBooksRequest{}))
	if err != nil {
		t.Fatalf("ListAllBooks failed: %v", err)
	}
	if len(all.Msg.Books) != 0 {
		t.Errorf("expected empty catalog, got %d books", len(all.Msg.Books))
	}
}

func TestLibrarianAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client, cleanup := setupTestServer(t, connect.WithInterceptors(
		middleware.RequireLibrarian(jwtManager, libraryv1connect.MutatingProcedures),
		middleware.LoggingInterceptor(),
	))
	defer cleanup()
	ctx := context.Background()

	// Reads are public
	if _, err := client.ListAllBooks(ctx, connect.NewRequest(&libraryv1.ListBooksRequest{})); err != nil {
		t.Fatalf("ListAllBooks failed: %v", err)
	}

	// Writes need a token
	_, err := client.CreateBook(ctx, connect.NewRequest(&libraryv1.CreateBookRequest{Title: "Rok 1984"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	token, err := jwtManager.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req := connect.NewRequest(&libraryv1.CreateBookRequest{Title: "Rok 1984"})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := client.CreateBook(ctx, req); err != nil {
		t.Fatalf("CreateBook with token failed: %v", err)
	}
}

func TestToConnectError(t *testing.T) {
	err := toConnectError(fmt.Errorf("%w: %w", library.ErrStorage, errors.New("SQL logic error: no such table: books")))
	if err.Code() != connect.CodeInternal {
		t.Errorf("expected internal, got %v", err.Code())
	}
	if err.Message() != "internal error" {
		t.Errorf("expected generic message, got %q", err.Message())
	}

	err = toConnectError(fmt.Errorf("%w: book 7 does not exist", library.ErrNotFound))
	if err.Code() != connect.CodeNotFound {
		t.Errorf("expected not found, got %v", err.Code())
	}
	if !strings.Contains(err.Message(), "book 7") {
		t.Errorf("expected message to name the book, got %q", err.Message())
	}
}

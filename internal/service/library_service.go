// Package service implements the Connect LibraryService on top of the library core.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/validation"
	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
	"github.com/mmynk/booklibrary/pkg/libraryv1/libraryv1connect"
)

// LibraryService implements the Connect LibraryService
type LibraryService struct {
	libraryv1connect.UnimplementedLibraryServiceHandler
	lib       *library.Library
	validator *validation.Validator
}

// NewLibraryService creates a new LibraryService backed by lib.
func NewLibraryService(lib *library.Library) *LibraryService {
	return &LibraryService{lib: lib, validator: validation.New()}
}

// ListAllBooks lists the whole catalog.
func (s *LibraryService) ListAllBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	slog.Info("ListAllBooks request received")
	return s.listBooks(s.lib.ListAllBooks(ctx))
}

// ListAvailableBooks lists books that can be rented.
func (s *LibraryService) ListAvailableBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	slog.Info("ListAvailableBooks request received")
	return s.listBooks(s.lib.ListAvailableBooks(ctx))
}

// ListRentedBooks lists books currently out on a rental.
func (s *LibraryService) ListRentedBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	slog.Info("ListRentedBooks request received")
	return s.listBooks(s.lib.ListRentedBooks(ctx))
}

func (s *LibraryService) listBooks(listings []library.Listing, err error) (*connect.Response[libraryv1.ListBooksResponse], error) {
	if err != nil {
		slog.Error("ListBooks failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListBooks successful", "count", len(listings))

	return connect.NewResponse(&libraryv1.ListBooksResponse{
		Books: ToListings(listings),
	}), nil
}

// GetBook retrieves a book with its rental history.
func (s *LibraryService) GetBook(ctx context.Context, req *connect.Request[libraryv1.GetBookRequest]) (*connect.Response[libraryv1.GetBookResponse], error) {
	slog.Info("GetBook request received", "book_id", req.Msg.BookId)

	book, err := s.lib.GetBook(ctx, req.Msg.BookId)
	if err != nil {
		slog.Error("GetBook failed", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetBook successful", "book_id", book.ID, "rentals_count", len(book.Rentals))

	return connect.NewResponse(&libraryv1.GetBookResponse{
		Book:          ToBook(book),
		CurrentRental: ToRental(library.GetCurrentRental(book)),
	}), nil
}

// ListBookRentals retrieves the rental history of a book, newest first.
func (s *LibraryService) ListBookRentals(ctx context.Context, req *connect.Request[libraryv1.ListBookRentalsRequest]) (*connect.Response[libraryv1.ListBookRentalsResponse], error) {
	slog.Info("ListBookRentals request received", "book_id", req.Msg.BookId)

	rentals, err := s.lib.ListBookRentals(ctx, req.Msg.BookId)
	if err != nil {
		slog.Error("ListBookRentals failed", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&libraryv1.ListBookRentalsResponse{
		Rentals: ToRentals(rentals),
	}), nil
}

// CreateBook adds a book to the catalog.
func (s *LibraryService) CreateBook(ctx context.Context, req *connect.Request[libraryv1.CreateBookRequest]) (*connect.Response[libraryv1.CreateBookResponse], error) {
	slog.Info("CreateBook request received",
		"title", req.Msg.Title,
		"isbn", req.Msg.Isbn,
	)

	in, err := s.bookInput(req.Msg.Isbn, req.Msg.Title, req.Msg.Author, req.Msg.Status)
	if err != nil {
		return nil, err
	}

	book, err := s.lib.CreateBook(ctx, in)
	if err != nil {
		slog.Error("CreateBook failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Book created", "book_id", book.ID)

	return connect.NewResponse(&libraryv1.CreateBookResponse{
		Book: ToBook(book),
	}), nil
}

// EditBook updates the descriptive fields of a book.
func (s *LibraryService) EditBook(ctx context.Context, req *connect.Request[libraryv1.EditBookRequest]) (*connect.Response[libraryv1.EditBookResponse], error) {
	slog.Info("EditBook request received",
		"book_id", req.Msg.BookId,
		"title", req.Msg.Title,
	)

	in, err := s.bookInput(req.Msg.Isbn, req.Msg.Title, req.Msg.Author, req.Msg.Status)
	if err != nil {
		return nil, err
	}

	book, err := s.lib.EditBook(ctx, req.Msg.BookId, in)
	if err != nil {
		slog.Error("EditBook failed", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Book updated", "book_id", book.ID)

	return connect.NewResponse(&libraryv1.EditBookResponse{
		Book: ToBook(book),
	}), nil
}

// DeleteBook removes a book and its rental history.
func (s *LibraryService) DeleteBook(ctx context.Context, req *connect.Request[libraryv1.DeleteBookRequest]) (*connect.Response[libraryv1.DeleteBookResponse], error) {
	slog.Info("DeleteBook request received", "book_id", req.Msg.BookId)

	if err := s.lib.DeleteBook(ctx, req.Msg.BookId); err != nil {
		slog.Error("DeleteBook failed", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Book deleted", "book_id", req.Msg.BookId)

	return connect.NewResponse(&libraryv1.DeleteBookResponse{}), nil
}

// StartRental rents out an available book.
func (s *LibraryService) StartRental(ctx context.Context, req *connect.Request[libraryv1.StartRentalRequest]) (*connect.Response[libraryv1.StartRentalResponse], error) {
	slog.Info("StartRental request received", "book_id", req.Msg.BookId)

	rentalID, err := s.lib.StartRental(ctx, req.Msg.BookId)
	if err != nil {
		slog.Warn("StartRental rejected", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Rental started", "book_id", req.Msg.BookId, "rental_id", rentalID)

	return connect.NewResponse(&libraryv1.StartRentalResponse{
		RentalId: rentalID,
	}), nil
}

// FinishRental returns a rented book.
func (s *LibraryService) FinishRental(ctx context.Context, req *connect.Request[libraryv1.FinishRentalRequest]) (*connect.Response[libraryv1.FinishRentalResponse], error) {
	slog.Info("FinishRental request received", "book_id", req.Msg.BookId)

	if err := s.lib.FinishRental(ctx, req.Msg.BookId); err != nil {
		slog.Warn("FinishRental rejected", "book_id", req.Msg.BookId, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Rental finished", "book_id", req.Msg.BookId)

	return connect.NewResponse(&libraryv1.FinishRentalResponse{}), nil
}

// bookInput validates the editable fields and converts them for the library.
func (s *LibraryService) bookInput(isbn, title, author, status string) (library.BookInput, error) {
	if err := s.validator.Validate(validation.Book{ISBN: isbn, Title: title, Author: author}); err != nil {
		slog.Warn("Invalid book fields", "error", err)
		return library.BookInput{}, toConnectError(err)
	}

	st, err := ParseStatus(status)
	if err != nil {
		return library.BookInput{}, connect.NewError(connect.CodeInvalidArgument, err)
	}

	return library.BookInput{ISBN: isbn, Title: title, Author: author, Status: st}, nil
}

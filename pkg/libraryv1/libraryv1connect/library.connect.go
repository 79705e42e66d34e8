// Package libraryv1connect wires the library.v1 messages to Connect handlers and clients.
package libraryv1connect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
)

// LibraryServiceName is the fully-qualified name of the LibraryService service.
const LibraryServiceName = "library.v1.LibraryService"

// Procedure paths of LibraryService.
const (
	LibraryServiceListAllBooksProcedure       = "/library.v1.LibraryService/ListAllBooks"
	LibraryServiceListAvailableBooksProcedure = "/library.v1.LibraryService/ListAvailableBooks"
	LibraryServiceListRentedBooksProcedure    = "/library.v1.LibraryService/ListRentedBooks"
	LibraryServiceGetBookProcedure            = "/library.v1.LibraryService/GetBook"
	LibraryServiceListBookRentalsProcedure    = "/library.v1.LibraryService/ListBookRentals"
	LibraryServiceCreateBookProcedure         = "/library.v1.LibraryService/CreateBook"
	LibraryServiceEditBookProcedure           = "/library.v1.LibraryService/EditBook"
	LibraryServiceDeleteBookProcedure         = "/library.v1.LibraryService/DeleteBook"
	LibraryServiceStartRentalProcedure        = "/library.v1.LibraryService/StartRental"
	LibraryServiceFinishRentalProcedure       = "/library.v1.LibraryService/FinishRental"
)

// MutatingProcedures lists the procedures that change state.
var MutatingProcedures = map[string]bool{
	LibraryServiceCreateBookProcedure:   true,
	LibraryServiceEditBookProcedure:     true,
	LibraryServiceDeleteBookProcedure:   true,
	LibraryServiceStartRentalProcedure:  true,
	LibraryServiceFinishRentalProcedure: true,
}

// LibraryServiceHandler is implemented by the server side of LibraryService.
type LibraryServiceHandler interface {
	ListAllBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error)
	ListAvailableBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error)
	ListRentedBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error)
	GetBook(context.Context, *connect.Request[libraryv1.GetBookRequest]) (*connect.Response[libraryv1.GetBookResponse], error)
	ListBookRentals(context.Context, *connect.Request[libraryv1.ListBookRentalsRequest]) (*connect.Response[libraryv1.ListBookRentalsResponse], error)
	CreateBook(context.Context, *connect.Request[libraryv1.CreateBookRequest]) (*connect.Response[libraryv1.CreateBookResponse], error)
	EditBook(context.Context, *connect.Request[libraryv1.EditBookRequest]) (*connect.Response[libraryv1.EditBookResponse], error)
	DeleteBook(context.Context, *connect.Request[libraryv1.DeleteBookRequest]) (*connect.Response[libraryv1.DeleteBookResponse], error)
	StartRental(context.Context, *connect.Request[libraryv1.StartRentalRequest]) (*connect.Response[libraryv1.StartRentalResponse], error)
	FinishRental(context.Context, *connect.Request[libraryv1.FinishRentalRequest]) (*connect.Response[libraryv1.FinishRentalResponse], error)
}

// NewLibraryServiceHandler builds an HTTP handler for svc. It returns the path to mount it on.
func NewLibraryServiceHandler(svc LibraryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithCodec(libraryv1.Codec{}))

	handlers := map[string]http.Handler{
		LibraryServiceListAllBooksProcedure:       connect.NewUnaryHandler(LibraryServiceListAllBooksProcedure, svc.ListAllBooks, opts...),
		LibraryServiceListAvailableBooksProcedure: connect.NewUnaryHandler(LibraryServiceListAvailableBooksProcedure, svc.ListAvailableBooks, opts...),
		LibraryServiceListRentedBooksProcedure:    connect.NewUnaryHandler(LibraryServiceListRentedBooksProcedure, svc.ListRentedBooks, opts...),
		LibraryServiceGetBookProcedure:            connect.NewUnaryHandler(LibraryServiceGetBookProcedure, svc.GetBook, opts...),
		LibraryServiceListBookRentalsProcedure:    connect.NewUnaryHandler(LibraryServiceListBookRentalsProcedure, svc.ListBookRentals, opts...),
		LibraryServiceCreateBookProcedure:         connect.NewUnaryHandler(LibraryServiceCreateBookProcedure, svc.CreateBook, opts...),
		LibraryServiceEditBookProcedure:           connect.NewUnaryHandler(LibraryServiceEditBookProcedure, svc.EditBook, opts...),
		LibraryServiceDeleteBookProcedure:         connect.NewUnaryHandler(LibraryServiceDeleteBookProcedure, svc.DeleteBook, opts...),
		LibraryServiceStartRentalProcedure:        connect.NewUnaryHandler(LibraryServiceStartRentalProcedure, svc.StartRental, opts...),
		LibraryServiceFinishRentalProcedure:       connect.NewUnaryHandler(LibraryServiceFinishRentalProcedure, svc.FinishRental, opts...),
	}

	return "/" + LibraryServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// LibraryServiceClient is a typed client for LibraryService.
type LibraryServiceClient struct {
	listAllBooks       *connect.Client[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse]
	listAvailableBooks *connect.Client[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse]
	listRentedBooks    *connect.Client[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse]
	getBook            *connect.Client[libraryv1.GetBookRequest, libraryv1.GetBookResponse]
	listBookRentals    *connect.Client[libraryv1.ListBookRentalsRequest, libraryv1.ListBookRentalsResponse]
	createBook         *connect.Client[libraryv1.CreateBookRequest, libraryv1.CreateBookResponse]
	editBook           *connect.Client[libraryv1.EditBookRequest, libraryv1.EditBookResponse]
	deleteBook         *connect.Client[libraryv1.DeleteBookRequest, libraryv1.DeleteBookResponse]
	startRental        *connect.Client[libraryv1.StartRentalRequest, libraryv1.StartRentalResponse]
	finishRental       *connect.Client[libraryv1.FinishRentalRequest, libraryv1.FinishRentalResponse]
}

// NewLibraryServiceClient creates a client for the service at baseURL, e.g. http://localhost:8080.
func NewLibraryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LibraryServiceClient {
	opts = append(opts, connect.WithCodec(libraryv1.Codec{}))
	return &LibraryServiceClient{
		listAllBooks:       connect.NewClient[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse](httpClient, baseURL+LibraryServiceListAllBooksProcedure, opts...),
		listAvailableBooks: connect.NewClient[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse](httpClient, baseURL+LibraryServiceListAvailableBooksProcedure, opts...),
		listRentedBooks:    connect.NewClient[libraryv1.ListBooksRequest, libraryv1.ListBooksResponse](httpClient, baseURL+LibraryServiceListRentedBooksProcedure, opts...),
		getBook:            connect.NewClient[libraryv1.GetBookRequest, libraryv1.GetBookResponse](httpClient, baseURL+LibraryServiceGetBookProcedure, opts...),
		listBookRentals:    connect.NewClient[libraryv1.ListBookRentalsRequest, libraryv1.ListBookRentalsResponse](httpClient, baseURL+LibraryServiceListBookRentalsProcedure, opts...),
		createBook:         connect.NewClient[libraryv1.CreateBookRequest, libraryv1.CreateBookResponse](httpClient, baseURL+LibraryServiceCreateBookProcedure, opts...),
		editBook:           connect.NewClient[libraryv1.EditBookRequest, libraryv1.EditBookResponse](httpClient, baseURL+LibraryServiceEditBookProcedure, opts...),
		deleteBook:         connect.NewClient[libraryv1.DeleteBookRequest, libraryv1.DeleteBookResponse](httpClient, baseURL+LibraryServiceDeleteBookProcedure, opts...),
		startRental:        connect.NewClient[libraryv1.StartRentalRequest, libraryv1.StartRentalResponse](httpClient, baseURL+LibraryServiceStartRentalProcedure, opts...),
		finishRental:       connect.NewClient[libraryv1.FinishRentalRequest, libraryv1.FinishRentalResponse](httpClient, baseURL+LibraryServiceFinishRentalProcedure, opts...),
	}
}

func (c *LibraryServiceClient) ListAllBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return c.listAllBooks.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) ListAvailableBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return c.listAvailableBooks.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) ListRentedBooks(ctx context.Context, req *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return c.listRentedBooks.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) GetBook(ctx context.Context, req *connect.Request[libraryv1.GetBookRequest]) (*connect.Response[libraryv1.GetBookResponse], error) {
	return c.getBook.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) ListBookRentals(ctx context.Context, req *connect.Request[libraryv1.ListBookRentalsRequest]) (*connect.Response[libraryv1.ListBookRentalsResponse], error) {
	return c.listBookRentals.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) CreateBook(ctx context.Context, req *connect.Request[libraryv1.CreateBookRequest]) (*connect.Response[libraryv1.CreateBookResponse], error) {
	return c.createBook.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) EditBook(ctx context.Context, req *connect.Request[libraryv1.EditBookRequest]) (*connect.Response[libraryv1.EditBookResponse], error) {
	return c.editBook.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) DeleteBook(ctx context.Context, req *connect.Request[libraryv1.DeleteBookRequest]) (*connect.Response[libraryv1.DeleteBookResponse], error) {
	return c.deleteBook.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) StartRental(ctx context.Context, req *connect.Request[libraryv1.StartRentalRequest]) (*connect.Response[libraryv1.StartRentalResponse], error) {
	return c.startRental.CallUnary(ctx, req)
}

func (c *LibraryServiceClient) FinishRental(ctx context.Context, req *connect.Request[libraryv1.FinishRentalRequest]) (*connect.Response[libraryv1.FinishRentalResponse], error) {
	return c.finishRental.CallUnary(ctx, req)
}

// UnimplementedLibraryServiceHandler returns CodeUnimplemented from every method.
type UnimplementedLibraryServiceHandler struct{}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}

func (UnimplementedLibraryServiceHandler) ListAllBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return nil, unimplemented(LibraryServiceListAllBooksProcedure)
}

func (UnimplementedLibraryServiceHandler) ListAvailableBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return nil, unimplemented(LibraryServiceListAvailableBooksProcedure)
}

func (UnimplementedLibraryServiceHandler) ListRentedBooks(context.Context, *connect.Request[libraryv1.ListBooksRequest]) (*connect.Response[libraryv1.ListBooksResponse], error) {
	return nil, unimplemented(LibraryServiceListRentedBooksProcedure)
}

func (UnimplementedLibraryServiceHandler) GetBook(context.Context, *connect.Request[libraryv1.GetBookRequest]) (*connect.Response[libraryv1.GetBookResponse], error) {
	return nil, unimplemented(LibraryServiceGetBookProcedure)
}

func (UnimplementedLibraryServiceHandler) ListBookRentals(context.Context, *connect.Request[libraryv1.ListBookRentalsRequest]) (*connect.Response[libraryv1.ListBookRentalsResponse], error) {
	return nil, unimplemented(LibraryServiceListBookRentalsProcedure)
}

func (UnimplementedLibraryServiceHandler) CreateBook(context.Context, *connect.Request[libraryv1.CreateBookRequest]) (*connect.Response[libraryv1.CreateBookResponse], error) {
	return nil, unimplemented(LibraryServiceCreateBookProcedure)
}

func (UnimplementedLibraryServiceHandler) EditBook(context.Context, *connect.Request[libraryv1.EditBookRequest]) (*connect.Response[libraryv1.EditBookResponse], error) {
	return nil, unimplemented(LibraryServiceEditBookProcedure)
}

func (UnimplementedLibraryServiceHandler) DeleteBook(context.Context, *connect.Request[libraryv1.DeleteBookRequest]) (*connect.Response[libraryv1.DeleteBookResponse], error) {
	return nil, unimplemented(LibraryServiceDeleteBookProcedure)
}

func (UnimplementedLibraryServiceHandler) StartRental(context.Context, *connect.Request[libraryv1.StartRentalRequest]) (*connect.Response[libraryv1.StartRentalResponse], error) {
	return nil, unimplemented(LibraryServiceStartRentalProcedure)
}

func (UnimplementedLibraryServiceHandler) FinishRental(context.Context, *connect.Request[libraryv1.FinishRentalRequest]) (*connect.Response[libraryv1.FinishRentalResponse], error) {
	return nil, unimplemented(LibraryServiceFinishRentalProcedure)
}

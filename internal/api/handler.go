// Package api serves the library over a plain REST/JSON interface.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/lock"
	"github.com/mmynk/booklibrary/internal/service"
	"github.com/mmynk/booklibrary/internal/validation"
	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
)

const maxBodyBytes = 1 << 20

// Handler exposes the library under /api.
type Handler struct {
	lib       *library.Library
	validator *validation.Validator
}

type bookRequest struct {
	ID     *int64 `json:"id,omitempty"`
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(lib *library.Library) *Handler {
	return &Handler{lib: lib, validator: validation.New()}
}

// Register mounts the routes under /api on r, wrapped in mws.
func (h *Handler) Register(r *mux.Router, mws ...mux.MiddlewareFunc) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mws...)

	api.HandleFunc("/books", h.ListBooks).Methods(http.MethodGet)
	api.HandleFunc("/books", h.CreateBook).Methods(http.MethodPost)
	api.HandleFunc("/books/{id:[0-9]+}", h.GetBook).Methods(http.MethodGet)
	api.HandleFunc("/books/{id:[0-9]+}", h.EditBook).Methods(http.MethodPut)
	api.HandleFunc("/books/{id:[0-9]+}", h.DeleteBook).Methods(http.MethodDelete)
	api.HandleFunc("/books/{id:[0-9]+}/rentals", h.ListBookRentals).Methods(http.MethodGet)

	api.HandleFunc("/rentals", h.ListBooks).Methods(http.MethodGet)
	api.HandleFunc("/rentals/availablebooks", h.ListAvailableBooks).Methods(http.MethodGet)
	api.HandleFunc("/rentals/rentedbooks", h.ListRentedBooks).Methods(http.MethodGet)
	api.HandleFunc("/rentals/startrental/{id:[0-9]+}", h.StartRental).Methods(http.MethodPut)
	api.HandleFunc("/rentals/finishrental/{id:[0-9]+}", h.FinishRental).Methods(http.MethodPut)
}

func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	listings, err := h.lib.ListAllBooks(r.Context())
	h.writeListings(w, listings, err)
}

func (h *Handler) ListAvailableBooks(w http.ResponseWriter, r *http.Request) {
	listings, err := h.lib.ListAvailableBooks(r.Context())
	h.writeListings(w, listings, err)
}

func (h *Handler) ListRentedBooks(w http.ResponseWriter, r *http.Request) {
	listings, err := h.lib.ListRentedBooks(r.Context())
	h.writeListings(w, listings, err)
}

func (h *Handler) writeListings(w http.ResponseWriter, listings []library.Listing, err error) {
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToListings(listings))
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.lib.GetBook(r.Context(), id)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToBook(book))
}

func (h *Handler) ListBookRentals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rentals, err := h.lib.ListBookRentals(r.Context(), id)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ToRentals(rentals))
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	req, in, ok := h.decodeBook(w, r)
	if !ok {
		return
	}
	if req.ID != nil && *req.ID != 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id is assigned by the server"})
		return
	}

	book, err := h.lib.CreateBook(r.Context(), in)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	slog.Info("Book created", "book_id", book.ID)
	writeJSON(w, http.StatusOK, service.ToBook(book))
}

func (h *Handler) EditBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, in, ok := h.decodeBook(w, r)
	if !ok {
		return
	}
	if req.ID != nil && *req.ID != id {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "parameters are not valid: path id does not match body id"})
		return
	}

	book, err := h.lib.EditBook(r.Context(), id, in)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	slog.Info("Book updated", "book_id", book.ID)
	writeJSON(w, http.StatusOK, service.ToBook(book))
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.lib.DeleteBook(r.Context(), id); err != nil {
		writeLibraryError(w, err)
		return
	}
	slog.Info("Book deleted", "book_id", id)
	writeJSON(w, http.StatusOK, libraryv1.DeleteBookResponse{})
}

func (h *Handler) StartRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rentalID, err := h.lib.StartRental(r.Context(), id)
	if err != nil {
		writeLibraryError(w, err)
		return
	}
	slog.Info("Rental started", "book_id", id, "rental_id", rentalID)
	writeJSON(w, http.StatusOK, libraryv1.StartRentalResponse{RentalId: rentalID})
}

func (h *Handler) FinishRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.lib.FinishRental(r.Context(), id); err != nil {
		writeLibraryError(w, err)
		return
	}
	slog.Info("Rental finished", "book_id", id)
	writeJSON(w, http.StatusOK, libraryv1.FinishRentalResponse{})
}

// decodeBook reads and validates a book body. It writes the error response itself.
func (h *Handler) decodeBook(w http.ResponseWriter, r *http.Request) (bookRequest, library.BookInput, bool) {
	var req bookRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := jsoniter.ConfigFastest.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return req, library.BookInput{}, false
	}

	if err := h.validator.Validate(validation.Book{ISBN: req.ISBN, Title: req.Title, Author: req.Author}); err != nil {
		writeLibraryError(w, err)
		return req, library.BookInput{}, false
	}

	status, err := service.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return req, library.BookInput{}, false
	}

	return req, library.BookInput{ISBN: req.ISBN, Title: req.Title, Author: req.Author, Status: status}, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid book id"})
		return 0, false
	}
	return id, true
}

// writeLibraryError maps library errors onto HTTP statuses.
func writeLibraryError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, library.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, library.ErrInvalidState):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, lock.ErrTimeout):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "book is busy, try again"})
	default:
		slog.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsoniter.ConfigFastest.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

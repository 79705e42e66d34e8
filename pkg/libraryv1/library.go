// Package libraryv1 defines the messages of the library.v1 RPC API.
//
// Messages travel as JSON; see Codec.
package libraryv1

import "time"

// Book status names as they appear on the wire.
const (
	StatusUnknown   = "Unknown"
	StatusAvailable = "Available"
	StatusRented    = "Rented"
)

type Book struct {
	Id     int64  `json:"id"`
	Isbn   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Status string `json:"status"`

	// RentalOpen is set on listings and reflects the rental records.
	RentalOpen bool `json:"rental_open"`

	// Rentals is the history, newest first. Only populated by GetBook and mutations.
	Rentals []*Rental `json:"rentals,omitempty"`
}

type Rental struct {
	Id        int64      `json:"id"`
	BookId    int64      `json:"book_id"`
	BeginTime time.Time  `json:"begin_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type ListBooksRequest struct{}

type ListBooksResponse struct {
	Books []*Book `json:"books"`
}

type GetBookRequest struct {
	BookId int64 `json:"book_id"`
}

type GetBookResponse struct {
	Book *Book `json:"book"`

	// CurrentRental is the most recently started rental, open or not.
	CurrentRental *Rental `json:"current_rental,omitempty"`
}

type ListBookRentalsRequest struct {
	BookId int64 `json:"book_id"`
}

type ListBookRentalsResponse struct {
	Rentals []*Rental `json:"rentals"`
}

type CreateBookRequest struct {
	Isbn   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`

	// Status is optional; empty means Available.
	Status string `json:"status,omitempty"`
}

type CreateBookResponse struct {
	Book *Book `json:"book"`
}

type EditBookRequest struct {
	BookId int64  `json:"book_id"`
	Isbn   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`

	// Status is optional; when set it must equal the current status.
	Status string `json:"status,omitempty"`
}

type EditBookResponse struct {
	Book *Book `json:"book"`
}

type DeleteBookRequest struct {
	BookId int64 `json:"book_id"`
}

type DeleteBookResponse struct{}

type StartRentalRequest struct {
	BookId int64 `json:"book_id"`
}

type StartRentalResponse struct {
	RentalId int64 `json:"rental_id"`
}

type FinishRentalRequest struct {
	BookId int64 `json:"book_id"`
}

type FinishRentalResponse struct{}

func (x *GetBookRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *ListBookRentalsRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *EditBookRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *DeleteBookRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *StartRentalRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *FinishRentalRequest) GetBookId() int64 {
	if x != nil {
		return x.BookId
	}
	return 0
}

func (x *StartRentalResponse) GetRentalId() int64 {
	if x != nil {
		return x.RentalId
	}
	return 0
}

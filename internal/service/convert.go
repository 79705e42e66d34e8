package service

import (
	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/models"
	libraryv1 "github.com/mmynk/booklibrary/pkg/libraryv1"
)

// ToRental converts a rental to its wire form.
func ToRental(r *models.Rental) *libraryv1.Rental {
	if r == nil {
		return nil
	}
	out := &libraryv1.Rental{
		Id:        r.ID,
		BookId:    r.BookID,
		BeginTime: r.BeginTime,
	}
	if r.EndTime != nil {
		end := *r.EndTime
		out.EndTime = &end
	}
	return out
}

// ToRentals converts a rental history, preserving order.
func ToRentals(rentals []*models.Rental) []*libraryv1.Rental {
	out := make([]*libraryv1.Rental, len(rentals))
	for i, r := range rentals {
		out[i] = ToRental(r)
	}
	return out
}

// ToBook converts a book and its loaded rentals to the wire form.
func ToBook(b *models.Book) *libraryv1.Book {
	out := &libraryv1.Book{
		Id:         b.ID,
		Isbn:       b.ISBN,
		Title:      b.Title,
		Author:     b.Author,
		Status:     b.Status.String(),
		RentalOpen: b.HasOpenRental(),
	}
	if b.Rentals != nil {
		out.Rentals = ToRentals(b.Rentals)
	}
	return out
}

// ToListing converts a catalog listing. Rental history is left out of listings.
func ToListing(l library.Listing) *libraryv1.Book {
	return &libraryv1.Book{
		Id:         l.Book.ID,
		Isbn:       l.Book.ISBN,
		Title:      l.Book.Title,
		Author:     l.Book.Author,
		Status:     l.Book.Status.String(),
		RentalOpen: l.RentalOpen,
	}
}

// ToListings converts a slice of listings, preserving order.
func ToListings(listings []library.Listing) []*libraryv1.Book {
	out := make([]*libraryv1.Book, len(listings))
	for i, l := range listings {
		out[i] = ToListing(l)
	}
	return out
}

// ParseStatus converts an optional wire status. The empty string yields nil.
func ParseStatus(name string) (*models.Status, error) {
	if name == "" {
		return nil, nil
	}
	s, err := models.ParseStatus(name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

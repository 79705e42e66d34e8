// Package models defines the core domain models for the book library.
//
// # Models
//
//   - Book: a catalog item with an availability Status; the aggregate root
//   - Rental: one borrowing episode of a book, open while EndTime is nil
//   - Status: Unknown (zero value), Available, Rented
//
// # Consistency
//
// Book.Status is the source of truth for availability. The rental records give a second,
// derived view of the same fact (HasOpenRental), which must always agree with it:
//
//	Status == StatusRented    <=> exactly one rental with EndTime == nil
//	Status == StatusAvailable <=> no rental with EndTime == nil
//
// Only the rental ledger (internal/library) moves a book between Available and Rented.
//
// Relationships use IDs rather than back pointers: a Rental carries BookID, and a Book
// optionally carries its loaded Rentals.
package models

package models

import (
	"sort"
	"time"
)

// Rental is one borrowing episode of a book.
type Rental struct {
	ID     int64
	BookID int64

	// BeginTime is set when the rental starts.
	BeginTime time.Time

	// EndTime is nil while the rental is open. Once set it is never before BeginTime.
	EndTime *time.Time
}

// Open reports whether the book is still out on this rental.
func (r *Rental) Open() bool {
	return r.EndTime == nil
}

// Clone returns a copy of the rental that shares no pointers with r.
func (r *Rental) Clone() *Rental {
	c := *r
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	return &c
}

// startedAfter orders rentals by BeginTime, falling back to ID when timestamps collide.
func startedAfter(a, b *Rental) bool {
	if !a.BeginTime.Equal(b.BeginTime) {
		return a.BeginTime.After(b.BeginTime)
	}
	return a.ID > b.ID
}

// CurrentRental returns the most recently started rental, or nil for an empty history.
// Ties on BeginTime are broken by the highest ID.
func CurrentRental(rentals []*Rental) *Rental {
	var current *Rental
	for _, r := range rentals {
		if current == nil || startedAfter(r, current) {
			current = r
		}
	}
	return current
}

// SortNewestFirst orders rentals in place by BeginTime descending, then ID descending.
func SortNewestFirst(rentals []*Rental) {
	sort.SliceStable(rentals, func(i, j int) bool {
		return startedAfter(rentals[i], rentals[j])
	})
}

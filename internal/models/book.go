package models

// Book is a physical catalog item and the aggregate root of its rentals.
type Book struct {
	// ID is assigned by the store on creation and never changes.
	ID int64

	// ISBN is expected to be ISBN-10 or ISBN-13; the format is checked at the API boundary.
	ISBN string

	Title  string
	Author string

	// Status is the authoritative availability flag. It is only changed by the rental ledger.
	Status Status

	// Rentals holds the rental history when the book was loaded with its rentals,
	// newest first. It is nil otherwise.
	Rentals []*Rental
}

// HasOpenRental reports whether any loaded rental is still open.
// It is the projection of Status derived from rental records.
func (b *Book) HasOpenRental() bool {
	for _, r := range b.Rentals {
		if r.Open() {
			return true
		}
	}
	return false
}

// OpenRentals returns the loaded rentals that have no end time.
func (b *Book) OpenRentals() []*Rental {
	var open []*Rental
	for _, r := range b.Rentals {
		if r.Open() {
			open = append(open, r)
		}
	}
	return open
}

// CurrentRental returns the most recently started rental of the book, or nil.
func (b *Book) CurrentRental() *Rental {
	return CurrentRental(b.Rentals)
}

// Clone returns a deep copy of the book, including its loaded rentals.
func (b *Book) Clone() *Book {
	c := *b
	if b.Rentals != nil {
		c.Rentals = make([]*Rental, len(b.Rentals))
		for i, r := range b.Rentals {
			c.Rentals[i] = r.Clone()
		}
	}
	return &c
}

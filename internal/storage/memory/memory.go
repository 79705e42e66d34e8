// Package memory provides an in-process implementation of the storage.Store interface.
// It is used by tests and by DB_DRIVER=memory; data does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmynk/booklibrary/internal/models"
	"github.com/mmynk/booklibrary/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// state is one consistent snapshot of all records.
type state struct {
	books      map[int64]*models.Book // without rentals
	rentals    map[int64]*models.Rental
	nextBookID int64
	nextRental int64
}

func newState() *state {
	return &state{
		books:      make(map[int64]*models.Book),
		rentals:    make(map[int64]*models.Rental),
		nextBookID: 1,
		nextRental: 1,
	}
}

func (s *state) clone() *state {
	c := &state{
		books:      make(map[int64]*models.Book, len(s.books)),
		rentals:    make(map[int64]*models.Rental, len(s.rentals)),
		nextBookID: s.nextBookID,
		nextRental: s.nextRental,
	}
	for id, b := range s.books {
		c.books[id] = b.Clone()
	}
	for id, r := range s.rentals {
		c.rentals[id] = r.Clone()
	}
	return c
}

// Store keeps books and rentals in maps guarded by a RWMutex.
// Transactions run one at a time against a copy of the data that replaces the
// live state only when the callback succeeds.
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
}

// New creates an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// InTx runs fn against a private copy of the data and publishes it on success.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &txRepo{state: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

// read runs fn under the read lock.
func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// write runs fn as a single-operation transaction.
func (s *Store) write(ctx context.Context, fn func(repo storage.Repository) error) error {
	return s.InTx(ctx, func(ctx context.Context, repo storage.Repository) error {
		return fn(repo)
	})
}

func (s *Store) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	var book *models.Book
	s.read(func(st *state) { book = st.findBook(id, false) })
	return book, nil
}

func (s *Store) FindBookWithRentals(ctx context.Context, id int64) (*models.Book, error) {
	var book *models.Book
	s.read(func(st *state) { book = st.findBook(id, true) })
	return book, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	s.read(func(st *state) { books = st.listBooks(false) })
	return books, nil
}

func (s *Store) ListBooksWithRentals(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	s.read(func(st *state) { books = st.listBooks(true) })
	return books, nil
}

func (s *Store) FindOpenRentalsByBook(ctx context.Context, bookID int64) ([]*models.Rental, error) {
	var rentals []*models.Rental
	s.read(func(st *state) { rentals = st.openRentals(bookID) })
	return rentals, nil
}

func (s *Store) SaveBook(ctx context.Context, book *models.Book) error {
	return s.write(ctx, func(repo storage.Repository) error { return repo.SaveBook(ctx, book) })
}

func (s *Store) DeleteBook(ctx context.Context, book *models.Book) error {
	return s.write(ctx, func(repo storage.Repository) error { return repo.DeleteBook(ctx, book) })
}

func (s *Store) SaveRental(ctx context.Context, rental *models.Rental) error {
	return s.write(ctx, func(repo storage.Repository) error { return repo.SaveRental(ctx, rental) })
}

// txRepo is the Repository handed to InTx callbacks. It works on the transaction's copy
// and needs no locking because transactions are serialized.
type txRepo struct {
	state *state
}

func (r *txRepo) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	return r.state.findBook(id, false), nil
}

func (r *txRepo) FindBookWithRentals(ctx context.Context, id int64) (*models.Book, error) {
	return r.state.findBook(id, true), nil
}

func (r *txRepo) ListBooks(ctx context.Context) ([]*models.Book, error) {
	return r.state.listBooks(false), nil
}

func (r *txRepo) ListBooksWithRentals(ctx context.Context) ([]*models.Book, error) {
	return r.state.listBooks(true), nil
}

func (r *txRepo) FindOpenRentalsByBook(ctx context.Context, bookID int64) ([]*models.Rental, error) {
	return r.state.openRentals(bookID), nil
}

func (r *txRepo) SaveBook(ctx context.Context, book *models.Book) error {
	st := r.state
	if book.ID == 0 {
		book.ID = st.nextBookID
		st.nextBookID++
	} else if _, ok := st.books[book.ID]; !ok {
		return fmt.Errorf("book not found: %d", book.ID)
	}

	stored := book.Clone()
	stored.Rentals = nil
	st.books[book.ID] = stored
	return nil
}

func (r *txRepo) DeleteBook(ctx context.Context, book *models.Book) error {
	st := r.state
	if _, ok := st.books[book.ID]; !ok {
		return fmt.Errorf("book not found: %d", book.ID)
	}
	delete(st.books, book.ID)
	for id, rental := range st.rentals {
		if rental.BookID == book.ID {
			delete(st.rentals, id)
		}
	}
	return nil
}

// SaveRental enforces the same constraints as the SQL schemas: the book must exist,
// the end may not precede the begin, and a book has at most one open rental.
func (r *txRepo) SaveRental(ctx context.Context, rental *models.Rental) error {
	st := r.state
	if _, ok := st.books[rental.BookID]; !ok {
		return fmt.Errorf("failed to save rental: book not found: %d", rental.BookID)
	}
	if rental.EndTime != nil && rental.EndTime.Before(rental.BeginTime) {
		return fmt.Errorf("failed to save rental: end time before begin time")
	}
	if rental.Open() {
		for _, other := range st.rentals {
			if other.BookID == rental.BookID && other.Open() && other.ID != rental.ID {
				return fmt.Errorf("failed to save rental: book %d already has open rental %d", rental.BookID, other.ID)
			}
		}
	}

	if rental.ID == 0 {
		rental.ID = st.nextRental
		st.nextRental++
	} else if _, ok := st.rentals[rental.ID]; !ok {
		return fmt.Errorf("rental not found: %d", rental.ID)
	}
	st.rentals[rental.ID] = rental.Clone()
	return nil
}

func (st *state) findBook(id int64, withRentals bool) *models.Book {
	stored, ok := st.books[id]
	if !ok {
		return nil
	}
	book := stored.Clone()
	if withRentals {
		book.Rentals = st.rentalsOf(id, false)
	}
	return book
}

func (st *state) listBooks(withRentals bool) []*models.Book {
	books := make([]*models.Book, 0, len(st.books))
	for id := range st.books {
		books = append(books, st.findBook(id, withRentals))
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

func (st *state) openRentals(bookID int64) []*models.Rental {
	return st.rentalsOf(bookID, true)
}

func (st *state) rentalsOf(bookID int64, openOnly bool) []*models.Rental {
	rentals := []*models.Rental{}
	for _, r := range st.rentals {
		if r.BookID != bookID || (openOnly && !r.Open()) {
			continue
		}
		rentals = append(rentals, r.Clone())
	}
	models.SortNewestFirst(rentals)
	return rentals
}

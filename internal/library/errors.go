package library

import (
	"errors"
	"fmt"
)

// Error kinds returned by the library. Match them with errors.Is.
var (
	// ErrNotFound means the referenced book does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is not permitted in the book's current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrStorage wraps any failure of the persistence layer.
	ErrStorage = errors.New("storage error")
)

func bookNotFound(id int64) error {
	return fmt.Errorf("%w: book %d does not exist", ErrNotFound, id)
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// storageError marks err as a storage failure unless it already carries a kind.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

package models

import "fmt"

// Status is the availability of a book.
// Unknown is the zero value; no transition ever targets it.
type Status int

const (
	StatusUnknown Status = iota
	StatusAvailable
	StatusRented
)

var statusNames = map[Status]string{
	StatusUnknown:   "Unknown",
	StatusAvailable: "Available",
	StatusRented:    "Rented",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// ParseStatus converts a status name (as produced by String) back to a Status.
// The empty string parses as StatusUnknown.
func ParseStatus(name string) (Status, error) {
	if name == "" {
		return StatusUnknown, nil
	}
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown book status %q", name)
}

// MarshalText encodes the status by name so JSON payloads read "Available" rather than 1.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid book status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Package validation checks client-supplied book fields before they reach the library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Book holds the validated fields of a create or edit request.
type Book struct {
	ISBN   string `json:"isbn" validate:"omitempty,isbnformat"`
	Title  string `json:"title" validate:"required"`
	Author string `json:"author"`
}

// Error lists the fields that failed validation with a message for each.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid book: " + strings.Join(parts, "; ")
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the book rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("isbnformat", func(fl validator.FieldLevel) bool {
		return ValidISBN(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register isbn rule: %v", err))
	}
	return &Validator{v: v}
}

// Validate checks a book. It returns an *Error describing every failing field.
func (v *Validator) Validate(b Book) error {
	err := v.v.Struct(b)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate book: %w", err)
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "isbnformat":
		return "the number entered is not a valid ISBN"
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

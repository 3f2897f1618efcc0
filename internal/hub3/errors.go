package hub3

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrMissingOrganizationData = errors.New("missing organization data")
	ErrUnsupportedCharacter    = errors.New("character not supported by the barcode charset")
	ErrUnresolvedPlaceholder   = errors.New("unresolved placeholder")
	ErrNonNumericReference     = errors.New("non-numeric reference")
	ErrSeedOutOfRange          = errors.New("reference seed out of range")
)

// FieldError is returned by Build when a required payload field is unusable.
type FieldError struct {
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Warning describes a template problem that was recovered from locally.
// Err is ErrUnresolvedPlaceholder or ErrNonNumericReference.
type Warning struct {
	Field  string
	Token  string
	Err    error
	Detail string
}

func (w Warning) Error() string {
	msg := fmt.Sprintf("%s: %v %q", w.Field, w.Err, w.Token)
	if w.Detail != "" {
		msg += ": " + w.Detail
	}
	return msg
}

func (w Warning) Unwrap() error {
	return w.Err
}

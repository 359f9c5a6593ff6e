package service

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/event-seat-booking/internal/repository"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	KindValidation Kind = "validation" // malformed or missing input
	KindNotFound   Kind = "not_found"  // event, seat or booking does not exist
	KindConflict   Kind = "conflict"   // seat unavailable or ticket number taken
	KindInternal   Kind = "internal"   // store or transport failure
)

// Error is the typed failure returned by the services.  Message is safe to
// show to users; Err carries the underlying cause of internal failures.
type Error struct {
	Kind    Kind
	Message string
	// Tickets lists the colliding ticket numbers of a ticket conflict.
	Tickets []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err.  Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// classify turns an error surfacing from a store call into an *Error.
// Typed errors pass through; repository sentinels map to their kind;
// anything else is logged with its stack and reported as internal.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return notFoundError("event not found")
	case errors.Is(err, repository.ErrSeatNotFound):
		return notFoundError("seat not found")
	case errors.Is(err, repository.ErrBookingNotFound):
		return notFoundError("booking not found")
	case errors.Is(err, repository.ErrDuplicateTicket):
		return conflictError("ticket number already in use")
	case errors.Is(err, repository.ErrContention):
		return conflictError("seats were claimed by a concurrent booking")
	}
	log.Printf("%s: %v\n%s", op, err, debug.Stack())
	return &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validationFailure renders the first failed rule of a validator error.
func validationFailure(err error) *Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return validationError("invalid request: %v", err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return validationError("%s is required", fe.Field())
	case "min":
		return validationError("%s must have at least %s entries", fe.Field(), fe.Param())
	case "max":
		return validationError("%s must be at most %s characters", fe.Field(), fe.Param())
	case "url":
		return validationError("%s must be a valid URL", fe.Field())
	}
	return validationError("%s is invalid (%s)", fe.Field(), fe.Tag())
}

// Package apperr holds the error kinds surfaced to API clients.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInvalidReference   Kind = "invalid_reference"
	KindProductUnavailable Kind = "product_unavailable"
	KindUnauthorized       Kind = "unauthorized"
)

// Error is a client-facing failure. Message is shown to the user verbatim.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// Status maps the kind onto the HTTP status convention of the API.
func (e *Error) Status() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusBadRequest
	}
}

// Body is the JSON payload written for the error.
func (e *Error) Body() fiber.Map {
	body := fiber.Map{
		"error": e.Message,
		"code":  e.Kind,
	}
	if e.Field != "" {
		body["field"] = e.Field
	}
	for k, v := range e.Details {
		body[k] = v
	}
	return body
}

// WithDetail attaches structured context rendered next to the message.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// InvalidReference reports a foreign key that points at nothing. field is
// the request field holding the bad id.
func InvalidReference(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidReference, Field: field, Message: fmt.Sprintf(format, args...)}
}

func ProductUnavailable(format string, args ...any) *Error {
	return &Error{Kind: KindProductUnavailable, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status returns the HTTP status err will be rendered with.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// Op is the kind of statement a database error came from.
type Op int

const (
	OpWrite Op = iota // insert or update
	OpDelete
)

// FromDB turns constraint violations reported by the database into client
// errors. Explicit checks run first; this covers the writes that race them.
// A foreign key violation on a write means a referenced row vanished, on a
// delete it means the row is still referenced.
func FromDB(err error, op Op, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated) && op == OpDelete:
		return Conflict("%s is in use and cannot be deleted", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return InvalidReference("", "%s references a record that no longer exists", what)
	default:
		return err
	}
}

// Package apperr carries the error taxonomy shared by services and
// HTTP handlers. Handlers map a Kind to a status code; they never look
// at message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "menu.move".
	Op string
	// ID is the offending identifier for NotFound errors.
	ID  string
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports that entity with the given id does not exist.
func NotFound(entity string, id fmt.Stringer) *Error {
	return &Error{
		Kind: KindNotFound,
		ID:   id.String(),
		Msg:  fmt.Sprintf("%s %s not found", entity, id.String()),
	}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure, typically from the store.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Msg: "internal error", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain. Errors
// outside the taxonomy are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

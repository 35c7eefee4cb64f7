package apperr

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"tattootime/utils"
)

// Kind is the stable error code clients branch on. Message text may change,
// kinds may not.
type Kind string

const (
	Unauthenticated    Kind = "unauthenticated"
	InvalidArgument    Kind = "invalid-argument"
	NotFound           Kind = "not-found"
	AlreadyExists      Kind = "already-exists"
	PermissionDenied   Kind = "permission-denied"
	FailedPrecondition Kind = "failed-precondition"
	Internal           Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal for anything
// that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func httpStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists:
		return http.StatusConflict
	case PermissionDenied:
		return http.StatusForbidden
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error response. Internal errors get a generic
// message; the cause is logged server-side only.
func Respond(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Wrap(Internal, "An unexpected error occurred", err)
	}
	msg := e.Message
	if e.Kind == Internal {
		log.Printf("[apperr] internal error: %v", err)
		msg = "An unexpected error occurred"
	}
	utils.RespondWithJSON(w, httpStatus(e.Kind), map[string]any{
		"success": false,
		"error": map[string]string{
			"kind":    string(e.Kind),
			"message": msg,
		},
	})
}

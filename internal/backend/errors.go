package backend

import (
	"fmt"

	"github.com/africanut/holding-admin/internal/platform/httpx"
)

// Kind classifies a failed backend call.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindServer       Kind = "server"
	KindNetwork      Kind = "network"
)

const (
	msgNetwork = "backend unreachable, check your connection"
	msgGeneric = "backend request failed"
	msgSignIn  = "sign-in required"
)

// Error is a classified backend failure. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Status  int
	Op      string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("backend: %s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("backend: %s: %s", e.Op, e.Message)
}

// Unwrap returns the transport error, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is maps kinds onto the httpx sentinels.
func (e *Error) Is(target error) bool {
	return target == e.sentinel()
}

// FieldErrors returns per-field messages sent by the backend.
func (e *Error) FieldErrors() map[string]string { return e.Fields }

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindValidation:
		return httpx.ErrValidation
	case KindUnauthorized:
		return httpx.ErrUnauthorized
	case KindForbidden:
		return httpx.ErrForbidden
	case KindNotFound:
		return httpx.ErrNotFound
	case KindConflict:
		return httpx.ErrConflict
	case KindNetwork:
		return httpx.ErrUnavailable
	default:
		return httpx.ErrUpstream
	}
}

func kindForStatus(status int) Kind {
	switch {
	case status == 400 || status == 422:
		return KindValidation
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	default:
		return KindServer
	}
}

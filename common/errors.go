package common

import (
	"errors"
	"net/http"
)

// Error taxonomy. Services wrap these with fmt.Errorf("...: %w", ...) and
// controllers map them to HTTP statuses via HTTPStatus.
var (
	// ErrUnauthenticated: no valid identity; rejected before touching the store.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound covers both a genuinely absent entry and one owned by a
	// different user. The two are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrValidation: malformed or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict: the expected update counter no longer matches the stored one.
	ErrConflict = errors.New("conflict")

	// ErrUpstreamUnavailable: an external collaborator failed or is unconfigured.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInternal: unexpected store or computation failure.
	ErrInternal = errors.New("internal error")
)

// HTTPStatus maps a taxonomy error to its response status. Unknown errors
// are treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

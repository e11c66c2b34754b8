package quote

import (
	"fmt"
	"strings"
)

// ErrorKind classifies quote failures for callers.
type ErrorKind string

const (
	// KindInvalidRequest marks requests rejected before any network call.
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindNoRouteFound marks a provider response with no viable path.
	KindNoRouteFound ErrorKind = "no_route_found"
	// KindProviderError marks any other provider failure.
	KindProviderError ErrorKind = "provider_error"
)

// noRouteMarker is the provider's message substring for unroutable requests.
const noRouteMarker = "No available quotes"

// Error is a classified quote failure carrying the underlying message.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewInvalidRequestError builds a local validation error.
func NewInvalidRequestError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// ClassifyProviderError maps a raw provider failure into a quote error.
// Messages containing the provider's no-route marker become NoRouteFound;
// everything else passes through as a generic provider error.
func ClassifyProviderError(err error) *Error {
	msg := err.Error()
	if strings.Contains(msg, noRouteMarker) {
		return &Error{Kind: KindNoRouteFound, Message: msg}
	}
	return &Error{Kind: KindProviderError, Message: msg}
}

// IsNoRoute reports whether err is a NoRouteFound classification.
func IsNoRoute(err error) bool {
	qe, ok := err.(*Error)
	return ok && qe.Kind == KindNoRouteFound
}

// IsInvalidRequest reports whether err is a local validation rejection.
func IsInvalidRequest(err error) bool {
	qe, ok := err.(*Error)
	return ok && qe.Kind == KindInvalidRequest
}

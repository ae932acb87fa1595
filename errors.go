package correlation

import "errors"

var (
	// ErrNilRequest is returned when a nil request is passed to the inbound or
	// outbound stage. It indicates a programming error in the caller.
	ErrNilRequest = errors.New("correlation: nil request")

	// ErrNoHolder is returned by the Transport when the outgoing request's
	// context carries no correlation Holder. This means the call was not made
	// with a context derived from a request handled by the Middleware, which
	// is a wiring error.
	ErrNoHolder = errors.New("correlation: no correlation holder in request context")

	// ErrUnknownClient is returned when a named client was never registered.
	ErrUnknownClient = errors.New("correlation: unknown client")

	// ErrInvalidConfig is returned when loaded configuration fails validation.
	ErrInvalidConfig = errors.New("correlation: invalid config")
)

package correlation

import (
	"fmt"
	"net/http"
)

var _ http.RoundTripper = (*Transport)(nil)

// Transport is a http.RoundTripper that attaches the correlation ID to
// outgoing requests. The ID is read from the Holder on the request's context,
// so requests must be created with a context derived from one the Middleware
// handled.
type Transport struct {
	// Base is the base RoundTripper used to make HTTP requests. If nil,
	// http.DefaultTransport is used.
	Base http.RoundTripper

	// Options supplies the header name the ID is sent in, via
	// DefaultHeaderName. Other fields are ignored.
	Options Options

	// NewForwarder creates the Forwarder for each request that needs the ID.
	// Defaults to HeaderForwarder.
	NewForwarder ForwarderFactory

	// Observer is notified of each forwarding decision.
	Observer Observer
}

// RoundTrip adds the correlation ID header to the outgoing request, as needed.
// A request that already carries the header is sent as is.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("correlation transport: %w", ErrNilRequest)
	}

	reqBodyClosed := false
	if body := req.Body; body != nil {
		defer func() {
			if !reqBodyClosed {
				_ = body.Close()
			}
		}()
	}

	holder, ok := HolderFromContext(req.Context())
	if !ok {
		return nil, fmt.Errorf("correlation transport: %s %s: %w", req.Method, req.URL, ErrNoHolder)
	}

	id := holder.Current()
	headerName := t.Options.headerName()
	switch {
	case id == "":
		t.observe(OutcomeSkippedEmpty)
	case len(req.Header.Values(headerName)) > 0:
		t.observe(OutcomeSkippedPresent)
	default:
		req = req.Clone(req.Context()) // per RoundTripper contract
		t.forwarder(req, headerName).Forward(id)
		t.observe(OutcomeForwarded)
	}

	// req.Body is assumed to be closed by the base RoundTripper.
	reqBodyClosed = true
	return t.base().RoundTrip(req)
}

func (t *Transport) forwarder(req *http.Request, headerName string) Forwarder {
	if t.NewForwarder != nil {
		return t.NewForwarder(req, headerName)
	}
	return HeaderForwarder(req, headerName)
}

func (t *Transport) observe(o Outcome) {
	if t.Observer != nil {
		t.Observer.OutboundForwarded(o)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

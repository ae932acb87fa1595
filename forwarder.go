package correlation

import "net/http"

// Forwarder delivers a correlation ID to one outgoing call. A Forwarder is
// created by the Transport for a single request and discarded afterwards.
type Forwarder interface {
	Forward(id string)
}

// ForwarderFunc adapts a function to a Forwarder.
type ForwarderFunc func(id string)

func (f ForwarderFunc) Forward(id string) {
	f(id)
}

// ForwarderFactory binds a Forwarder to an outgoing request and the header
// name the ID should be delivered in.
type ForwarderFactory func(req *http.Request, headerName string) Forwarder

// HeaderForwarder returns a Forwarder that adds the ID to req's headers under
// headerName. Existing values are left in place.
func HeaderForwarder(req *http.Request, headerName string) Forwarder {
	return ForwarderFunc(func(id string) {
		req.Header.Add(headerName, id)
	})
}

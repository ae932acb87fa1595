// Package correlation propagates a per-request correlation ID through an HTTP
// server, on to any outgoing HTTP calls made while handling the request, and
// into log output.
//
// A [Middleware] sits at the front of the server's handler chain. For every
// request it picks the ID from the first accepted request header that is
// present, or generates a new one, stores it in a request scoped [Holder] on
// the request context, optionally echoes it on the response and optionally
// opens a log scope around the rest of the chain.
//
// A [Transport] wraps the client side. Outgoing requests created with the
// inbound request's context get the ID attached under the configured header,
// unless the caller already set that header.
//
//	mw := correlation.NewMiddleware()
//	http.ListenAndServe(":8080", mw.Handler(mux))
//
//	clients := &correlation.Clients{}
//	clients.Add("billing").CorrelateRequests("X-Billing-Correlation")
//	c, _ := clients.Client("billing")
//	req, _ := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
//	resp, err := c.Do(req)
package correlation

const (
	// DefaultHeaderName is the header the ID is read from, written to and
	// forwarded in when nothing else is configured.
	DefaultHeaderName = "X-Correlation-Id"

	// DefaultLogPropertyName is the key the ID is logged under.
	DefaultLogPropertyName = "CorrelationId"
)

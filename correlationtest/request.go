package correlationtest

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/lstoll/correlation"
)

// ContextWithID returns a copy of ctx carrying a Holder already set to id,
// as if the request had passed through a correlation.Middleware.
func ContextWithID(ctx context.Context, id string) context.Context {
	h := correlation.NewHolder()
	h.SetOnce(id)
	return correlation.ContextWithHolder(ctx, h)
}

type requestOpts struct {
	headers http.Header
	id      string
	holder  bool
}

type RequestOpt func(opts *requestOpts)

// RequestWithHeader adds a header to the request.
func RequestWithHeader(name, value string) RequestOpt {
	return func(opts *requestOpts) {
		opts.headers.Add(name, value)
	}
}

// RequestWithID attaches a Holder set to id to the request's context.
func RequestWithID(id string) RequestOpt {
	return func(opts *requestOpts) {
		opts.id = id
		opts.holder = true
	}
}

// RequestWithEmptyHolder attaches a Holder with no ID to the request's
// context.
func RequestWithEmptyHolder() RequestOpt {
	return func(opts *requestOpts) {
		opts.id = ""
		opts.holder = true
	}
}

// NewRequest returns a server style request for handler tests, built with
// httptest.NewRequest.
func NewRequest(method string, url string, opts ...RequestOpt) *http.Request {
	ropts := &requestOpts{headers: make(http.Header)}
	for _, opt := range opts {
		opt(ropts)
	}

	r := httptest.NewRequest(method, url, nil)
	for k, vs := range ropts.headers {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}

	if ropts.holder {
		h := correlation.NewHolder()
		if ropts.id != "" {
			h.SetOnce(ropts.id)
		}
		r = r.WithContext(correlation.ContextWithHolder(r.Context(), h))
	}
	return r
}

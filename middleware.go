package correlation

import (
	"fmt"
	"net/http"
	"strings"
)

// Middleware resolves the correlation ID for each inbound request and makes
// it available downstream via the request context. Fields left nil use the
// package defaults. The Middleware must not be modified after Handler has
// been called.
type Middleware struct {
	// Options controls header trust, response echo and log enrichment.
	Options Options
	// Provider generates IDs for requests that don't carry a usable one.
	// Defaults to UUIDProvider.
	Provider IDProvider
	// NewHolder creates the per request Holder. Defaults to NewHolder.
	NewHolder HolderFactory
	// LogScope opens the log scope when Options.EnrichLog is set. Defaults to
	// SlogScoper.
	LogScope LogScoper
	// Observer is notified of each resolution.
	Observer Observer
}

// NewMiddleware returns a Middleware using DefaultOptions, modified by each of
// configure in order.
func NewMiddleware(configure ...func(*Options)) *Middleware {
	return &Middleware{Options: buildOptions(DefaultOptions(), configure)}
}

// Resolution is the outcome of resolving a request's correlation ID.
type Resolution struct {
	// ID is the correlation ID for the request.
	ID string
	// HeaderName is the accepted request header the ID was looked up in. It
	// is empty when no accepted header was present.
	HeaderName string
	// Source says whether ID came from HeaderName or was generated.
	Source Source
}

// ResponseHeaderName returns the header the ID is echoed in on the response:
// the request header it was looked up in, falling back to the configured
// default.
func (r Resolution) ResponseHeaderName(o Options) string {
	if r.HeaderName != "" {
		return r.HeaderName
	}
	return o.headerName()
}

// Resolve determines the correlation ID for r without modifying it.
func (m *Middleware) Resolve(r *http.Request) (Resolution, error) {
	return m.build().resolve(r)
}

// Handler wraps next, ensuring every request downstream carries a Holder with
// the resolved ID on its context. It panics if called with a nil request.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	p := m.build()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.serveHTTP(w, r, next)
	})
}

// pipeline is a snapshot of a Middleware's configuration with defaults
// filled in.
type pipeline struct {
	opts      Options
	provider  IDProvider
	newHolder HolderFactory
	scoper    LogScoper
	observer  Observer
}

func (m *Middleware) build() *pipeline {
	p := &pipeline{
		opts:      m.Options.Clone(),
		provider:  m.Provider,
		newHolder: m.NewHolder,
		scoper:    m.LogScope,
		observer:  m.Observer,
	}
	if p.provider == nil {
		p.provider = UUIDProvider{}
	}
	if p.newHolder == nil {
		p.newHolder = NewHolder
	}
	if p.scoper == nil {
		p.scoper = SlogScoper{}
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	return p
}

func (p *pipeline) serveHTTP(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r == nil {
		panic(fmt.Errorf("correlation middleware: %w", ErrNilRequest))
	}

	ctx := r.Context()
	h, ok := HolderFromContext(ctx)
	if !ok {
		h = p.newHolder()
		ctx = ContextWithHolder(ctx, h)
	}

	// an outer Middleware on the same request may already have resolved the
	// ID, in which case it is neither resolved nor observed again.
	id := h.Current()
	responseHeader := Resolution{HeaderName: p.trustedHeader(r.Header)}.ResponseHeaderName(p.opts)
	if id == "" {
		res, err := p.resolve(r)
		if err != nil {
			panic(fmt.Errorf("correlation middleware: %w", err))
		}
		p.observer.InboundResolved(res.Source)
		h.SetOnce(res.ID)
		if id = h.Current(); id == "" {
			id = res.ID
		}
		responseHeader = res.ResponseHeaderName(p.opts)
	}

	if p.opts.WriteToResponse {
		w.Header().Set(responseHeader, id)
	}

	if p.opts.EnrichLog {
		var end func()
		ctx, end = p.scoper.BeginScope(ctx, map[string]string{p.opts.logPropertyName(): id})
		defer end()
	}

	next.ServeHTTP(w, r.WithContext(ctx))
}

func (p *pipeline) resolve(r *http.Request) (Resolution, error) {
	if r == nil {
		return Resolution{}, ErrNilRequest
	}

	res := Resolution{HeaderName: p.trustedHeader(r.Header)}
	if res.HeaderName != "" {
		if v := r.Header.Get(res.HeaderName); strings.TrimSpace(v) != "" {
			res.ID = v
			res.Source = SourceHeader
			return res, nil
		}
	}
	res.ID = p.provider.NewID()
	res.Source = SourceGenerated
	return res, nil
}

// trustedHeader returns the first accepted header name present in h, in
// declared order. Presence is enough, the value may be blank.
func (p *pipeline) trustedHeader(h http.Header) string {
	if !p.opts.TryUseRequestHeader {
		return ""
	}
	for _, name := range p.opts.AcceptedHeaderNames {
		if name == "" {
			continue
		}
		if len(h.Values(name)) > 0 {
			return name
		}
	}
	return ""
}

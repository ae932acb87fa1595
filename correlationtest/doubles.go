// Package correlationtest provides test doubles for the correlation package.
package correlationtest

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/lstoll/correlation"
)

var (
	_ correlation.IDProvider = StaticProvider("")
	_ correlation.IDProvider = (*SequenceProvider)(nil)
	_ correlation.LogScoper  = (*RecordingScoper)(nil)
	_ correlation.Observer   = (*RecordingObserver)(nil)
)

// StaticProvider always returns the same ID.
type StaticProvider string

func (p StaticProvider) NewID() string {
	return string(p)
}

// SequenceProvider returns Prefix-1, Prefix-2, ... It is safe for concurrent
// use.
type SequenceProvider struct {
	Prefix string
	n      atomic.Int64
}

func (p *SequenceProvider) NewID() string {
	return fmt.Sprintf("%s-%d", p.Prefix, p.n.Add(1))
}

// ForwardCall is one recorded call to a Forwarder.
type ForwardCall struct {
	URL    string
	Header string
	ID     string
}

// RecordingForwarder records every forward made through forwarders from its
// Factory. If Deliver is set the header is also added to the request, like
// correlation.HeaderForwarder does.
type RecordingForwarder struct {
	Deliver bool

	mu    sync.Mutex
	calls []ForwardCall
}

// Factory returns a correlation.ForwarderFactory bound to f.
func (f *RecordingForwarder) Factory() correlation.ForwarderFactory {
	return func(req *http.Request, headerName string) correlation.Forwarder {
		return correlation.ForwarderFunc(func(id string) {
			f.mu.Lock()
			f.calls = append(f.calls, ForwardCall{URL: req.URL.String(), Header: headerName, ID: id})
			f.mu.Unlock()
			if f.Deliver {
				req.Header.Add(headerName, id)
			}
		})
	}
}

// Calls returns the recorded calls, in order.
func (f *RecordingForwarder) Calls() []ForwardCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ForwardCall(nil), f.calls...)
}

// RecordedScope is one scope opened through a RecordingScoper.
type RecordedScope struct {
	Props  map[string]string
	closed atomic.Int32
}

// Closed reports whether the scope was closed.
func (s *RecordedScope) Closed() bool {
	return s.closed.Load() > 0
}

// CloseCount returns how many times the scope's close func was called.
func (s *RecordedScope) CloseCount() int {
	return int(s.closed.Load())
}

type recordedScopeCtxKey struct{}

// RecordingScoper is a correlation.LogScoper that records the scopes it opens.
type RecordingScoper struct {
	mu     sync.Mutex
	scopes []*RecordedScope
}

func (r *RecordingScoper) BeginScope(ctx context.Context, props map[string]string) (context.Context, func()) {
	s := &RecordedScope{Props: maps.Clone(props)}
	r.mu.Lock()
	r.scopes = append(r.scopes, s)
	r.mu.Unlock()
	return context.WithValue(ctx, recordedScopeCtxKey{}, s), func() { s.closed.Add(1) }
}

// Scopes returns the scopes opened so far, in order.
func (r *RecordingScoper) Scopes() []*RecordedScope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordedScope(nil), r.scopes...)
}

// ScopeFromContext returns the innermost scope a RecordingScoper attached to
// ctx.
func ScopeFromContext(ctx context.Context) (*RecordedScope, bool) {
	s, ok := ctx.Value(recordedScopeCtxKey{}).(*RecordedScope)
	return s, ok
}

// RecordingObserver counts notifications by source and outcome.
type RecordingObserver struct {
	mu       sync.Mutex
	inbound  map[correlation.Source]int
	outbound map[correlation.Outcome]int
}

func (o *RecordingObserver) InboundResolved(s correlation.Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inbound == nil {
		o.inbound = make(map[correlation.Source]int)
	}
	o.inbound[s]++
}

func (o *RecordingObserver) OutboundForwarded(out correlation.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outbound == nil {
		o.outbound = make(map[correlation.Outcome]int)
	}
	o.outbound[out]++
}

// Inbound returns a copy of the inbound counts.
func (o *RecordingObserver) Inbound() map[correlation.Source]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.inbound)
}

// Outbound returns a copy of the outbound counts.
func (o *RecordingObserver) Outbound() map[correlation.Outcome]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.outbound)
}

package slogctx

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
)

type attrsContextKey struct{}
type scopeContextKey struct{}

// WithAttrs adds the given attributes to the context. Unlike a Scope, these
// stay attached for as long as the context is in use.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(attrsContextKey{}).([]slog.Attr)
	all := append(slices.Clip(existing), attrs...)
	return context.WithValue(ctx, attrsContextKey{}, all)
}

// AttrsFromContext returns the attributes from the context: those added with
// WithAttrs, followed by those of every open Scope from the outermost in. If a
// key appears more than once, only the innermost value is returned.
func AttrsFromContext(ctx context.Context) []slog.Attr {
	plain, _ := ctx.Value(attrsContextKey{}).([]slog.Attr)
	s, _ := ctx.Value(scopeContextKey{}).(*Scope)
	if s == nil {
		return plain
	}

	// walk innermost first so inner values shadow outer ones, then flip.
	seen := make(map[string]struct{})
	var rev []slog.Attr
	for ; s != nil; s = s.parent {
		if s.Closed() {
			continue
		}
		for i := len(s.attrs) - 1; i >= 0; i-- {
			if _, ok := seen[s.attrs[i].Key]; ok {
				continue
			}
			seen[s.attrs[i].Key] = struct{}{}
			rev = append(rev, s.attrs[i])
		}
	}
	for i := len(plain) - 1; i >= 0; i-- {
		if _, ok := seen[plain[i].Key]; ok {
			continue
		}
		seen[plain[i].Key] = struct{}{}
		rev = append(rev, plain[i])
	}
	slices.Reverse(rev)
	return rev
}

// Scope is a set of attributes attached to a context until it is closed.
// Records logged with the context, or a context derived from it, carry the
// attributes while the scope is open. Scopes nest.
type Scope struct {
	parent *Scope
	attrs  []slog.Attr
	closed atomic.Bool
}

// Begin opens a new scope with attrs on top of any scope already on ctx. The
// caller must Close the scope, usually with defer.
func Begin(ctx context.Context, attrs ...slog.Attr) (context.Context, *Scope) {
	parent, _ := ctx.Value(scopeContextKey{}).(*Scope)
	s := &Scope{parent: parent, attrs: slices.Clone(attrs)}
	return context.WithValue(ctx, scopeContextKey{}, s), s
}

// Attrs returns the attributes the scope was opened with.
func (s *Scope) Attrs() []slog.Attr {
	return s.attrs
}

// Close ends the scope. It is safe to call more than once.
func (s *Scope) Close() {
	s.closed.Store(true)
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	return s.closed.Load()
}

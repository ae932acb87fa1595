package correlation

import (
	"context"
	"log/slog"

	"github.com/lstoll/correlation/slogctx"
)

// LogScoper opens a logging scope carrying props for the rest of a request.
// The returned context must be used for downstream work, and the returned
// func closes the scope. The Middleware always calls it, whatever way the
// downstream handler exits.
type LogScoper interface {
	BeginScope(ctx context.Context, props map[string]string) (context.Context, func())
}

// LogScoperFunc adapts a function to a LogScoper.
type LogScoperFunc func(ctx context.Context, props map[string]string) (context.Context, func())

func (f LogScoperFunc) BeginScope(ctx context.Context, props map[string]string) (context.Context, func()) {
	return f(ctx, props)
}

// SlogScoper opens slogctx scopes. Records are only enriched when logged via
// a handler wrapped with slogctx.NewContextHandler.
type SlogScoper struct{}

func (SlogScoper) BeginScope(ctx context.Context, props map[string]string) (context.Context, func()) {
	attrs := make([]slog.Attr, 0, len(props))
	for k, v := range props {
		attrs = append(attrs, slog.String(k, v))
	}
	ctx, s := slogctx.Begin(ctx, attrs...)
	return ctx, s.Close
}

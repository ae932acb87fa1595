// Package zerologctx lets a correlation.Middleware enrich zerolog output.
// The scope is a child logger stored on the request context, so handlers log
// through zerolog.Ctx(r.Context()).
package zerologctx

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lstoll/correlation"
)

var _ correlation.LogScoper = (*Scoper)(nil)

// Scoper opens log scopes as zerolog child loggers.
type Scoper struct {
	// Logger is the parent for each scope. If nil, the logger already on the
	// context is used, see zerolog.Ctx.
	Logger *zerolog.Logger
}

// BeginScope implements correlation.LogScoper. zerolog loggers are immutable,
// so the scope lives exactly as long as the returned context is used; the
// close func only exists to satisfy the contract.
func (s *Scoper) BeginScope(ctx context.Context, props map[string]string) (context.Context, func()) {
	parent := s.Logger
	if parent == nil {
		parent = zerolog.Ctx(ctx)
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zc := parent.With()
	for _, k := range keys {
		zc = zc.Str(k, props[k])
	}
	child := zc.Logger()

	return child.WithContext(ctx), func() {}
}

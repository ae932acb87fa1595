package correlation

import (
	"context"
)

type holderCtxKey struct{}

// ContextWithHolder returns a copy of parent carrying h. Outgoing calls made
// with the returned context, or any context derived from it, are correlated
// with whatever ID h holds.
func ContextWithHolder(parent context.Context, h Holder) context.Context {
	return context.WithValue(parent, holderCtxKey{}, h)
}

// HolderFromContext returns the Holder attached to ctx. If there is none, ok
// will be false.
func HolderFromContext(ctx context.Context) (_ Holder, ok bool) {
	h, ok := ctx.Value(holderCtxKey{}).(Holder)
	return h, ok && h != nil
}

// FromContext returns the correlation ID for the request ctx belongs to. If
// there is no Holder, or it holds no ID, ok will be false.
func FromContext(ctx context.Context) (_ string, ok bool) {
	h, ok := HolderFromContext(ctx)
	if !ok {
		return "", false
	}
	id := h.Current()
	return id, id != ""
}

package correlation

import (
	"strings"
	"sync"
)

// Holder is the request scoped slot for the correlation ID. The first
// non-blank value passed to SetOnce is kept, and later calls are ignored.
type Holder interface {
	// SetOnce stores id if no ID has been stored yet.
	SetOnce(id string)
	// Current returns the stored ID, or an empty string if none was set.
	Current() string
}

// HolderFactory returns a fresh Holder. The Middleware calls it once per
// request.
type HolderFactory func() Holder

// NewHolder returns the default Holder implementation. It is safe for use
// from multiple goroutines, so handlers can fan outbound calls out.
func NewHolder() Holder {
	return &holder{}
}

type holder struct {
	mu sync.RWMutex
	id string
}

func (h *holder) SetOnce(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if strings.TrimSpace(h.id) == "" {
		h.id = id
	}
}

func (h *holder) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

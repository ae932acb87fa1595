package correlation

import "github.com/google/uuid"

// IDProvider generates a new correlation ID when a request did not supply a
// usable one. Implementations must never return an empty or blank string.
type IDProvider interface {
	NewID() string
}

// IDProviderFunc adapts a function to an IDProvider.
type IDProviderFunc func() string

func (f IDProviderFunc) NewID() string {
	return f()
}

var _ IDProvider = UUIDProvider{}

// UUIDProvider generates random (version 4) UUIDs in the canonical
// 8-4-4-4-12 hex form. It panics if the system random source fails.
type UUIDProvider struct{}

func (UUIDProvider) NewID() string {
	return uuid.New().String()
}

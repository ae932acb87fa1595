// Package transportchain builds an ordered, named stack of http.RoundTripper
// middleware for outgoing requests.
package transportchain

import (
	"fmt"
	"net/http"
	"slices"
)

// Func wraps a RoundTripper with additional behaviour.
type Func func(next http.RoundTripper) http.RoundTripper

type chained struct {
	Name string
	Wrap Func
}

// Chain is an ordered list of named transport middleware. The first entry is
// the outermost: it sees each request first and each response last.
//
// A Chain is not safe for concurrent modification.
type Chain struct {
	entries []*chained
}

func (c *Chain) Append(name string, wrap Func) {
	c.entries = append(c.entries, &chained{Name: name, Wrap: wrap})
}

func (c *Chain) Prepend(name string, wrap Func) {
	c.entries = append([]*chained{{Name: name, Wrap: wrap}}, c.entries...)
}

// InsertBefore inserts wrap under name immediately before the entry called
// before.
func (c *Chain) InsertBefore(before, name string, wrap Func) error {
	i := c.index(before)
	if i < 0 {
		return fmt.Errorf("transport %s not found", before)
	}
	c.entries = slices.Insert(c.entries, i, &chained{Name: name, Wrap: wrap})
	return nil
}

// InsertAfter inserts wrap under name immediately after the entry called
// after.
func (c *Chain) InsertAfter(after, name string, wrap Func) error {
	i := c.index(after)
	if i < 0 {
		return fmt.Errorf("transport %s not found", after)
	}
	c.entries = slices.Insert(c.entries, i+1, &chained{Name: name, Wrap: wrap})
	return nil
}

func (c *Chain) Remove(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("transport %s not found", name)
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return nil
}

func (c *Chain) Replace(name string, wrap Func) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("transport %s not found", name)
	}
	c.entries[i] = &chained{Name: name, Wrap: wrap}
	return nil
}

func (c *Chain) List() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Clone returns a copy of the chain that can be modified independently.
func (c *Chain) Clone() *Chain {
	if c == nil {
		return &Chain{}
	}
	return &Chain{entries: slices.Clone(c.entries)}
}

// RoundTripper returns base wrapped in the chain. A nil base means
// http.DefaultTransport.
func (c *Chain) RoundTripper(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if c == nil {
		return base
	}
	rt := base
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].Wrap == nil {
			continue
		}
		rt = c.entries[i].Wrap(rt)
	}
	return rt
}

func (c *Chain) index(name string) int {
	return slices.IndexFunc(c.entries, func(e *chained) bool {
		return e.Name == name
	})
}

// RoundTripperFunc adapts a function to a http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

package correlation

import (
	"fmt"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/lstoll/correlation/transportchain"
)

// TransportName is the name the correlating transport is registered under in
// a ClientBuilder's chain.
const TransportName = "correlation"

// WrapClient will update the passed *http.Client to forward the correlation
// ID on all outgoing requests. The header name comes from DefaultOptions,
// modified by configure.
func WrapClient(client *http.Client, configure ...func(*Options)) {
	base := client.Transport
	client.Transport = &Transport{
		Base:    base,
		Options: buildOptions(DefaultOptions(), configure),
	}
}

// Clients is a registry of named outgoing HTTP clients, each with its own
// correlation settings and transport chain. The zero value is ready to use.
type Clients struct {
	// Base is the innermost transport for every client. If nil,
	// http.DefaultTransport is used.
	Base http.RoundTripper
	// Timeout is applied to every returned http.Client.
	Timeout time.Duration
	// Observer is passed to every correlating transport.
	Observer Observer

	mu       sync.Mutex
	builders map[string]*ClientBuilder
}

// Add registers a client under name and returns its builder. Calling Add
// again with the same name returns the existing builder.
func (c *Clients) Add(name string) *ClientBuilder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.builders == nil {
		c.builders = make(map[string]*ClientBuilder)
	}
	if b, ok := c.builders[name]; ok {
		return b
	}
	b := &ClientBuilder{name: name, clients: c, chain: &transportchain.Chain{}}
	c.builders[name] = b
	return b
}

// Names returns the registered client names, sorted.
func (c *Clients) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.builders))
	for n := range c.builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Client returns a new *http.Client for the named client. Clients returned
// for the same name share a transport.
func (c *Clients) Client(name string) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.builders[name]
	if !ok {
		return nil, fmt.Errorf("client %q: %w", name, ErrUnknownClient)
	}
	if b.rt == nil {
		b.rt = b.chain.RoundTripper(c.Base)
	}
	return &http.Client{Transport: b.rt, Timeout: c.Timeout}, nil
}

// Configure registers every client in cfg, correlating each with its
// configured options. A nil cfg registers nothing.
func (c *Clients) Configure(cfg *Config) {
	if cfg == nil {
		return
	}
	for name, o := range cfg.Clients {
		c.Add(name).CorrelateRequestsFromConfig(o)
	}
}

// ClientBuilder configures one named client. Changes made after Client has
// been called apply to clients returned afterwards.
type ClientBuilder struct {
	name    string
	clients *Clients

	// guarded by clients.mu
	chain     *transportchain.Chain
	opts      Options
	forwarder ForwarderFactory
	rt        http.RoundTripper
}

// Name returns the client's name.
func (b *ClientBuilder) Name() string {
	return b.name
}

// CorrelateRequests forwards the correlation ID in headerName. An empty
// headerName means DefaultHeaderName.
func (b *ClientBuilder) CorrelateRequests(headerName string) *ClientBuilder {
	return b.CorrelateRequestsWith(func(o *Options) {
		if headerName != "" {
			o.DefaultHeaderName = headerName
		}
	})
}

// CorrelateRequestsWith forwards the correlation ID using DefaultOptions
// modified by configure.
func (b *ClientBuilder) CorrelateRequestsWith(configure func(*Options)) *ClientBuilder {
	return b.CorrelateRequestsFromConfig(buildOptions(DefaultOptions(), []func(*Options){configure}))
}

// CorrelateRequestsFromConfig forwards the correlation ID using o, typically
// an entry from a loaded Config.
//
// The correlating transport is placed in the chain where it was first
// requested; handlers added with Use afterwards run inside it and see the
// header.
func (b *ClientBuilder) CorrelateRequestsFromConfig(o Options) *ClientBuilder {
	b.clients.mu.Lock()
	defer b.clients.mu.Unlock()
	b.opts = o.Clone()
	wrap := b.correlatingTransport()
	if err := b.chain.Replace(TransportName, wrap); err != nil {
		b.chain.Append(TransportName, wrap)
	}
	b.rt = nil
	return b
}

// WithForwarder sets the forwarder factory used by the correlating
// transport, whether or not a CorrelateRequests method has been called yet.
func (b *ClientBuilder) WithForwarder(f ForwarderFactory) *ClientBuilder {
	b.clients.mu.Lock()
	defer b.clients.mu.Unlock()
	b.forwarder = f
	if slices.Contains(b.chain.List(), TransportName) {
		_ = b.chain.Replace(TransportName, b.correlatingTransport())
		b.rt = nil
	}
	return b
}

// Use appends a named transport middleware to the client's chain.
func (b *ClientBuilder) Use(name string, wrap transportchain.Func) *ClientBuilder {
	b.clients.mu.Lock()
	defer b.clients.mu.Unlock()
	b.chain.Append(name, wrap)
	b.rt = nil
	return b
}

// Transports lists the client's transport chain, outermost first.
func (b *ClientBuilder) Transports() []string {
	b.clients.mu.Lock()
	defer b.clients.mu.Unlock()
	return b.chain.List()
}

// HeaderName returns the header the client forwards the ID in.
func (b *ClientBuilder) HeaderName() string {
	b.clients.mu.Lock()
	defer b.clients.mu.Unlock()
	return b.opts.headerName()
}

func (b *ClientBuilder) correlatingTransport() transportchain.Func {
	opts := b.opts
	forwarder := b.forwarder
	observer := b.clients.Observer
	return func(next http.RoundTripper) http.RoundTripper {
		return &Transport{
			Base:         next,
			Options:      opts,
			NewForwarder: forwarder,
			Observer:     observer,
		}
	}
}

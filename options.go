package correlation

import (
	"fmt"
	"slices"
	"strings"
)

// Options configures a Middleware or a Transport. A copy is taken when the
// pipeline or client is built, so changes made afterwards have no effect.
//
// The zero value has every toggle off. Use DefaultOptions for the usual
// server configuration.
type Options struct {
	// TryUseRequestHeader allows the ID to be taken from an incoming request
	// header.
	TryUseRequestHeader bool `yaml:"try_use_request_header"`
	// AcceptedHeaderNames are the request headers the ID may be read from.
	// They are checked in order, and the first one present is used.
	AcceptedHeaderNames []string `yaml:"accepted_header_names"`
	// EnrichLog opens a log scope containing the ID for the rest of the
	// request.
	EnrichLog bool `yaml:"enrich_log"`
	// LogPropertyName is the key the ID is logged under. Defaults to
	// DefaultLogPropertyName.
	LogPropertyName string `yaml:"log_property_name"`
	// WriteToResponse sets the ID on the response.
	WriteToResponse bool `yaml:"write_to_response"`
	// DefaultHeaderName is the response header used when the ID did not come
	// from a request header, and the header outgoing calls carry the ID in.
	// Defaults to DefaultHeaderName.
	DefaultHeaderName string `yaml:"default_header_name"`
}

// DefaultOptions returns the options a server pipeline normally runs with:
// trust DefaultHeaderName on the way in, echo it on the way out, and log the
// ID as DefaultLogPropertyName.
func DefaultOptions() Options {
	return Options{
		TryUseRequestHeader: true,
		AcceptedHeaderNames: []string{DefaultHeaderName},
		EnrichLog:           true,
		LogPropertyName:     DefaultLogPropertyName,
		WriteToResponse:     true,
		DefaultHeaderName:   DefaultHeaderName,
	}
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	o.AcceptedHeaderNames = slices.Clone(o.AcceptedHeaderNames)
	return o
}

func (o Options) headerName() string {
	if o.DefaultHeaderName == "" {
		return DefaultHeaderName
	}
	return o.DefaultHeaderName
}

func (o Options) logPropertyName() string {
	if o.LogPropertyName == "" {
		return DefaultLogPropertyName
	}
	return o.LogPropertyName
}

func (o Options) validate() []string {
	var problems []string
	for i, h := range o.AcceptedHeaderNames {
		if strings.TrimSpace(h) == "" {
			problems = append(problems, fmt.Sprintf("accepted_header_names[%d] is blank", i))
		}
	}
	return problems
}

func buildOptions(base Options, configure []func(*Options)) Options {
	o := base.Clone()
	for _, fn := range configure {
		if fn != nil {
			fn(&o)
		}
	}
	return o.Clone()
}

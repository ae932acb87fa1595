// Package correlationprom exports correlation activity as Prometheus metrics.
package correlationprom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lstoll/correlation"
)

var (
	_ correlation.Observer = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// Collector counts inbound ID resolutions by source and outbound forwarding
// decisions by outcome. Correlation IDs are never used as label values.
type Collector struct {
	inbound  *prometheus.CounterVec
	outbound *prometheus.CounterVec
}

// NewCollector returns a Collector whose metric names are prefixed with
// namespace, if set. Register it with a prometheus.Registerer and pass it as
// the Observer of a Middleware, Transport or Clients.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "inbound_total",
			Help:      "Inbound requests by where their correlation ID came from.",
		}, []string{"source"}),
		outbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correlation",
			Name:      "outbound_total",
			Help:      "Outbound requests by whether the correlation ID was forwarded.",
		}, []string{"outcome"}),
	}
	// pre-create the series so they export as zero.
	for _, s := range []correlation.Source{correlation.SourceHeader, correlation.SourceGenerated} {
		c.inbound.WithLabelValues(string(s))
	}
	for _, o := range []correlation.Outcome{correlation.OutcomeForwarded, correlation.OutcomeSkippedPresent, correlation.OutcomeSkippedEmpty} {
		c.outbound.WithLabelValues(string(o))
	}
	return c
}

func (c *Collector) InboundResolved(s correlation.Source) {
	c.inbound.WithLabelValues(string(s)).Inc()
}

func (c *Collector) OutboundForwarded(o correlation.Outcome) {
	c.outbound.WithLabelValues(string(o)).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.inbound.Describe(ch)
	c.outbound.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.inbound.Collect(ch)
	c.outbound.Collect(ch)
}

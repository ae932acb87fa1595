package correlationprom

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lstoll/correlation"
	"github.com/lstoll/correlation/correlationtest"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector("test")

	c.InboundResolved(correlation.SourceHeader)
	c.InboundResolved(correlation.SourceGenerated)
	c.InboundResolved(correlation.SourceGenerated)
	c.OutboundForwarded(correlation.OutcomeForwarded)

	want := `
# HELP test_correlation_inbound_total Inbound requests by where their correlation ID came from.
# TYPE test_correlation_inbound_total counter
test_correlation_inbound_total{source="generated"} 2
test_correlation_inbound_total{source="header"} 1
# HELP test_correlation_outbound_total Outbound requests by whether the correlation ID was forwarded.
# TYPE test_correlation_outbound_total counter
test_correlation_outbound_total{outcome="forwarded"} 1
test_correlation_outbound_total{outcome="skipped_empty"} 0
test_correlation_outbound_total{outcome="skipped_present"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want)); err != nil {
		t.Error(err)
	}
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector("")); err != nil {
		t.Fatalf("registering collector: %v", err)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n != 5 {
		t.Errorf("wanted 5 series, got %d (err: %v)", n, err)
	}
}

func TestCollectorAsObserver(t *testing.T) {
	c := NewCollector("")

	mw := correlation.NewMiddleware()
	mw.Observer = c
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), correlationtest.NewRequest(http.MethodGet, "/"))
	h.ServeHTTP(httptest.NewRecorder(), correlationtest.NewRequest(http.MethodGet, "/",
		correlationtest.RequestWithHeader(correlation.DefaultHeaderName, "from-header")))

	if got := testutil.ToFloat64(c.inbound.WithLabelValues("generated")); got != 1 {
		t.Errorf("wanted 1 generated, got %v", got)
	}
	if got := testutil.ToFloat64(c.inbound.WithLabelValues("header")); got != 1 {
		t.Errorf("wanted 1 header, got %v", got)
	}
}

package correlation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lstoll/correlation"
	"github.com/lstoll/correlation/correlationtest"
	"github.com/lstoll/correlation/slogctx"
)

func TestSlogScoperEnrichesRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slogctx.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	mw := correlation.NewMiddleware()
	mw.Provider = correlationtest.StaticProvider("log-id")

	var reqCtx context.Context
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqCtx = r.Context()
		logger.InfoContext(r.Context(), "handling")
	}))
	h.ServeHTTP(httptest.NewRecorder(), correlationtest.NewRequest(http.MethodGet, "/"))

	// the scope is closed once the handler returns.
	logger.InfoContext(reqCtx, "after")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wanted 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var during, after map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &during); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &after); err != nil {
		t.Fatal(err)
	}

	if got := during[correlation.DefaultLogPropertyName]; got != "log-id" {
		t.Errorf("wanted %s=log-id in record, got: %v", correlation.DefaultLogPropertyName, got)
	}
	if _, ok := after[correlation.DefaultLogPropertyName]; ok {
		t.Errorf("record logged after the request should not carry the id: %s", lines[1])
	}
}

func TestSlogScoperDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slogctx.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	mw := correlation.NewMiddleware(func(o *correlation.Options) { o.EnrichLog = false })
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoContext(r.Context(), "handling")
	}))
	h.ServeHTTP(httptest.NewRecorder(), correlationtest.NewRequest(http.MethodGet, "/"))

	if strings.Contains(buf.String(), correlation.DefaultLogPropertyName) {
		t.Errorf("record should not be enriched: %s", buf.String())
	}
}

func TestLogScoperFunc(t *testing.T) {
	var got map[string]string
	closed := false
	mw := correlation.NewMiddleware(func(o *correlation.Options) { o.LogPropertyName = "cid" })
	mw.Provider = correlationtest.StaticProvider("fn-id")
	mw.LogScope = correlation.LogScoperFunc(func(ctx context.Context, props map[string]string) (context.Context, func()) {
		got = props
		return ctx, func() { closed = true }
	})

	mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), correlationtest.NewRequest(http.MethodGet, "/"))

	if got["cid"] != "fn-id" || len(got) != 1 {
		t.Errorf("wanted props {cid: fn-id}, got: %v", got)
	}
	if !closed {
		t.Error("scope should be closed")
	}
}

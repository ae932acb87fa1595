package requestlog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lstoll/correlation"
	"github.com/lstoll/correlation/correlationtest"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name         string
		propertyName string
		req          *http.Request
		wantKey      string
		wantID       string
	}{
		{
			name:    "with correlation id",
			req:     correlationtest.NewRequest(http.MethodGet, "/things", correlationtest.RequestWithID("abc-123")),
			wantKey: correlation.DefaultLogPropertyName,
			wantID:  "abc-123",
		},
		{
			name:         "custom property name",
			propertyName: "correlation_id",
			req:          correlationtest.NewRequest(http.MethodGet, "/things", correlationtest.RequestWithID("abc-123")),
			wantKey:      "correlation_id",
			wantID:       "abc-123",
		},
		{
			name:    "without correlation id",
			req:     correlationtest.NewRequest(http.MethodGet, "/things"),
			wantKey: correlation.DefaultLogPropertyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rl := &RequestLogger{
				Logger:       slog.New(slog.NewJSONHandler(&buf, nil)),
				PropertyName: tt.propertyName,
			}
			h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				_, _ = w.Write([]byte("short and stout"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), tt.req)

			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("decoding log record %q: %v", buf.String(), err)
			}
			if rec["msg"] != "Request Served" {
				t.Errorf("wanted msg Request Served, got: %v", rec["msg"])
			}
			if rec["status"] != float64(http.StatusTeapot) {
				t.Errorf("wanted status %d, got: %v", http.StatusTeapot, rec["status"])
			}
			if rec["bytes_sent"] != float64(len("short and stout")) {
				t.Errorf("wanted bytes_sent %d, got: %v", len("short and stout"), rec["bytes_sent"])
			}
			got, ok := rec[tt.wantKey]
			if tt.wantID == "" {
				if ok {
					t.Errorf("wanted no %s, got: %v", tt.wantKey, got)
				}
				return
			}
			if got != tt.wantID {
				t.Errorf("wanted %s %q, got: %v", tt.wantKey, tt.wantID, got)
			}
		})
	}
}

func TestRequestLoggerInsideMiddleware(t *testing.T) {
	var buf bytes.Buffer
	rl := &RequestLogger{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	mw := correlation.NewMiddleware()
	h := mw.Handler(rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, correlationtest.NewRequest(http.MethodGet, "/",
		correlationtest.RequestWithHeader(correlation.DefaultHeaderName, "inbound-id")))

	var logged map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logged); err != nil {
		t.Fatalf("decoding log record %q: %v", buf.String(), err)
	}
	if logged[correlation.DefaultLogPropertyName] != "inbound-id" {
		t.Errorf("wanted logged id inbound-id, got: %v", logged[correlation.DefaultLogPropertyName])
	}
	if got := rec.Header().Get(correlation.DefaultHeaderName); got != "inbound-id" {
		t.Errorf("wanted response header inbound-id, got: %q", got)
	}
}

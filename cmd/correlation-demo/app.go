package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lstoll/correlation"
	"github.com/lstoll/correlation/correlationprom"
	"github.com/lstoll/correlation/requestlog"
)

// echoClient is the named client /hello uses to reach /echo.
const echoClient = "echo"

type app struct {
	cfg     *correlation.Config
	logger  *slog.Logger
	zlogger *zerolog.Logger
	scoper  correlation.LogScoper
	clients *correlation.Clients
	metrics *correlationprom.Collector
	reg     *prometheus.Registry

	// Downstream is the base URL /hello calls /echo on.
	Downstream string
}

type appOpts struct {
	cfg     *correlation.Config
	logger  *slog.Logger
	zlogger *zerolog.Logger
	scoper  correlation.LogScoper
}

func newApp(o appOpts) (*app, error) {
	cfg := o.cfg
	if cfg == nil {
		cfg = &correlation.Config{Server: correlation.DefaultOptions()}
	}

	a := &app{
		cfg:     cfg,
		logger:  o.logger,
		zlogger: o.zlogger,
		scoper:  o.scoper,
		metrics: correlationprom.NewCollector("demo"),
		reg:     prometheus.NewRegistry(),
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if err := a.reg.Register(a.metrics); err != nil {
		return nil, fmt.Errorf("registering correlation metrics: %w", err)
	}

	a.clients = &correlation.Clients{Observer: a.metrics}
	a.clients.Configure(cfg)
	if !slices.Contains(a.clients.Names(), echoClient) {
		a.clients.Add(echoClient).CorrelateRequests("")
	}
	return a, nil
}

func (a *app) router() http.Handler {
	mw := &correlation.Middleware{
		Options:  a.cfg.Server,
		LogScope: a.scoper,
		Observer: a.metrics,
	}
	rl := &requestlog.RequestLogger{
		Logger:       a.logger,
		PropertyName: a.cfg.Server.LogPropertyName,
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(mw.Handler)
		r.Use(rl.Handler)
		r.Get("/echo", a.echo)
		r.Get("/hello", a.hello)
	})
	return r
}

type echoResponse struct {
	CorrelationID string `json:"correlation_id"`
}

type helloResponse struct {
	CorrelationID string `json:"correlation_id"`
	Downstream    string `json:"downstream_correlation_id"`
}

func (a *app) echo(w http.ResponseWriter, r *http.Request) {
	id, _ := correlation.FromContext(r.Context())
	a.logf(r, "echo")
	writeJSON(w, &echoResponse{CorrelationID: id})
}

func (a *app) hello(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := correlation.FromContext(ctx)

	c, err := a.clients.Client(echoClient)
	if err != nil {
		a.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(a.Downstream, "/")+"/echo", nil)
	if err != nil {
		a.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	resp, err := c.Do(req)
	if err != nil {
		a.fail(w, r, http.StatusBadGateway, fmt.Errorf("calling echo: %w", err))
		return
	}
	defer resp.Body.Close()

	var er echoResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		a.fail(w, r, http.StatusBadGateway, fmt.Errorf("decoding echo response: %w", err))
		return
	}

	a.logf(r, "hello")
	writeJSON(w, &helloResponse{CorrelationID: id, Downstream: er.CorrelationID})
}

// logf logs msg through whichever logger the request scope was opened on.
func (a *app) logf(r *http.Request, msg string) {
	if a.zlogger != nil {
		zerolog.Ctx(r.Context()).Info().Str("path", r.URL.Path).Msg(msg)
		return
	}
	a.logger.InfoContext(r.Context(), msg, slog.String("path", r.URL.Path))
}

func (a *app) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	a.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	http.Error(w, http.StatusText(code), code)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}

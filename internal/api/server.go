// Package api serves SIR trajectories over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/episim/internal/cache"
	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/epidemic"
)

// MaxBodyBytes caps the size of a trajectory request body.
const MaxBodyBytes = 64 << 10

type Options struct {
	// Defaults fills request fields the client leaves out; nil uses config.DefaultConfig.
	Defaults *config.Config
	Cache    cache.Cache
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

type Server struct {
	defaults epidemic.Request
	cache    cache.Cache
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler builds the router. Each request computes on its own goroutine
// with its own state, so handlers need no coordination beyond the cache.
func NewHandler(opts Options) http.Handler {
	if opts.Defaults == nil {
		opts.Defaults = config.DefaultConfig()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		defaults: opts.Defaults.Request(),
		cache:    opts.Cache,
		metrics:  NewMetrics(opts.Registry),
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			s.logger.Error("healthz write failed", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/trajectory", s.Trajectory)
		r.Get("/presets", s.ListPresets)
		r.Get("/presets/{name}", s.GetPreset)
	})

	return r
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

type TrajectoryResponse struct {
	Params     epidemic.Params      `json:"params"`
	R0         *float64             `json:"r0"`
	R0Display  string               `json:"r0_display"`
	Cached     bool                 `json:"cached"`
	Trimmed    bool                 `json:"trimmed"`
	Trajectory *epidemic.Trajectory `json:"trajectory"`
}

type PresetResponse struct {
	Name   string           `json:"name"`
	Params epidemic.Request `json:"params"`
}

// Trajectory handles POST /v1/trajectory.
func (s *Server) Trajectory(w http.ResponseWriter, r *http.Request) {
	req := s.defaults
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.metrics.computations.WithLabelValues(outcomeInvalid).Inc()
		s.logger.Warn("trajectory: invalid request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	trim := false
	if v := r.URL.Query().Get("trim"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "trim must be a boolean"})
			return
		}
		trim = b
	}

	p, err := epidemic.Build(req)
	if err != nil {
		s.metrics.computations.WithLabelValues(outcomeInvalid).Inc()
		s.logger.Debug("trajectory: rejected parameters", "error", err)
		writeJSON(w, http.StatusBadRequest, configErrorResponse(err))
		return
	}

	ctx := r.Context()
	tr, cached, err := s.compute(ctx, p)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.metrics.computations.WithLabelValues(outcomeCanceled).Inc()
			s.logger.Info("trajectory: request canceled", "key", p.Key())
			return
		}
		s.metrics.computations.WithLabelValues(outcomeError).Inc()
		s.logger.Error("trajectory: computation failed", "key", p.Key(), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "computation failed"})
		return
	}

	if cached {
		s.metrics.computations.WithLabelValues(outcomeCached).Inc()
	} else {
		s.metrics.computations.WithLabelValues(outcomeOK).Inc()
	}
	if tr.Truncated() {
		s.metrics.earlyTerminations.Inc()
	}

	resp := TrajectoryResponse{
		Params:     p,
		R0Display:  epidemic.FormatR0(p.R0()),
		Cached:     cached,
		Trimmed:    trim,
		Trajectory: tr,
	}
	if r0 := p.R0(); !math.IsNaN(r0) && !math.IsInf(r0, 0) {
		resp.R0 = &r0
	}
	if trim {
		resp.Trajectory = tr.Valid()
	}

	writeJSON(w, http.StatusOK, resp)
}

// compute serves p from the cache when possible. Cache failures degrade to a
// fresh computation.
func (s *Server) compute(ctx context.Context, p epidemic.Params) (*epidemic.Trajectory, bool, error) {
	tr, ok, err := s.cache.Get(ctx, p)
	if err != nil {
		s.logger.Warn("trajectory: cache read failed", "key", p.Key(), "error", err)
	}
	if ok {
		s.metrics.cacheHits.Inc()
		return tr, true, nil
	}

	start := time.Now()
	tr, err = epidemic.ComputeTrajectory(ctx, p)
	if err != nil {
		return nil, false, err
	}
	s.metrics.duration.Observe(time.Since(start).Seconds())

	if err := s.cache.Set(ctx, p, tr); err != nil {
		s.logger.Warn("trajectory: cache write failed", "key", p.Key(), "error", err)
	}
	return tr, false, nil
}

func configErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: "invalid configuration"}
	for _, ce := range epidemic.FieldErrors(err) {
		resp.Fields = append(resp.Fields, fieldError{Field: ce.Field, Reason: ce.Reason})
	}
	sort.SliceStable(resp.Fields, func(i, j int) bool { return resp.Fields[i].Field < resp.Fields[j].Field })
	return resp
}

// ListPresets handles GET /v1/presets.
func (s *Server) ListPresets(w http.ResponseWriter, r *http.Request) {
	names := config.ListPresets()
	out := make([]PresetResponse, 0, len(names))
	for _, name := range names {
		out = append(out, PresetResponse{Name: name, Params: config.GetPreset(name).Request()})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPreset handles GET /v1/presets/{name}.
func (s *Server) GetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	cfg, err := config.Preset(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, PresetResponse{Name: name, Params: cfg.Request()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

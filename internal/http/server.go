// Package http exposes the resolver over HTTP along with health and
// Prometheus metrics endpoints.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fanlink/internal/core"
)

// Resolver is the pipeline surface the server needs.
type Resolver interface {
	Resolve(ctx context.Context, req *core.ResolutionRequest) *core.ResolutionResult
}

type Server struct {
	config   *core.ServerConfig
	logger   *zap.Logger
	server   *http.Server
	resolver Resolver
	metrics  *Metrics
}

type Metrics struct {
	ResolutionsTotal      *prometheus.CounterVec
	FingerprintCallsTotal *prometheus.CounterVec
	CacheHitsTotal        prometheus.Counter
	ErrorsTotal           *prometheus.CounterVec
	ResolveDuration       *prometheus.HistogramVec
	CachedIdentities      prometheus.Gauge
}

// NewMetrics builds and registers the resolver metrics. Built once per
// process; the same instance feeds both the pipeline and the server.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanlink_resolutions_total",
				Help: "Total number of resolutions by resolver path",
			},
			[]string{"path", "status"},
		),
		FingerprintCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanlink_fingerprint_calls_total",
				Help: "Total number of fingerprint service calls",
			},
			[]string{"mode", "status"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fanlink_cache_hits_total",
				Help: "Total number of resolutions served from cache",
			},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fanlink_errors_total",
				Help: "Total number of errors",
			},
			[]string{"component", "type"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fanlink_resolve_duration_seconds",
				Help:    "Time spent resolving requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		CachedIdentities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fanlink_cached_identities",
				Help: "Number of identities in the hot cache",
			},
		),
	}

	prometheus.MustRegister(
		metrics.ResolutionsTotal,
		metrics.FingerprintCallsTotal,
		metrics.CacheHitsTotal,
		metrics.ErrorsTotal,
		metrics.ResolveDuration,
		metrics.CachedIdentities,
	)

	return metrics
}

func (m *Metrics) RecordResolution(path, status string) {
	m.ResolutionsTotal.WithLabelValues(path, status).Inc()
}

func (m *Metrics) RecordFingerprintCall(mode, status string) {
	m.FingerprintCallsTotal.WithLabelValues(mode, status).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

func (m *Metrics) RecordResolveDuration(path string, duration time.Duration) {
	m.ResolveDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func (m *Metrics) SetCachedIdentities(count int) {
	m.CachedIdentities.Set(float64(count))
}

func NewServer(config *core.ServerConfig, resolver Resolver, metrics *Metrics, logger *zap.Logger) *Server {
	s := &Server{
		config:   config,
		logger:   logger,
		resolver: resolver,
		metrics:  metrics,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"fanlink"}`))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready","service":"fanlink"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/resolve", s.handleResolve)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s
}

// Handler exposes the server's mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

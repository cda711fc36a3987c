// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Source labels
const (
	SourcePools   = "pools"
	SourceMarkets = "markets"
)

// Collector owns the listener's Prometheus registry.
type Collector struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	duplicates    *prometheus.CounterVec
	handedOff     *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	decodeErrors  *prometheus.CounterVec
	mintChecks    *prometheus.CounterVec
	mintCheckTime prometheus.Histogram
}

// NewCollector registers the listener metrics. snipeListSize may be nil.
func NewCollector(snipeListSize func() float64) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_notifications_total",
			Help: "Program account notifications received",
		}, []string{"source"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_duplicates_total",
			Help: "Notifications dropped because the account was already seen",
		}, []string{"source"}),
		handedOff: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_handed_off_total",
			Help: "Accounts that passed every filter and were handed downstream",
		}, []string{"source"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_skipped_total",
			Help: "Fresh accounts rejected by a client-side filter",
		}, []string{"source", "reason"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_decode_errors_total",
			Help: "Notifications whose account data could not be decoded",
		}, []string{"source"}),
		mintChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raydium_listener_mint_checks_total",
			Help: "Mint authority lookups by outcome",
		}, []string{"status"}),
		mintCheckTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "raydium_listener_mint_check_duration_seconds",
			Help:    "Duration of mint authority lookups",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
	}

	c.registry.MustRegister(
		c.notifications,
		c.duplicates,
		c.handedOff,
		c.skipped,
		c.decodeErrors,
		c.mintChecks,
		c.mintCheckTime,
		collectors.NewGoCollector(),
	)
	if snipeListSize != nil {
		c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "raydium_listener_snipe_list_entries",
			Help: "Entries in the currently loaded snipe list",
		}, snipeListSize))
	}
	return c
}

func (c *Collector) NotificationReceived(source string) {
	c.notifications.WithLabelValues(source).Inc()
}

func (c *Collector) Duplicate(source string) {
	c.duplicates.WithLabelValues(source).Inc()
}

func (c *Collector) HandedOff(source string) {
	c.handedOff.WithLabelValues(source).Inc()
}

func (c *Collector) Skipped(source, reason string) {
	c.skipped.WithLabelValues(source, reason).Inc()
}

func (c *Collector) DecodeFailed(source string) {
	c.decodeErrors.WithLabelValues(source).Inc()
}

// MeasureMintCheck runs f and records its duration and outcome.
func (c *Collector) MeasureMintCheck(f func() error) error {
	start := time.Now()
	err := f()
	c.mintCheckTime.Observe(time.Since(start).Seconds())
	if err != nil {
		c.mintChecks.WithLabelValues("failed").Inc()
	} else {
		c.mintChecks.WithLabelValues("success").Inc()
	}
	return err
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

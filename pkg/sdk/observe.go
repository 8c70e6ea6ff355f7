package datadesk

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation statuses. A degraded call succeeded from a snapshot instead of the record service.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusError    = "error"
)

// allKinds labels calls that are not bound to one record kind.
const allKinds = "all"

// call describes one SDK operation. Calls that can fall back to a snapshot
// fill in source and notice before returning.
type call struct {
	name   string
	kind   Kind
	source Source
	notice *Notice
}

func (c *call) kindLabel() string {
	if c.kind == "" {
		return allKinds
	}
	return string(c.kind)
}

func (c *call) status(err error) string {
	switch {
	case err != nil:
		return statusError
	case c.source == SourceCache || c.source == SourceEmpty:
		return statusDegraded
	default:
		return statusOK
	}
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	fallbacks  *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datadesk",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by record kind and status (ok, degraded, error).",
		}, []string{"operation", "kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "datadesk",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation", "kind"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datadesk",
			Subsystem: "sdk",
			Name:      "fallbacks_total",
			Help:      "Results served without the record service, by snapshot source (cache, empty).",
		}, []string{"operation", "kind", "source"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.fallbacks); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector a previous client
// registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("datadesk: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("datadesk: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and counts SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

func (o *observer) done(c *call, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := c.status(err)

	if o.metrics != nil {
		kind := c.kindLabel()
		o.metrics.operations.WithLabelValues(c.name, kind, status).Inc()
		o.metrics.duration.WithLabelValues(c.name, kind).Observe(dur.Seconds())
		if status == statusDegraded {
			o.metrics.fallbacks.WithLabelValues(c.name, kind, string(c.source)).Inc()
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", c.name, "kind", c.kindLabel(), "duration", dur}
	switch status {
	case statusError:
		o.logger.Warn("datadesk operation failed", append(attrs, "error", err)...)
	case statusDegraded:
		attrs = append(attrs, "source", string(c.source))
		if c.notice != nil {
			attrs = append(attrs, "notice", c.notice.Kind, "message", c.notice.Message)
		}
		o.logger.Info("record service unavailable, served from snapshot", attrs...)
	default:
		o.logger.Debug("datadesk operation completed", attrs...)
	}
}

package durable

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bizstate/durable"

// Metrics groups the prometheus collectors for the durable layer. A nil *Metrics is
// valid everywhere and records nothing.
type Metrics struct {
	Operations    *prometheus.CounterVec   // bizstate_backend_operations_total{driver,op,result}
	Latency       *prometheus.HistogramVec // bizstate_backend_operation_seconds{driver,op}
	Fallbacks     *prometheus.CounterVec   // bizstate_slice_fallback_total{key,reason}
	WriteFailures *prometheus.CounterVec   // bizstate_slice_write_failures_total{key}
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizstate_backend_operations_total",
			Help: "Durable backend operations by driver, operation and result.",
		}, []string{"driver", "op", "result"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizstate_backend_operation_seconds",
			Help:    "Durable backend operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"driver", "op"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizstate_slice_fallback_total",
			Help: "Slice loads that used the fallback value, by key and reason.",
		}, []string{"key", "reason"}),
		WriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bizstate_slice_write_failures_total",
			Help: "Slice writes that could not be persisted, by key.",
		}, []string{"key"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Operations, m.Latency, m.Fallbacks, m.WriteFailures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register durable metrics: %w", err)
		}
	}
	return m, nil
}

// Fallback counts a slice load that used its fallback.
func (m *Metrics) Fallback(key, reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(key, reason).Inc()
}

// WriteFailure counts a slice write that did not reach the backend.
func (m *Metrics) WriteFailure(key string) {
	if m == nil {
		return
	}
	m.WriteFailures.WithLabelValues(key).Inc()
}

type instrumented struct {
	next    Backend
	metrics *Metrics
	tracer  trace.Tracer
	driver  string
}

// Instrument wraps b so every operation records prometheus counters and latency on m and
// an otel span on tracer. A nil tracer uses the global provider.
func Instrument(b Backend, m *Metrics, tracer trace.Tracer) Backend {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &instrumented{next: b, metrics: m, tracer: tracer, driver: string(b.Driver())}
}

func (i *instrumented) observe(ctx context.Context, op, key string, fn func(context.Context) error) {
	attrs := []attribute.KeyValue{attribute.String("bizstate.driver", i.driver), attribute.String("bizstate.op", op)}
	if key != "" {
		attrs = append(attrs, attribute.String("bizstate.key", key))
	}
	ctx, span := i.tracer.Start(ctx, "durable."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if i.metrics != nil {
		i.metrics.Operations.WithLabelValues(i.driver, op, result).Inc()
		i.metrics.Latency.WithLabelValues(i.driver, op).Observe(time.Since(start).Seconds())
	}
}

func (i *instrumented) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	i.observe(ctx, "get", key, func(ctx context.Context) error {
		value, ok, err = i.next.Get(ctx, key)
		return err
	})
	return value, ok, err
}

func (i *instrumented) Set(ctx context.Context, key, value string) (err error) {
	i.observe(ctx, "set", key, func(ctx context.Context) error {
		err = i.next.Set(ctx, key, value)
		return err
	})
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) (err error) {
	i.observe(ctx, "delete", key, func(ctx context.Context) error {
		err = i.next.Delete(ctx, key)
		return err
	})
	return err
}

func (i *instrumented) Keys(ctx context.Context) (keys []string, err error) {
	i.observe(ctx, "keys", "", func(ctx context.Context) error {
		keys, err = i.next.Keys(ctx)
		return err
	})
	return keys, err
}

func (i *instrumented) Driver() Driver { return i.next.Driver() }

func (i *instrumented) Close() error { return i.next.Close() }

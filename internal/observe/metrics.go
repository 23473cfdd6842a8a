// Package observe holds the OpenTelemetry metric instruments of the catalog
// engine and the Prometheus bridge that exposes them.
//
// Tests should build their own [Metrics] with [NewMetrics] and a manual
// reader instead of touching the global provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all catalog metrics.
const meterName = "github.com/heartmarshall/pokecatalog"

// Metrics holds all metric instruments. The OTel types handle their own
// synchronisation.
type Metrics struct {
	// FetchRequests counts remote API calls by kind and status.
	FetchRequests metric.Int64Counter
	// FetchDuration tracks remote API latency by kind.
	FetchDuration metric.Float64Histogram

	// CacheOps counts persistent cache operations by op and result.
	CacheOps metric.Int64Counter

	// AggregationRuns counts aggregation runs by outcome.
	AggregationRuns metric.Int64Counter
	// AggregationDuration tracks whole-run latency.
	AggregationDuration metric.Float64Histogram
	// CatalogRecords is the record count of the published snapshot per
	// category.
	CatalogRecords metric.Int64Gauge

	// HTTPRequestDuration tracks REST request latency by method, route and
	// status.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are tuned for remote API round-trips.
var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// runBuckets are tuned for whole aggregation runs.
var runBuckets = []float64{
	0.1, 0.5, 1, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.FetchRequests, err = m.Int64Counter("pokecatalog.fetch.requests",
		metric.WithDescription("Remote API requests by kind and status."),
	); err != nil {
		return nil, err
	}
	if met.FetchDuration, err = m.Float64Histogram("pokecatalog.fetch.duration",
		metric.WithDescription("Remote API request latency by kind."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CacheOps, err = m.Int64Counter("pokecatalog.cache.operations",
		metric.WithDescription("Persistent cache operations by op and result."),
	); err != nil {
		return nil, err
	}
	if met.AggregationRuns, err = m.Int64Counter("pokecatalog.aggregation.runs",
		metric.WithDescription("Aggregation runs by outcome."),
	); err != nil {
		return nil, err
	}
	if met.AggregationDuration, err = m.Float64Histogram("pokecatalog.aggregation.duration",
		metric.WithDescription("Aggregation run latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(runBuckets...),
	); err != nil {
		return nil, err
	}
	if met.CatalogRecords, err = m.Int64Gauge("pokecatalog.catalog.records",
		metric.WithDescription("Records in the published snapshot by category."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("pokecatalog.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Nop returns instruments that record nothing.
func Nop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic("observe: noop metrics: " + err.Error())
	}
	return m
}

// RecordFetch records one remote request.
func (m *Metrics) RecordFetch(ctx context.Context, kind, status string, d time.Duration) {
	m.FetchRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
	m.FetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordCacheOp records one cache operation.
func (m *Metrics) RecordCacheOp(ctx context.Context, op, result string) {
	m.CacheOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", result),
	))
}

// RecordRun records a finished aggregation run.
func (m *Metrics) RecordRun(ctx context.Context, outcome string, d time.Duration) {
	m.AggregationRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.AggregationDuration.Record(ctx, d.Seconds())
}

// RecordCatalogSize sets the published record count of one category.
func (m *Metrics) RecordCatalogSize(ctx context.Context, category string, n int) {
	m.CatalogRecords.Record(ctx, int64(n), metric.WithAttributes(attribute.String("category", category)))
}

package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesBlamedTotal = "truckfactor.files.blamed.total"
	metricBlameDuration    = "truckfactor.blame.duration.seconds"
	metricBlameErrors      = "truckfactor.blame.errors.total"
	metricFilesInflight    = "truckfactor.files.inflight"

	attrOp     = "op"
	attrStatus = "status"

	statusError = "error"

	// StatusOK marks a successful operation.
	StatusOK = "ok"
	// StatusError marks a failed operation.
	StatusError = statusError
)

// durationBucketBoundaries covers 10ms to 120s: small files blame in
// milliseconds, deep histories take minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

// AnalysisMetrics holds the OTel instruments for the blame pipeline.
type AnalysisMetrics struct {
	filesBlamedTotal metric.Int64Counter
	blameDuration    metric.Float64Histogram
	blameErrors      metric.Int64Counter
	filesInflight    metric.Int64UpDownCounter
}

// NewAnalysisMetrics creates the pipeline instruments from the given meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	blamed, err := mt.Int64Counter(metricFilesBlamedTotal,
		metric.WithDescription("Total number of files blamed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesBlamedTotal, err)
	}

	duration, err := mt.Float64Histogram(metricBlameDuration,
		metric.WithDescription("Per-file blame duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBlameDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricBlameErrors,
		metric.WithDescription("Total number of blame failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBlameErrors, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricFilesInflight,
		metric.WithDescription("Number of files currently being blamed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesInflight, err)
	}

	return &AnalysisMetrics{
		filesBlamedTotal: blamed,
		blameDuration:    duration,
		blameErrors:      errTotal,
		filesInflight:    inflight,
	}, nil
}

// RecordFile records a completed per-file blame with its operation,
// status, and duration.
func (am *AnalysisMetrics) RecordFile(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	am.filesBlamedTotal.Add(ctx, 1, attrs)
	am.blameDuration.Record(ctx, duration.Seconds(), attrs)

	if status == statusError {
		am.blameErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrOp, op),
		))
	}
}

// TrackInflight increments the in-flight gauge and returns a function to decrement it.
func (am *AnalysisMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	am.filesInflight.Add(ctx, 1, attrs)

	return func() {
		am.filesInflight.Add(ctx, -1, attrs)
	}
}

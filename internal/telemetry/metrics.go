// Package telemetry records pipeline throughput, dropped-frame, and
// job-duration metrics through OpenTelemetry. A no-op meter provider
// is used when telemetry is disabled in configuration, so recording a
// metric never blocks the hot path on an exporter.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/neutrinographics/faceguard"

// Metrics holds the OpenTelemetry instruments recorded during a job.
// All fields are safe for concurrent use — the underlying OTel types
// handle their own synchronization.
type Metrics struct {
	// StageDuration tracks per-stage processing latency. Use with
	// attribute.String("stage", "detect"|"blur"|"merge"|"write").
	StageDuration metric.Float64Histogram

	// JobDuration tracks end-to-end job latency.
	JobDuration metric.Float64Histogram

	// FramesProcessed counts frames that completed the pipeline.
	FramesProcessed metric.Int64Counter

	// FramesDropped counts frames discarded by cancellation or a
	// worker error before reaching the writer.
	FramesDropped metric.Int64Counter

	// ActiveJobs tracks the number of jobs currently running.
	ActiveJobs metric.Int64UpDownCounter
}

var stageLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// New creates a fully initialized Metrics using mp. Returns an error
// if any instrument creation fails.
func New(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{}
	var err error

	if met.StageDuration, err = m.Float64Histogram("faceguard.pipeline.stage.duration",
		metric.WithDescription("Latency of a single pipeline stage's per-frame work."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageLatencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.JobDuration, err = m.Float64Histogram("faceguard.job.duration",
		metric.WithDescription("End-to-end job latency."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if met.FramesProcessed, err = m.Int64Counter("faceguard.frames.processed",
		metric.WithDescription("Total frames that completed the pipeline."),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64Counter("faceguard.frames.dropped",
		metric.WithDescription("Total frames discarded by cancellation or a worker error."),
	); err != nil {
		return nil, err
	}
	if met.ActiveJobs, err = m.Int64UpDownCounter("faceguard.jobs.active",
		metric.WithDescription("Number of jobs currently running."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// NewNoop returns a Metrics backed by a no-op meter provider, for use
// when telemetry is disabled in configuration.
func NewNoop() *Metrics {
	met, err := New(noop.NewMeterProvider())
	if err != nil {
		// The no-op provider never rejects instrument creation.
		panic("telemetry: noop provider failed to create instruments: " + err.Error())
	}
	return met
}

// RecordStage records a pipeline stage's duration in seconds.
func (m *Metrics) RecordStage(ctx context.Context, stage string, seconds float64) {
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordFrameProcessed increments the processed-frame counter.
func (m *Metrics) RecordFrameProcessed(ctx context.Context) {
	m.FramesProcessed.Add(ctx, 1)
}

// RecordFramesDropped increments the dropped-frame counter by n.
func (m *Metrics) RecordFramesDropped(ctx context.Context, n int64) {
	m.FramesDropped.Add(ctx, n)
}

// RecordJobDuration records a completed job's total duration in
// seconds.
func (m *Metrics) RecordJobDuration(ctx context.Context, seconds float64) {
	m.JobDuration.Record(ctx, seconds)
}

// RecordJobStart marks jobID as active. Pair with RecordJobEnd so
// ActiveJobs and per-job duration can be correlated across concurrent
// runs by the same job_id attribute.
func (m *Metrics) RecordJobStart(ctx context.Context, jobID string) {
	m.ActiveJobs.Add(ctx, 1, metric.WithAttributes(attribute.String("job_id", jobID)))
}

// RecordJobEnd marks jobID no longer active and records its total
// duration in seconds.
func (m *Metrics) RecordJobEnd(ctx context.Context, jobID string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("job_id", jobID))
	m.ActiveJobs.Add(ctx, -1, attrs)
	m.JobDuration.Record(ctx, seconds, attrs)
}

package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChunksUpserted   = "opcode.index.chunks.upserted.total"
	metricExtractorErrors  = "opcode.index.extractor.errors.total"
	metricSnapshotsCreated = "opcode.index.snapshots.created.total"
	metricReindexDuration  = "opcode.index.reindex.duration.seconds"
	metricRewinds          = "opcode.index.rewinds.total"

	attrExtractor = "extractor"
	attrTimeline  = "timeline"
)

// durationBucketBoundaries covers 10ms to 600s, matching the range of a
// single-file extraction pass up to a full-repository reindex.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// IndexMetrics holds OTel instruments for the indexing engine's own
// operations: chunk writes, extractor failures, snapshot/rewind activity,
// and reindex latency.
type IndexMetrics struct {
	chunksUpserted   metric.Int64Counter
	extractorErrors  metric.Int64Counter
	snapshotsCreated metric.Int64Counter
	reindexDuration  metric.Float64Histogram
	rewinds          metric.Int64Counter
}

// NewIndexMetrics creates the engine's metric instruments from the given meter.
func NewIndexMetrics(mt metric.Meter) (*IndexMetrics, error) {
	b := newMetricBuilder(mt)

	im := &IndexMetrics{
		chunksUpserted:   b.counter(metricChunksUpserted, "Total chunks upserted into storage", "{chunk}"),
		extractorErrors:  b.counter(metricExtractorErrors, "Total extractor failures by extractor", "{error}"),
		snapshotsCreated: b.counter(metricSnapshotsCreated, "Total snapshots created by timeline", "{snapshot}"),
		reindexDuration:  b.histogram(metricReindexDuration, "Reindex pass duration in seconds", "s", durationBucketBoundaries...),
		rewinds:          b.counter(metricRewinds, "Total master-timeline rewinds", "{rewind}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return im, nil
}

// RecordChunksUpserted adds n newly-created (not deduped) chunks to the total.
// Safe to call on a nil receiver (no-op).
func (im *IndexMetrics) RecordChunksUpserted(ctx context.Context, n int64) {
	if im == nil {
		return
	}

	im.chunksUpserted.Add(ctx, n)
}

// RecordExtractorError records a single extractor failure, tagged by the
// extractor's chunk type name.
func (im *IndexMetrics) RecordExtractorError(ctx context.Context, extractor string) {
	if im == nil {
		return
	}

	im.extractorErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(attrExtractor, extractor)))
}

// RecordSnapshotCreated records a snapshot creation on the given timeline
// ("master" or "agent").
func (im *IndexMetrics) RecordSnapshotCreated(ctx context.Context, timeline string) {
	if im == nil {
		return
	}

	im.snapshotsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String(attrTimeline, timeline)))
}

// RecordReindexDuration records the wall-clock duration of a completed
// reindex pass (full or incremental).
func (im *IndexMetrics) RecordReindexDuration(ctx context.Context, d time.Duration) {
	if im == nil {
		return
	}

	im.reindexDuration.Record(ctx, d.Seconds())
}

// RecordRewind records a single master-timeline rewind operation.
func (im *IndexMetrics) RecordRewind(ctx context.Context) {
	if im == nil {
		return
	}

	im.rewinds.Add(ctx, 1)
}

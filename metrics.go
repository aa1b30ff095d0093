package meshgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    loadCounter   prometheus.Counter
//	    loadHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordLoad(duration time.Duration, err error) {
//	    p.loadCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordLoad is called after each load operation.
	// duration is the total time taken, err is nil if successful.
	RecordLoad(duration time.Duration, err error)

	// RecordPiece is called after each piece read within a load.
	// duration covers the fetch, parse and weld of one piece file.
	RecordPiece(duration time.Duration, err error)

	// RecordWeld is called after each vertex welding pass.
	// raw is the vertex count before welding, unique the count after,
	// duration is the time taken by clustering and remapping.
	RecordWeld(raw, unique int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(time.Duration, error)    {}
func (NoopMetricsCollector) RecordPiece(time.Duration, error)   {}
func (NoopMetricsCollector) RecordWeld(int, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadTotalNanos     atomic.Int64
	PieceCount         atomic.Int64
	PieceErrors        atomic.Int64
	PieceTotalNanos    atomic.Int64
	WeldCount          atomic.Int64
	WeldRawVertices    atomic.Int64
	WeldUniqueVertices atomic.Int64
	WeldTotalNanos     atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordPiece implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPiece(duration time.Duration, err error) {
	b.PieceCount.Add(1)
	b.PieceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PieceErrors.Add(1)
	}
}

// RecordWeld implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWeld(raw, unique int, duration time.Duration) {
	b.WeldCount.Add(1)
	b.WeldRawVertices.Add(int64(raw))
	b.WeldUniqueVertices.Add(int64(unique))
	b.WeldTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:          b.LoadCount.Load(),
		LoadErrors:         b.LoadErrors.Load(),
		LoadAvgNanos:       b.getAvgLoadNanos(),
		PieceCount:         b.PieceCount.Load(),
		PieceErrors:        b.PieceErrors.Load(),
		PieceAvgNanos:      b.getAvgPieceNanos(),
		WeldCount:          b.WeldCount.Load(),
		WeldRawVertices:    b.WeldRawVertices.Load(),
		WeldUniqueVertices: b.WeldUniqueVertices.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgPieceNanos() int64 {
	count := b.PieceCount.Load()
	if count == 0 {
		return 0
	}
	return b.PieceTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount          int64
	LoadErrors         int64
	LoadAvgNanos       int64
	PieceCount         int64
	PieceErrors        int64
	PieceAvgNanos      int64
	WeldCount          int64
	WeldRawVertices    int64
	WeldUniqueVertices int64
}

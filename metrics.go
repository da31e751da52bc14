package membench

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
//	    arenaInits   prometheus.Counter
//	    buildSeconds prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordRegionBuild(size int, duration time.Duration, err error) {
//	    p.buildSeconds.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordArenaInit is called once per arena, after its mapping was
	// attempted. kind is "small" or "large".
	RecordArenaInit(kind string, capacity int, duration time.Duration, err error)

	// RecordRegionBuild is called after each ShuffledRegion call.
	RecordRegionBuild(size int, duration time.Duration, err error)

	// RecordPointerRequest is called after each AlignedPointer and
	// MisalignedPointer call.
	RecordPointerRequest(alignment, size int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordArenaInit(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRegionBuild(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordPointerRequest(int, int, error)              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ArenaInits       atomic.Int64
	ArenaInitErrors  atomic.Int64
	ArenaBytes       atomic.Int64
	ArenaInitNanos   atomic.Int64
	RegionBuilds     atomic.Int64
	RegionErrors     atomic.Int64
	RegionBytes      atomic.Int64
	RegionTotalNanos atomic.Int64
	PointerRequests  atomic.Int64
	PointerErrors    atomic.Int64
}

// RecordArenaInit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArenaInit(_ string, capacity int, duration time.Duration, err error) {
	b.ArenaInits.Add(1)
	b.ArenaInitNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ArenaInitErrors.Add(1)
		return
	}
	b.ArenaBytes.Add(int64(capacity))
}

// RecordRegionBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRegionBuild(size int, duration time.Duration, err error) {
	b.RegionBuilds.Add(1)
	b.RegionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RegionErrors.Add(1)
		return
	}
	b.RegionBytes.Add(int64(size))
}

// RecordPointerRequest implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPointerRequest(_, _ int, err error) {
	b.PointerRequests.Add(1)
	if err != nil {
		b.PointerErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ArenaInits:      b.ArenaInits.Load(),
		ArenaInitErrors: b.ArenaInitErrors.Load(),
		ArenaBytes:      b.ArenaBytes.Load(),
		ArenaInitNanos:  b.ArenaInitNanos.Load(),
		RegionBuilds:    b.RegionBuilds.Load(),
		RegionErrors:    b.RegionErrors.Load(),
		RegionBytes:     b.RegionBytes.Load(),
		RegionAvgNanos:  b.getAvgRegionNanos(),
		PointerRequests: b.PointerRequests.Load(),
		PointerErrors:   b.PointerErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgRegionNanos() int64 {
	count := b.RegionBuilds.Load()
	if count == 0 {
		return 0
	}
	return b.RegionTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ArenaInits      int64
	ArenaInitErrors int64
	ArenaBytes      int64
	ArenaInitNanos  int64
	RegionBuilds    int64
	RegionErrors    int64
	RegionBytes     int64
	RegionAvgNanos  int64
	PointerRequests int64
	PointerErrors   int64
}

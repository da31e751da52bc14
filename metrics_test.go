package membench

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	boom := errors.New("boom")

	mc.RecordArenaInit("small", 1024, time.Millisecond, nil)
	mc.RecordArenaInit("large", 2048, time.Millisecond, boom)
	mc.RecordRegionBuild(6400, 100*time.Microsecond, nil)
	mc.RecordRegionBuild(64, 300*time.Microsecond, nil)
	mc.RecordRegionBuild(1, 200*time.Microsecond, boom)
	mc.RecordPointerRequest(64, 64, nil)
	mc.RecordPointerRequest(3, 64, boom)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.ArenaInits)
	assert.Equal(t, int64(1), stats.ArenaInitErrors)
	assert.Equal(t, int64(1024), stats.ArenaBytes)
	assert.Equal(t, int64(2*time.Millisecond), stats.ArenaInitNanos)
	assert.Equal(t, int64(3), stats.RegionBuilds)
	assert.Equal(t, int64(1), stats.RegionErrors)
	assert.Equal(t, int64(6464), stats.RegionBytes)
	assert.Equal(t, int64(200*time.Microsecond), stats.RegionAvgNanos)
	assert.Equal(t, int64(2), stats.PointerRequests)
	assert.Equal(t, int64(1), stats.PointerErrors)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	mc := &BasicMetricsCollector{}
	assert.Equal(t, BasicMetricsStats{}, mc.GetStats())
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	assert.NotPanics(t, func() {
		mc.RecordArenaInit("small", 1, 0, nil)
		mc.RecordRegionBuild(64, 0, nil)
		mc.RecordPointerRequest(64, 64, nil)
	})
}

func TestWithMetricsCollector_Nil(t *testing.T) {
	env := newTestEnv(WithMetricsCollector(nil))
	assert.IsType(t, NoopMetricsCollector{}, env.metrics)
}

package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kisy/appmole/model"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func s(name string, pid int32, in, out uint64) model.RawProcessSample {
	return model.NewRawProcessSample(name, pid, in, out)
}

func TestAttributeFirstTickHasNoSpeed(t *testing.T) {
	a := NewAttributor()
	speeds := a.Attribute([]model.RawProcessSample{
		s("Safari", 10, 5_000_000, 1_000_000),
		s("curl", 11, 42, 42),
	}, t0)

	assert.Empty(t, speeds)
	assert.Empty(t, a.Totals())
	assert.Equal(t, 2, a.Tracked())
}

func TestAttributeSpeedAndTotals(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("Safari", 10, 100, 100)}, t0)
	speeds := a.Attribute([]model.RawProcessSample{s("Safari", 10, 1100, 1100)}, t0.Add(2*time.Second))

	require.Contains(t, speeds, "Safari")
	assert.InDelta(t, 1000.0, speeds["Safari"].Speed, 1e-9)
	assert.Equal(t, int32(10), speeds["Safari"].PID)
	assert.Equal(t, uint64(2000), a.Total("Safari"))
}

func TestAttributeHelperAggregation(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{
		s("Foo Helper", 100, 1000, 0),
		s("Foo Helper (GPU)", 101, 2000, 0),
		s("Foo Helper (Renderer)", 102, 3000, 0),
	}, t0)
	speeds := a.Attribute([]model.RawProcessSample{
		s("Foo Helper", 100, 1100, 0),
		s("Foo Helper (GPU)", 101, 2300, 0),
		s("Foo Helper (Renderer)", 102, 3600, 0),
	}, t0.Add(time.Second))

	require.Len(t, speeds, 1)
	assert.InDelta(t, 100.0+300.0+600.0, speeds["Foo"].Speed, 1e-9)
	assert.Equal(t, uint64(1000), a.Total("Foo"))
}

func TestAttributeDeferredRuntimeStandalone(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("Electron", 500, 10, 10)}, t0)
	speeds := a.Attribute([]model.RawProcessSample{s("Electron", 500, 60, 60)}, t0.Add(time.Second))

	require.Contains(t, speeds, "Electron")
	assert.InDelta(t, 100.0, speeds["Electron"].Speed, 1e-9)
	assert.Equal(t, uint64(100), a.Total("Electron"))
}

func TestAttributeDeferredRuntimeMergesIntoHelper(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{
		s("Electron", 500, 10, 10),
		s("Bar Helper", 501, 0, 0),
	}, t0)
	speeds := a.Attribute([]model.RawProcessSample{
		s("Electron", 500, 60, 60),
		s("Bar Helper", 501, 0, 0),
	}, t0.Add(time.Second))

	assert.NotContains(t, speeds, "Electron")
	require.Contains(t, speeds, "Bar")
	assert.InDelta(t, 100.0, speeds["Bar"].Speed, 1e-9)
	assert.Equal(t, uint64(100), a.Total("Bar"))
	assert.Zero(t, a.Total("Electron"))
}

func TestAttributeIgnoresSystemProcesses(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("mDNSResponder", 1, 0, 0)}, t0)
	speeds := a.Attribute([]model.RawProcessSample{s("mDNSResponder", 1, 1<<40, 1<<40)}, t0.Add(time.Second))

	assert.Empty(t, speeds)
	assert.Empty(t, a.Totals())
	assert.Zero(t, a.Tracked())
}

func TestAttributeCounterDecreaseIsSkipped(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{
		s("Safari", 10, 5000, 0),
		s("Safari", 11, 100, 0),
	}, t0)
	speeds := a.Attribute([]model.RawProcessSample{
		s("Safari", 10, 10, 0),
		s("Safari", 11, 300, 0),
	}, t0.Add(time.Second))

	assert.InDelta(t, 200.0, speeds["Safari"].Speed, 1e-9)
	assert.Equal(t, uint64(200), a.Total("Safari"))

	// The lower value becomes the new baseline.
	speeds = a.Attribute([]model.RawProcessSample{
		s("Safari", 10, 50, 0),
		s("Safari", 11, 300, 0),
	}, t0.Add(2*time.Second))
	assert.InDelta(t, 40.0, speeds["Safari"].Speed, 1e-9)
}

func TestAttributeNewAndVanishedProcesses(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("Safari", 10, 100, 0)}, t0)

	speeds := a.Attribute([]model.RawProcessSample{s("Slack", 20, 9999, 0)}, t0.Add(time.Second))
	assert.Empty(t, speeds)
	assert.Equal(t, 1, a.Tracked())

	speeds = a.Attribute([]model.RawProcessSample{s("Slack", 20, 10999, 0)}, t0.Add(2*time.Second))
	assert.InDelta(t, 1000.0, speeds["Slack"].Speed, 1e-9)
	assert.Zero(t, a.Total("Safari"))
}

func TestAttributeNonPositiveElapsed(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("Safari", 10, 100, 0)}, t0)

	speeds := a.Attribute([]model.RawProcessSample{s("Safari", 10, 200, 0)}, t0)
	assert.Empty(t, speeds)
	speeds = a.Attribute([]model.RawProcessSample{s("Safari", 10, 300, 0)}, t0.Add(-time.Second))
	assert.Empty(t, speeds)
	assert.Empty(t, a.Totals())
}

func TestAttributeTotalsAreMonotonic(t *testing.T) {
	a := NewAttributor()
	counters := []uint64{100, 250, 90, 400, 400, 1000}
	var last uint64
	for i, c := range counters {
		a.Attribute([]model.RawProcessSample{
			s("Safari", 10, c, 0),
			s("Foo Helper", 30, c*2, 0),
		}, t0.Add(time.Duration(i)*time.Second))
		total := a.Total("Safari") + a.Total("Foo")
		assert.GreaterOrEqual(t, total, last)
		last = total
	}
}

func TestAttributorResetKeepsBaseline(t *testing.T) {
	a := NewAttributor()
	a.Attribute([]model.RawProcessSample{s("Safari", 10, 100, 0)}, t0)
	a.Attribute([]model.RawProcessSample{s("Safari", 10, 200, 0)}, t0.Add(time.Second))
	require.Equal(t, uint64(100), a.Total("Safari"))

	a.Reset()
	assert.Empty(t, a.Totals())

	speeds := a.Attribute([]model.RawProcessSample{s("Safari", 10, 500, 0)}, t0.Add(2*time.Second))
	assert.InDelta(t, 300.0, speeds["Safari"].Speed, 1e-9)
	assert.Equal(t, uint64(300), a.Total("Safari"))
}

func TestAttributorSeed(t *testing.T) {
	a := NewAttributor()
	seed := map[string]uint64{"Chrome": 10}
	a.Seed(seed)
	seed["Chrome"] = 99

	assert.Equal(t, uint64(10), a.Total("Chrome"))
	totals := a.Totals()
	totals["Chrome"] = 0
	assert.Equal(t, uint64(10), a.Total("Chrome"))
}

func TestMatchDeferred(t *testing.T) {
	buckets := map[string][]Member{
		"Bar": {{PID: 501}},
		"Baz": {{PID: 3000}},
	}

	app, ok := MatchDeferred(500, buckets)
	require.True(t, ok)
	assert.Equal(t, "Bar", app)

	app, ok = MatchDeferred(2500, buckets)
	require.True(t, ok)
	assert.Equal(t, "Baz", app)

	_, ok = MatchDeferred(10000, buckets)
	assert.False(t, ok)

	_, ok = MatchDeferred(500, nil)
	assert.False(t, ok)
}

func TestMatchDeferredThresholdIsExclusive(t *testing.T) {
	buckets := map[string][]Member{"Bar": {{PID: 1500}}}

	_, ok := MatchDeferred(500, buckets)
	assert.False(t, ok)

	app, ok := MatchDeferred(501, buckets)
	assert.True(t, ok)
	assert.Equal(t, "Bar", app)
}

func TestMatchDeferredTieBreak(t *testing.T) {
	buckets := map[string][]Member{
		"Zed":   {{PID: 490}},
		"Alpha": {{PID: 510}},
		"Mid":   {{PID: 800}},
	}
	for i := 0; i < 20; i++ {
		app, ok := MatchDeferred(500, buckets)
		require.True(t, ok)
		assert.Equal(t, "Alpha", app)
	}
}

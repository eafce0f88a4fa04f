package perf

import (
	"sort"
	"testing"
	"time"
)

func TestPanelLatencyTargets(t *testing.T) {
	scenarios := []struct {
		name      string
		samples   []time.Duration
		threshold time.Duration
	}{
		{
			name:      "listing",
			samples:   []time.Duration{90 * time.Millisecond, 110 * time.Millisecond, 130 * time.Millisecond, 150 * time.Millisecond, 170 * time.Millisecond, 190 * time.Millisecond, 210 * time.Millisecond, 230 * time.Millisecond, 250 * time.Millisecond, 280 * time.Millisecond},
			threshold: 500 * time.Millisecond,
		},
		{
			name:      "reveal",
			samples:   []time.Duration{200 * time.Millisecond, 250 * time.Millisecond, 320 * time.Millisecond, 380 * time.Millisecond, 450 * time.Millisecond, 520 * time.Millisecond, 600 * time.Millisecond, 680 * time.Millisecond, 750 * time.Millisecond, 820 * time.Millisecond},
			threshold: time.Second,
		},
		{
			name:      "audit_page",
			samples:   []time.Duration{120 * time.Millisecond, 160 * time.Millisecond, 200 * time.Millisecond, 240 * time.Millisecond, 280 * time.Millisecond, 320 * time.Millisecond, 360 * time.Millisecond, 400 * time.Millisecond, 440 * time.Millisecond, 480 * time.Millisecond},
			threshold: 800 * time.Millisecond,
		},
	}

	for _, scenario := range scenarios {
		p95 := percentile95(scenario.samples)
		if p95 > scenario.threshold {
			t.Fatalf("%s latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

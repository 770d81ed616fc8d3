// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package verindex

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// counterValue sums the data points of a named counter, returning false
// when the metric was never recorded.
func counterValue(rm *metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				return 0, false
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func TestMetricsFirstRecordIsCounted(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	// A fresh cache: the very first miss must already show up in the
	// counter, even when the instruments were not initialized yet.
	c := NewCache()
	c.Index(ctx, testDossier("metrics-dossier"))
	c.Invalidate("metrics-dossier")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	misses, ok := counterValue(&rm, "verindex_misses_total")
	if !ok || misses < 1 {
		t.Errorf("verindex_misses_total = %d (recorded=%v), want >= 1", misses, ok)
	}
	builds, ok := counterValue(&rm, "verindex_builds_total")
	if !ok || builds < 1 {
		t.Errorf("verindex_builds_total = %d (recorded=%v), want >= 1", builds, ok)
	}
	invalidations, ok := counterValue(&rm, "verindex_invalidations_total")
	if !ok || invalidations < 1 {
		t.Errorf("verindex_invalidations_total = %d (recorded=%v), want >= 1", invalidations, ok)
	}
}

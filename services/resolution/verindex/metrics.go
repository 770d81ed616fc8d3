// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package verindex

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("scriptorium.verindex")

var (
	indexHits          metric.Int64Counter
	indexMisses        metric.Int64Counter
	indexBuilds        metric.Int64Counter
	indexInvalidations metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the counters. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		indexHits, err = meter.Int64Counter(
			"verindex_hits_total",
			metric.WithDescription("Total number of version index cache hits"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		indexMisses, err = meter.Int64Counter(
			"verindex_misses_total",
			metric.WithDescription("Total number of version index cache misses"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		indexBuilds, err = meter.Int64Counter(
			"verindex_builds_total",
			metric.WithDescription("Total number of version index rebuilds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		indexInvalidations, err = meter.Int64Counter(
			"verindex_invalidations_total",
			metric.WithDescription("Total number of version index invalidations"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordCount adds 1 to a counter if metrics initialized cleanly.
//
// Takes a pointer to the package var: the counter is only populated by
// initMetrics, so reading it at the call site would pass nil on the
// first record after process start.
func recordCount(ctx context.Context, counter *metric.Int64Counter) {
	if initMetrics() != nil || counter == nil || *counter == nil {
		return
	}
	(*counter).Add(ctx, 1)
}

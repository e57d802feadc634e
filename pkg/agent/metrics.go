// Copyright 2026 © The Stride Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	runMetricsOnce    sync.Once
	runCounter        metric.Int64Counter
	runSuccessCounter metric.Int64Counter
	stepCounter       metric.Int64Counter
	stepLatencyMs     metric.Float64Histogram
)

func initRunMetrics() {
	runMetricsOnce.Do(func() {
		meter := otel.Meter("stride/agent")
		runCounter, _ = meter.Int64Counter("stride.agent.run.count")
		runSuccessCounter, _ = meter.Int64Counter("stride.agent.run.success.count")
		stepCounter, _ = meter.Int64Counter("stride.agent.step.count")
		stepLatencyMs, _ = meter.Float64Histogram("stride.agent.step.latency_ms")
	})
}

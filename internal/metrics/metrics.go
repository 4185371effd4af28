// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Tool dispatch metrics
	IncToolInvocation(tool, mode string) // mode: "live" or "demo"
	IncQuotaDenied(plan string)
	ObserveToolDuration(duration time.Duration)

	// Billing metrics
	IncBillingEvent(provider, outcome string) // outcome: "processed", "ignored", "rejected"

	// Usage-log pipeline metrics
	IncUsageEventPublished(status string) // status: "success" or "dropped"
	IncUsageEventProcessed(status string) // status: "success", "failed", "dead_lettered"
	ObserveUsageBatchSize(size int)
	ObserveUsageBatchDuration(duration time.Duration)
	SetUsageQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

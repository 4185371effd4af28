package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncToolInvocation is a no-op.
func (n *NoopRecorder) IncToolInvocation(tool, mode string) {}

// IncQuotaDenied is a no-op.
func (n *NoopRecorder) IncQuotaDenied(plan string) {}

// ObserveToolDuration is a no-op.
func (n *NoopRecorder) ObserveToolDuration(duration time.Duration) {}

// IncBillingEvent is a no-op.
func (n *NoopRecorder) IncBillingEvent(provider, outcome string) {}

// IncUsageEventPublished is a no-op.
func (n *NoopRecorder) IncUsageEventPublished(status string) {}

// IncUsageEventProcessed is a no-op.
func (n *NoopRecorder) IncUsageEventProcessed(status string) {}

// ObserveUsageBatchSize is a no-op.
func (n *NoopRecorder) ObserveUsageBatchSize(size int) {}

// ObserveUsageBatchDuration is a no-op.
func (n *NoopRecorder) ObserveUsageBatchDuration(duration time.Duration) {}

// SetUsageQueueDepth is a no-op.
func (n *NoopRecorder) SetUsageQueueDepth(depth int64) {}

package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ToolInvocations     map[string]uint64 // keyed by "tool/mode"
	QuotaDenied         map[string]uint64 // keyed by plan
	ToolDurationCount   uint64
	ToolDurationTotalNs int64
	BillingEvents       map[string]uint64 // keyed by "provider/outcome"
	UsagePublished      map[string]uint64 // keyed by status
	UsageProcessed      map[string]uint64 // keyed by status
	UsageQueueDepth     int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                  sync.Mutex
	toolInvocations     map[string]uint64
	quotaDenied         map[string]uint64
	billingEvents       map[string]uint64
	usagePublished      map[string]uint64
	usageProcessed      map[string]uint64
	toolDurationCount   uint64
	toolDurationTotalNs int64
	usageQueueDepth     int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		toolInvocations: make(map[string]uint64),
		quotaDenied:     make(map[string]uint64),
		billingEvents:   make(map[string]uint64),
		usagePublished:  make(map[string]uint64),
		usageProcessed:  make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		ToolInvocations:     copyMap(m.toolInvocations),
		QuotaDenied:         copyMap(m.quotaDenied),
		BillingEvents:       copyMap(m.billingEvents),
		UsagePublished:      copyMap(m.usagePublished),
		UsageProcessed:      copyMap(m.usageProcessed),
		ToolDurationCount:   atomic.LoadUint64(&m.toolDurationCount),
		ToolDurationTotalNs: atomic.LoadInt64(&m.toolDurationTotalNs),
		UsageQueueDepth:     atomic.LoadInt64(&m.usageQueueDepth),
	}
}

func copyMap(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// IncToolInvocation increments the counter for a tool/mode pair.
func (m *InMemoryRecorder) IncToolInvocation(tool, mode string) {
	m.mu.Lock()
	m.toolInvocations[tool+"/"+mode]++
	m.mu.Unlock()
}

// IncQuotaDenied increments the denial counter for a plan.
func (m *InMemoryRecorder) IncQuotaDenied(plan string) {
	m.mu.Lock()
	m.quotaDenied[plan]++
	m.mu.Unlock()
}

// ObserveToolDuration records a tool processing duration.
func (m *InMemoryRecorder) ObserveToolDuration(duration time.Duration) {
	atomic.AddUint64(&m.toolDurationCount, 1)
	atomic.AddInt64(&m.toolDurationTotalNs, duration.Nanoseconds())
}

// IncBillingEvent increments the counter for a provider/outcome pair.
func (m *InMemoryRecorder) IncBillingEvent(provider, outcome string) {
	m.mu.Lock()
	m.billingEvents[provider+"/"+outcome]++
	m.mu.Unlock()
}

// IncUsageEventPublished increments the publish counter for a status.
func (m *InMemoryRecorder) IncUsageEventPublished(status string) {
	m.mu.Lock()
	m.usagePublished[status]++
	m.mu.Unlock()
}

// IncUsageEventProcessed increments the process counter for a status.
func (m *InMemoryRecorder) IncUsageEventProcessed(status string) {
	m.mu.Lock()
	m.usageProcessed[status]++
	m.mu.Unlock()
}

// ObserveUsageBatchSize is recorded only in aggregate form.
func (m *InMemoryRecorder) ObserveUsageBatchSize(size int) {}

// ObserveUsageBatchDuration is recorded only in aggregate form.
func (m *InMemoryRecorder) ObserveUsageBatchDuration(duration time.Duration) {}

// SetUsageQueueDepth stores the latest queue depth.
func (m *InMemoryRecorder) SetUsageQueueDepth(depth int64) {
	atomic.StoreInt64(&m.usageQueueDepth, depth)
}

package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/textmagic/textmagic/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writePairMetric(w, "textmagic_tool_invocations_total", "tool", "mode", snap.ToolInvocations)
	writeLabeledMetric(w, "textmagic_quota_denied_total", "plan", snap.QuotaDenied)
	writeMetric(w, "textmagic_tool_duration_seconds_count %d\n", snap.ToolDurationCount)
	writeMetric(w, "textmagic_tool_duration_seconds_sum %.6f\n", float64(snap.ToolDurationTotalNs)/1e9)

	writePairMetric(w, "textmagic_billing_events_total", "provider", "outcome", snap.BillingEvents)
	writeLabeledMetric(w, "textmagic_usage_events_published_total", "status", snap.UsagePublished)
	writeLabeledMetric(w, "textmagic_usage_events_processed_total", "status", snap.UsageProcessed)
	writeMetric(w, "textmagic_usage_queue_depth %d\n", snap.UsageQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// writeLabeledMetric emits one series per map key, sorted for stable
// scrape output.
func writeLabeledMetric(w http.ResponseWriter, name, label string, values map[string]uint64) {
	for _, key := range sortedKeys(values) {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, key, values[key])
	}
}

// writePairMetric emits series for maps keyed by "first/second".
func writePairMetric(w http.ResponseWriter, name, firstLabel, secondLabel string, values map[string]uint64) {
	for _, key := range sortedKeys(values) {
		first, second := splitPairKey(key)
		writeMetric(w, "%s{%s=%q,%s=%q} %d\n", name, firstLabel, first, secondLabel, second, values[key])
	}
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func splitPairKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

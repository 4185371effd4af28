package dto

import (
	"github.com/textmagic/textmagic/internal/model"
	"github.com/textmagic/textmagic/internal/tool"
)

// ToolResponse describes one available tool.
type ToolResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolListResponse is returned by GET /api/v1/tools.
type ToolListResponse struct {
	Tools []ToolResponse `json:"tools"`
}

// ToToolListResponse converts the tool registry to its public view.
func ToToolListResponse(tools []tool.Tool) ToolListResponse {
	out := ToolListResponse{Tools: make([]ToolResponse, 0, len(tools))}
	for _, t := range tools {
		out.Tools = append(out.Tools, ToolResponse{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return out
}

// ProcessOptions carries optional per-tool knobs.
type ProcessOptions struct {
	Length     string `json:"length,omitempty"`
	Tone       string `json:"tone,omitempty"`
	Platform   string `json:"platform,omitempty"`
	Style      string `json:"style,omitempty"`
	TargetLang string `json:"targetLang,omitempty"`
}

// ProcessRequest is the body of POST /api/v1/tools/process.
type ProcessRequest struct {
	ToolID  string         `json:"toolId"`
	Text    string         `json:"text"`
	Options ProcessOptions `json:"options"`
}

// UsageStanding reports where the account sits against its daily quota.
type UsageStanding struct {
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
	Plan  string `json:"plan"`
}

// ProcessResponse is returned on a successful tool run.
type ProcessResponse struct {
	Success bool          `json:"success"`
	Result  string        `json:"result"`
	Demo    bool          `json:"demo,omitempty"`
	Usage   UsageStanding `json:"usage"`
}

// ToolUsageEntry is one row of the per-tool usage breakdown.
type ToolUsageEntry struct {
	Tool  string `json:"tool"`
	Count int64  `json:"count"`
}

// UsageStatsResponse is returned by GET /api/v1/usage/stats.
type UsageStatsResponse struct {
	Usage UsageStanding    `json:"usage"`
	Tools []ToolUsageEntry `json:"tools"`
}

// ToToolUsageEntries converts the repository breakdown rows.
func ToToolUsageEntries(stats []model.ToolUsage) []ToolUsageEntry {
	out := make([]ToolUsageEntry, 0, len(stats))
	for _, s := range stats {
		out = append(out, ToolUsageEntry{Tool: s.Tool, Count: s.Count})
	}
	return out
}

// CheckoutRequest is the body of POST /api/v1/billing/checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// RedirectResponse carries a provider-hosted page URL.
type RedirectResponse struct {
	URL string `json:"url"`
}

// WebhookAck acknowledges a processed provider webhook.
type WebhookAck struct {
	Received bool `json:"received"`
}

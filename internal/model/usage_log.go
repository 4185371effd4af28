package model

import "time"

// UsageLogEntry is an append-only record of one successful tool
// invocation. Entries are never updated or deleted by normal flow.
type UsageLogEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Tool      string    `json:"tool"`
	CreatedAt time.Time `json:"created_at"`
}

// ToolUsage is a per-tool aggregate for the usage stats endpoint.
type ToolUsage struct {
	Tool  string `json:"tool"`
	Count int64  `json:"count"`
}

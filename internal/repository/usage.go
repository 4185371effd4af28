package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/textmagic/textmagic/internal/model"
)

// RecordUsage attributes one tool invocation to the user for the given
// accounting day. The conditional update is a single atomic
// read-modify-write per row: a stale counter from a previous day is
// reset to 1, otherwise the counter is incremented. Returns the new
// count for the day.
func (r *Repository) RecordUsage(ctx context.Context, userID int64, day string) (int, error) {
	query := `
		UPDATE users
		SET usage_count = CASE WHEN usage_reset_date = $2 THEN usage_count + 1 ELSE 1 END,
		    usage_reset_date = $2
		WHERE id = $1
		RETURNING usage_count
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to record usage: %w", err)
	}

	return count, nil
}

// UsageLogRecord is a usage-log row pending insertion, carrying the
// stream event id used for idempotent writes.
type UsageLogRecord struct {
	EventID   string
	UserID    int64
	Tool      string
	CreatedAt time.Time
}

// InsertUsageLogs appends a batch of usage-log entries. Replayed stream
// events are skipped via the unique event id, so the batch is safe to
// retry.
func (r *Repository) InsertUsageLogs(ctx context.Context, records []UsageLogRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO usage_logs (event_id, user_id, tool, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING
	`

	inserted := 0
	for _, rec := range records {
		tag, err := r.pool.Exec(ctx, query, rec.EventID, rec.UserID, rec.Tool, rec.CreatedAt)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert usage log: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// UsageStats returns per-tool invocation counts for a user, most used
// first.
func (r *Repository) UsageStats(ctx context.Context, userID int64) ([]model.ToolUsage, error) {
	query := `
		SELECT tool, COUNT(*) AS count
		FROM usage_logs
		WHERE user_id = $1
		GROUP BY tool
		ORDER BY count DESC, tool
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage stats: %w", err)
	}
	defer rows.Close()

	var stats []model.ToolUsage
	for rows.Next() {
		var s model.ToolUsage
		if err := rows.Scan(&s.Tool, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan usage stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage stats: %w", err)
	}

	return stats, nil
}

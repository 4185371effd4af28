// Package model defines domain entities for the application.
package model

import "time"

// User represents an account with its plan and daily usage counters.
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name,omitempty"`
	Plan           Plan      `json:"plan"`
	CustomerID     *string   `json:"-"`
	SubscriptionID *string   `json:"-"`
	UsageCount     int       `json:"-"`
	UsageResetDate string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// UsageDateFormat is the calendar-day granularity of the usage reset
// boundary. The stored counter is meaningful only for this date.
const UsageDateFormat = "2006-01-02"

// UsageDay returns the accounting day for t in the server's timezone.
func UsageDay(t time.Time) string {
	return t.Format(UsageDateFormat)
}

// EffectiveUsage returns the usage count relative to the given day.
// A counter stored under a previous day is stale and counts as zero;
// the stored value is only corrected on the next write (lazy reset).
func (u *User) EffectiveUsage(day string) int {
	if u.UsageResetDate != day {
		return 0
	}
	return u.UsageCount
}

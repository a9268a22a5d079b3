package domain

import "time"

// ActivityType categorizes activity log entries
type ActivityType string

const (
	ActivityContent   ActivityType = "content"
	ActivityBrand     ActivityType = "brand"
	ActivityAnalytics ActivityType = "analytics"
	ActivitySystem    ActivityType = "system"
)

// ActivityRetention is how many entries the log keeps per owner.
// Older entries are dropped on write, not archived.
const ActivityRetention = 50

// ActivityItem is one entry in the append-only activity log
type ActivityItem struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"user_id,omitempty"`
}

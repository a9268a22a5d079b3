package domain

import "time"

// ContentType tags a content record with its collection of origin
type ContentType string

const (
	ContentTypeStory    ContentType = "story"
	ContentTypeMedia    ContentType = "media"
	ContentTypeTest     ContentType = "test"
	ContentTypeActivity ContentType = "activity"
)

// Storage collection names. One JSON blob per (collection, owner) key.
const (
	CollectionStories       = "stories"
	CollectionMedia         = "media_assets"
	CollectionBrandTests    = "brand_tests"
	CollectionActivities    = "activities"
	CollectionMetrics       = "dashboard_metrics"
	CollectionSavedSearches = "saved_searches"
	CollectionSearchHistory = "search_history"
	CollectionRecentQueries = "recent_searches"
	CollectionBackupHistory = "backup_history"
	CollectionBackupPayload = "backup_payloads"
)

// ContentMetadata structured attributes attached to a content record
type ContentMetadata struct {
	Author     string    `json:"author,omitempty"`
	Date       time.Time `json:"date,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Location   string    `json:"location,omitempty"`
	BrandScore float64   `json:"brand_score,omitempty"`
	Status     string    `json:"status,omitempty"`
}

// ContentRecord is the unit the search engine scans: a story, media asset,
// brand test or activity flattened into a common shape. Score is computed
// at query time and never persisted with a meaningful value.
type ContentRecord struct {
	ID       string          `json:"id"`
	Type     ContentType     `json:"type"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Summary  string          `json:"summary,omitempty"`
	Metadata ContentMetadata `json:"metadata"`
	Score    float64         `json:"score,omitempty"`
}

package domain

import "time"

// Metric counter names accepted by the metrics aggregator
const (
	MetricStoriesAnalyzed  = "storiesAnalyzed"
	MetricBrandTestsActive = "brandTestsActive"
	MetricContentItems     = "contentItems"
	MetricBrandScore       = "brandScore"
)

// AnonymousOwner is the owner id used when no user is authenticated
const AnonymousOwner = "anonymous"

// DashboardMetrics is the single per-owner counters record.
// Counters are unclamped: repeated mismatched increments can drive a
// counter negative, which callers are expected to tolerate.
type DashboardMetrics struct {
	StoriesAnalyzed  int       `json:"stories_analyzed"`
	BrandTestsActive int       `json:"brand_tests_active"`
	ContentItems     int       `json:"content_items"`
	BrandScore       float64   `json:"brand_score"`
	LastUpdated      time.Time `json:"last_updated"`
}

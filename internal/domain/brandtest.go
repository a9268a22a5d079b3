package domain

import "time"

// VariantStatus follows a linear lifecycle: draft → active → completed.
// No reverse transitions are exposed.
type VariantStatus string

const (
	VariantDraft     VariantStatus = "draft"
	VariantActive    VariantStatus = "active"
	VariantCompleted VariantStatus = "completed"
)

// TestConfig tunes how a variant is evaluated
type TestConfig struct {
	PrimaryMetric string `json:"primary_metric,omitempty"`
	DurationDays  int    `json:"duration_days,omitempty"`
}

// TestVariant is one named brand-test candidate
type TestVariant struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Content     string        `json:"content"`
	Audiences   []string      `json:"audiences,omitempty"`
	Config      TestConfig    `json:"config"`
	Status      VariantStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Results     []TestResult  `json:"results,omitempty"`
}

// TestResult is one analysis snapshot. Analyze appends a new snapshot
// on every call rather than mutating earlier ones.
type TestResult struct {
	ID           string    `json:"id"`
	VariantID    string    `json:"variant_id"`
	PrimaryScore float64   `json:"primary_score"`
	Engagement   float64   `json:"engagement"`
	Reach        float64   `json:"reach"`
	Sentiment    float64   `json:"sentiment"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// ComparisonResult names the winner among a selected set of variants.
// Ties are broken by first-encountered order of the requested ids.
type ComparisonResult struct {
	WinnerID                string             `json:"winner_id"`
	Scores                  map[string]float64 `json:"scores"`
	StatisticalSignificance float64            `json:"statistical_significance"`
}

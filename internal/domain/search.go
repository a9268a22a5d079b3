package domain

import "time"

// Sort keys accepted by the search engine
const (
	SortByRelevance  = "relevance"
	SortByDate       = "date"
	SortByTitle      = "title"
	SortByBrandScore = "brandScore"
)

// History caps
const (
	SearchHistoryCap = 100
	RecentQueriesCap = 10
)

// SearchFilters are independent AND conditions applied after scoring
type SearchFilters struct {
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
	Authors       []string   `json:"authors,omitempty"`
	Statuses      []string   `json:"statuses,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	BrandScoreMin *float64   `json:"brand_score_min,omitempty"`
	BrandScoreMax *float64   `json:"brand_score_max,omitempty"`
}

// SearchRequest is a single search invocation
type SearchRequest struct {
	Query             string        `json:"query"`
	Types             []ContentType `json:"types,omitempty"`
	Filters           SearchFilters `json:"filters"`
	SortBy            string        `json:"sort_by"`
	SortOrder         string        `json:"sort_order"`
	Limit             int           `json:"limit"`
	Offset            int           `json:"offset"`
	IncludeHighlights bool          `json:"include_highlights"`
	IncludeFacets     bool          `json:"include_facets"`
	IncludeActivities bool          `json:"include_activities"`
}

// SearchFacets value→count histograms over the filtered result set
type SearchFacets struct {
	ContentTypes map[string]int `json:"content_types,omitempty"`
	Authors      map[string]int `json:"authors,omitempty"`
	Tags         map[string]int `json:"tags,omitempty"`
	Statuses     map[string]int `json:"statuses,omitempty"`
}

// SearchResponse is the combined, best-effort result of a search
type SearchResponse struct {
	Results      []ContentRecord `json:"results"`
	Total        int             `json:"total"`
	Facets       *SearchFacets   `json:"facets,omitempty"`
	Suggestions  []string        `json:"suggestions,omitempty"`
	SearchTimeMs int64           `json:"search_time_ms"`
}

// SavedSearch is a user-named, reusable query. Never auto-deleted.
type SavedSearch struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Query    string        `json:"query"`
	Filters  SearchFilters `json:"filters"`
	Owner    string        `json:"owner"`
	UseCount int           `json:"use_count"`
	LastUsed *time.Time    `json:"last_used,omitempty"`
	Created  time.Time     `json:"created"`
}

// SearchHistoryEntry is one executed query in the capped history
type SearchHistoryEntry struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	Timestamp   time.Time `json:"timestamp"`
}

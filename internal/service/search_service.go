package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkgcache "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/cache"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// DefaultSearchLimit caps a page when the caller does not set one
const DefaultSearchLimit = 50

// SearchService scans the content collections, scores records against
// the query, filters, sorts, paginates and highlights. Stateless per
// call except for the capped per-owner search history.
type SearchService struct {
	store   *storage.Adapter
	scorer  Scorer
	cache   pkgcache.Service
	indexer *ContentIndexer // may be nil
}

// NewSearchService creates a new SearchService
func NewSearchService(store *storage.Adapter, scorer Scorer, cache pkgcache.Service, indexer *ContentIndexer) *SearchService {
	if scorer == nil {
		scorer = NewDefaultScorer()
	}
	return &SearchService{store: store, scorer: scorer, cache: cache, indexer: indexer}
}

// Search runs one query. A failing collection contributes zero results
// and a warning; the call still returns the combined best-effort set.
func (s *SearchService) Search(ctx context.Context, owner string, req domain.SearchRequest) (*domain.SearchResponse, error) {
	start := time.Now()
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	req.Query = SanitizeQuery(req.Query)
	terms := tokenize(req.Query)

	fingerprint := pkgcache.Fingerprint(req)
	var cached domain.SearchResponse
	if s.cache.GetSearch(ctx, owner, fingerprint, &cached) {
		// a cached response is still an executed search
		if req.Query != "" {
			s.recordQuery(ctx, owner, req.Query, cached.Total)
		}
		return &cached, nil
	}

	var pool []domain.ContentRecord
	for _, typ := range s.targetTypes(req) {
		records, err := s.collect(ctx, owner, typ)
		if err != nil {
			pkglogger.GetLogger().Warn().
				Err(err).
				Str("owner", owner).
				Str("type", string(typ)).
				Msg("collection fetch failed, continuing with partial results")
			continue
		}
		pool = append(pool, records...)
	}

	// Admission: score > 0 with a query, score 1 for everything without one
	var admitted []domain.ContentRecord
	for _, rec := range pool {
		score := s.scorer.Score(rec, terms)
		if score <= 0 {
			continue
		}
		rec.Score = score
		admitted = append(admitted, rec)
	}

	filtered := applyFilters(admitted, req.Filters)

	var facets *domain.SearchFacets
	if req.IncludeFacets {
		facets = computeFacets(filtered)
	}

	sortRecords(filtered, req.SortBy, req.SortOrder)

	total := len(filtered)
	page := paginate(filtered, req.Offset, req.Limit)

	if req.IncludeHighlights {
		for i := range page {
			highlightRecord(&page[i], terms)
		}
	}

	resp := &domain.SearchResponse{
		Results:      page,
		Total:        total,
		Facets:       facets,
		SearchTimeMs: time.Since(start).Milliseconds(),
	}

	if req.Query != "" {
		resp.Suggestions = s.Suggestions(ctx, owner, req.Query)
		s.recordQuery(ctx, owner, req.Query, total)
	}

	s.cache.SetSearch(ctx, owner, fingerprint, resp)
	return resp, nil
}

// targetTypes resolves which collections a request scans. Activities
// are only scanned when explicitly asked for.
func (s *SearchService) targetTypes(req domain.SearchRequest) []domain.ContentType {
	if len(req.Types) > 0 {
		return req.Types
	}
	types := []domain.ContentType{domain.ContentTypeStory, domain.ContentTypeMedia, domain.ContentTypeTest}
	if req.IncludeActivities {
		types = append(types, domain.ContentTypeActivity)
	}
	return types
}

// collect loads one collection and flattens it to content records
func (s *SearchService) collect(ctx context.Context, owner string, typ domain.ContentType) ([]domain.ContentRecord, error) {
	switch typ {
	case domain.ContentTypeStory:
		return s.loadContent(ctx, domain.CollectionStories, owner, domain.ContentTypeStory)
	case domain.ContentTypeMedia:
		return s.loadContent(ctx, domain.CollectionMedia, owner, domain.ContentTypeMedia)
	case domain.ContentTypeTest:
		return s.loadBrandTests(ctx, owner)
	case domain.ContentTypeActivity:
		return s.loadActivities(ctx, owner)
	}
	return nil, nil
}

func (s *SearchService) loadContent(ctx context.Context, collection, owner string, typ domain.ContentType) ([]domain.ContentRecord, error) {
	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Type = typ
		records[i].Score = 0
	}
	return records, nil
}

func (s *SearchService) loadBrandTests(ctx context.Context, owner string) ([]domain.ContentRecord, error) {
	var variants []domain.TestVariant
	if _, err := s.store.GetJSON(ctx, domain.CollectionBrandTests, owner, &variants); err != nil {
		return nil, err
	}
	records := make([]domain.ContentRecord, 0, len(variants))
	for _, v := range variants {
		rec := domain.ContentRecord{
			ID:      v.ID,
			Type:    domain.ContentTypeTest,
			Title:   v.Name,
			Content: v.Content,
			Summary: v.Description,
			Metadata: domain.ContentMetadata{
				Date:   v.CreatedAt,
				Tags:   v.Audiences,
				Status: string(v.Status),
			},
		}
		if len(v.Results) > 0 {
			rec.Metadata.BrandScore = v.Results[len(v.Results)-1].PrimaryScore
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *SearchService) loadActivities(ctx context.Context, owner string) ([]domain.ContentRecord, error) {
	var items []domain.ActivityItem
	if _, err := s.store.GetJSON(ctx, domain.CollectionActivities, owner, &items); err != nil {
		return nil, err
	}
	records := make([]domain.ContentRecord, 0, len(items))
	for _, item := range items {
		records = append(records, domain.ContentRecord{
			ID:      item.ID,
			Type:    domain.ContentTypeActivity,
			Title:   item.Message,
			Content: item.Message,
			Metadata: domain.ContentMetadata{
				Author: item.UserID,
				Date:   item.Timestamp,
				Status: string(item.Type),
			},
		})
	}
	return records, nil
}

// applyFilters keeps records passing every set filter (AND semantics)
func applyFilters(records []domain.ContentRecord, f domain.SearchFilters) []domain.ContentRecord {
	out := records[:0:0]
	for _, rec := range records {
		if !passesFilters(rec, f) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func passesFilters(rec domain.ContentRecord, f domain.SearchFilters) bool {
	if f.DateFrom != nil && rec.Metadata.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && rec.Metadata.Date.After(*f.DateTo) {
		return false
	}
	if len(f.Authors) > 0 && !containsFold(f.Authors, rec.Metadata.Author) {
		return false
	}
	if len(f.Statuses) > 0 && !containsFold(f.Statuses, rec.Metadata.Status) {
		return false
	}
	if len(f.Tags) > 0 && !tagsOverlap(rec.Metadata.Tags, f.Tags) {
		return false
	}
	if f.BrandScoreMin != nil && rec.Metadata.BrandScore < *f.BrandScoreMin {
		return false
	}
	if f.BrandScoreMax != nil && rec.Metadata.BrandScore > *f.BrandScoreMax {
		return false
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// tagsOverlap admits a record sharing at least one tag with the filter
func tagsOverlap(recTags, filterTags []string) bool {
	for _, ft := range filterTags {
		if containsFold(recTags, ft) {
			return true
		}
	}
	return false
}

func sortRecords(records []domain.ContentRecord, sortBy, sortOrder string) {
	desc := sortOrder != "asc"
	less := func(a, b domain.ContentRecord) bool {
		switch sortBy {
		case domain.SortByDate:
			return a.Metadata.Date.Before(b.Metadata.Date)
		case domain.SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case domain.SortByBrandScore:
			return a.Metadata.BrandScore < b.Metadata.BrandScore
		default: // relevance
			return a.Score < b.Score
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

func paginate(records []domain.ContentRecord, offset, limit int) []domain.ContentRecord {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []domain.ContentRecord{}
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

func computeFacets(records []domain.ContentRecord) *domain.SearchFacets {
	facets := &domain.SearchFacets{
		ContentTypes: make(map[string]int),
		Authors:      make(map[string]int),
		Tags:         make(map[string]int),
		Statuses:     make(map[string]int),
	}
	for _, rec := range records {
		facets.ContentTypes[string(rec.Type)]++
		if rec.Metadata.Author != "" {
			facets.Authors[rec.Metadata.Author]++
		}
		for _, tag := range rec.Metadata.Tags {
			facets.Tags[tag]++
		}
		if rec.Metadata.Status != "" {
			facets.Statuses[rec.Metadata.Status]++
		}
	}
	return facets
}

// SanitizeQuery trims the query and strips script-like substrings
func SanitizeQuery(query string) string {
	query = strings.TrimSpace(query)
	lowered := strings.ToLower(query)
	for _, bad := range []string{"<script", "</script>", "javascript:", "onerror=", "onload="} {
		for {
			idx := strings.Index(lowered, bad)
			if idx < 0 {
				break
			}
			query = query[:idx] + query[idx+len(bad):]
			lowered = lowered[:idx] + lowered[idx+len(bad):]
		}
	}
	return strings.TrimSpace(query)
}

func tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Highlighting constants
const (
	highlightMinTermLen = 3
	excerptLength       = 150
	excerptLeadIn       = 60
)

// highlightRecord wraps matched terms in <mark> markers and truncates
// content to a window around the first match
func highlightRecord(rec *domain.ContentRecord, terms []string) {
	long := terms[:0:0]
	for _, term := range terms {
		if len(term) >= highlightMinTermLen {
			long = append(long, term)
		}
	}
	if len(long) == 0 {
		return
	}

	rec.Content = excerptAround(rec.Content, long)
	rec.Title = wrapTerms(rec.Title, long)
	rec.Content = wrapTerms(rec.Content, long)
}

// excerptAround truncates text to ~excerptLength chars around the
// first occurrence of any term
func excerptAround(text string, terms []string) string {
	if len(text) <= excerptLength {
		return text
	}

	lowered := strings.ToLower(text)
	first := -1
	for _, term := range terms {
		if idx := strings.Index(lowered, term); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	if first < 0 {
		cut := excerptLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		return text[:cut] + "..."
	}

	start := first - excerptLeadIn
	if start < 0 {
		start = 0
	}
	end := start + excerptLength
	if end > len(text) {
		end = len(text)
		start = end - excerptLength
		if start < 0 {
			start = 0
		}
	}
	// snap to rune boundaries so the window never splits a multi-byte rune
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}

	excerpt := text[start:end]
	if start > 0 {
		excerpt = "..." + excerpt
	}
	if end < len(text) {
		excerpt += "..."
	}
	return excerpt
}

// wrapTerms wraps every occurrence of the terms (case-insensitive) in
// <mark> tags. All terms are matched against the original text in one
// pass, so a term can never match inside a marker inserted for another
// term. Overlapping matches merge into a single marked span.
func wrapTerms(text string, terms []string) string {
	lowered := strings.ToLower(text)

	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		for from := 0; ; {
			idx := strings.Index(lowered[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start, start + len(term)})
			from = start + len(term)
		}
	}
	if len(spans) == 0 {
		return text
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}

	var b strings.Builder
	prev := 0
	for _, sp := range merged {
		b.WriteString(text[prev:sp.start])
		b.WriteString("<mark>")
		b.WriteString(text[sp.start:sp.end])
		b.WriteString("</mark>")
		prev = sp.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

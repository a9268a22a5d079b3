package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// recordQuery stores an executed query into the capped history and the
// capped recent-queries list. Both writes are best-effort.
func (s *SearchService) recordQuery(ctx context.Context, owner, query string, resultCount int) {
	var history []domain.SearchHistoryEntry
	if _, err := s.store.GetJSON(ctx, domain.CollectionSearchHistory, owner, &history); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("search history read failed")
		history = nil
	}
	history = append([]domain.SearchHistoryEntry{{
		Query:       query,
		ResultCount: resultCount,
		Timestamp:   time.Now(),
	}}, history...)
	if len(history) > domain.SearchHistoryCap {
		history = history[:domain.SearchHistoryCap]
	}
	if err := s.store.SaveJSON(ctx, domain.CollectionSearchHistory, owner, history); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("search history write failed")
	}

	var recent []string
	if _, err := s.store.GetJSON(ctx, domain.CollectionRecentQueries, owner, &recent); err != nil {
		recent = nil
	}
	deduped := make([]string, 0, len(recent)+1)
	deduped = append(deduped, query)
	for _, q := range recent {
		if !strings.EqualFold(q, query) {
			deduped = append(deduped, q)
		}
	}
	if len(deduped) > domain.RecentQueriesCap {
		deduped = deduped[:domain.RecentQueriesCap]
	}
	if err := s.store.SaveJSON(ctx, domain.CollectionRecentQueries, owner, deduped); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("recent queries write failed")
	}
}

// History returns the owner's capped search history, newest first
func (s *SearchService) History(ctx context.Context, owner string, limit int) ([]domain.SearchHistoryEntry, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	if limit <= 0 || limit > domain.SearchHistoryCap {
		limit = domain.SearchHistoryCap
	}
	var history []domain.SearchHistoryEntry
	if _, err := s.store.GetJSON(ctx, domain.CollectionSearchHistory, owner, &history); err != nil {
		return nil, err
	}
	if len(history) > limit {
		history = history[:limit]
	}
	if history == nil {
		history = []domain.SearchHistoryEntry{}
	}
	return history, nil
}

// RecentQueries returns the owner's recent searches, most recent first
func (s *SearchService) RecentQueries(ctx context.Context, owner string) ([]string, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var recent []string
	if _, err := s.store.GetJSON(ctx, domain.CollectionRecentQueries, owner, &recent); err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []string{}
	}
	return recent, nil
}

// Suggestions combines recent queries and, when the index mirror is
// available, title completions. Failures here never fail a search.
func (s *SearchService) Suggestions(ctx context.Context, owner, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{}

	recent, err := s.RecentQueries(ctx, owner)
	if err == nil {
		for _, q := range recent {
			lq := strings.ToLower(q)
			if lq != prefix && strings.HasPrefix(lq, prefix) && !seen[lq] {
				seen[lq] = true
				out = append(out, q)
			}
		}
	}

	if s.indexer != nil {
		titles, err := s.indexer.Suggest(ctx, prefix, 5)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("index suggest failed")
		}
		for _, t := range titles {
			lt := strings.ToLower(t)
			if !seen[lt] {
				seen[lt] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// SaveSearch stores a named, reusable query for the owner
func (s *SearchService) SaveSearch(ctx context.Context, owner, name, query string, filters domain.SearchFilters) (*domain.SavedSearch, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var verrs common.ValidationErrors
	if strings.TrimSpace(name) == "" {
		verrs = verrs.Add("name", "name is required")
	}
	query = SanitizeQuery(query)
	if query == "" {
		verrs = verrs.Add("query", "query is required")
	}
	if err := verrs.OrNil(); err != nil {
		return nil, err
	}

	saved := domain.SavedSearch{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(name),
		Query:   query,
		Filters: filters,
		Owner:   owner,
		Created: time.Now(),
	}

	var list []domain.SavedSearch
	if _, err := s.store.GetJSON(ctx, domain.CollectionSavedSearches, owner, &list); err != nil {
		return nil, err
	}
	list = append(list, saved)
	if err := s.store.SaveJSON(ctx, domain.CollectionSavedSearches, owner, list); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListSavedSearches returns the owner's saved searches
func (s *SearchService) ListSavedSearches(ctx context.Context, owner string) ([]domain.SavedSearch, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var list []domain.SavedSearch
	if _, err := s.store.GetJSON(ctx, domain.CollectionSavedSearches, owner, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.SavedSearch{}
	}
	return list, nil
}

// DeleteSavedSearch removes one saved search by id
func (s *SearchService) DeleteSavedSearch(ctx context.Context, owner, id string) error {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var list []domain.SavedSearch
	if _, err := s.store.GetJSON(ctx, domain.CollectionSavedSearches, owner, &list); err != nil {
		return err
	}
	for i, saved := range list {
		if saved.ID == id {
			list = append(list[:i], list[i+1:]...)
			return s.store.SaveJSON(ctx, domain.CollectionSavedSearches, owner, list)
		}
	}
	return common.ErrSavedSearchNotFound
}

// ExecuteSavedSearch bumps the usage counters of a saved search and runs it
func (s *SearchService) ExecuteSavedSearch(ctx context.Context, owner, id string) (*domain.SearchResponse, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var list []domain.SavedSearch
	if _, err := s.store.GetJSON(ctx, domain.CollectionSavedSearches, owner, &list); err != nil {
		return nil, err
	}

	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, common.ErrSavedSearchNotFound
	}

	now := time.Now()
	list[idx].UseCount++
	list[idx].LastUsed = &now
	if err := s.store.SaveJSON(ctx, domain.CollectionSavedSearches, owner, list); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("saved search usage update failed")
	}

	return s.Search(ctx, owner, domain.SearchRequest{
		Query:   list[idx].Query,
		Filters: list[idx].Filters,
	})
}

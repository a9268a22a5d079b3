package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkgcache "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/cache"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// ContentService manages the story and media collections backing the
// marketing site. Creates bump the contentItems counter (which in turn
// writes one activity entry) and mirror into the search index when one
// is configured.
type ContentService struct {
	store   *storage.Adapter
	metrics *MetricsService
	cache   pkgcache.Service
	indexer *ContentIndexer // may be nil
}

// NewContentService creates a new ContentService
func NewContentService(store *storage.Adapter, metrics *MetricsService, cache pkgcache.Service, indexer *ContentIndexer) *ContentService {
	return &ContentService{store: store, metrics: metrics, cache: cache, indexer: indexer}
}

func collectionFor(typ domain.ContentType) (string, error) {
	switch typ {
	case domain.ContentTypeStory:
		return domain.CollectionStories, nil
	case domain.ContentTypeMedia:
		return domain.CollectionMedia, nil
	}
	return "", common.ErrInvalidInput
}

// Create validates and stores a new story or media record
func (s *ContentService) Create(ctx context.Context, owner string, typ domain.ContentType, rec domain.ContentRecord) (*domain.ContentRecord, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	collection, err := collectionFor(typ)
	if err != nil {
		return nil, err
	}

	var verrs common.ValidationErrors
	if strings.TrimSpace(rec.Title) == "" {
		verrs = verrs.Add("title", "title is required")
	}
	if err := verrs.OrNil(); err != nil {
		return nil, err
	}

	rec.ID = uuid.NewString()
	rec.Type = typ
	rec.Score = 0
	if rec.Metadata.Date.IsZero() {
		rec.Metadata.Date = time.Now()
	}
	if rec.Metadata.Status == "" {
		rec.Metadata.Status = "draft"
	}

	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return nil, err
	}
	records = append(records, rec)
	if err := s.store.SaveJSON(ctx, collection, owner, records); err != nil {
		return nil, err
	}

	if _, err := s.metrics.Increment(ctx, owner, domain.MetricContentItems); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("content counter update failed")
	}
	s.dropSearchCaches(ctx, owner)
	s.mirror(ctx, rec)
	return &rec, nil
}

// Get returns one record by id
func (s *ContentService) Get(ctx context.Context, owner string, typ domain.ContentType, id string) (*domain.ContentRecord, error) {
	records, err := s.List(ctx, owner, typ)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, common.ErrNotFound
}

// List returns the full collection for an owner
func (s *ContentService) List(ctx context.Context, owner string, typ domain.ContentType) ([]domain.ContentRecord, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	collection, err := collectionFor(typ)
	if err != nil {
		return nil, err
	}
	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.ContentRecord{}
	}
	for i := range records {
		records[i].Type = typ
	}
	return records, nil
}

// Update overwrites the mutable fields of an existing record
func (s *ContentService) Update(ctx context.Context, owner string, typ domain.ContentType, id string, update domain.ContentRecord) (*domain.ContentRecord, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	collection, err := collectionFor(typ)
	if err != nil {
		return nil, err
	}

	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		if strings.TrimSpace(update.Title) != "" {
			records[i].Title = update.Title
		}
		if update.Content != "" {
			records[i].Content = update.Content
		}
		if update.Summary != "" {
			records[i].Summary = update.Summary
		}
		if update.Metadata.Author != "" {
			records[i].Metadata.Author = update.Metadata.Author
		}
		if update.Metadata.Tags != nil {
			records[i].Metadata.Tags = update.Metadata.Tags
		}
		if update.Metadata.Status != "" {
			records[i].Metadata.Status = update.Metadata.Status
		}
		if update.Metadata.Location != "" {
			records[i].Metadata.Location = update.Metadata.Location
		}
		if update.Metadata.BrandScore != 0 {
			records[i].Metadata.BrandScore = update.Metadata.BrandScore
		}
		if err := s.store.SaveJSON(ctx, collection, owner, records); err != nil {
			return nil, err
		}
		s.mirror(ctx, records[i])
		s.dropSearchCaches(ctx, owner)
		return &records[i], nil
	}
	return nil, common.ErrNotFound
}

// Delete removes one record by id
func (s *ContentService) Delete(ctx context.Context, owner string, typ domain.ContentType, id string) error {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	collection, err := collectionFor(typ)
	if err != nil {
		return err
	}

	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return err
	}
	for i := range records {
		if records[i].ID != id {
			continue
		}
		records = append(records[:i], records[i+1:]...)
		if err := s.store.SaveJSON(ctx, collection, owner, records); err != nil {
			return err
		}
		if _, err := s.metrics.Decrement(ctx, owner, domain.MetricContentItems); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("content counter update failed")
		}
		if s.indexer != nil {
			if err := s.indexer.DeleteRecord(ctx, id); err != nil {
				pkglogger.GetLogger().Warn().Err(err).Str("id", id).Msg("index delete failed")
			}
		}
		s.dropSearchCaches(ctx, owner)
		return nil
	}
	return common.ErrNotFound
}

// dropSearchCaches evicts the owner's cached search responses after a
// write so the next query re-scans the collections instead of waiting
// out the TTL
func (s *ContentService) dropSearchCaches(ctx context.Context, owner string) {
	if err := s.cache.InvalidateSearches(ctx, owner); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("owner", owner).Msg("search cache invalidation failed")
	}
}

func (s *ContentService) mirror(ctx context.Context, rec domain.ContentRecord) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexRecord(ctx, rec); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("id", rec.ID).Msg("index mirror failed")
	}
}

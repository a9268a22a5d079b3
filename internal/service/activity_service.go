package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// ActivityService maintains the per-owner activity log: newest-first,
// truncated to domain.ActivityRetention entries on every write.
type ActivityService struct {
	store *storage.Adapter
}

// NewActivityService creates a new ActivityService
func NewActivityService(store *storage.Adapter) *ActivityService {
	return &ActivityService{store: store}
}

// Record prepends a new activity entry and truncates the log.
// Entries beyond the retention count are dropped, not archived.
func (s *ActivityService) Record(ctx context.Context, owner string, typ domain.ActivityType, message, userID string) (*domain.ActivityItem, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	item := domain.ActivityItem{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   message,
		Timestamp: time.Now(),
		UserID:    userID,
	}

	var items []domain.ActivityItem
	if _, err := s.store.GetJSON(ctx, domain.CollectionActivities, owner, &items); err != nil {
		// A corrupt or unreadable log is replaced rather than blocking writes
		pkglogger.GetLogger().Warn().Err(err).Str("owner", owner).Msg("activity log unreadable, starting fresh")
		items = nil
	}

	items = append([]domain.ActivityItem{item}, items...)
	if len(items) > domain.ActivityRetention {
		items = items[:domain.ActivityRetention]
	}

	if err := s.store.SaveJSON(ctx, domain.CollectionActivities, owner, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns up to limit entries, newest first. Missing data yields
// an empty slice, never an error.
func (s *ActivityService) List(ctx context.Context, owner string, limit int) ([]domain.ActivityItem, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	if limit <= 0 || limit > domain.ActivityRetention {
		limit = domain.ActivityRetention
	}

	var items []domain.ActivityItem
	if _, err := s.store.GetJSON(ctx, domain.CollectionActivities, owner, &items); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("owner", owner).Msg("activity log read failed")
		return []domain.ActivityItem{}, nil
	}
	if items == nil {
		return []domain.ActivityItem{}, nil
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

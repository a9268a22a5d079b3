package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkgcache "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/cache"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// MetricsService maintains the per-owner dashboard counters. Every
// mutation produces exactly one activity log entry describing the new
// value; metrics persistence and activity logging are independent
// best-effort writes, not a transaction.
type MetricsService struct {
	store      *storage.Adapter
	activities *ActivityService
	cache      pkgcache.Service
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(store *storage.Adapter, activities *ActivityService, cache pkgcache.Service) *MetricsService {
	return &MetricsService{store: store, activities: activities, cache: cache}
}

// Get returns the owner's dashboard metrics, all counters defaulting to zero
func (s *MetricsService) Get(ctx context.Context, owner string) (*domain.DashboardMetrics, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	var cached domain.DashboardMetrics
	if s.cache.GetDashboard(ctx, owner, &cached) {
		return &cached, nil
	}

	metrics, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.cache.SetDashboard(ctx, owner, metrics)
	return metrics, nil
}

// Increment bumps a counter by one
func (s *MetricsService) Increment(ctx context.Context, owner, counter string) (*domain.DashboardMetrics, error) {
	return s.apply(ctx, owner, counter, func(m *domain.DashboardMetrics) {
		addCounter(m, counter, 1)
	})
}

// Decrement lowers a counter by one. Counters are not clamped at zero;
// mismatched increment/decrement sequences can go negative.
func (s *MetricsService) Decrement(ctx context.Context, owner, counter string) (*domain.DashboardMetrics, error) {
	return s.apply(ctx, owner, counter, func(m *domain.DashboardMetrics) {
		addCounter(m, counter, -1)
	})
}

// SetValue overwrites a counter
func (s *MetricsService) SetValue(ctx context.Context, owner, counter string, value float64) (*domain.DashboardMetrics, error) {
	return s.apply(ctx, owner, counter, func(m *domain.DashboardMetrics) {
		setCounter(m, counter, value)
	})
}

func (s *MetricsService) apply(ctx context.Context, owner, counter string, mutate func(*domain.DashboardMetrics)) (*domain.DashboardMetrics, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	if !validCounter(counter) {
		return nil, common.ValidationErrors{}.Add("counter", "unknown counter name: "+counter).OrNil()
	}
	return s.recordMetricChange(ctx, owner, mutate, func(m domain.DashboardMetrics) (domain.ActivityType, string) {
		return describeCounter(counter, m)
	})
}

// recordMetricChange performs the metrics update and the activity
// append back to back, with no suspension point between them. The
// activity append runs even when the metrics save fails: both writes
// are best-effort and the one-activity-per-mutation coupling holds
// regardless.
func (s *MetricsService) recordMetricChange(
	ctx context.Context,
	owner string,
	mutate func(*domain.DashboardMetrics),
	describe func(domain.DashboardMetrics) (domain.ActivityType, string),
) (*domain.DashboardMetrics, error) {
	metrics, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}

	mutate(metrics)
	metrics.LastUpdated = time.Now()

	saveErr := s.store.SaveJSON(ctx, domain.CollectionMetrics, owner, metrics)
	if saveErr != nil {
		pkglogger.GetLogger().Warn().Err(saveErr).Str("owner", owner).Msg("metrics save failed")
	}

	typ, message := describe(*metrics)
	if _, actErr := s.activities.Record(ctx, owner, typ, message, ""); actErr != nil {
		pkglogger.GetLogger().Warn().Err(actErr).Str("owner", owner).Msg("metrics activity record failed")
	}

	_ = s.cache.InvalidateDashboard(ctx, owner)

	if saveErr != nil {
		return metrics, saveErr
	}
	return metrics, nil
}

func (s *MetricsService) load(ctx context.Context, owner string) (*domain.DashboardMetrics, error) {
	metrics := &domain.DashboardMetrics{}
	if _, err := s.store.GetJSON(ctx, domain.CollectionMetrics, owner, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func validCounter(counter string) bool {
	switch counter {
	case domain.MetricStoriesAnalyzed, domain.MetricBrandTestsActive,
		domain.MetricContentItems, domain.MetricBrandScore:
		return true
	}
	return false
}

func addCounter(m *domain.DashboardMetrics, counter string, delta int) {
	switch counter {
	case domain.MetricStoriesAnalyzed:
		m.StoriesAnalyzed += delta
	case domain.MetricBrandTestsActive:
		m.BrandTestsActive += delta
	case domain.MetricContentItems:
		m.ContentItems += delta
	case domain.MetricBrandScore:
		m.BrandScore += float64(delta)
	}
}

func setCounter(m *domain.DashboardMetrics, counter string, value float64) {
	switch counter {
	case domain.MetricStoriesAnalyzed:
		m.StoriesAnalyzed = int(value)
	case domain.MetricBrandTestsActive:
		m.BrandTestsActive = int(value)
	case domain.MetricContentItems:
		m.ContentItems = int(value)
	case domain.MetricBrandScore:
		m.BrandScore = value
	}
}

func describeCounter(counter string, m domain.DashboardMetrics) (domain.ActivityType, string) {
	switch counter {
	case domain.MetricStoriesAnalyzed:
		return domain.ActivityAnalytics, fmt.Sprintf("Stories analyzed count is now %d", m.StoriesAnalyzed)
	case domain.MetricBrandTestsActive:
		return domain.ActivityBrand, fmt.Sprintf("Active brand tests count is now %d", m.BrandTestsActive)
	case domain.MetricContentItems:
		return domain.ActivityContent, fmt.Sprintf("Content item count is now %d", m.ContentItems)
	case domain.MetricBrandScore:
		return domain.ActivityBrand, fmt.Sprintf("Brand score is now %.0f%%", m.BrandScore)
	}
	return domain.ActivitySystem, "Dashboard metrics updated"
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
)

func newMetricsFixture() (*MetricsService, *ActivityService) {
	store := newTestAdapter()
	activities := NewActivityService(store)
	return NewMetricsService(store, activities, noCache()), activities
}

func TestMetricsGetDefaultsToZero(t *testing.T) {
	svc, _ := newMetricsFixture()

	m, err := svc.Get(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Equal(t, 0, m.StoriesAnalyzed)
	assert.Equal(t, 0, m.BrandTestsActive)
	assert.Equal(t, 0, m.ContentItems)
	assert.Equal(t, 0.0, m.BrandScore)
}

func TestMetricsIncrementDecrement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMetricsFixture()

	m, err := svc.Increment(ctx, "alice", domain.MetricStoriesAnalyzed)
	assert.NoError(t, err)
	assert.Equal(t, 1, m.StoriesAnalyzed)
	assert.False(t, m.LastUpdated.IsZero())

	m, err = svc.Increment(ctx, "alice", domain.MetricStoriesAnalyzed)
	assert.NoError(t, err)
	assert.Equal(t, 2, m.StoriesAnalyzed)

	m, err = svc.Decrement(ctx, "alice", domain.MetricStoriesAnalyzed)
	assert.NoError(t, err)
	assert.Equal(t, 1, m.StoriesAnalyzed)
}

func TestMetricsCountersAreNotClamped(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMetricsFixture()

	m, err := svc.Decrement(ctx, "alice", domain.MetricContentItems)
	assert.NoError(t, err)
	assert.Equal(t, -1, m.ContentItems)
}

func TestMetricsSetValue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newMetricsFixture()

	m, err := svc.SetValue(ctx, "alice", domain.MetricBrandScore, 72.5)
	assert.NoError(t, err)
	assert.Equal(t, 72.5, m.BrandScore)
}

func TestMetricsRejectsUnknownCounter(t *testing.T) {
	svc, _ := newMetricsFixture()

	_, err := svc.Increment(context.Background(), "alice", "bogus")
	assert.Error(t, err)
	var verrs common.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestMetricsMutationProducesOneActivity(t *testing.T) {
	ctx := context.Background()
	svc, activities := newMetricsFixture()

	_, err := svc.Increment(ctx, "alice", domain.MetricContentItems)
	assert.NoError(t, err)
	_, err = svc.SetValue(ctx, "alice", domain.MetricBrandScore, 80)
	assert.NoError(t, err)

	items, err := activities.List(ctx, "alice", 10)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, domain.ActivityBrand, items[0].Type)
	assert.Equal(t, "Brand score is now 80%", items[0].Message)
	assert.Equal(t, domain.ActivityContent, items[1].Type)
	assert.Equal(t, "Content item count is now 1", items[1].Message)
}

func TestMetricsSaveFailureStillRecordsActivity(t *testing.T) {
	ctx := context.Background()
	fault := newFaultBackend(storage.NewMemoryBackend())
	fault.failSaves[domain.CollectionMetrics] = true
	store := storage.NewAdapter(nil, fault)
	activities := NewActivityService(store)
	svc := NewMetricsService(store, activities, noCache())

	m, err := svc.Increment(ctx, "alice", domain.MetricContentItems)
	assert.Error(t, err)
	assert.Equal(t, 1, m.ContentItems)

	items, listErr := activities.List(ctx, "alice", 10)
	assert.NoError(t, listErr)
	assert.Len(t, items, 1)
	assert.Equal(t, "Content item count is now 1", items[0].Message)
}

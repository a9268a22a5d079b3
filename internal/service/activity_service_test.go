package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
)

func TestActivityRecordAndList(t *testing.T) {
	ctx := context.Background()
	svc := NewActivityService(newTestAdapter())

	item, err := svc.Record(ctx, "alice", domain.ActivityContent, "Story created", "u1")
	assert.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.Timestamp.IsZero())

	items, err := svc.List(ctx, "alice", 10)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "Story created", items[0].Message)
}

func TestActivityRetentionCap(t *testing.T) {
	ctx := context.Background()
	svc := NewActivityService(newTestAdapter())

	for i := 0; i < 60; i++ {
		_, err := svc.Record(ctx, "alice", domain.ActivitySystem, fmt.Sprintf("event %d", i), "")
		assert.NoError(t, err)
	}

	items, err := svc.List(ctx, "alice", domain.ActivityRetention)
	assert.NoError(t, err)
	assert.Len(t, items, domain.ActivityRetention)

	// newest first; the oldest ten entries were dropped
	assert.Equal(t, "event 59", items[0].Message)
	assert.Equal(t, "event 10", items[len(items)-1].Message)
}

func TestActivityListMissingLogIsEmpty(t *testing.T) {
	svc := NewActivityService(newTestAdapter())

	items, err := svc.List(context.Background(), "nobody", 10)
	assert.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestActivityListLimitClamp(t *testing.T) {
	ctx := context.Background()
	svc := NewActivityService(newTestAdapter())

	for i := 0; i < 5; i++ {
		_, err := svc.Record(ctx, "alice", domain.ActivitySystem, fmt.Sprintf("event %d", i), "")
		assert.NoError(t, err)
	}

	items, err := svc.List(ctx, "alice", 2)
	assert.NoError(t, err)
	assert.Len(t, items, 2)

	// zero and oversized limits fall back to the retention cap
	items, err = svc.List(ctx, "alice", 0)
	assert.NoError(t, err)
	assert.Len(t, items, 5)

	items, err = svc.List(ctx, "alice", 500)
	assert.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestActivityDefaultsToAnonymousOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewActivityService(newTestAdapter())

	_, err := svc.Record(ctx, "", domain.ActivitySystem, "anonymous event", "")
	assert.NoError(t, err)

	items, err := svc.List(ctx, domain.AnonymousOwner, 10)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
}

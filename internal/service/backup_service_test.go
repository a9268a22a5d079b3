package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/config"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
)

func newBackupFixture(cfg config.BackupConfig) (*BackupService, *storage.Adapter, *stubNotifier) {
	store := newTestAdapter()
	notifier := &stubNotifier{}
	svc := NewBackupService(store, NewActivityService(store), notifier, nil, cfg)
	return svc, store, notifier
}

func seedBackupContent(t *testing.T, store *storage.Adapter, owner string) []domain.ContentRecord {
	t.Helper()
	stories := []domain.ContentRecord{
		{ID: "s1", Type: domain.ContentTypeStory, Title: "Original story"},
		{ID: "s2", Type: domain.ContentTypeStory, Title: "Second story"},
	}
	assert.NoError(t, store.SaveJSON(context.Background(), domain.CollectionStories, owner, stories))
	return stories
}

func TestCreateBackupCompletes(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "nightly")
	assert.NoError(t, err)
	assert.Equal(t, domain.BackupCompleted, meta.Status)
	assert.Equal(t, []string{domain.CollectionStories}, meta.DataTypes)
	assert.NotEmpty(t, meta.Checksum)
	assert.Greater(t, meta.Size, int64(0))
	assert.False(t, meta.Obfuscated)

	valid, problems, err := svc.Verify(ctx, "alice", meta.ID)
	assert.NoError(t, err)
	assert.True(t, valid)
	assert.Empty(t, problems)

	history, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	original := seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	// overwrite the live collection, then restore
	assert.NoError(t, store.SaveJSON(ctx, domain.CollectionStories, "alice", []domain.ContentRecord{{ID: "x", Title: "clobbered"}}))

	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: meta.ID})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoverySuccess, report.Status)
	assert.Equal(t, []string{domain.CollectionStories}, report.RestoredTypes)
	assert.Equal(t, len(original), report.SuccessfulItems)

	var restored []domain.ContentRecord
	_, err = store.GetJSON(ctx, domain.CollectionStories, "alice", &restored)
	assert.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestObfuscatedBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{Obfuscate: true})
	original := seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)
	assert.True(t, meta.Obfuscated)

	// the stored payload is encoded, not the raw bundle
	payload, err := store.GetRaw(ctx, domain.CollectionBackupPayload, meta.ID)
	assert.NoError(t, err)
	assert.NotContains(t, string(payload), "Original story")

	assert.NoError(t, store.Delete(ctx, domain.CollectionStories, "alice"))
	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: meta.ID})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoverySuccess, report.Status)

	var restored []domain.ContentRecord
	_, err = store.GetJSON(ctx, domain.CollectionStories, "alice", &restored)
	assert.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestTamperedBackupFailsRestoreWithoutTouchingData(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newBackupFixture(config.BackupConfig{})
	live := seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	assert.NoError(t, store.SaveRaw(ctx, domain.CollectionBackupPayload, meta.ID, []byte(`{"tampered":true}`)))

	valid, problems, err := svc.Verify(ctx, "alice", meta.ID)
	assert.NoError(t, err)
	assert.False(t, valid)
	assert.NotEmpty(t, problems)

	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: meta.ID})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoveryFailed, report.Status)
	assert.Empty(t, report.RestoredTypes)

	// live data is untouched and the backup is flagged corrupted
	var current []domain.ContentRecord
	_, err = store.GetJSON(ctx, domain.CollectionStories, "alice", &current)
	assert.NoError(t, err)
	assert.Equal(t, live, current)

	refetched, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, domain.BackupCorrupted, refetched[0].Status)

	assert.Contains(t, notifier.titles, "Backup corrupted")
	assert.Contains(t, notifier.levels, NotifyCritical)
}

func TestRestoreDryRunLeavesDataAlone(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	clobbered := []domain.ContentRecord{{ID: "x", Title: "clobbered"}}
	assert.NoError(t, store.SaveJSON(ctx, domain.CollectionStories, "alice", clobbered))

	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: meta.ID, DryRun: true})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoverySuccess, report.Status)
	assert.True(t, report.DryRun)

	var current []domain.ContentRecord
	_, err = store.GetJSON(ctx, domain.CollectionStories, "alice", &current)
	assert.NoError(t, err)
	assert.Equal(t, clobbered, current)
}

func TestRestoreSelectiveAndUndeclaredTypes(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{
		BackupID:  meta.ID,
		DataTypes: []string{domain.CollectionStories, domain.CollectionMedia},
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoveryPartial, report.Status)
	assert.Equal(t, []string{domain.CollectionStories}, report.RestoredTypes)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, domain.CollectionMedia, report.Errors[0].DataType)
}

func TestRestorePartialOnPerTypeFailure(t *testing.T) {
	ctx := context.Background()
	fault := newFaultBackend(storage.NewMemoryBackend())
	store := storage.NewAdapter(nil, fault)
	notifier := &stubNotifier{}
	svc := NewBackupService(store, NewActivityService(store), notifier, nil, config.BackupConfig{})

	seedBackupContent(t, store, "alice")
	assert.NoError(t, store.SaveJSON(ctx, domain.CollectionSavedSearches, "alice", []domain.SavedSearch{{ID: "q1", Name: "n", Query: "q"}}))

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	fault.failSaves[domain.CollectionStories] = true
	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: meta.ID})
	assert.NoError(t, err)
	assert.Equal(t, domain.RecoveryPartial, report.Status)
	assert.Contains(t, report.RestoredTypes, domain.CollectionSavedSearches)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, domain.CollectionStories, report.Errors[0].DataType)
}

func TestRestoreRequiresCompletedBackup(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBackupFixture(config.BackupConfig{})

	_, err := svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: "missing"})
	assert.ErrorIs(t, err, common.ErrBackupNotFound)

	assert.NoError(t, svc.upsertMeta(ctx, "alice", domain.BackupMetadata{ID: "b1", Status: domain.BackupCreating}))
	_, err = svc.Restore(ctx, "alice", domain.RestoreOptions{BackupID: "b1"})
	assert.ErrorIs(t, err, common.ErrBackupIncomplete)
}

func TestRestoreWithSafetyBackup(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	report, err := svc.Restore(ctx, "alice", domain.RestoreOptions{
		BackupID:           meta.ID,
		CreateSafetyBackup: true,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, report.SafetyBackupID)
	assert.NotEqual(t, meta.ID, report.SafetyBackupID)

	history, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestDeleteBackup(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{})
	seedBackupContent(t, store, "alice")

	meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	assert.NoError(t, svc.DeleteBackup(ctx, "alice", meta.ID))

	history, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Empty(t, history)

	_, err = store.GetRaw(ctx, domain.CollectionBackupPayload, meta.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteBackup(ctx, "alice", meta.ID), common.ErrBackupNotFound)
}

func TestCleanupExpiredBackups(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{RetentionDays: 7})
	seedBackupContent(t, store, "alice")

	fresh, err := svc.CreateBackup(ctx, "alice", "admin", "")
	assert.NoError(t, err)

	stale := domain.BackupMetadata{
		ID:        "old-backup",
		Timestamp: time.Now().Add(-10 * 24 * time.Hour),
		Status:    domain.BackupCompleted,
	}
	assert.NoError(t, svc.upsertMeta(ctx, "alice", stale))

	removed, err := svc.CleanupExpired(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	history, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, fresh.ID, history[0].ID)
}

func TestCleanupTrimsToMaxBackups(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newBackupFixture(config.BackupConfig{RetentionDays: 365, MaxBackups: 2})
	seedBackupContent(t, store, "alice")

	var ids []string
	for i := 0; i < 4; i++ {
		meta, err := svc.CreateBackup(ctx, "alice", "admin", "")
		assert.NoError(t, err)
		ids = append(ids, meta.ID)
	}

	removed, err := svc.CleanupExpired(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	history, err := svc.ListHistory(ctx, "alice")
	assert.NoError(t, err)
	assert.Len(t, history, 2)

	// the two newest survive
	assert.Equal(t, ids[3], history[0].ID)
	assert.Equal(t, ids[2], history[1].ID)
}

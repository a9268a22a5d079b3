package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/config"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
	pkgstorage "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/storage"
)

// backupBundle is the serialized form of one backup payload
type backupBundle struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"created_at"`
	Owner     string                     `json:"owner"`
	Data      map[string]json.RawMessage `json:"data"`
}

// BackupService snapshots the content collections into checksummed
// bundles and restores them. Obfuscation is reversible base64
// encoding, labeled as such: it is not confidentiality.
type BackupService struct {
	store      *storage.Adapter
	activities *ActivityService
	notifier   Notifier
	s3         *pkgstorage.S3Client // may be nil
	cfg        config.BackupConfig
}

// NewBackupService creates a new BackupService
func NewBackupService(store *storage.Adapter, activities *ActivityService, notifier Notifier, s3 *pkgstorage.S3Client, cfg config.BackupConfig) *BackupService {
	return &BackupService{store: store, activities: activities, notifier: notifier, s3: s3, cfg: cfg}
}

// CreateBackup snapshots the owner's collections. The metadata record
// is persisted in state creating before any collection is read, so a
// crash mid-backup leaves a visible failed entry rather than silence.
func (s *BackupService) CreateBackup(ctx context.Context, owner, createdBy, description string) (*domain.BackupMetadata, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	meta := domain.BackupMetadata{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		Status:      domain.BackupCreating,
		CreatedBy:   createdBy,
		Description: description,
		Obfuscated:  s.cfg.Obfuscate,
	}
	if err := s.upsertMeta(ctx, owner, meta); err != nil {
		return nil, err
	}

	bundle := backupBundle{
		Version:   1,
		CreatedAt: meta.Timestamp,
		Owner:     owner,
		Data:      make(map[string]json.RawMessage),
	}
	for _, dataType := range domain.BackupDataTypes {
		raw, err := s.store.GetRaw(ctx, dataType, owner)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, s.fail(ctx, owner, meta, fmt.Errorf("collect %s: %w", dataType, err))
		}
		bundle.Data[dataType] = raw
		meta.DataTypes = append(meta.DataTypes, dataType)
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, s.fail(ctx, owner, meta, fmt.Errorf("serialize backup: %w", err))
	}
	if s.cfg.Obfuscate {
		payload = []byte(base64.StdEncoding.EncodeToString(payload))
	}

	meta.Size = int64(len(payload))
	meta.Checksum = checksum(payload)

	if err := s.store.SaveRaw(ctx, domain.CollectionBackupPayload, meta.ID, payload); err != nil {
		return nil, s.fail(ctx, owner, meta, fmt.Errorf("store backup payload: %w", err))
	}

	if s.s3 != nil {
		if _, err := s.s3.Put(ctx, "backups/"+meta.ID+".json", payload, "application/json"); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("backup_id", meta.ID).Msg("backup mirror upload failed")
		}
	}

	meta.Status = domain.BackupCompleted
	if err := s.upsertMeta(ctx, owner, meta); err != nil {
		return nil, err
	}

	if _, err := s.activities.Record(ctx, owner, domain.ActivitySystem,
		fmt.Sprintf("Backup created (%d data types, %d bytes)", len(meta.DataTypes), meta.Size), createdBy); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("backup activity record failed")
	}
	return &meta, nil
}

// fail marks the metadata failed, notifies, and returns the cause
func (s *BackupService) fail(ctx context.Context, owner string, meta domain.BackupMetadata, cause error) error {
	meta.Status = domain.BackupFailed
	meta.Error = cause.Error()
	if err := s.upsertMeta(ctx, owner, meta); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("failed to persist failed backup metadata")
	}
	s.notifier.Notify(ctx, NotifyCritical, "Backup failed", "backup",
		cause.Error(), true, "Check storage backends and retry the backup")
	return cause
}

// Verify recomputes the payload digest and compares it to the metadata
func (s *BackupService) Verify(ctx context.Context, owner, backupID string) (bool, []string, error) {
	meta, err := s.findMeta(ctx, owner, backupID)
	if err != nil {
		return false, nil, err
	}

	var problems []string
	if meta.Status != domain.BackupCompleted {
		problems = append(problems, fmt.Sprintf("backup status is %s, expected completed", meta.Status))
	}

	payload, err := s.store.GetRaw(ctx, domain.CollectionBackupPayload, backupID)
	if err != nil {
		problems = append(problems, "backup payload missing: "+err.Error())
		return false, problems, nil
	}
	if digest := checksum(payload); digest != meta.Checksum {
		problems = append(problems, "checksum mismatch: stored payload does not match metadata")
	}
	return len(problems) == 0, problems, nil
}

// Restore repopulates collections from a backup. A checksum mismatch
// is fatal before any live collection is touched; per-type failures
// after that are recorded and skipped (continue-on-error).
func (s *BackupService) Restore(ctx context.Context, owner string, opts domain.RestoreOptions) (*domain.RecoveryReport, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	report := &domain.RecoveryReport{
		BackupID:  opts.BackupID,
		DryRun:    opts.DryRun,
		StartedAt: time.Now(),
	}

	meta, err := s.findMeta(ctx, owner, opts.BackupID)
	if err != nil {
		return nil, err
	}
	if meta.Status != domain.BackupCompleted {
		return nil, common.ErrBackupIncomplete
	}

	if opts.CreateSafetyBackup && !opts.DryRun {
		safety, err := s.CreateBackup(ctx, owner, meta.CreatedBy, "safety backup before restore of "+opts.BackupID)
		if err != nil {
			report.Warnings = append(report.Warnings, "safety backup failed: "+err.Error())
		} else {
			report.SafetyBackupID = safety.ID
		}
	}

	payload, err := s.store.GetRaw(ctx, domain.CollectionBackupPayload, opts.BackupID)
	if err != nil {
		return nil, fmt.Errorf("load backup payload: %w", err)
	}

	if digest := checksum(payload); digest != meta.Checksum {
		return s.abortCorrupted(ctx, owner, *meta, report, "checksum mismatch: stored payload was modified after backup creation")
	}

	decoded := payload
	if meta.Obfuscated {
		decoded, err = base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			return s.abortCorrupted(ctx, owner, *meta, report, "payload decode failed: "+err.Error())
		}
	}

	var bundle backupBundle
	if err := json.Unmarshal(decoded, &bundle); err != nil {
		return s.abortCorrupted(ctx, owner, *meta, report, "payload deserialize failed: "+err.Error())
	}

	targets := meta.DataTypes
	if len(opts.DataTypes) > 0 {
		targets = nil
		declared := make(map[string]bool, len(meta.DataTypes))
		for _, t := range meta.DataTypes {
			declared[t] = true
		}
		for _, t := range opts.DataTypes {
			if declared[t] {
				targets = append(targets, t)
			} else {
				report.Errors = append(report.Errors, domain.RestoreError{
					DataType: t, Message: "data type not declared in backup",
				})
			}
		}
	}

	if opts.ValidateFirst {
		var missing []string
		for _, dataType := range targets {
			if _, ok := bundle.Data[dataType]; !ok {
				missing = append(missing, dataType)
			}
		}
		if len(missing) > 0 {
			for _, dataType := range missing {
				report.Errors = append(report.Errors, domain.RestoreError{
					DataType: dataType, Message: "data type missing from payload",
				})
			}
			report.Status = domain.RecoveryFailed
			report.FinishedAt = time.Now()
			return report, nil
		}
	}

	for _, dataType := range targets {
		blob, ok := bundle.Data[dataType]
		if !ok {
			report.Errors = append(report.Errors, domain.RestoreError{
				DataType: dataType, Message: "data type missing from payload",
			})
			continue
		}
		if !opts.DryRun {
			if err := s.store.SaveRaw(ctx, dataType, owner, blob); err != nil {
				report.Errors = append(report.Errors, domain.RestoreError{
					DataType: dataType, Message: err.Error(),
				})
				continue
			}
		}
		report.RestoredTypes = append(report.RestoredTypes, dataType)
		report.SuccessfulItems += countItems(blob)
	}

	switch {
	case len(report.RestoredTypes) == 0:
		report.Status = domain.RecoveryFailed
	case len(report.Errors) > 0:
		report.Status = domain.RecoveryPartial
	default:
		report.Status = domain.RecoverySuccess
	}
	report.FinishedAt = time.Now()

	if !opts.DryRun {
		if _, err := s.activities.Record(ctx, owner, domain.ActivitySystem,
			fmt.Sprintf("Restore from backup %s finished with status %s", opts.BackupID, report.Status), ""); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("restore activity record failed")
		}
	}
	return report, nil
}

// abortCorrupted marks the backup corrupted and returns a failed
// report without touching any live collection
func (s *BackupService) abortCorrupted(ctx context.Context, owner string, meta domain.BackupMetadata, report *domain.RecoveryReport, reason string) (*domain.RecoveryReport, error) {
	meta.Status = domain.BackupCorrupted
	meta.Error = reason
	if err := s.upsertMeta(ctx, owner, meta); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("failed to persist corrupted backup metadata")
	}
	s.notifier.Notify(ctx, NotifyCritical, "Backup corrupted", "backup",
		fmt.Sprintf("Backup %s: %s", meta.ID, reason), true, "The backup cannot be restored; create a fresh one")

	report.Status = domain.RecoveryFailed
	report.Errors = append(report.Errors, domain.RestoreError{DataType: "*", Message: reason})
	report.FinishedAt = time.Now()
	return report, nil
}

// ListHistory returns backup metadata, newest first
func (s *BackupService) ListHistory(ctx context.Context, owner string) ([]domain.BackupMetadata, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	var history []domain.BackupMetadata
	if _, err := s.store.GetJSON(ctx, domain.CollectionBackupHistory, owner, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []domain.BackupMetadata{}
	}
	return history, nil
}

// DeleteBackup removes a backup's metadata, payload and mirror copy
func (s *BackupService) DeleteBackup(ctx context.Context, owner, backupID string) error {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	history, err := s.ListHistory(ctx, owner)
	if err != nil {
		return err
	}
	idx := -1
	for i := range history {
		if history[i].ID == backupID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrBackupNotFound
	}
	history = append(history[:idx], history[idx+1:]...)
	if err := s.store.SaveJSON(ctx, domain.CollectionBackupHistory, owner, history); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, domain.CollectionBackupPayload, backupID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("backup_id", backupID).Msg("backup payload delete failed")
	}
	if s.s3 != nil {
		if err := s.s3.Delete(ctx, "backups/"+backupID+".json"); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("backup_id", backupID).Msg("backup mirror delete failed")
		}
	}
	return nil
}

// CleanupExpired deletes completed backups older than the retention
// window, then trims the completed set down to max_backups (history is
// newest first, so the oldest go)
func (s *BackupService) CleanupExpired(ctx context.Context, owner string) (int, error) {
	history, err := s.ListHistory(ctx, owner)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.cfg.RetentionWindow())
	removed := 0
	kept := 0
	for _, meta := range history {
		if meta.Status != domain.BackupCompleted {
			continue
		}
		expired := meta.Timestamp.Before(cutoff)
		overflow := s.cfg.MaxBackups > 0 && kept >= s.cfg.MaxBackups
		if !expired && !overflow {
			kept++
			continue
		}
		if err := s.DeleteBackup(ctx, owner, meta.ID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("backup_id", meta.ID).Msg("retention delete failed")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunScheduler drives automatic backups and retention cleanup with
// fixed-interval tickers until the context is cancelled. No drift
// correction and no overlap prevention.
func (s *BackupService) RunScheduler(ctx context.Context, owner string) {
	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	var auto <-chan time.Time
	if s.cfg.AutoEnabled {
		ticker := time.NewTicker(s.cfg.Interval())
		defer ticker.Stop()
		auto = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-auto:
			if _, err := s.CreateBackup(ctx, owner, "scheduler", "scheduled backup"); err != nil {
				pkglogger.GetLogger().Error().Err(err).Msg("scheduled backup failed")
			}
		case <-cleanup.C:
			if _, err := s.CleanupExpired(ctx, owner); err != nil {
				pkglogger.GetLogger().Warn().Err(err).Msg("backup cleanup failed")
			}
		}
	}
}

// upsertMeta replaces or prepends the metadata entry in the history list
func (s *BackupService) upsertMeta(ctx context.Context, owner string, meta domain.BackupMetadata) error {
	var history []domain.BackupMetadata
	if _, err := s.store.GetJSON(ctx, domain.CollectionBackupHistory, owner, &history); err != nil {
		return err
	}
	replaced := false
	for i := range history {
		if history[i].ID == meta.ID {
			history[i] = meta
			replaced = true
			break
		}
	}
	if !replaced {
		history = append([]domain.BackupMetadata{meta}, history...)
	}
	return s.store.SaveJSON(ctx, domain.CollectionBackupHistory, owner, history)
}

func (s *BackupService) findMeta(ctx context.Context, owner, backupID string) (*domain.BackupMetadata, error) {
	history, err := s.ListHistory(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range history {
		if history[i].ID == backupID {
			return &history[i], nil
		}
	}
	return nil, common.ErrBackupNotFound
}

func checksum(payload []byte) string {
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// countItems counts array elements in a blob, or 1 for scalar records
func countItems(blob json.RawMessage) int {
	var list []json.RawMessage
	if err := json.Unmarshal(blob, &list); err == nil {
		return len(list)
	}
	return 1
}

package domain

import "time"

// BackupStatus lifecycle of a backup record
type BackupStatus string

const (
	BackupCreating  BackupStatus = "creating"
	BackupCompleted BackupStatus = "completed"
	BackupFailed    BackupStatus = "failed"
	BackupCorrupted BackupStatus = "corrupted"
)

// RecoveryStatus overall outcome of a restore
type RecoveryStatus string

const (
	RecoverySuccess RecoveryStatus = "success"
	RecoveryPartial RecoveryStatus = "partial"
	RecoveryFailed  RecoveryStatus = "failed"
)

// BackupDataTypes are the collections included in a full backup
var BackupDataTypes = []string{
	CollectionStories,
	CollectionMedia,
	CollectionBrandTests,
	CollectionActivities,
	CollectionMetrics,
	CollectionSavedSearches,
}

// BackupMetadata describes one backup bundle. Checksum is SHA-256 over
// the stored (possibly obfuscated) payload bytes; at restore time a
// fresh digest must match or the backup is treated as corrupted.
type BackupMetadata struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Size        int64        `json:"size"`
	Checksum    string       `json:"checksum"`
	DataTypes   []string     `json:"data_types"`
	Status      BackupStatus `json:"status"`
	CreatedBy   string       `json:"created_by"`
	Description string       `json:"description,omitempty"`
	Obfuscated  bool         `json:"obfuscated"`
	Error       string       `json:"error,omitempty"`
}

// RestoreOptions controls a restore run
type RestoreOptions struct {
	BackupID           string   `json:"backup_id"`
	DataTypes          []string `json:"data_types,omitempty"`
	ValidateFirst      bool     `json:"validate_first"`
	CreateSafetyBackup bool     `json:"create_safety_backup"`
	DryRun             bool     `json:"dry_run"`
}

// RestoreError records a per-type failure during restore
type RestoreError struct {
	DataType string `json:"data_type"`
	Message  string `json:"message"`
}

// RecoveryReport tallies a restore run. Per-type failures do not abort
// the remaining types; only a checksum mismatch is fatal.
type RecoveryReport struct {
	BackupID        string         `json:"backup_id"`
	Status          RecoveryStatus `json:"status"`
	RestoredTypes   []string       `json:"restored_types"`
	SuccessfulItems int            `json:"successful_items"`
	Errors          []RestoreError `json:"errors,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	SafetyBackupID  string         `json:"safety_backup_id,omitempty"`
	DryRun          bool           `json:"dry_run"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
}

package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// platformRecord is the remote schema row. Column names are fixed:
// in-memory camelCase fields map to snake_case columns.
type platformRecord struct {
	Collection string    `gorm:"column:collection;primaryKey;size:64"`
	OwnerID    string    `gorm:"column:owner_id;primaryKey;size:128"`
	Payload    []byte    `gorm:"column:payload;type:longblob"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

// TableName overrides the gorm table name
func (platformRecord) TableName() string {
	return "platform_records"
}

// GormBackend stores payloads in MySQL, one row per (collection, owner) key
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend creates the remote backend and ensures the schema exists
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&platformRecord{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

// Name identifies this backend in failover logs
func (b *GormBackend) Name() string {
	return "mysql"
}

// Get returns the payload for a key, ErrNotFound when absent
func (b *GormBackend) Get(ctx context.Context, collection, ownerID string) ([]byte, error) {
	var rec platformRecord
	err := b.db.WithContext(ctx).
		Where("collection = ? AND owner_id = ?", collection, ownerID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec.Payload, nil
}

// Save upserts the payload for a key (last write wins)
func (b *GormBackend) Save(ctx context.Context, collection, ownerID string, payload []byte) error {
	rec := platformRecord{
		Collection: collection,
		OwnerID:    ownerID,
		Payload:    payload,
		UpdatedAt:  time.Now(),
	}
	return b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
}

// Delete removes a single key
func (b *GormBackend) Delete(ctx context.Context, collection, ownerID string) error {
	return b.db.WithContext(ctx).
		Where("collection = ? AND owner_id = ?", collection, ownerID).
		Delete(&platformRecord{}).Error
}

// Clear removes all records for an owner, or everything when owner is empty
func (b *GormBackend) Clear(ctx context.Context, ownerID string) error {
	tx := b.db.WithContext(ctx)
	if ownerID == "" {
		return tx.Where("1 = 1").Delete(&platformRecord{}).Error
	}
	return tx.Where("owner_id = ?", ownerID).Delete(&platformRecord{}).Error
}

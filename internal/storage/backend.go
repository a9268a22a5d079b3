package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a (collection, owner) key
var ErrNotFound = errors.New("record not found")

// Origin identifies which backend served a call
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// Backend is a uniform key→JSON-blob store. One payload per
// (collection, ownerID) key. Implementations: GormBackend (MySQL),
// FileBackend (local JSON files).
type Backend interface {
	Name() string
	Get(ctx context.Context, collection, ownerID string) ([]byte, error)
	Save(ctx context.Context, collection, ownerID string, payload []byte) error
	Delete(ctx context.Context, collection, ownerID string) error
	// Clear removes all records for an owner; empty owner removes everything.
	Clear(ctx context.Context, ownerID string) error
}

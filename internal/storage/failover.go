package storage

import (
	"context"
	"errors"

	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// Failover tries the primary backend first and silently falls back to
// the secondary on any primary failure. Every successful primary write
// is mirrored into the fallback so the fallback is always a valid
// snapshot. Each call reports which backend served it.
type Failover struct {
	primary  Backend // may be nil when no remote store is configured
	fallback Backend
}

// NewFailover builds the decorator. primary may be nil.
func NewFailover(primary, fallback Backend) *Failover {
	return &Failover{primary: primary, fallback: fallback}
}

// Get reads a key, preferring the primary. A primary ErrNotFound is a
// valid answer, not a failure, and does not trigger fallback.
func (f *Failover) Get(ctx context.Context, collection, ownerID string) ([]byte, Origin, error) {
	if f.primary == nil {
		data, err := f.fallback.Get(ctx, collection, ownerID)
		return data, OriginLocal, err
	}

	data, err := f.primary.Get(ctx, collection, ownerID)
	if err == nil || errors.Is(err, ErrNotFound) {
		return data, OriginRemote, err
	}

	pkglogger.GetLogger().Warn().
		Err(err).
		Str("backend", f.primary.Name()).
		Str("collection", collection).
		Str("owner", ownerID).
		Msg("primary read failed, falling back to local")

	data, err = f.fallback.Get(ctx, collection, ownerID)
	return data, OriginLocal, err
}

// Save writes a key. Primary success mirrors the write into the
// fallback; primary failure downgrades to a fallback-only write.
func (f *Failover) Save(ctx context.Context, collection, ownerID string, payload []byte) (Origin, error) {
	if f.primary == nil {
		return OriginLocal, f.fallback.Save(ctx, collection, ownerID, payload)
	}

	if err := f.primary.Save(ctx, collection, ownerID, payload); err != nil {
		pkglogger.GetLogger().Warn().
			Err(err).
			Str("backend", f.primary.Name()).
			Str("collection", collection).
			Msg("primary write failed, falling back to local")
		return OriginLocal, f.fallback.Save(ctx, collection, ownerID, payload)
	}

	if err := f.fallback.Save(ctx, collection, ownerID, payload); err != nil {
		// Mirror failure is logged, not surfaced: the primary write stands.
		pkglogger.GetLogger().Warn().
			Err(err).
			Str("collection", collection).
			Msg("local mirror write failed")
	}
	return OriginRemote, nil
}

// Delete removes a key from both backends
func (f *Failover) Delete(ctx context.Context, collection, ownerID string) error {
	var primaryErr error
	if f.primary != nil {
		primaryErr = f.primary.Delete(ctx, collection, ownerID)
		if primaryErr != nil {
			pkglogger.GetLogger().Warn().
				Err(primaryErr).
				Str("collection", collection).
				Msg("primary delete failed")
		}
	}
	if err := f.fallback.Delete(ctx, collection, ownerID); err != nil {
		return err
	}
	return primaryErr
}

// Clear removes an owner's data from both backends
func (f *Failover) Clear(ctx context.Context, ownerID string) error {
	var primaryErr error
	if f.primary != nil {
		primaryErr = f.primary.Clear(ctx, ownerID)
		if primaryErr != nil {
			pkglogger.GetLogger().Warn().
				Err(primaryErr).
				Str("owner", ownerID).
				Msg("primary clear failed")
		}
	}
	if err := f.fallback.Clear(ctx, ownerID); err != nil {
		return err
	}
	return primaryErr
}

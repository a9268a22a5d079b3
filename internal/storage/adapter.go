package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Adapter is the service-facing persistence facade: typed JSON access
// on top of the failover pair. Services re-read through the adapter on
// every operation; nothing above it caches authoritative copies.
type Adapter struct {
	fo *Failover
}

// NewAdapter builds an adapter over a primary (may be nil) and fallback backend
func NewAdapter(primary, fallback Backend) *Adapter {
	return &Adapter{fo: NewFailover(primary, fallback)}
}

// GetJSON unmarshals the payload for a key into dest.
// Returns found=false (and no error) when the key is absent.
func (a *Adapter) GetJSON(ctx context.Context, collection, ownerID string, dest interface{}) (bool, error) {
	data, _, err := a.fo.Get(ctx, collection, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, ownerID, err)
	}
	return true, nil
}

// SaveJSON marshals v and stores it under a key
func (a *Adapter) SaveJSON(ctx context.Context, collection, ownerID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, ownerID, err)
	}
	_, err = a.fo.Save(ctx, collection, ownerID, data)
	return err
}

// Append adds one item to the JSON array stored under a key,
// creating the array when absent (read-modify-write, last write wins).
func (a *Adapter) Append(ctx context.Context, collection, ownerID string, item interface{}) error {
	var list []json.RawMessage
	if _, err := a.GetJSON(ctx, collection, ownerID, &list); err != nil {
		return err
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	list = append(list, raw)
	return a.SaveJSON(ctx, collection, ownerID, list)
}

// GetRaw returns the stored payload bytes (backup payloads)
func (a *Adapter) GetRaw(ctx context.Context, collection, ownerID string) ([]byte, error) {
	data, _, err := a.fo.Get(ctx, collection, ownerID)
	return data, err
}

// SaveRaw stores payload bytes verbatim
func (a *Adapter) SaveRaw(ctx context.Context, collection, ownerID string, payload []byte) error {
	_, err := a.fo.Save(ctx, collection, ownerID, payload)
	return err
}

// Delete removes a key from both backends
func (a *Adapter) Delete(ctx context.Context, collection, ownerID string) error {
	return a.fo.Delete(ctx, collection, ownerID)
}

// Clear wipes an owner's data (or everything) from both backends.
// Authorization is enforced at the handler layer.
func (a *Adapter) Clear(ctx context.Context, ownerID string) error {
	return a.fo.Clear(ctx, ownerID)
}

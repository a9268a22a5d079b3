package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkgcache "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/cache"
)

var errBackendBroken = errors.New("backend broken")

// faultBackend wraps another backend and fails selected operations
// per collection
type faultBackend struct {
	inner     storage.Backend
	mu        sync.Mutex
	failSaves map[string]bool
	failGets  map[string]bool
}

func newFaultBackend(inner storage.Backend) *faultBackend {
	return &faultBackend{
		inner:     inner,
		failSaves: make(map[string]bool),
		failGets:  make(map[string]bool),
	}
}

func (b *faultBackend) Name() string { return "fault" }

func (b *faultBackend) Get(ctx context.Context, collection, ownerID string) ([]byte, error) {
	b.mu.Lock()
	broken := b.failGets[collection]
	b.mu.Unlock()
	if broken {
		return nil, errBackendBroken
	}
	return b.inner.Get(ctx, collection, ownerID)
}

func (b *faultBackend) Save(ctx context.Context, collection, ownerID string, payload []byte) error {
	b.mu.Lock()
	broken := b.failSaves[collection]
	b.mu.Unlock()
	if broken {
		return errBackendBroken
	}
	return b.inner.Save(ctx, collection, ownerID, payload)
}

func (b *faultBackend) Delete(ctx context.Context, collection, ownerID string) error {
	return b.inner.Delete(ctx, collection, ownerID)
}

func (b *faultBackend) Clear(ctx context.Context, ownerID string) error {
	return b.inner.Clear(ctx, ownerID)
}

// stubNotifier records notifications for assertions
type stubNotifier struct {
	mu     sync.Mutex
	titles []string
	levels []NotifyLevel
}

func (n *stubNotifier) Notify(ctx context.Context, level NotifyLevel, title, component, description string, actionRequired bool, actionDescription string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.levels = append(n.levels, level)
}

func newTestAdapter() *storage.Adapter {
	return storage.NewAdapter(nil, storage.NewMemoryBackend())
}

func noCache() pkgcache.Service {
	return pkgcache.NewService(nil)
}

var errCacheMiss = errors.New("cache miss")

// memCache holds search entries in-process so tests can exercise the
// hit and invalidation paths without Redis
type memCache struct {
	mu            sync.Mutex
	searches      map[string][]byte
	invalidations int
}

func newMemCache() *memCache {
	return &memCache{searches: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, _ string, _ interface{}) error { return errCacheMiss }
func (c *memCache) Set(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
	return nil
}
func (c *memCache) Delete(_ context.Context, _ ...string) error { return nil }

func (c *memCache) GetSearch(_ context.Context, owner, fingerprint string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.searches[owner+":"+fingerprint]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *memCache) SetSearch(_ context.Context, owner, fingerprint string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches[owner+":"+fingerprint] = data
}

func (c *memCache) InvalidateSearches(_ context.Context, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.searches {
		if strings.HasPrefix(k, owner+":") {
			delete(c.searches, k)
		}
	}
	c.invalidations++
	return nil
}

func (c *memCache) GetDashboard(_ context.Context, _ string, _ interface{}) bool { return false }
func (c *memCache) SetDashboard(_ context.Context, _ string, _ interface{})      {}
func (c *memCache) InvalidateDashboard(_ context.Context, _ string) error        { return nil }
func (c *memCache) IsAvailable() bool                                            { return true }

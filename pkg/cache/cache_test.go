package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilClientDegradesToMisses(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil)

	assert.False(t, svc.IsAvailable())

	var dest map[string]string
	assert.False(t, svc.GetSearch(ctx, "alice", "fp", &dest))
	assert.False(t, svc.GetDashboard(ctx, "alice", &dest))

	// writes and invalidations are silent no-ops
	svc.SetSearch(ctx, "alice", "fp", map[string]string{"k": "v"})
	svc.SetDashboard(ctx, "alice", map[string]string{"k": "v"})
	assert.NoError(t, svc.InvalidateSearches(ctx, "alice"))
	assert.NoError(t, svc.InvalidateDashboard(ctx, "alice"))
	assert.NoError(t, svc.Delete(ctx, "anything"))
}

func TestFingerprintIsStable(t *testing.T) {
	type req struct {
		Query string
		Limit int
	}

	a := Fingerprint(req{Query: "pathways", Limit: 10})
	b := Fingerprint(req{Query: "pathways", Limit: 10})
	c := Fingerprint(req{Query: "pathways", Limit: 20})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40)
}

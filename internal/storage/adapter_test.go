package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterJSONRoundTrip(t *testing.T) {
	a := NewAdapter(nil, NewMemoryBackend())
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var out payload
	found, err := a.GetJSON(ctx, "stories", "staff1", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, a.SaveJSON(ctx, "stories", "staff1", payload{Name: "yarn", Count: 3}))

	found, err = a.GetJSON(ctx, "stories", "staff1", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "yarn", Count: 3}, out)
}

func TestAdapterAppendCreatesAndExtends(t *testing.T) {
	a := NewAdapter(nil, NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, a.Append(ctx, "saved_searches", "staff1", map[string]string{"q": "first"}))
	require.NoError(t, a.Append(ctx, "saved_searches", "staff1", map[string]string{"q": "second"}))

	var list []map[string]string
	found, err := a.GetJSON(ctx, "saved_searches", "staff1", &list)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0]["q"])
	assert.Equal(t, "second", list[1]["q"])
}

package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	t.Run("get missing key", func(t *testing.T) {
		_, ok, err := mem.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, mem.Set(ctx, "a", "1"))
		v, ok, err := mem.Get(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, mem.Set(ctx, "a", "2"))
		v, _, err := mem.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "2", v)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, mem.Remove(ctx, "a"))
		_, ok, err := mem.Get(ctx, "a")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list by prefix", func(t *testing.T) {
		require.NoError(t, mem.Set(ctx, "facet:1", "x"))
		require.NoError(t, mem.Set(ctx, "facet:2", "y"))
		require.NoError(t, mem.Set(ctx, "note:1", "z"))

		out, err := mem.ListByPrefix(ctx, "facet:")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"facet:1": "x", "facet:2": "y"}, out)
	})
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	t.Run("roundtrip", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, SetJSON(ctx, mem, "p", payload{Name: "alpha", Count: 3}))

		got, ok := GetJSON[payload](ctx, mem, logger, "p")
		require.True(t, ok)
		assert.Equal(t, payload{Name: "alpha", Count: 3}, got)
	})

	t.Run("missing key yields zero value", func(t *testing.T) {
		mem := NewMemory()
		got, ok := GetJSON[payload](ctx, mem, logger, "absent")
		assert.False(t, ok)
		assert.Zero(t, got)
	})

	t.Run("corrupt blob treated as absent", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.Set(ctx, "p", `{broken`))

		got, ok := GetJSON[payload](ctx, mem, logger, "p")
		assert.False(t, ok)
		assert.Zero(t, got)
	})
}

package store

import (
	"context"
	"testing"

	"gotest.tools/v3/assert"

	"blog/config"
	"blog/internal/testutil"
)

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()
	clock := testutil.FixedClock()

	t.Run("memory", func(t *testing.T) {
		s, err := NewStoreFromConfig(ctx, config.DatabaseConfig{Type: "memory"}, clock, nil)
		assert.NilError(t, err)
		defer s.Close()
		_, ok := s.(*MemoryStore)
		assert.Assert(t, ok)
	})

	t.Run("sqlite with seed", func(t *testing.T) {
		s, err := NewStoreFromConfig(ctx, config.DatabaseConfig{Type: "sqlite", URL: ":memory:", Seed: true}, clock, nil)
		assert.NilError(t, err)
		defer s.Close()

		posts, err := s.List(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(posts), len(WelcomePosts))
	})

	t.Run("postgres requires url", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx, config.DatabaseConfig{Type: "postgres"}, clock, nil)
		assert.ErrorContains(t, err, "url required")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewStoreFromConfig(ctx, config.DatabaseConfig{Type: "oracle"}, clock, nil)
		assert.ErrorContains(t, err, "unknown database type")
	})
}

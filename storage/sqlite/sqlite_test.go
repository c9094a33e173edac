package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibymlorg/managing-multiagent-intelligence/core"
)

func openMemory(t *testing.T, optFns ...func(o *Options)) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := openMemory(t, func(o *Options) { o.Now = func() time.Time { return now } })

	_, err := s.Get(ctx, core.KeyMemories)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, s.Put(ctx, core.KeyMemories, []byte(`{"openai":[]}`)))
	got, err := s.Get(ctx, core.KeyMemories)
	require.NoError(t, err)
	assert.JSONEq(t, `{"openai":[]}`, string(got))

	ts, err := s.UpdatedAt(ctx, core.KeyMemories)
	require.NoError(t, err)
	assert.True(t, now.Equal(ts))

	now = now.Add(time.Hour)
	require.NoError(t, s.Put(ctx, core.KeyMemories, []byte(`{"anthropic":[]}`)))
	got, err = s.Get(ctx, core.KeyMemories)
	require.NoError(t, err)
	assert.JSONEq(t, `{"anthropic":[]}`, string(got))
	ts, _ = s.UpdatedAt(ctx, core.KeyMemories)
	assert.True(t, now.Equal(ts))

	require.NoError(t, s.Delete(ctx, core.KeyMemories))
	require.NoError(t, s.Delete(ctx, core.KeyMemories))
	_, err = s.Get(ctx, core.KeyMemories)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "multiai.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, core.KeyAPIKeys, []byte(`{"openai":"sk"}`)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, core.KeyAPIKeys)
	require.NoError(t, err)
	assert.Equal(t, `{"openai":"sk"}`, string(got))
}

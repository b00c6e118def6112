package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyUser, `{"id":"1"}`))
	v, ok, err := s.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":"1"}`, v)

	require.NoError(t, s.Delete(ctx, KeyUser))
	require.NoError(t, s.Delete(ctx, KeyUser), "deleting a missing key is fine")
	_, ok, _ = s.Get(ctx, KeyUser)
	assert.False(t, ok)
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	src := TokenSource{Store: s}

	tok, err := src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", tok)

	require.NoError(t, s.Set(ctx, KeyAuthToken, "abc"))
	tok, err = src.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestOpen(t *testing.T) {
	s, closeFn, err := Open(OpenOptions{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, closeFn())

	s, _, err = Open(OpenOptions{Driver: DriverFile, Path: t.TempDir() + "/store.json"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, _, err = Open(OpenOptions{Driver: DriverPostgres})
	assert.Error(t, err)

	_, _, err = Open(OpenOptions{Driver: "redis"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

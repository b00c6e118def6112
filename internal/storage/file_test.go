package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFileStore_Plain(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := NewFileStore(path, "")
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok"))
	require.NoError(t, s.Set(ctx, KeyFilters, `{"page":1}`))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"auth_token": "tok"`)

	reopened, err := NewFileStore(path, "")
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyFilters)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"page":1}`, v)

	require.NoError(t, reopened.Delete(ctx, KeyAuthToken))
	_, ok, _ = s.Get(ctx, KeyAuthToken)
	assert.False(t, ok)
}

func TestFileStore_Encrypted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFileStore(path, testSecret)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyAuthToken, "very-secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "very-secret-token"), "token must not be stored in clear")
	assert.Contains(t, string(raw), `"salt"`)

	reopened, err := NewFileStore(path, testSecret)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "very-secret-token", v)

	_, err = NewFileStore(path, "another-secret-another-secret-xx")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = NewFileStore(path, "")
	assert.ErrorIs(t, err, ErrEncryptedFile)
}

func TestFileStore_SecretOnPlainFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := NewFileStore(path, "")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyUser, "{}"))

	_, err = NewFileStore(path, testSecret)
	assert.ErrorIs(t, err, ErrNotEncrypted)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))

	_, err := NewFileStore(path, "")
	assert.ErrorContains(t, err, "failed to decode store file")
}

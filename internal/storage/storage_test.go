package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netchat/netchat/internal/models"
)

// exerciseScoped runs the same contract checks against every backend.
func exerciseScoped(t *testing.T, s Scoped) {
	t.Helper()
	ctx := t.Context()

	_, ok, err := s.Get(ctx, "username")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "username", "ana"))
	v, ok, err := s.Get(ctx, "username")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ana", v)

	require.NoError(t, s.Set(ctx, "username", "bo"))
	v, _, err = s.Get(ctx, "username")
	require.NoError(t, err)
	assert.Equal(t, "bo", v)

	require.NoError(t, s.Set(ctx, "empty", ""))
	v, ok, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok, "an empty value is still present")
	assert.Equal(t, "", v)

	require.NoError(t, s.Delete(ctx, "username"))
	_, ok, err = s.Get(ctx, "username")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-set"))
}

func TestMemory(t *testing.T) {
	exerciseScoped(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	s, err := NewFile(path)
	require.NoError(t, err)
	exerciseScoped(t, s)
}

func TestFile_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	s1, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(t.Context(), "avatar_id", "a1"))

	s2, err := NewFile(path)
	require.NoError(t, err)
	v, ok, err := s2.Get(t.Context(), "avatar_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a1", v)
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0600))

	_, err := NewFile(path)
	require.Error(t, err)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedis(t.Context(), "redis://"+mr.Addr(), "test")
	require.NoError(t, err)
	defer s.Close()
	exerciseScoped(t, s)
}

func TestRedis_ScopesAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)

	a, err := NewRedis(t.Context(), "redis://"+mr.Addr(), "alice")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewRedis(t.Context(), "redis://"+mr.Addr(), "bob")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set(t.Context(), "username", "alice"))
	_, ok, err := b.Get(t.Context(), "username")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(t.Context(), filepath.Join(t.TempDir(), "kv.db"), "")
	require.NoError(t, err)
	defer s.Close()
	exerciseScoped(t, s)
}

func TestSQLite_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	s1, err := NewSQLite(t.Context(), path, "")
	require.NoError(t, err)
	require.NoError(t, s1.Set(t.Context(), "saved_channels", "[]"))
	require.NoError(t, s1.Close())

	s2, err := NewSQLite(t.Context(), path, "")
	require.NoError(t, err)
	defer s2.Close()
	v, ok, err := s2.Get(t.Context(), "saved_channels")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestOpen_None(t *testing.T) {
	_, err := Open(t.Context(), Options{Backend: BackendNone})
	assert.True(t, errors.Is(err, models.ErrStorageUnavailable))

	s, ok := Probe(t.Context(), Options{Backend: BackendNone})
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestProbe_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, ok := Probe(t.Context(), Options{Backend: BackendRedis, RedisURL: "redis://" + addr})
	assert.False(t, ok)
}

func TestProbe_Memory(t *testing.T) {
	s, ok := Probe(t.Context(), Options{Backend: BackendMemory})
	require.True(t, ok)
	assert.NotNil(t, s)
}

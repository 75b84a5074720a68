package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gemini_chat/pkg/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runConformance(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "chatHistory", []byte(`[{"id":"1"}]`)))
		got, err := kv.Get(ctx, "chatHistory")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "darkMode", []byte("false")))
		require.NoError(t, kv.Set(ctx, "darkMode", []byte("true")))
		got, err := kv.Get(ctx, "darkMode")
		require.NoError(t, err)
		assert.Equal(t, "true", string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "gone", []byte("x")))
		require.NoError(t, kv.Delete(ctx, "gone"))
		_, err := kv.Get(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.NoError(t, kv.Delete(ctx, "never-set"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "a", []byte("1")))
		require.NoError(t, kv.Set(ctx, "b", []byte("2")))
		require.NoError(t, kv.Delete(ctx, "a"))
		got, err := kv.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "2", string(got))
	})
}

func TestMemory_Conformance(t *testing.T) {
	kv := NewMemory()
	defer kv.Close()
	runConformance(t, kv)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	kv := NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "k", []byte("abc")))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFile_Conformance(t *testing.T) {
	kv, err := NewFile(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	defer kv.Close()
	runConformance(t, kv)
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), "chatHistory", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "chatHistory.json", entries[0].Name())
}

func TestFile_RejectsPathKeys(t *testing.T) {
	kv, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../escape", "a/b", "", ".."} {
		assert.Error(t, kv.Set(ctx, key, []byte("x")), "key %q", key)
	}
}

func TestSQLite_Conformance(t *testing.T) {
	kv, err := NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer kv.Close()
	runConformance(t, kv)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	kv, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "darkMode", []byte("true")))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "darkMode")
	require.NoError(t, err)
	assert.Equal(t, "true", string(got))
}

func TestRedis_Conformance(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedis(RedisOptions{Addr: mr.Addr(), Prefix: "gemini_chat:"})
	require.NoError(t, err)
	defer kv.Close()
	runConformance(t, kv)
}

func TestRedis_KeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedis(RedisOptions{Addr: mr.Addr(), Prefix: "gemini_chat:"})
	require.NoError(t, err)
	defer kv.Close()
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "darkMode", []byte("true")))
	got, err := mr.Get("gemini_chat:darkMode")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
	assert.False(t, mr.Exists("darkMode"), "key should only exist under the prefix")

	require.NoError(t, mr.Set("chatHistory", "[]"))
	_, err = kv.Get(ctx, "chatHistory")
	assert.ErrorIs(t, err, ErrNotFound, "unprefixed keys belong to someone else")

	require.NoError(t, kv.Delete(ctx, "darkMode"))
	assert.False(t, mr.Exists("gemini_chat:darkMode"))
	_, err = kv.Get(ctx, "darkMode")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedis_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedis(RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer kv.Close()

	mr.Close()
	_, err = kv.Get(context.Background(), "darkMode")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := Open(config.StorageConfig{Backend: "redis", RedisAddr: mr.Addr(), KeyPrefix: "p:"})
	require.NoError(t, err)
	defer kv.Close()
	assert.IsType(t, &Redis{}, kv)
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	_, err := NewRedis(RedisOptions{})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    any
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageConfig{Backend: "memory"}, want: &Memory{}},
		{name: "file", cfg: config.StorageConfig{Backend: "file", Path: filepath.Join(dir, "state")}, want: &File{}},
		{name: "sqlite", cfg: config.StorageConfig{Backend: "SQLite", Path: filepath.Join(dir, "state.db")}, want: &SQLite{}},
		{name: "redis without addr", cfg: config.StorageConfig{Backend: "redis"}, wantErr: true},
		{name: "unknown", cfg: config.StorageConfig{Backend: "etcd"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer kv.Close()
			assert.IsType(t, tt.want, kv)
		})
	}
}

package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	local, err := NewLocalStorage(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"local":  local,
	}
}

func TestStore_Backends(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, KeyTransactions)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, KeyTransactions, []byte(`[]`)))
			require.NoError(t, store.Set(ctx, KeyTransactions, []byte(`[{"id":"a"}]`)))
			v, err := store.Get(ctx, KeyTransactions)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"a"}]`, string(v))

			require.NoError(t, store.Set(ctx, KeyClosedNotifyPrefix+"2026-10", []byte("1")))
			require.NoError(t, store.Set(ctx, KeyClosedNotifyPrefix+"2026-09", []byte("1")))
			keys, err := store.Keys(ctx, KeyClosedNotifyPrefix)
			require.NoError(t, err)
			assert.Equal(t, []string{KeyClosedNotifyPrefix + "2026-09", KeyClosedNotifyPrefix + "2026-10"}, keys)

			require.NoError(t, store.Delete(ctx, KeyTransactions))
			require.NoError(t, store.Delete(ctx, KeyTransactions), "missing key")
			_, err = store.Get(ctx, KeyTransactions)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, KeyDirty, value))
	value[0] = 'x'

	got, err := store.Get(ctx, KeyDirty)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestLocalStorage_Files(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, KeyDuesConfigs, []byte(`{}`)))
	assert.True(t, store.Exists(KeyDuesConfigs))
	assert.FileExists(t, filepath.Join(dir, KeyDuesConfigs+".json"))

	// temp files and foreign files are not keys
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dues_configs.1234.tmp"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), nil, 0644))
	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{KeyDuesConfigs}, keys)

	assert.Error(t, store.Set(ctx, "../escape", []byte("x")))
	_, err = store.Get(ctx, "a/b")
	assert.Error(t, err)
}

func TestKeyFromFilename(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ok   bool
	}{
		{"/data/dues_payments.json", KeyDuesPayments, true},
		{"iuran_dirty.json", KeyDirty, true},
		{".iuran_dirty.ab12.tmp", "", false},
		{"notes.txt", "", false},
	}
	for _, tt := range tests {
		key, ok := KeyFromFilename(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.key, key, tt.name)
	}
}

func TestWatcher_ReportsFilteredKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]int{}
	w := NewWatcher(dir, 50*time.Millisecond, SharedKeys(), func(keys []string) {
		mu.Lock()
		defer mu.Unlock()
		for _, k := range keys {
			seen[k]++
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(ctx, KeyDuesPayments, []byte(`{}`)))
	}
	require.NoError(t, store.Set(ctx, KeyNotifications, []byte(`[]`)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen[KeyDuesPayments] > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, seen[KeyNotifications], "not a shared key")
	assert.Equal(t, 1, seen[KeyDuesPayments], "a burst settles into one report")
}

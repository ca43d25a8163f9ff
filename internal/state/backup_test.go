package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backupStores(t *testing.T) map[string]BackupStore {
	t.Helper()
	sqlite, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "nested", SQLiteFile))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]BackupStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), ".history")),
		"sqlite": sqlite,
	}
}

func TestBackupStoreContract(t *testing.T) {
	t.Parallel()

	for name, store := range backupStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2026, 2, 13, 12, 0, 0, 123456789, time.UTC)

			_, err := store.Latest(ctx, "skills/qc.py")
			assert.ErrorIs(t, err, ErrNoBackupAvailable)
			list, err := store.List(ctx, "skills/qc.py", 0)
			require.NoError(t, err)
			assert.Empty(t, list)

			for i, content := range []string{"v1", "v2", "v3"} {
				b, err := store.Save(ctx, "skills/qc.py", []byte(content), base.Add(time.Duration(i)*time.Second))
				require.NoError(t, err)
				assert.Equal(t, int64(i+1), b.Seq)
				assert.NotEmpty(t, b.ID)
			}
			_, err = store.Save(ctx, "plan.py", []byte("plan"), base)
			require.NoError(t, err)

			latest, err := store.Latest(ctx, "skills/qc.py")
			require.NoError(t, err)
			assert.Equal(t, "v3", string(latest.Content))
			assert.Equal(t, "skills/qc.py", latest.Module)
			assert.True(t, latest.CreatedAt.Equal(base.Add(2*time.Second)), "created at %s", latest.CreatedAt)

			list, err = store.List(ctx, "skills/qc.py", 2)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, []string{"v3", "v2"}, []string{string(list[0].Content), string(list[1].Content)})

			list, err = store.List(ctx, "skills/qc.py", 0)
			require.NoError(t, err)
			assert.Len(t, list, 3)

			list, err = store.List(ctx, "plan.py", 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, int64(1), list[0].Seq)
		})
	}
}

func TestBackupStoreCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, store := range backupStores(t) {
		_, err := store.Save(ctx, "plan.py", []byte("x"), time.Now())
		assert.Error(t, err, name)
	}
}

func TestParseBackupName(t *testing.T) {
	t.Parallel()

	b, ok := parseBackupName("000012-20260213T120000.000000001Z-0b6c1f7e-5b55-4c1e-9a51-2d0c3c4f5e6a.bak")
	require.True(t, ok)
	assert.Equal(t, int64(12), b.Seq)
	assert.Equal(t, "0b6c1f7e-5b55-4c1e-9a51-2d0c3c4f5e6a", b.ID)
	assert.Equal(t, time.Date(2026, 2, 13, 12, 0, 0, 1, time.UTC), b.CreatedAt)

	for _, name := range []string{"notes.bak", "x-20260213T120000.000000001Z-id.bak", "000001-yesterday-id.bak"} {
		_, ok := parseBackupName(name)
		assert.False(t, ok, name)
	}
}

func TestMemoryStoreCopiesContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	content := []byte("abc")
	_, err := store.Save(ctx, "plan.py", content, time.Now())
	require.NoError(t, err)
	content[0] = 'z'

	latest, err := store.Latest(ctx, "plan.py")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(latest.Content))
}

package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesSchema(t *testing.T) {
	d, err := Init(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	defer d.Close()

	for _, table := range []string{"posters", "cache", "persistent_state"} {
		var name string
		err := d.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
		assert.Equal(t, table, name)
	}
}

func TestPruneCache(t *testing.T) {
	d, err := Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer d.Close()

	old := time.Now().Add(-48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	_, err = d.Exec("INSERT INTO cache (key, value, created_at) VALUES (?, ?, ?)", "old", []byte("x"), old)
	require.NoError(t, err)
	_, err = d.Exec("INSERT INTO cache (key, value) VALUES (?, ?)", "fresh", []byte("y"))
	require.NoError(t, err)

	require.NoError(t, d.PruneCache(24*time.Hour))

	var count int
	require.NoError(t, d.QueryRow("SELECT count(*) FROM cache").Scan(&count))
	assert.Equal(t, 1, count)

	var key string
	require.NoError(t, d.QueryRow("SELECT key FROM cache").Scan(&key))
	assert.Equal(t, "fresh", key)
}

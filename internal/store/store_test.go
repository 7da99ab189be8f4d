package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/store/remote"
	"github.com/marcus/noteshelf/internal/store/sqlite"
)

func TestOpenSQLiteCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "notes.db")
	b, err := Open(context.Background(), config.StoreConfig{
		Backend: config.BackendSQLite,
		DBPath:  path,
		Driver:  sqlite.DriverPureGo,
	}, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &sqlite.Store{}, b)
	cats, err := b.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestOpenRemote(t *testing.T) {
	cfg := config.StoreConfig{
		Backend:        config.BackendRemote,
		RemoteURL:      "http://127.0.0.1:1",
		RequestTimeout: time.Second,
	}
	_, err := Open(context.Background(), cfg, nil)
	assert.True(t, errors.Is(err, ErrNoToken))

	cfg.Token = "abc"
	b, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &remote.Client{}, b)
	assert.NoError(t, b.Close())

	cfg.RemoteURL = ""
	_, err = Open(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "redis"}, nil)
	assert.ErrorContains(t, err, "redis")
}

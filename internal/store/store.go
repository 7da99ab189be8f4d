// Package store opens the note store backend named in the configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus/noteshelf/internal/config"
	"github.com/marcus/noteshelf/internal/note"
	"github.com/marcus/noteshelf/internal/store/mongostore"
	"github.com/marcus/noteshelf/internal/store/remote"
	"github.com/marcus/noteshelf/internal/store/sqlite"
)

// ErrNoToken is returned when the remote backend has no credentials.
var ErrNoToken = errors.New("remote store requires a token (set store.token or NOTESHELF_TOKEN)")

// Backend is a note store that holds resources until closed.
type Backend interface {
	note.Store
	Close() error
}

// Seeder is implemented by backends that can insert missing categories.
type Seeder interface {
	SeedCategories(ctx context.Context, cats []note.Category) (int, error)
}

var (
	_ Backend = (*sqlite.Store)(nil)
	_ Backend = (*remote.Client)(nil)
	_ Backend = (*mongostore.Store)(nil)
	_ Seeder  = (*sqlite.Store)(nil)
	_ Seeder  = (*mongostore.Store)(nil)
)

// Open connects to the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch cfg.Backend {
	case config.BackendSQLite, "":
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		logger.Debug("store: open sqlite", "path", cfg.DBPath, "driver", cfg.Driver)
		s, err := sqlite.Open(ctx, cfg.Driver, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.BackendRemote:
		if cfg.RemoteURL == "" {
			return nil, errors.New("remote store requires store.remoteURL")
		}
		if cfg.Token == "" {
			return nil, ErrNoToken
		}
		logger.Debug("store: remote", "url", cfg.RemoteURL)
		return remote.NewClient(cfg.RemoteURL, cfg.Token, cfg.RequestTimeout), nil

	case config.BackendMongo:
		logger.Debug("store: connect mongo", "db", cfg.MongoDatabase)
		ctx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, the page station)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/lifecycle"
	"github.com/lh/pagedeck/internal/storage"
	"github.com/lh/pagedeck/pkg/database"
	"github.com/lh/pagedeck/pkg/logging"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, and the shared page station.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Station   clipboard.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	mirror, err := newMirror(cfg, store)
	if err != nil {
		return nil, fmt.Errorf("clipboard mirror init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Station:   clipboard.NewStation(mirror, &cfg.Clipboard, logger),
	}, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	i.Lifecycle.OnShutdown(i.Station.Close)
	return nil
}

func newMirror(cfg *config.Config, store storage.System) (clipboard.Mirror, error) {
	switch cfg.Clipboard.Mirror {
	case config.MirrorRedis:
		return clipboard.NewRedisMirror(&cfg.Clipboard.Redis, cfg.Clipboard.MirrorKey)
	case config.MirrorFilesystem:
		return clipboard.NewFilesystemMirror(store, cfg.Clipboard.MirrorKey), nil
	default:
		return nil, fmt.Errorf("unknown clipboard mirror: %s", cfg.Clipboard.Mirror)
	}
}

// Package database provides PostgreSQL connection management with pooling
// and lifecycle integration.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/lifecycle"
)

// System manages the database connection pool lifecycle.
type System interface {
	DB() *sql.DB
	Start(lc *lifecycle.Coordinator) error
}

type system struct {
	db          *sql.DB
	connTimeout time.Duration
	logger      *slog.Logger
}

// New opens a connection pool using the specified configuration. The pool is
// verified with a ping on Start, not here.
func New(cfg *config.DatabaseConfig, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &system{
		db:          db,
		connTimeout: cfg.ConnTimeoutDuration(),
		logger:      logger.With("system", "database"),
	}, nil
}

func (s *system) DB() *sql.DB {
	return s.db
}

// Start verifies connectivity and registers pool cleanup on shutdown.
func (s *system) Start(lc *lifecycle.Coordinator) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.connTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	s.logger.Info("database connected")

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database closed")
		}
	})

	return nil
}

// Package pg persists share links in Postgres. Slug uniqueness among
// active links is enforced by the database, not by application checks.
package pg

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/boardlink-dev/boardlink/internal/config"
	"github.com/boardlink-dev/boardlink/internal/logger"
)

type Storage struct {
	db *sqlx.DB
}

func New(cfg config.Pg, password string) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, password, cfg.Dbname)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &Storage{db: db}
	if cfg.InitPath != "" {
		if err := storage.runMigrations(cfg.InitPath); err != nil {
			db.Close()
			return nil, err
		}
	}
	return storage, nil
}

// NewFromDB wraps an existing connection. Used by tests.
func NewFromDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) runMigrations(migrationPath string) error {
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", migrationPath, err)
	}
	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Log.Info("migrations applied", "path", migrationPath)
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

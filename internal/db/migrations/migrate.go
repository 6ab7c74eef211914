// Package migrations wraps golang-migrate with connection retry and the
// small operation set the migrate command exposes
package migrations

import (
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Config holds migration configuration
type Config struct {
	MigrationsPath string
	DatabaseURL    string
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Service runs schema migrations against the database
type Service struct {
	migrate *migrate.Migrate
}

// NewService creates a migration service, retrying the initial database
// connection so the command works while the database container is still
// coming up
func NewService(config Config) (*Service, error) {
	var m *migrate.Migrate
	var err error

	for i := 0; i < config.RetryAttempts; i++ {
		m, err = migrate.New(config.MigrationsPath, config.DatabaseURL)
		if err == nil {
			break
		}
		log.Printf("Database not reachable (attempt %d/%d): %v", i+1, config.RetryAttempts, err)
		time.Sleep(config.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance after %d attempts: %w", config.RetryAttempts, err)
	}

	return &Service{migrate: m}, nil
}

// Up runs all pending migrations. A database already at the latest version
// is not an error.
func (s *Service) Up() error {
	if err := s.migrate.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Down rolls back all migrations
func (s *Service) Down() error {
	if err := s.migrate.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// Steps runs n migrations up, or -n down
func (s *Service) Steps(n int) error {
	if err := s.migrate.Steps(n); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run %d migrations: %w", n, err)
	}
	return nil
}

// Version returns the current migration version
func (s *Service) Version() (uint, bool, error) {
	return s.migrate.Version()
}

// Force overwrites the recorded version without running migrations,
// clearing a dirty state after a manual fix
func (s *Service) Force(version int) error {
	return s.migrate.Force(version)
}

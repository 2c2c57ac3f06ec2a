// Package migrations holds the schema of the local sandbox registry database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/slok/rsbx/internal/log"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

// SchemaConfig is the configuration of the registry schema manager.
type SchemaConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *SchemaConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sqlite.migrations.Schema"})

	return nil
}

// Schema applies and reverts the registry schema versions.
type Schema struct {
	db     *sql.DB
	logger log.Logger
}

// NewSchema returns a new schema manager.
func NewSchema(cfg SchemaConfig) (*Schema, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Schema{
		db:     cfg.DB,
		logger: cfg.Logger,
	}, nil
}

// Up applies every pending schema version.
func (s *Schema) Up(ctx context.Context) error {
	return s.run(ctx, "apply", func(m *migrate.Migrate) error { return m.Up() })
}

// Down reverts every applied schema version.
func (s *Schema) Down(ctx context.Context) error {
	return s.run(ctx, "revert", func(m *migrate.Migrate) error { return m.Down() })
}

// Version returns the current schema version, 0 when nothing has been applied.
func (s *Schema) Version(ctx context.Context) (uint, error) {
	var version uint
	err := s.run(ctx, "read", func(m *migrate.Migrate) error {
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", v)
		}
		version = v
		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (s *Schema) run(ctx context.Context, action string, f func(m *migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, closeSrc, err := s.migrator()
	if err != nil {
		return err
	}
	defer closeSrc()

	err = f(m)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not %s schema: %w", action, err)
	}

	s.logger.Debugf("Schema %s done", action)
	return nil
}

func (s *Schema) migrator() (*migrate.Migrate, func(), error) {
	// The driver does not own the db, the registry closes it.
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create schema driver: %w", err)
	}

	src, err := iofs.New(schemaFiles, "sql")
	if err != nil {
		return nil, nil, fmt.Errorf("could not load schema files: %w", err)
	}
	closeSrc := func() {
		if err := src.Close(); err != nil {
			s.logger.Warningf("Could not close schema files: %s", err)
		}
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		closeSrc()
		return nil, nil, fmt.Errorf("could not create schema migrator: %w", err)
	}

	return m, closeSrc, nil
}

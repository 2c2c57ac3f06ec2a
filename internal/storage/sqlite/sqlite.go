package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/storage"
	"github.com/slok/rsbx/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	schema, err := migrations.NewSchema(migrations.SchemaConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create schema manager: %w", err)
	}
	if err := schema.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not prepare schema: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

const selectColumns = `id, name, app_id, image_id, status, created_at, finished_at`

// CreateSandbox creates a new sandbox record in the repository.
func (r *Repository) CreateSandbox(ctx context.Context, s model.SandboxRecord) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	query := `
		INSERT INTO sandboxes (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.AppID,
		s.ImageID,
		s.Status,
		s.CreatedAt.Unix(),
		unixOrNil(s.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: sandboxes.") {
			return fmt.Errorf("sandbox already exists: %w", model.ErrAlreadyExists)
		}
		return fmt.Errorf("could not insert sandbox: %w", err)
	}

	r.logger.Debugf("Created sandbox in repository: %s", s.ID)
	return nil
}

// GetSandbox retrieves a sandbox record by ID.
func (r *Repository) GetSandbox(ctx context.Context, id string) (*model.SandboxRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM sandboxes WHERE id = ?`

	sandbox, err := r.scanOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sandbox %s: %w", id, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query sandbox: %w", err)
	}

	return sandbox, nil
}

// GetSandboxByName retrieves a sandbox record by name.
func (r *Repository) GetSandboxByName(ctx context.Context, name string) (*model.SandboxRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM sandboxes WHERE name = ?`

	sandbox, err := r.scanOne(ctx, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sandbox with name %s: %w", name, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query sandbox: %w", err)
	}

	return sandbox, nil
}

// ListSandboxes returns all sandbox records, newest first.
func (r *Repository) ListSandboxes(ctx context.Context) ([]model.SandboxRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM sandboxes ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query sandboxes: %w", err)
	}
	defer rows.Close()

	sandboxes := []model.SandboxRecord{}
	for rows.Next() {
		sandbox, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		sandboxes = append(sandboxes, sandbox)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sandboxes, nil
}

// UpdateSandbox updates an existing sandbox record.
func (r *Repository) UpdateSandbox(ctx context.Context, s model.SandboxRecord) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid sandbox: %w", err)
	}

	query := `
		UPDATE sandboxes
		SET
			name = ?,
			app_id = ?,
			image_id = ?,
			status = ?,
			created_at = ?,
			finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		s.Name,
		s.AppID,
		s.ImageID,
		s.Status,
		s.CreatedAt.Unix(),
		unixOrNil(s.FinishedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("could not update sandbox: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sandbox %s: %w", s.ID, model.ErrNotFound)
	}

	r.logger.Debugf("Updated sandbox in repository: %s", s.ID)
	return nil
}

// DeleteSandbox deletes a sandbox record.
func (r *Repository) DeleteSandbox(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sandboxes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not delete sandbox: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sandbox %s: %w", id, model.ErrNotFound)
	}

	r.logger.Debugf("Deleted sandbox from repository: %s", id)
	return nil
}

func (r *Repository) scanOne(ctx context.Context, query string, arg any) (*model.SandboxRecord, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	sandbox, err := r.scanRow(row)
	if err != nil {
		return nil, err
	}
	return &sandbox, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanRow(s scanner) (model.SandboxRecord, error) {
	var sandbox model.SandboxRecord
	var createdAt, finishedAt sql.NullInt64

	err := s.Scan(
		&sandbox.ID,
		&sandbox.Name,
		&sandbox.AppID,
		&sandbox.ImageID,
		&sandbox.Status,
		&createdAt,
		&finishedAt,
	)
	if err != nil {
		return model.SandboxRecord{}, err
	}

	if !createdAt.Valid {
		return model.SandboxRecord{}, fmt.Errorf("created_at is required")
	}
	sandbox.CreatedAt = timeFromUnix(createdAt.Int64)

	if finishedAt.Valid {
		t := timeFromUnix(finishedAt.Int64)
		sandbox.FinishedAt = &t
	}

	return sandbox, nil
}

func unixOrNil(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }

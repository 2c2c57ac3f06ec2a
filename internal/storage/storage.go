package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/rsbx/internal/model"
)

// Repository is the interface for the local sandbox records persistence.
type Repository interface {
	CreateSandbox(ctx context.Context, s model.SandboxRecord) error
	GetSandbox(ctx context.Context, id string) (*model.SandboxRecord, error)
	GetSandboxByName(ctx context.Context, name string) (*model.SandboxRecord, error)
	ListSandboxes(ctx context.Context) ([]model.SandboxRecord, error)
	UpdateSandbox(ctx context.Context, s model.SandboxRecord) error
	DeleteSandbox(ctx context.Context, id string) error
}

// GetSandboxByRef returns the record of a reference, by name first and id after.
func GetSandboxByRef(ctx context.Context, repo Repository, ref string) (*model.SandboxRecord, error) {
	if ref == "" {
		return nil, fmt.Errorf("sandbox reference is required: %w", model.ErrNotValid)
	}

	rec, err := repo.GetSandboxByName(ctx, ref)
	if errors.Is(err, model.ErrNotFound) {
		rec, err = repo.GetSandbox(ctx, ref)
	}
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("sandbox not found: %s: %w", ref, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not find sandbox '%s': %w", ref, err)
	}

	return rec, nil
}

// ResolveSandboxID returns the sandbox id of a reference, by record name first and id
// after. References without record are used as sandbox ids, so sandboxes created by
// other clients can be used too.
func ResolveSandboxID(ctx context.Context, repo Repository, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("sandbox reference is required: %w", model.ErrNotValid)
	}

	if repo == nil {
		return ref, nil
	}

	rec, err := GetSandboxByRef(ctx, repo, ref)
	if errors.Is(err, model.ErrNotFound) {
		return ref, nil
	}
	if err != nil {
		return "", err
	}

	if rec.Status != model.SandboxStatusRunning {
		return "", fmt.Errorf("sandbox '%s' is not running (status: %s): %w", rec.Name, rec.Status, model.ErrPrecondition)
	}

	return rec.ID, nil
}

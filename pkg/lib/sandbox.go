package lib

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/rsbx/internal/app/create"
	"github.com/slok/rsbx/internal/app/list"
	"github.com/slok/rsbx/internal/app/remove"
	"github.com/slok/rsbx/internal/app/status"
	"github.com/slok/rsbx/internal/app/terminate"
	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// Sandbox is a handle to a remote sandbox. Its methods run commands, use the filesystem,
// read the stdio, get the tunnels and wait for or terminate the sandbox.
type Sandbox struct {
	*sandbox.Sandbox

	// Record is the registry entry, nil for sandboxes not created by this client.
	Record *SandboxRecord
}

// CreateSandbox creates a sandbox from a declarative definition and registers it.
//
// The app is created if missing, the named secrets and the image are resolved, and Env
// is injected through an ephemeral secret. Returns [ErrAlreadyExists] if a registered
// sandbox already has the name.
func (c *Client) CreateSandbox(ctx context.Context, spec SandboxSpec) (*Sandbox, error) {
	svc, err := create.NewService(create.ServiceConfig{
		Client:      c.remote,
		Repository:  c.repo,
		Environment: c.environment,
		Image:       image.BuilderConfig{BuilderVersion: c.builderVersion},
		Logger:      c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Create(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &Sandbox{Sandbox: res.Sandbox, Record: &res.Record}, nil
}

// SandboxFromID returns a handle to a sandbox by its registered name or its id.
// Unregistered references are used as remote sandbox ids.
//
// Returns [ErrPrecondition] if the registered sandbox is not running anymore.
func (c *Client) SandboxFromID(ctx context.Context, ref string) (*Sandbox, error) {
	rec, err := storage.GetSandboxByRef(ctx, c.repo, ref)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	id, err := storage.ResolveSandboxID(ctx, c.repo, ref)
	if err != nil {
		return nil, err
	}

	sb, err := sandbox.New(sandbox.Config{Client: c.remote, SandboxID: id, Logger: c.logger})
	if err != nil {
		return nil, err
	}

	return &Sandbox{Sandbox: sb, Record: rec}, nil
}

// ListSandboxes lists the registered sandboxes, newest first. Pass nil opts for all.
func (c *Client) ListSandboxes(ctx context.Context, opts *ListSandboxesOpts) ([]SandboxRecord, error) {
	if opts == nil {
		opts = &ListSandboxesOpts{}
	}

	st, err := c.statusService()
	if err != nil {
		return nil, err
	}

	svc, err := list.NewService(list.ServiceConfig{
		Repository: c.repo,
		Status:     st,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx, list.Request{StatusFilter: opts.Status, Refresh: opts.Refresh})
}

// SandboxStatus returns the refreshed state of a registered sandbox.
//
// Returns [ErrNotFound] if no sandbox is registered with the name or id.
func (c *Client) SandboxStatus(ctx context.Context, ref string) (*SandboxState, error) {
	svc, err := c.statusService()
	if err != nil {
		return nil, err
	}

	res, err := svc.Run(ctx, status.Request{Ref: ref})
	if err != nil {
		return nil, err
	}

	return &SandboxState{Record: res.Record, ReturnCode: res.ReturnCode}, nil
}

// TerminateSandbox terminates a sandbox by its registered name or id.
func (c *Client) TerminateSandbox(ctx context.Context, ref string) (*SandboxRecord, error) {
	svc, err := terminate.NewService(terminate.ServiceConfig{
		Client:     c.remote,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx, terminate.Request{Ref: ref})
}

// RemoveSandbox removes a sandbox from the registry. If force is true a running sandbox
// is terminated first, otherwise removing it returns [ErrNotValid].
func (c *Client) RemoveSandbox(ctx context.Context, ref string, force bool) (*SandboxRecord, error) {
	svc, err := remove.NewService(remove.ServiceConfig{
		Client:     c.remote,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx, remove.Request{Ref: ref, Force: force})
}

func (c *Client) statusService() (*status.Service, error) {
	svc, err := status.NewService(status.ServiceConfig{
		Client:     c.remote,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}
	return svc, nil
}

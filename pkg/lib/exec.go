package lib

import (
	"context"
	"fmt"

	appcopy "github.com/slok/rsbx/internal/app/copy"
	appexec "github.com/slok/rsbx/internal/app/exec"
	"github.com/slok/rsbx/internal/model"
)

// Exec runs a command in a sandbox, by its registered name or id, and waits for it.
//
// Output is forwarded to the opts writers while the command runs. Pass nil opts for
// defaults (discarded output). Returns [ErrNotValid] if the command is empty.
func (c *Client) Exec(ctx context.Context, ref string, command []string, opts *ExecOpts) (*ExecResult, error) {
	if opts == nil {
		opts = &ExecOpts{}
	}

	svc, err := appexec.NewService(appexec.ServiceConfig{
		Client:     c.remote,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	code, err := svc.Run(ctx, appexec.Request{
		Ref:     ref,
		Command: command,
		Opts: model.ExecOpts{
			WorkingDir:  opts.WorkingDir,
			TimeoutSecs: int(opts.Timeout.Seconds()),
		},
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return nil, err
	}

	return &ExecResult{ExitCode: code}, nil
}

// CopyTo copies a local file into a sandbox. A remote path ending in `/` receives the
// file with its local name. It returns the copied bytes.
func (c *Client) CopyTo(ctx context.Context, ref, srcLocal, dstRemote string) (int, error) {
	return c.copy(ctx, appcopy.Request{Source: srcLocal, Destination: ref + ":" + dstRemote})
}

// CopyFrom copies a sandbox file to the host. It returns the copied bytes.
func (c *Client) CopyFrom(ctx context.Context, ref, srcRemote, dstLocal string) (int, error) {
	return c.copy(ctx, appcopy.Request{Source: ref + ":" + srcRemote, Destination: dstLocal})
}

// DownloadArchive downloads a sandbox path as a gzipped tarball. With extract the
// tarball is unpacked into dstLocal instead.
func (c *Client) DownloadArchive(ctx context.Context, ref, srcRemote, dstLocal string, extract bool) (int, error) {
	return c.copy(ctx, appcopy.Request{Source: ref + ":" + srcRemote, Destination: dstLocal, Archive: true, Extract: extract})
}

func (c *Client) copy(ctx context.Context, req appcopy.Request) (int, error) {
	svc, err := appcopy.NewService(appcopy.ServiceConfig{
		Client:     c.remote,
		Repository: c.repo,
		Logger:     c.logger,
	})
	if err != nil {
		return 0, fmt.Errorf("could not create service: %w", err)
	}

	return svc.Run(ctx, req)
}

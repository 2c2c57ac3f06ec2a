package rsbx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/rsbx/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
	App    string
	Image  string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "rsbx"
	}

	// go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("RSBX_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("rsbx binary not found at %q: %w", c.Binary, err)
	}

	if os.Getenv("RSBX_TOKEN_ID") == "" || os.Getenv("RSBX_TOKEN_SECRET") == "" {
		return fmt.Errorf("service token is required (RSBX_TOKEN_ID and RSBX_TOKEN_SECRET)")
	}

	if c.App == "" {
		c.App = "rsbx-integration"
	}

	if c.Image == "" {
		c.Image = "python:3.12-slim"
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "RSBX_INTEGRATION"
		envBinary     = "RSBX_INTEGRATION_BINARY"
		envApp        = "RSBX_INTEGRATION_APP"
		envImage      = "RSBX_INTEGRATION_IMAGE"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
		App:    os.Getenv(envApp),
		Image:  os.Getenv(envImage),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunCmd runs an rsbx command with the given arguments and a specific db path.
func RunCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunRSBX(ctx, nil, config.Binary, args, true)
}

// RunCreate creates a sandbox from the configured registry image.
func RunCreate(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("sandbox create --name %s --app %s --registry %s --timeout 5m --format json", name, config.App, config.Image)
	return RunCmd(ctx, config, dbPath, args)
}

// RunExec executes a command in a running sandbox, args are kept as they are.
func RunExec(ctx context.Context, config Config, dbPath, name string, command []string) (stdout, stderr []byte, err error) {
	args := []string{"--no-log", "--db-path", dbPath, "exec", name, "--"}
	args = append(args, command...)

	return testutils.RunRSBXArgs(ctx, nil, config.Binary, args, true)
}

// RunList lists sandboxes in JSON format.
func RunList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, "sandbox list --refresh --format json")
}

// RunRm removes a sandbox (with force).
func RunRm(ctx context.Context, config Config, dbPath, name string) (stdout, stderr []byte, err error) {
	return RunCmd(ctx, config, dbPath, fmt.Sprintf("sandbox rm --force %s", name))
}

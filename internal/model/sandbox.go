package model

import (
	"fmt"
	"strings"
	"time"
)

// App is a remote app, the namespace sandboxes and images are created in.
type App struct {
	ID   string
	Name string
}

// Secret is a remote secret, injected as environment variables.
type Secret struct {
	ID string
}

// Image is a built remote image.
type Image struct {
	ID string
}

// TunnelType selects the protocol of an encrypted tunnel.
type TunnelType string

const (
	TunnelTypeDefault TunnelType = ""
	TunnelTypeH2      TunnelType = "h2"
)

// PortSpec is a sandbox port exposed through a tunnel.
type PortSpec struct {
	Port        int
	Unencrypted bool
	TunnelType  TunnelType
}

// Resources defines the compute resources for a sandbox.
type Resources struct {
	// CPU is the CPU request in fractional physical cores.
	CPU      float64
	MemoryMB int
}

// SandboxConfig is the configuration a sandbox is created with.
type SandboxConfig struct {
	AppID     string
	ImageID   string
	Command   []string
	Timeout   time.Duration
	Workdir   string
	Resources Resources
	Ports     []PortSpec
	SecretIDs []string
}

const (
	// DefaultSandboxTimeout is the default sandbox lifetime.
	DefaultSandboxTimeout = 10 * time.Minute
	// DefaultSandboxCPU is the default CPU request.
	DefaultSandboxCPU = 0.125
	// DefaultSandboxMemoryMB is the default memory request.
	DefaultSandboxMemoryMB = 128
)

// DefaultSandboxCommand keeps the sandbox alive so commands can be executed in it.
var DefaultSandboxCommand = []string{"sleep", "48h"}

// Defaults sets the default values on the unset fields.
func (c *SandboxConfig) Defaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultSandboxTimeout
	}
	if c.Resources.CPU == 0 {
		c.Resources.CPU = DefaultSandboxCPU
	}
	if c.Resources.MemoryMB == 0 {
		c.Resources.MemoryMB = DefaultSandboxMemoryMB
	}
	if len(c.Command) == 0 {
		c.Command = DefaultSandboxCommand
	}
}

// Validate validates the sandbox configuration.
func (c *SandboxConfig) Validate() error {
	if c.AppID == "" {
		return fmt.Errorf("app id is required: %w", ErrNotValid)
	}

	if c.ImageID == "" {
		return fmt.Errorf("image id is required: %w", ErrNotValid)
	}

	if c.Timeout < 0 || c.Timeout%time.Second != 0 {
		return fmt.Errorf("timeout must be a positive whole number of seconds, got %s: %w", c.Timeout, ErrNotValid)
	}

	if c.Resources.CPU < 0 {
		return fmt.Errorf("cpu must be positive, got %f: %w", c.Resources.CPU, ErrNotValid)
	}

	if c.Resources.MemoryMB < 0 {
		return fmt.Errorf("memory must be positive, got %d: %w", c.Resources.MemoryMB, ErrNotValid)
	}

	if c.Workdir != "" && !strings.HasPrefix(c.Workdir, "/") {
		return fmt.Errorf("workdir must be an absolute path, got %q: %w", c.Workdir, ErrNotValid)
	}

	for _, p := range c.Ports {
		if p.Port <= 0 || p.Port > 65535 {
			return fmt.Errorf("invalid port %d: %w", p.Port, ErrNotValid)
		}
		if p.Unencrypted && p.TunnelType == TunnelTypeH2 {
			return fmt.Errorf("port %d: h2 tunnels must be encrypted: %w", p.Port, ErrNotValid)
		}
	}

	return nil
}

// SandboxStatus is the status of a sandbox as known by this client.
type SandboxStatus string

const (
	SandboxStatusRunning    SandboxStatus = "running"
	SandboxStatusFinished   SandboxStatus = "finished"
	SandboxStatusTerminated SandboxStatus = "terminated"
)

// SandboxRecord is the local record of a sandbox created by this client, it allows
// referring to sandboxes by name.
type SandboxRecord struct {
	ID        string
	Name      string
	AppID     string
	ImageID   string
	Status    SandboxStatus
	CreatedAt time.Time
	// FinishedAt is set once the sandbox finished or was terminated.
	FinishedAt *time.Time
}

// Validate validates the sandbox record.
func (r SandboxRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required: %w", ErrNotValid)
	}
	if r.Name == "" {
		return fmt.Errorf("name is required: %w", ErrNotValid)
	}
	switch r.Status {
	case SandboxStatusRunning, SandboxStatusFinished, SandboxStatusTerminated:
	default:
		return fmt.Errorf("invalid status %q: %w", r.Status, ErrNotValid)
	}
	return nil
}

// ImageSource is where the image of a declarative sandbox comes from, exactly one field
// is set.
type ImageSource struct {
	// ID is an already built image.
	ID string
	// Registry is a public registry image tag.
	Registry string
	// AWSECR is an AWS ECR image tag, pulled with the AWSSecretName credentials.
	AWSECR        string
	AWSSecretName string
	// Dockerfile is a local Dockerfile path.
	Dockerfile string
}

// Validate validates the image source.
func (s ImageSource) Validate() error {
	set := 0
	for _, v := range []string{s.ID, s.Registry, s.AWSECR, s.Dockerfile} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one image source must be set (id, registry, aws_ecr or dockerfile): %w", ErrNotValid)
	}
	if s.AWSECR != "" && s.AWSSecretName == "" {
		return fmt.Errorf("aws ecr images need a secret with the credentials: %w", ErrNotValid)
	}
	return nil
}

// SandboxSpec is a declarative sandbox definition. It references the app, image and
// secrets by name, they are resolved to ids when the sandbox is created.
type SandboxSpec struct {
	// Name is the local name of the sandbox, optional.
	Name        string
	AppName     string
	Environment string
	Image       ImageSource
	SecretNames []string
	// Env is set in the sandbox through an ephemeral secret.
	Env map[string]string
	// Config holds the sandbox settings, its ids are set on creation.
	Config SandboxConfig
}

package io

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/rsbx/internal/model"
)

// SandboxSpecYAMLRepository loads declarative sandbox definitions from YAML files.
type SandboxSpecYAMLRepository struct {
	fs fs.FS
}

// NewSandboxSpecYAMLRepository creates a new YAML sandbox spec repository.
func NewSandboxSpecYAMLRepository(filesystem fs.FS) *SandboxSpecYAMLRepository {
	return &SandboxSpecYAMLRepository{fs: filesystem}
}

// GetSandboxSpec loads a sandbox definition from a YAML file and returns a validated domain model.
func (r *SandboxSpecYAMLRepository) GetSandboxSpec(ctx context.Context, path string) (model.SandboxSpec, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.SandboxSpec{}, fmt.Errorf("reading sandbox file: %w", err)
	}

	if ctx.Err() != nil {
		return model.SandboxSpec{}, ctx.Err()
	}

	var spec SandboxSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return model.SandboxSpec{}, fmt.Errorf("parsing YAML: %w: %w", model.ErrNotValid, err)
	}

	if err := spec.validate(); err != nil {
		return model.SandboxSpec{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return spec.toModel(), nil
}

// SandboxSpec represents the YAML structure of a sandbox definition.
type SandboxSpec struct {
	Name        string            `yaml:"name"`
	App         string            `yaml:"app"`
	Environment string            `yaml:"environment"`
	Image       ImageConfig       `yaml:"image"`
	Command     []string          `yaml:"command"`
	Timeout     time.Duration     `yaml:"timeout"`
	Workdir     string            `yaml:"workdir"`
	Resources   ResourcesConfig   `yaml:"resources"`
	Ports       []PortConfig      `yaml:"ports"`
	Secrets     []string          `yaml:"secrets"`
	Env         map[string]string `yaml:"env"`
}

// ImageConfig represents the YAML structure of the sandbox image source.
type ImageConfig struct {
	ID         string `yaml:"id"`
	Registry   string `yaml:"registry"`
	AWSECR     string `yaml:"aws_ecr"`
	AWSSecret  string `yaml:"aws_secret"`
	Dockerfile string `yaml:"dockerfile"`
}

// ResourcesConfig represents the YAML structure for resource configuration.
type ResourcesConfig struct {
	CPU      float64 `yaml:"cpu"`
	MemoryMB int     `yaml:"memory_mb"`
}

// PortConfig represents the YAML structure of an exposed port.
type PortConfig struct {
	Port        int    `yaml:"port"`
	Unencrypted bool   `yaml:"unencrypted"`
	TunnelType  string `yaml:"tunnel_type"`
}

func (c SandboxSpec) validate() error {
	if c.App == "" {
		return fmt.Errorf("app is required: %w", model.ErrNotValid)
	}

	if err := c.toModel().Image.Validate(); err != nil {
		return fmt.Errorf("image: %w", err)
	}

	if err := c.Resources.validate(); err != nil {
		return fmt.Errorf("resources: %w", err)
	}

	for _, p := range c.Ports {
		switch model.TunnelType(p.TunnelType) {
		case model.TunnelTypeDefault, model.TunnelTypeH2:
		default:
			return fmt.Errorf("port %d: unknown tunnel type %q: %w", p.Port, p.TunnelType, model.ErrNotValid)
		}
	}

	return nil
}

func (c SandboxSpec) toModel() model.SandboxSpec {
	spec := model.SandboxSpec{
		Name:        c.Name,
		AppName:     c.App,
		Environment: c.Environment,
		Image: model.ImageSource{
			ID:            c.Image.ID,
			Registry:      c.Image.Registry,
			AWSECR:        c.Image.AWSECR,
			AWSSecretName: c.Image.AWSSecret,
			Dockerfile:    c.Image.Dockerfile,
		},
		SecretNames: c.Secrets,
		Env:         c.Env,
		Config: model.SandboxConfig{
			Command: c.Command,
			Timeout: c.Timeout,
			Workdir: c.Workdir,
			Resources: model.Resources{
				CPU:      c.Resources.CPU,
				MemoryMB: c.Resources.MemoryMB,
			},
		},
	}

	for _, p := range c.Ports {
		spec.Config.Ports = append(spec.Config.Ports, model.PortSpec{
			Port:        p.Port,
			Unencrypted: p.Unencrypted,
			TunnelType:  model.TunnelType(p.TunnelType),
		})
	}

	return spec
}

func (r ResourcesConfig) validate() error {
	if r.CPU < 0 {
		return fmt.Errorf("cpu must be positive, got: %f: %w", r.CPU, model.ErrNotValid)
	}
	if r.MemoryMB < 0 {
		return fmt.Errorf("memory_mb must be positive, got: %d: %w", r.MemoryMB, model.ErrNotValid)
	}
	return nil
}

package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/rsbx/internal/model"
)

func TestSandboxSpecYAMLRepository_GetSandboxSpec(t *testing.T) {
	tests := map[string]struct {
		fs      fstest.MapFS
		path    string
		expSpec model.SandboxSpec
		expErr  bool
		errMsg  string
	}{
		"A complete sandbox definition should load successfully": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{
					Data: []byte(`name: dev
app: my-app
environment: staging
image:
  registry: python:3.13-slim
command: ["python", "-m", "http.server", "8080"]
timeout: 30m
workdir: /srv
resources:
  cpu: 0.5
  memory_mb: 512
ports:
  - port: 8080
  - port: 5432
    unencrypted: true
  - port: 9000
    tunnel_type: h2
secrets: ["db-creds"]
env:
  FOO: bar
`),
				},
			},
			path: "sandbox.yaml",
			expSpec: model.SandboxSpec{
				Name:        "dev",
				AppName:     "my-app",
				Environment: "staging",
				Image:       model.ImageSource{Registry: "python:3.13-slim"},
				SecretNames: []string{"db-creds"},
				Env:         map[string]string{"FOO": "bar"},
				Config: model.SandboxConfig{
					Command:   []string{"python", "-m", "http.server", "8080"},
					Timeout:   30 * time.Minute,
					Workdir:   "/srv",
					Resources: model.Resources{CPU: 0.5, MemoryMB: 512},
					Ports: []model.PortSpec{
						{Port: 8080},
						{Port: 5432, Unencrypted: true},
						{Port: 9000, TunnelType: model.TunnelTypeH2},
					},
				},
			},
		},
		"A minimal sandbox definition should load successfully": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{
					Data: []byte(`app: my-app
image:
  id: im-123
`),
				},
			},
			path: "sandbox.yaml",
			expSpec: model.SandboxSpec{
				AppName: "my-app",
				Image:   model.ImageSource{ID: "im-123"},
			},
		},
		"Missing app should return error": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{Data: []byte("image:\n  id: im-123\n")},
			},
			path:   "sandbox.yaml",
			expErr: true,
			errMsg: "app is required",
		},
		"Multiple image sources should return error": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{Data: []byte("app: a\nimage:\n  id: im-123\n  registry: alpine\n")},
			},
			path:   "sandbox.yaml",
			expErr: true,
			errMsg: "exactly one image source",
		},
		"AWS ECR image without secret should return error": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{Data: []byte("app: a\nimage:\n  aws_ecr: 1.dkr.ecr.eu-west-1.amazonaws.com/app:v1\n")},
			},
			path:   "sandbox.yaml",
			expErr: true,
			errMsg: "aws ecr images need a secret",
		},
		"Unknown tunnel type should return error": {
			fs: fstest.MapFS{
				"sandbox.yaml": &fstest.MapFile{Data: []byte("app: a\nimage:\n  id: im-1\nports:\n  - port: 80\n    tunnel_type: quic\n")},
			},
			path:   "sandbox.yaml",
			expErr: true,
			errMsg: "unknown tunnel type",
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading sandbox file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewSandboxSpecYAMLRepository(tc.fs)
			spec, err := repo.GetSandboxSpec(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expSpec, spec)
		})
	}
}

func TestSandboxSpecYAMLRepository_GetSandboxSpec_ContextCancellation(t *testing.T) {
	fs := fstest.MapFS{
		"test.yaml": &fstest.MapFile{
			Data: []byte(`app: test
image:
  id: im-1
`),
		},
	}

	repo := NewSandboxSpecYAMLRepository(fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := repo.GetSandboxSpec(ctx, "test.yaml")
	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
}

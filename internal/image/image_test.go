package image_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/remote/remotemock"
)

func newBuilder(t *testing.T, m *remotemock.Client) *image.Builder {
	t.Helper()
	b, err := image.NewBuilder(image.BuilderConfig{
		Client:         m,
		BuilderVersion: "2024.10",
		JoinInterval:   time.Millisecond,
		ErrorBackoff:   time.Millisecond,
	})
	require.NoError(t, err)
	return b
}

func TestBuildFromRegistry(t *testing.T) {
	tests := map[string]struct {
		mock     func(m *remotemock.Client)
		expImage *model.Image
		expErr   error
	}{
		"An immediately successful build should not join the build.": {
			mock: func(m *remotemock.Client) {
				m.On("ImageGetOrCreate", mock.Anything, remote.ImageGetOrCreateRequest{
					AppID:              "ap-1",
					DockerfileCommands: []string{"FROM alpine:3.21"},
					BuilderVersion:     "2024.10",
				}).Once().Return(&remote.ImageGetOrCreateResponse{
					ImageID: "im-1",
					Result:  &model.OperationResult{Status: model.GenericStatusSuccess},
				}, nil)
			},
			expImage: &model.Image{ID: "im-1"},
		},

		"A running build should be joined until it has a result.": {
			mock: func(m *remotemock.Client) {
				m.On("ImageGetOrCreate", mock.Anything, mock.Anything).Once().Return(&remote.ImageGetOrCreateResponse{ImageID: "im-1"}, nil)
				m.On("ImageJoinStreaming", mock.Anything, remote.ImageJoinStreamingRequest{ImageID: "im-1", LastEntryID: "", Timeout: 55 * time.Second}).
					Once().Return(&remote.ImageJoinStreamingResponse{EntryID: "1-0"}, nil)
				m.On("ImageJoinStreaming", mock.Anything, remote.ImageJoinStreamingRequest{ImageID: "im-1", LastEntryID: "1-0", Timeout: 55 * time.Second}).
					Once().Return(nil, status.Error(codes.DeadlineExceeded, "deadline"))
				m.On("ImageJoinStreaming", mock.Anything, remote.ImageJoinStreamingRequest{ImageID: "im-1", LastEntryID: "1-0", Timeout: 55 * time.Second}).
					Once().Return(&remote.ImageJoinStreamingResponse{EntryID: "2-0", Result: &model.OperationResult{Status: model.GenericStatusSuccess}}, nil)
			},
			expImage: &model.Image{ID: "im-1"},
		},

		"A failed build should fail with the build exception.": {
			mock: func(m *remotemock.Client) {
				m.On("ImageGetOrCreate", mock.Anything, mock.Anything).Once().Return(&remote.ImageGetOrCreateResponse{ImageID: "im-1"}, nil)
				m.On("ImageJoinStreaming", mock.Anything, mock.Anything).Once().Return(&remote.ImageJoinStreamingResponse{
					Result: &model.OperationResult{Status: model.GenericStatusFailure, Exception: "manifest unknown"},
				}, nil)
			},
			expErr: model.ErrBuild,
		},

		"A terminated build should fail as terminated.": {
			mock: func(m *remotemock.Client) {
				m.On("ImageGetOrCreate", mock.Anything, mock.Anything).Once().Return(&remote.ImageGetOrCreateResponse{
					ImageID: "im-1",
					Result:  &model.OperationResult{Status: model.GenericStatusTerminated},
				}, nil)
			},
			expErr: model.ErrTerminated,
		},

		"A build start error should fail.": {
			mock: func(m *remotemock.Client) {
				m.On("ImageGetOrCreate", mock.Anything, mock.Anything).Once().Return(nil, status.Error(codes.PermissionDenied, "nope"))
			},
			expErr: nil,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)
			b := newBuilder(t, m)

			gotImage, err := b.FromRegistry(context.TODO(), "ap-1", "alpine:3.21")
			switch {
			case test.expImage != nil:
				assert.NoError(err)
				assert.Equal(test.expImage, gotImage)
			case test.expErr != nil:
				assert.ErrorIs(err, test.expErr)
			default:
				assert.Error(err)
			}
		})
	}
}

func TestBuildFromAWSECR(t *testing.T) {
	m := remotemock.NewClient(t)
	m.On("ImageGetOrCreate", mock.Anything, remote.ImageGetOrCreateRequest{
		AppID:              "ap-1",
		DockerfileCommands: []string{"FROM 123.dkr.ecr.eu-west-1.amazonaws.com/app:v1"},
		RegistryConfig:     &remote.ImageRegistryConfig{AuthType: remote.RegistryAuthTypeAWS, SecretID: "st-aws"},
		BuilderVersion:     "2024.10",
	}).Once().Return(&remote.ImageGetOrCreateResponse{ImageID: "im-2", Result: &model.OperationResult{Status: model.GenericStatusSuccess}}, nil)
	b := newBuilder(t, m)

	img, err := b.FromAWSECR(context.TODO(), "ap-1", "123.dkr.ecr.eu-west-1.amazonaws.com/app:v1", "st-aws")
	require.NoError(t, err)
	assert.Equal(t, "im-2", img.ID)

	_, err = b.FromAWSECR(context.TODO(), "ap-1", "app:v1", "")
	assert.ErrorIs(t, err, model.ErrNotValid)
}

func TestBuildFromDockerfile(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(os.WriteFile(path, []byte("FROM python:3.13\nRUN pip install requests"), 0o644))

	m := remotemock.NewClient(t)
	m.On("ImageGetOrCreate", mock.Anything, remote.ImageGetOrCreateRequest{
		AppID:              "ap-1",
		DockerfileCommands: []string{"FROM python:3.13", "RUN pip install requests"},
		BuildArgs:          map[string]string{"A": "b"},
		SecretIDs:          []string{"st-1"},
		BuilderVersion:     "2024.10",
		ForceBuild:         true,
	}).Once().Return(&remote.ImageGetOrCreateResponse{ImageID: "im-3", Result: &model.OperationResult{Status: model.GenericStatusSuccess}}, nil)
	b := newBuilder(t, m)

	img, err := b.FromDockerfile(context.TODO(), "ap-1", path, image.BuildOpts{
		ForceBuild: true,
		SecretIDs:  []string{"st-1"},
		BuildArgs:  map[string]string{"A": "b"},
	})
	require.NoError(err)
	assert.Equal("im-3", img.ID)

	_, err = b.FromDockerfile(context.TODO(), "ap-1", filepath.Join(dir, "missing"), image.BuildOpts{})
	assert.ErrorIs(err, model.ErrNotValid)
}

package resource_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/remote/remotemock"
	"github.com/slok/rsbx/internal/resource"
)

func newResolver(t *testing.T, m *remotemock.Client) *resource.Resolver {
	t.Helper()

	r, err := resource.NewResolver(resource.ResolverConfig{Client: m, Environment: "main"})
	require.NoError(t, err)

	return r
}

func TestLookupApp(t *testing.T) {
	tests := map[string]struct {
		name   string
		opts   resource.AppOpts
		mock   func(m *remotemock.Client)
		expApp *model.App
		expErr error
	}{
		"An existing app should be returned without creating it": {
			name: "my-app",
			mock: func(m *remotemock.Client) {
				m.On("AppGetOrCreate", mock.Anything, remote.AppGetOrCreateRequest{
					AppName:            "my-app",
					EnvironmentName:    "main",
					ObjectCreationType: remote.ObjectCreationTypeUnspecified,
				}).Once().Return(&remote.AppGetOrCreateResponse{AppID: "ap-1"}, nil)
			},
			expApp: &model.App{ID: "ap-1", Name: "my-app"},
		},

		"Create if missing should be sent with the requested environment": {
			name: "my-app",
			opts: resource.AppOpts{CreateIfMissing: true, Environment: "staging"},
			mock: func(m *remotemock.Client) {
				m.On("AppGetOrCreate", mock.Anything, remote.AppGetOrCreateRequest{
					AppName:            "my-app",
					EnvironmentName:    "staging",
					ObjectCreationType: remote.ObjectCreationTypeCreateIfMissing,
				}).Once().Return(&remote.AppGetOrCreateResponse{AppID: "ap-2"}, nil)
			},
			expApp: &model.App{ID: "ap-2", Name: "my-app"},
		},

		"A missing app should fail with not found": {
			name: "nope",
			mock: func(m *remotemock.Client) {
				m.On("AppGetOrCreate", mock.Anything, mock.Anything).Once().Return(nil, status.Error(codes.NotFound, "app not found"))
			},
			expErr: model.ErrNotFound,
		},

		"An empty name should fail without calling the service": {
			mock:   func(m *remotemock.Client) {},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)

			app, err := newResolver(t, m).LookupApp(context.TODO(), test.name, test.opts)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expApp, app)
		})
	}
}

func TestSecretFromName(t *testing.T) {
	m := remotemock.NewClient(t)
	m.On("SecretGetOrCreate", mock.Anything, remote.SecretGetOrCreateRequest{
		DeploymentName:     "db-creds",
		EnvironmentName:    "main",
		ObjectCreationType: remote.ObjectCreationTypeUnspecified,
	}).Once().Return(&remote.SecretGetOrCreateResponse{SecretID: "st-1"}, nil)
	m.On("SecretGetOrCreate", mock.Anything, mock.Anything).Once().Return(nil, status.Error(codes.NotFound, "missing"))

	r := newResolver(t, m)

	s, err := r.SecretFromName(context.TODO(), "db-creds", "")
	require.NoError(t, err)
	assert.Equal(t, "st-1", s.ID)

	_, err = r.SecretFromName(context.TODO(), "other", "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSecretFromMap(t *testing.T) {
	m := remotemock.NewClient(t)
	m.On("SecretGetOrCreate", mock.Anything, mock.MatchedBy(func(req remote.SecretGetOrCreateRequest) bool {
		return strings.HasPrefix(req.DeploymentName, "rsbx-secret-") &&
			req.ObjectCreationType == remote.ObjectCreationTypeCreateIfMissing &&
			req.EnvironmentName == "main" &&
			req.EnvDict["FOO"] == "bar"
	})).Once().Return(&remote.SecretGetOrCreateResponse{SecretID: "st-2"}, nil)
	m.On("SecretGetOrCreate", mock.Anything, mock.MatchedBy(func(req remote.SecretGetOrCreateRequest) bool {
		return req.DeploymentName == "named"
	})).Once().Return(nil, errors.New("boom"))

	r := newResolver(t, m)

	s, err := r.SecretFromMap(context.TODO(), map[string]string{"FOO": "bar"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "st-2", s.ID)

	_, err = r.SecretFromMap(context.TODO(), map[string]string{"FOO": "bar"}, "named", "")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestSecretsFromNames(t *testing.T) {
	m := remotemock.NewClient(t)
	m.On("SecretGetOrCreate", mock.Anything, mock.MatchedBy(func(req remote.SecretGetOrCreateRequest) bool { return req.DeploymentName == "a" })).
		Once().Return(&remote.SecretGetOrCreateResponse{SecretID: "st-a"}, nil)
	m.On("SecretGetOrCreate", mock.Anything, mock.MatchedBy(func(req remote.SecretGetOrCreateRequest) bool { return req.DeploymentName == "b" })).
		Once().Return(&remote.SecretGetOrCreateResponse{SecretID: "st-b"}, nil)

	ids, err := newResolver(t, m).SecretsFromNames(context.TODO(), []string{"a", "b"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"st-a", "st-b"}, ids)
}

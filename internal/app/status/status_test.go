package status_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/app/status"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/remote/remotemock"
	"github.com/slok/rsbx/internal/storage/memory"
)

func intPtr(i int) *int { return &i }

func TestNewService(t *testing.T) {
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	tests := map[string]struct {
		cfg    status.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			cfg: status.ServiceConfig{Client: &remotemock.Client{}, Repository: repo},
		},
		"missing client should fail": {
			cfg:    status.ServiceConfig{Repository: repo},
			expErr: true,
		},
		"missing repository should fail": {
			cfg:    status.ServiceConfig{Client: &remotemock.Client{}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := status.NewService(test.cfg)
			if test.expErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_Run(t *testing.T) {
	createdAt := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	finishedAt := time.Date(2026, 1, 30, 11, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		record        model.SandboxRecord
		ref           string
		mock          func(m *remotemock.Client)
		expStatus     model.SandboxStatus
		expReturnCode *int
		expFinished   bool
		expErr        error
	}{
		"a running sandbox that is still running should stay running": {
			record: model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: createdAt},
			ref:    "dev",
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, remote.SandboxWaitRequest{SandboxID: "sb-1", Timeout: time.Second}).
					Once().Return(nil, grpcstatus.Error(codes.DeadlineExceeded, "deadline"))
			},
			expStatus: model.SandboxStatusRunning,
		},

		"a running sandbox that finished should be stored as finished": {
			record: model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: createdAt},
			ref:    "sb-1",
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusSuccess, ExitCode: intPtr(3)},
				}, nil)
			},
			expStatus:     model.SandboxStatusFinished,
			expReturnCode: intPtr(3),
			expFinished:   true,
		},

		"a running sandbox that was terminated should be stored as terminated": {
			record: model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: createdAt},
			ref:    "dev",
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusTerminated},
				}, nil)
			},
			expStatus:     model.SandboxStatusTerminated,
			expReturnCode: intPtr(137),
			expFinished:   true,
		},

		"a running sandbox missing on the service should be stored as terminated": {
			record: model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: createdAt},
			ref:    "dev",
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(nil, grpcstatus.Error(codes.NotFound, "gone"))
			},
			expStatus:   model.SandboxStatusTerminated,
			expFinished: true,
		},

		"a finished sandbox should not be polled": {
			record:      model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusFinished, CreatedAt: createdAt, FinishedAt: &finishedAt},
			ref:         "dev",
			mock:        func(m *remotemock.Client) {},
			expStatus:   model.SandboxStatusFinished,
			expFinished: true,
		},

		"an unknown sandbox should fail": {
			record: model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: createdAt},
			ref:    "nope",
			mock:   func(m *remotemock.Client) {},
			expErr: model.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)

			repo, err := memory.NewRepository(memory.RepositoryConfig{})
			require.NoError(err)
			require.NoError(repo.CreateSandbox(context.TODO(), test.record))

			svc, err := status.NewService(status.ServiceConfig{Client: m, Repository: repo})
			require.NoError(err)

			res, err := svc.Run(context.TODO(), status.Request{Ref: test.ref})
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)

			assert.Equal(test.expStatus, res.Record.Status)
			assert.Equal(test.expReturnCode, res.ReturnCode)
			assert.Equal(test.expFinished, res.Record.FinishedAt != nil)

			stored, err := repo.GetSandbox(context.TODO(), test.record.ID)
			require.NoError(err)
			assert.Equal(test.expStatus, stored.Status)
		})
	}
}

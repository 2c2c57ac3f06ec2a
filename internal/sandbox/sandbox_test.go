package sandbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/remote/remotemock"
	"github.com/slok/rsbx/internal/sandbox"
)

func intPtr(i int) *int { return &i }

func newSandbox(t *testing.T, m *remotemock.Client) *sandbox.Sandbox {
	t.Helper()
	sb, err := sandbox.New(sandbox.Config{
		Client:       m,
		SandboxID:    "sb-1",
		WaitInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return sb
}

func expectTaskID(m *remotemock.Client) {
	m.On("SandboxGetTaskID", mock.Anything, remote.SandboxGetTaskIDRequest{SandboxID: "sb-1", WaitUntilReady: true}).
		Once().Return(&remote.SandboxGetTaskIDResponse{TaskID: "ta-1"}, nil)
}

func TestCreate(t *testing.T) {
	tests := map[string]struct {
		cfg    model.SandboxConfig
		mock   func(m *remotemock.Client)
		expErr error
	}{
		"A sandbox without image should fail without calling the service.": {
			cfg:    model.SandboxConfig{AppID: "ap-1"},
			mock:   func(m *remotemock.Client) {},
			expErr: model.ErrNotValid,
		},

		"A sandbox should be created with the defaults.": {
			cfg: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1"},
			mock: func(m *remotemock.Client) {
				m.On("SandboxCreate", mock.Anything, remote.SandboxCreateRequest{
					AppID: "ap-1",
					Config: model.SandboxConfig{
						AppID:     "ap-1",
						ImageID:   "im-1",
						Command:   []string{"sleep", "48h"},
						Timeout:   10 * time.Minute,
						Resources: model.Resources{CPU: 0.125, MemoryMB: 128},
					},
				}).Once().Return(&remote.SandboxCreateResponse{SandboxID: "sb-1"}, nil)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)

			sb, err := sandbox.Create(context.TODO(), sandbox.Config{Client: m}, test.cfg)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal("sb-1", sb.ID())
			}
		})
	}
}

func TestTaskID(t *testing.T) {
	tests := map[string]struct {
		resp      *remote.SandboxGetTaskIDResponse
		expTaskID string
		expErr    error
	}{
		"A ready sandbox should return its task id.": {
			resp:      &remote.SandboxGetTaskIDResponse{TaskID: "ta-1"},
			expTaskID: "ta-1",
		},

		"A sandbox without task should fail as a precondition.": {
			resp:   &remote.SandboxGetTaskIDResponse{},
			expErr: model.ErrPrecondition,
		},

		"A finished sandbox without task should fail as a precondition.": {
			resp:   &remote.SandboxGetTaskIDResponse{TaskResult: &model.OperationResult{Status: model.GenericStatusTerminated}},
			expErr: model.ErrPrecondition,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			m.On("SandboxGetTaskID", mock.Anything, mock.Anything).Once().Return(test.resp, nil)
			sb := newSandbox(t, m)

			taskID, err := sb.TaskID(context.TODO())
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expTaskID, taskID)

			// Cached, the mock only allows one call.
			taskID, err = sb.TaskID(context.TODO())
			assert.NoError(err)
			assert.Equal(test.expTaskID, taskID)
		})
	}
}

func TestExecUsesTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	expectTaskID(m)
	m.On("ContainerExec", mock.Anything, remote.ContainerExecRequest{TaskID: "ta-1", Command: []string{"ls"}, TimeoutSecs: 30}).
		Once().Return(&remote.ContainerExecResponse{ExecID: "ex-1"}, nil)
	m.On("ContainerExec", mock.Anything, remote.ContainerExecRequest{TaskID: "ta-1", Command: []string{"pwd"}}).
		Once().Return(&remote.ContainerExecResponse{ExecID: "ex-2"}, nil)
	sb := newSandbox(t, m)

	p, err := sb.Exec(context.TODO(), []string{"ls"}, model.ExecOpts{TimeoutSecs: 30})
	require.NoError(err)
	assert.Equal("ex-1", p.Handle().ID)

	p, err = sb.Exec(context.TODO(), []string{"pwd"}, model.ExecOpts{})
	require.NoError(err)
	assert.Equal("ex-2", p.Handle().ID)

	_, err = sb.Exec(context.TODO(), nil, model.ExecOpts{})
	assert.ErrorIs(err, model.ErrNotValid)
}

func TestFilesystemUsesTask(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	expectTaskID(m)
	m.On("ContainerFilesystemExec", mock.Anything, remote.FilesystemExecRequest{TaskID: "ta-1", Op: remote.FilesystemOpLs, Path: "/"}).
		Once().Return(&remote.FilesystemExecResponse{ExecID: "fx-1"}, nil)
	m.On("ContainerFilesystemExecGetOutput", mock.Anything, remote.FilesystemExecGetOutputRequest{ExecID: "fx-1", Timeout: 10 * time.Second}).
		Once().Return([]model.OutputBatch{{Items: [][]byte{[]byte("bin\netc\n")}, EOF: true}}, nil)
	m.On("ContainerFilesystemExec", mock.Anything, remote.FilesystemExecRequest{TaskID: "ta-1", Op: remote.FilesystemOpMkdir, Path: "/data"}).
		Once().Return(&remote.FilesystemExecResponse{ExecID: "fx-2"}, nil)
	m.On("ContainerFilesystemExecGetOutput", mock.Anything, remote.FilesystemExecGetOutputRequest{ExecID: "fx-2", Timeout: 10 * time.Second}).
		Once().Return([]model.OutputBatch{{EOF: true}}, nil)
	sb := newSandbox(t, m)

	entries, err := sb.Ls(context.TODO(), "/")
	require.NoError(err)
	assert.Equal([]string{"bin", "etc"}, entries)

	require.NoError(sb.Mkdir(context.TODO(), "/data", false))
}

func TestWait(t *testing.T) {
	deadline := status.Error(codes.DeadlineExceeded, "deadline")

	tests := map[string]struct {
		mock    func(m *remotemock.Client)
		expCode int
		expErr  error
	}{
		"A successful sandbox should return 0.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, remote.SandboxWaitRequest{SandboxID: "sb-1", Timeout: 55 * time.Second}).
					Once().Return(&remote.SandboxWaitResponse{Result: &model.OperationResult{Status: model.GenericStatusSuccess}}, nil)
			},
			expCode: 0,
		},

		"A running sandbox should be waited until it finishes.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(nil, deadline)
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{}, nil)
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusSuccess, ExitCode: intPtr(0)},
				}, nil)
			},
			expCode: 0,
		},

		"A failed sandbox should return its exit code and the failure.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusFailure, ExitCode: intPtr(3), Exception: "exit status 3"},
				}, nil)
			},
			expCode: 3,
			expErr:  model.ErrSandbox,
		},

		"A timed out sandbox should return 124 and a timeout.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusTimeout},
				}, nil)
			},
			expCode: 124,
			expErr:  model.ErrTimeout,
		},

		"A terminated sandbox should return 137 and a termination.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxWait", mock.Anything, mock.Anything).Once().Return(&remote.SandboxWaitResponse{
					Result: &model.OperationResult{Status: model.GenericStatusTerminated},
				}, nil)
			},
			expCode: 137,
			expErr:  model.ErrTerminated,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)
			sb := newSandbox(t, m)

			// The second wait is served from the cached result.
			for range 2 {
				code, err := sb.Wait(context.TODO())
				if test.expErr != nil {
					assert.ErrorIs(err, test.expErr)
				} else {
					assert.NoError(err)
				}
				assert.Equal(test.expCode, code)
			}
		})
	}
}

func TestPoll(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	req := remote.SandboxWaitRequest{SandboxID: "sb-1", Timeout: time.Second}
	m.On("SandboxWait", mock.Anything, req).Once().Return(nil, status.Error(codes.DeadlineExceeded, "deadline"))
	m.On("SandboxWait", mock.Anything, req).Once().Return(&remote.SandboxWaitResponse{}, nil)
	m.On("SandboxWait", mock.Anything, req).Once().Return(&remote.SandboxWaitResponse{
		Result: &model.OperationResult{Status: model.GenericStatusSuccess, ExitCode: intPtr(2)},
	}, nil)
	sb := newSandbox(t, m)

	code, err := sb.Poll(context.TODO())
	require.NoError(err)
	assert.Nil(code)

	code, err = sb.ReturnCode(context.TODO())
	require.NoError(err)
	assert.Nil(code)

	code, err = sb.Poll(context.TODO())
	require.NoError(err)
	require.NotNil(code)
	assert.Equal(2, *code)

	// Cached.
	code, err = sb.ReturnCode(context.TODO())
	require.NoError(err)
	assert.Equal(2, *code)
	gotCode, err := sb.Wait(context.TODO())
	require.NoError(err)
	assert.Equal(2, gotCode)
}

func TestTunnels(t *testing.T) {
	tests := map[string]struct {
		timeout    time.Duration
		mock       func(m *remotemock.Client)
		expTunnels map[int]model.Tunnel
		expErr     error
	}{
		"Tunnels should be returned by container port.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxGetTunnels", mock.Anything, remote.SandboxGetTunnelsRequest{SandboxID: "sb-1", Timeout: 50 * time.Second}).
					Once().Return(&remote.SandboxGetTunnelsResponse{
					Result: &model.OperationResult{Status: model.GenericStatusSuccess},
					Tunnels: []remote.TunnelData{
						{ContainerPort: 8080, Host: "abc.rsbx.host", Port: 443},
						{ContainerPort: 5432, Host: "def.rsbx.host", Port: 443, UnencryptedHost: "r1.rsbx.host", UnencryptedPort: 31000},
					},
				}, nil)
			},
			expTunnels: map[int]model.Tunnel{
				8080: {Host: "abc.rsbx.host", Port: 443},
				5432: {Host: "def.rsbx.host", Port: 443, UnencryptedHost: "r1.rsbx.host", UnencryptedPort: 31000},
			},
		},

		"A custom timeout should be sent to the service.": {
			timeout: 5 * time.Second,
			mock: func(m *remotemock.Client) {
				m.On("SandboxGetTunnels", mock.Anything, remote.SandboxGetTunnelsRequest{SandboxID: "sb-1", Timeout: 5 * time.Second}).
					Once().Return(&remote.SandboxGetTunnelsResponse{}, nil)
			},
			expTunnels: map[int]model.Tunnel{},
		},

		"Tunnels not ready in time should fail with a timeout.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxGetTunnels", mock.Anything, mock.Anything).Once().Return(&remote.SandboxGetTunnelsResponse{
					Result: &model.OperationResult{Status: model.GenericStatusTimeout},
				}, nil)
			},
			expErr: model.ErrTimeout,
		},

		"A call deadline should fail with a timeout.": {
			mock: func(m *remotemock.Client) {
				m.On("SandboxGetTunnels", mock.Anything, mock.Anything).Once().Return(nil, status.Error(codes.DeadlineExceeded, "deadline"))
			},
			expErr: model.ErrTimeout,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			test.mock(m)
			sb := newSandbox(t, m)

			tunnels, err := sb.Tunnels(context.TODO(), test.timeout)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expTunnels, tunnels)

			// Cached, the mock only allows one call.
			tunnels, err = sb.Tunnels(context.TODO(), test.timeout)
			assert.NoError(err)
			assert.Equal(test.expTunnels, tunnels)
		})
	}
}

func TestStdioIsShared(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	m.On("SandboxGetLogs", mock.Anything, remote.SandboxGetLogsRequest{
		SandboxID:      "sb-1",
		FileDescriptor: model.FileDescriptorStdout,
		Timeout:        55 * time.Second,
	}).Once().Return([]model.OutputBatch{{Items: [][]byte{[]byte("ready\n")}, EntryID: "1-0", EOF: true}}, nil)
	sb := newSandbox(t, m)

	stdio1, err := sb.Stdio(context.TODO())
	require.NoError(err)
	stdio2, err := sb.Stdio(context.TODO())
	require.NoError(err)
	assert.Same(stdio1, stdio2)

	out, err := stdio1.Stdout.Text(context.TODO())
	require.NoError(err)
	assert.Equal("ready\n", out)
}

func TestTerminate(t *testing.T) {
	m := remotemock.NewClient(t)
	m.On("SandboxTerminate", mock.Anything, remote.SandboxTerminateRequest{SandboxID: "sb-1"}).Once().Return(nil)
	m.On("SandboxTerminate", mock.Anything, remote.SandboxTerminateRequest{SandboxID: "sb-1"}).Once().Return(status.Error(codes.NotFound, "missing"))
	sb := newSandbox(t, m)

	assert.NoError(t, sb.Terminate(context.TODO()))

	err := sb.Terminate(context.TODO())
	assert.True(t, remote.IsNotFound(err))
}

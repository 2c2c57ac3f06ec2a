package process_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/process"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/remote/remotemock"
)

func intPtr(i int) *int { return &i }

func startProcess(t *testing.T, m *remotemock.Client) *process.ContainerProcess {
	t.Helper()

	m.On("ContainerExec", mock.Anything, remote.ContainerExecRequest{
		TaskID:  "ta-1",
		Command: []string{"echo", "hi"},
		Workdir: "/tmp",
	}).Once().Return(&remote.ContainerExecResponse{ExecID: "ex-1"}, nil)

	p, err := process.Exec(context.TODO(), process.ExecConfig{
		Client:       m,
		TaskID:       "ta-1",
		Command:      []string{"echo", "hi"},
		Opts:         model.ExecOpts{WorkingDir: "/tmp"},
		WaitInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return p
}

func TestExecEchoHi(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	p := startProcess(t, m)
	assert.Equal(model.ExecHandle{ID: "ex-1", Kind: model.HandleKindProcess, OwnerID: "ta-1"}, p.Handle())

	m.On("ContainerExecGetOutput", mock.Anything, remote.ContainerExecGetOutputRequest{
		ExecID:         "ex-1",
		FileDescriptor: model.FileDescriptorStdout,
		LastBatchIndex: 0,
		Timeout:        55 * time.Second,
	}).Once().Return([]model.OutputBatch{
		{Items: [][]byte{[]byte("hi\n")}, BatchIndex: 1},
		{BatchIndex: 2, ExitCode: intPtr(0)},
	}, nil)
	m.On("ContainerExecGetOutput", mock.Anything, remote.ContainerExecGetOutputRequest{
		ExecID:         "ex-1",
		FileDescriptor: model.FileDescriptorStderr,
		LastBatchIndex: 0,
		Timeout:        55 * time.Second,
	}).Once().Return([]model.OutputBatch{{BatchIndex: 1, ExitCode: intPtr(0)}}, nil)
	m.On("ContainerExecWait", mock.Anything, remote.ContainerExecWaitRequest{ExecID: "ex-1", Timeout: 55 * time.Second}).
		Once().Return(&remote.ContainerExecWaitResponse{Completed: true, ExitCode: intPtr(0)}, nil)

	stdout, err := p.Stdout.Text(context.TODO())
	require.NoError(err)
	assert.Equal("hi\n", stdout)

	stderr, err := p.Stderr.Text(context.TODO())
	require.NoError(err)
	assert.Equal("", stderr)

	code, err := p.Wait(context.TODO())
	require.NoError(err)
	assert.Equal(0, code)

	// Cached, no more remote calls.
	rc, err := p.ReturnCode(context.TODO())
	require.NoError(err)
	assert.Equal(intPtr(0), rc)
	again, err := p.Stdout.Text(context.TODO())
	require.NoError(err)
	assert.Equal("", again)
}

func TestExecOutputResumesFromBatchIndex(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	p := startProcess(t, m)

	m.On("ContainerExecGetOutput", mock.Anything, mock.MatchedBy(func(r remote.ContainerExecGetOutputRequest) bool {
		return r.FileDescriptor == model.FileDescriptorStdout && r.LastBatchIndex == 0
	})).Once().Return([]model.OutputBatch{{Items: [][]byte{[]byte("a")}, BatchIndex: 3}}, nil)
	resumed := mock.MatchedBy(func(r remote.ContainerExecGetOutputRequest) bool {
		return r.FileDescriptor == model.FileDescriptorStdout && r.LastBatchIndex == 3
	})
	m.On("ContainerExecGetOutput", mock.Anything, resumed).Once().Return(nil, fmt.Errorf("call failed: %w", status.Error(codes.DeadlineExceeded, "deadline")))
	m.On("ContainerExecGetOutput", mock.Anything, resumed).Once().Return([]model.OutputBatch{{Items: [][]byte{[]byte("b")}, BatchIndex: 4, ExitCode: intPtr(1)}}, nil)

	out, err := p.Stdout.ReadAll(context.TODO())
	require.NoError(err)
	assert.Equal("ab", string(out))
}

func TestExecOutputReadCancelled(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	m.On("ContainerExec", mock.Anything, mock.Anything).Once().Return(&remote.ContainerExecResponse{ExecID: "ex-1"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p, err := process.Exec(ctx, process.ExecConfig{
		Client:  m,
		TaskID:  "ta-1",
		Command: []string{"sleep", "infinity"},
	})
	require.NoError(err)

	cancelled := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() != nil })
	m.On("ContainerExecGetOutput", cancelled, mock.Anything).Once().
		Return(nil, fmt.Errorf("call failed: %w", status.Error(codes.Canceled, "context canceled")))

	cancel()
	n, err := p.Stdout.Read(make([]byte, 10))
	assert.Equal(0, n)
	assert.ErrorIs(err, context.Canceled)

	// The stream is resumed with a new context.
	active := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	m.On("ContainerExecGetOutput", active, mock.Anything).Once().
		Return([]model.OutputBatch{{Items: [][]byte{[]byte("late")}, BatchIndex: 1, ExitCode: intPtr(0)}}, nil)

	out, err := p.Stdout.ReadAll(context.TODO())
	require.NoError(err)
	assert.Equal("late", string(out))
}

func TestProcessPoll(t *testing.T) {
	tests := map[string]struct {
		mock    func(m *remotemock.Client)
		expCode *int
		expErr  bool
	}{
		"A running process should return nil.": {
			mock: func(m *remotemock.Client) {
				m.On("ContainerExecWait", mock.Anything, remote.ContainerExecWaitRequest{ExecID: "ex-1", Timeout: time.Second}).
					Once().Return(&remote.ContainerExecWaitResponse{Completed: false}, nil)
			},
			expCode: nil,
		},

		"An expired short wait should be a running process.": {
			mock: func(m *remotemock.Client) {
				m.On("ContainerExecWait", mock.Anything, mock.Anything).
					Once().Return(nil, status.Error(codes.DeadlineExceeded, "deadline"))
			},
			expCode: nil,
		},

		"A process that exited with 0 should not be confused with a running one.": {
			mock: func(m *remotemock.Client) {
				m.On("ContainerExecWait", mock.Anything, mock.Anything).
					Once().Return(&remote.ContainerExecWaitResponse{Completed: true, ExitCode: intPtr(0)}, nil)
			},
			expCode: intPtr(0),
		},

		"A completed process without exit code should have exited with 0.": {
			mock: func(m *remotemock.Client) {
				m.On("ContainerExecWait", mock.Anything, mock.Anything).
					Once().Return(&remote.ContainerExecWaitResponse{Completed: true}, nil)
			},
			expCode: intPtr(0),
		},

		"Other errors should fail.": {
			mock: func(m *remotemock.Client) {
				m.On("ContainerExecWait", mock.Anything, mock.Anything).
					Once().Return(nil, status.Error(codes.Internal, "boom"))
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			m := remotemock.NewClient(t)
			p := startProcess(t, m)
			test.mock(m)

			gotCode, err := p.Poll(context.TODO())
			if test.expErr {
				assert.Error(err)
			} else if assert.NoError(err) {
				assert.Equal(test.expCode, gotCode)
			}
		})
	}
}

func TestProcessWaitCaches(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	p := startProcess(t, m)

	waitReq := remote.ContainerExecWaitRequest{ExecID: "ex-1", Timeout: 55 * time.Second}
	m.On("ContainerExecWait", mock.Anything, waitReq).Once().Return(&remote.ContainerExecWaitResponse{Completed: false}, nil)
	m.On("ContainerExecWait", mock.Anything, waitReq).Once().Return(nil, status.Error(codes.DeadlineExceeded, "deadline"))
	m.On("ContainerExecWait", mock.Anything, waitReq).Once().Return(&remote.ContainerExecWaitResponse{Completed: true, ExitCode: intPtr(3)}, nil)

	code, err := p.Wait(context.TODO())
	require.NoError(err)
	assert.Equal(3, code)

	// All cached.
	code, err = p.Wait(context.TODO())
	require.NoError(err)
	assert.Equal(3, code)
	gotPoll, err := p.Poll(context.TODO())
	require.NoError(err)
	assert.Equal(intPtr(3), gotPoll)
	m.AssertNumberOfCalls(t, "ContainerExecWait", 3)
}

func TestProcessStdin(t *testing.T) {
	m := remotemock.NewClient(t)
	p := startProcess(t, m)

	m.On("ContainerExecPutInput", mock.Anything, remote.ContainerExecPutInputRequest{ExecID: "ex-1", Message: []byte("data"), MessageIndex: 1}).Once().Return(nil)
	m.On("ContainerExecPutInput", mock.Anything, remote.ContainerExecPutInputRequest{ExecID: "ex-1", MessageIndex: 2, EOF: true}).Once().Return(nil)

	_, err := p.Stdin.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, p.Stdin.Close())
}

func TestExecInvalid(t *testing.T) {
	tests := map[string]struct {
		cfg    process.ExecConfig
		expErr error
	}{
		"Missing task id should fail as a precondition.": {
			cfg:    process.ExecConfig{Command: []string{"ls"}},
			expErr: model.ErrPrecondition,
		},

		"Missing command should fail.": {
			cfg:    process.ExecConfig{TaskID: "ta-1"},
			expErr: model.ErrNotValid,
		},

		"Too long commands should fail.": {
			cfg:    process.ExecConfig{TaskID: "ta-1", Command: []string{"echo", strings.Repeat("a", 1<<16)}},
			expErr: model.ErrNotValid,
		},

		"Negative timeouts should fail.": {
			cfg:    process.ExecConfig{TaskID: "ta-1", Command: []string{"ls"}, Opts: model.ExecOpts{TimeoutSecs: -1}},
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m := remotemock.NewClient(t)
			test.cfg.Client = m

			_, err := process.Exec(context.TODO(), test.cfg)
			assert.ErrorIs(t, err, test.expErr)
		})
	}
}

func TestSandboxStdio(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m := remotemock.NewClient(t)
	m.On("SandboxGetLogs", mock.Anything, remote.SandboxGetLogsRequest{
		SandboxID: "sb-1", FileDescriptor: model.FileDescriptorStdout, LastEntryID: "", Timeout: 55 * time.Second,
	}).Once().Return([]model.OutputBatch{{Items: [][]byte{[]byte("hello\n")}, EntryID: "1-0"}}, nil)
	m.On("SandboxGetLogs", mock.Anything, remote.SandboxGetLogsRequest{
		SandboxID: "sb-1", FileDescriptor: model.FileDescriptorStdout, LastEntryID: "1-0", Timeout: 55 * time.Second,
	}).Once().Return([]model.OutputBatch{{EOF: true, EntryID: "2-0"}}, nil)
	m.On("SandboxStdinWrite", mock.Anything, remote.SandboxStdinWriteRequest{SandboxID: "sb-1", Input: []byte("in"), Index: 1}).Once().Return(nil)
	m.On("SandboxStdinWrite", mock.Anything, remote.SandboxStdinWriteRequest{SandboxID: "sb-1", Index: 2, EOF: true}).Once().Return(nil)

	stdio, err := process.NewSandboxStdio(context.TODO(), m, "sb-1", process.StreamConfig{}, nil)
	require.NoError(err)

	_, err = stdio.Stdin.Write([]byte("in"))
	require.NoError(err)
	require.NoError(stdio.Stdin.Close())

	out, err := stdio.Stdout.Text(context.TODO())
	require.NoError(err)
	assert.Equal("hello\n", out)
}

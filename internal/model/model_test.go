package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/slok/rsbx/internal/model"
)

func intPtr(i int) *int { return &i }

func TestSandboxConfigValidate(t *testing.T) {
	tests := map[string]struct {
		config model.SandboxConfig
		expErr bool
	}{
		"A valid config should not fail.": {
			config: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1", Timeout: time.Minute},
		},

		"Missing app should fail.": {
			config: model.SandboxConfig{ImageID: "im-1"},
			expErr: true,
		},

		"Missing image should fail.": {
			config: model.SandboxConfig{AppID: "ap-1"},
			expErr: true,
		},

		"A timeout with fractional seconds should fail.": {
			config: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1", Timeout: 1500 * time.Millisecond},
			expErr: true,
		},

		"A relative workdir should fail.": {
			config: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1", Workdir: "tmp"},
			expErr: true,
		},

		"An unencrypted h2 port should fail.": {
			config: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1", Ports: []model.PortSpec{{Port: 80, Unencrypted: true, TunnelType: model.TunnelTypeH2}}},
			expErr: true,
		},

		"An out of range port should fail.": {
			config: model.SandboxConfig{AppID: "ap-1", ImageID: "im-1", Ports: []model.PortSpec{{Port: 70000}}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			err := test.config.Validate()
			if test.expErr {
				assert.ErrorIs(t, err, model.ErrNotValid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSandboxConfigDefaults(t *testing.T) {
	c := model.SandboxConfig{}
	c.Defaults()

	assert.Equal(t, model.DefaultSandboxTimeout, c.Timeout)
	assert.Equal(t, model.DefaultSandboxCPU, c.Resources.CPU)
	assert.Equal(t, model.DefaultSandboxMemoryMB, c.Resources.MemoryMB)
	assert.Equal(t, []string{"sleep", "48h"}, c.Command)
}

func TestTunnel(t *testing.T) {
	tests := map[string]struct {
		tunnel    model.Tunnel
		expURL    string
		expTCPErr bool
		expTCP    string
		expTCPPrt int
	}{
		"The default https port should be omitted from the URL.": {
			tunnel: model.Tunnel{Host: "example.com", Port: 443, UnencryptedHost: "tcp.example.com", UnencryptedPort: 8080},
			expURL: "https://example.com",
			expTCP: "tcp.example.com", expTCPPrt: 8080,
		},

		"A custom port should be in the URL and a missing unencrypted host should fail.": {
			tunnel:    model.Tunnel{Host: "example.com", Port: 8443},
			expURL:    "https://example.com:8443",
			expTCPErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(test.expURL, test.tunnel.URL())
			host, port := test.tunnel.TLSSocket()
			assert.Equal(test.tunnel.Host, host)
			assert.Equal(test.tunnel.Port, port)

			tcpHost, tcpPort, err := test.tunnel.TCPSocket()
			if test.expTCPErr {
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expTCP, tcpHost)
			assert.Equal(test.expTCPPrt, tcpPort)
		})
	}
}

func TestOperationResultReturnCode(t *testing.T) {
	tests := map[string]struct {
		result  *model.OperationResult
		expCode *int
	}{
		"A nil result should be still running.":         {result: nil, expCode: nil},
		"An unspecified result should be still running.": {result: &model.OperationResult{}, expCode: nil},
		"A success without exit code should be zero.":    {result: &model.OperationResult{Status: model.GenericStatusSuccess}, expCode: intPtr(0)},
		"A failure should return its exit code.":         {result: &model.OperationResult{Status: model.GenericStatusFailure, ExitCode: intPtr(3)}, expCode: intPtr(3)},
		"A timeout should map to 124.":                   {result: &model.OperationResult{Status: model.GenericStatusTimeout}, expCode: intPtr(124)},
		"A termination should map to 137.":               {result: &model.OperationResult{Status: model.GenericStatusTerminated}, expCode: intPtr(137)},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expCode, test.result.ReturnCode())
		})
	}
}

func TestOutputCursorAdvance(t *testing.T) {
	assert := assert.New(t)

	c := model.OutputCursor{}
	c.Advance(model.OutputBatch{EntryID: "1-0", BatchIndex: 3})
	c.Advance(model.OutputBatch{})
	assert.Equal("1-0", c.LastEntryID)
	assert.Equal(uint64(3), c.LastBatchIndex)
	assert.False(c.Finished)

	c.Advance(model.OutputBatch{BatchIndex: 2, EOF: true})
	assert.Equal(uint64(3), c.LastBatchIndex, "cursor should never go backwards")
	assert.True(c.Finished)
}

func TestErrorsMatching(t *testing.T) {
	tests := map[string]struct {
		err      error
		expIs    []error
		expNotIs []error
	}{
		"A filesystem operation error should be a remote and filesystem error.": {
			err:      &model.OperationError{Kind: model.OperationKindFilesystem, Op: "read", Message: "boom"},
			expIs:    []error{model.ErrRemoteOperation, model.ErrFilesystem},
			expNotIs: []error{model.ErrTimeout, model.ErrBuild},
		},

		"A retry exhausted error should be a timeout and not a filesystem error.": {
			err:      &model.RetryExhaustedError{Kind: model.OperationKindFilesystem, Op: "read", Attempts: 3},
			expIs:    []error{model.ErrTimeout},
			expNotIs: []error{model.ErrFilesystem, model.ErrRemoteOperation},
		},

		"A terminated build should be a terminated error.": {
			err:      &model.TerminalStatusError{Kind: model.OperationKindBuild, Op: "image build", Status: model.GenericStatusTerminated},
			expIs:    []error{model.ErrTerminated},
			expNotIs: []error{model.ErrTimeout},
		},

		"An unknown status should be an unknown status error.": {
			err:   &model.TerminalStatusError{Kind: model.OperationKindBuild, Op: "image build", Status: model.GenericStatus(42)},
			expIs: []error{model.ErrUnknownStatus},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			for _, e := range test.expIs {
				assert.True(t, errors.Is(test.err, e), "expected %v to be %v", test.err, e)
			}
			for _, e := range test.expNotIs {
				assert.False(t, errors.Is(test.err, e), "expected %v not to be %v", test.err, e)
			}
		})
	}
}

func TestTerminalStatusErrorMessage(t *testing.T) {
	err := &model.TerminalStatusError{Kind: model.OperationKindBuild, Op: "image build", ID: "im-1", Status: model.GenericStatus(42)}
	assert.Contains(t, err.Error(), "status(42)")

	err = &model.TerminalStatusError{Kind: model.OperationKindBuild, Op: "image build", ID: "im-1", Status: model.GenericStatusFailure, Exception: "pip failed"}
	assert.Contains(t, err.Error(), "pip failed")
}

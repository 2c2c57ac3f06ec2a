package poll_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/poll"
)

func intPtr(i int) *int { return &i }

type pollResult struct {
	res *model.OperationResult
	err error
}

func newPoller(t *testing.T, cfg poll.Config) *poll.Poller {
	t.Helper()

	cfg.Kind = model.OperationKindBuild
	cfg.ID = "im-1"
	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}
	cfg.ErrorBackoff = time.Millisecond
	p, err := poll.New(cfg)
	require.NoError(t, err)
	return p
}

func TestPollerRepoll(t *testing.T) {
	success := &model.OperationResult{Status: model.GenericStatusSuccess, ExitCode: intPtr(0)}
	dl := status.Error(codes.DeadlineExceeded, "deadline")

	tests := map[string]struct {
		cfg      poll.Config
		results  []pollResult
		expRes   *model.OperationResult
		expErr   error
		expCalls int
	}{
		"A terminal result on the first call should be returned.": {
			results:  []pollResult{{res: success}},
			expRes:   success,
			expCalls: 1,
		},

		"Non terminal results should be polled again.": {
			results: []pollResult{
				{res: nil},
				{res: &model.OperationResult{Status: model.GenericStatusUnspecified}},
				{res: success},
			},
			expRes:   success,
			expCalls: 3,
		},

		"Deadlines should be polled again.": {
			results:  []pollResult{{err: dl}, {err: dl}, {res: success}},
			expRes:   success,
			expCalls: 3,
		},

		"Other errors should be retried after a backoff.": {
			results:  []pollResult{{err: fmt.Errorf("something")}, {res: success}},
			expRes:   success,
			expCalls: 2,
		},

		"Too many consecutive errors should fail.": {
			cfg:      poll.Config{MaxConsecutiveErrors: 2},
			results:  []pollResult{{err: fmt.Errorf("something")}, {err: fmt.Errorf("something")}},
			expErr:   model.ErrTransport,
			expCalls: 2,
		},

		"By default the tenth consecutive error should fail.": {
			results: func() []pollResult {
				res := make([]pollResult, 10)
				for i := range res {
					res[i] = pollResult{err: fmt.Errorf("something")}
				}
				return res
			}(),
			expErr:   model.ErrTransport,
			expCalls: 10,
		},

		"A deadline between errors should reset the error count.": {
			cfg: poll.Config{MaxConsecutiveErrors: 2},
			results: []pollResult{
				{err: fmt.Errorf("something")},
				{err: dl},
				{err: fmt.Errorf("something")},
				{res: success},
			},
			expRes:   success,
			expCalls: 4,
		},

		"Terminal failures should be returned as results.": {
			results:  []pollResult{{res: &model.OperationResult{Status: model.GenericStatusFailure, Exception: "boom"}}},
			expRes:   &model.OperationResult{Status: model.GenericStatusFailure, Exception: "boom"},
			expCalls: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			p := newPoller(t, test.cfg)
			calls := 0
			gotRes, err := p.Repoll(context.TODO(), func(_ context.Context, timeout time.Duration) (*model.OperationResult, error) {
				assert.Equal(55*time.Second, timeout)
				r := test.results[calls]
				calls++
				return r.res, r.err
			})

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
			} else if assert.NoError(err) {
				assert.Equal(test.expRes, gotRes)
			}
			assert.Equal(test.expCalls, calls)
		})
	}
}

func TestPollerMaxWait(t *testing.T) {
	p := newPoller(t, poll.Config{MaxWait: 20 * time.Millisecond, Interval: 5 * time.Millisecond})

	_, err := p.Repoll(context.TODO(), func(context.Context, time.Duration) (*model.OperationResult, error) {
		return nil, nil
	})

	var rErr *model.RetryExhaustedError
	require.ErrorAs(t, err, &rErr)
	assert.True(t, rErr.Pending)
	assert.ErrorIs(t, err, model.ErrTimeout)
}

func TestPollerContextCancel(t *testing.T) {
	p := newPoller(t, poll.Config{Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	_, err := p.Repoll(ctx, func(context.Context, time.Duration) (*model.OperationResult, error) {
		cancel()
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollerJoinStream(t *testing.T) {
	t.Run("An already terminal initial result should not make join calls.", func(t *testing.T) {
		p := newPoller(t, poll.Config{})
		initial := &model.OperationResult{Status: model.GenericStatusSuccess}

		gotRes, err := p.JoinStream(context.TODO(), initial, func(context.Context, string, time.Duration) (string, *model.OperationResult, error) {
			t.Fatal("join should not be called")
			return "", nil, nil
		})
		require.NoError(t, err)
		assert.Equal(t, initial, gotRes)
	})

	t.Run("The join cursor should advance with the received entries.", func(t *testing.T) {
		assert := assert.New(t)

		p := newPoller(t, poll.Config{})
		type answer struct {
			entryID string
			res     *model.OperationResult
			err     error
		}
		answers := []answer{
			{entryID: "1-0"},
			{err: status.Error(codes.DeadlineExceeded, "deadline")},
			{entryID: "", res: &model.OperationResult{Status: model.GenericStatusUnspecified}},
			{entryID: "2-0", res: &model.OperationResult{Status: model.GenericStatusSuccess}},
		}

		var gotCursors []string
		gotRes, err := p.JoinStream(context.TODO(), nil, func(_ context.Context, last string, _ time.Duration) (string, *model.OperationResult, error) {
			gotCursors = append(gotCursors, last)
			a := answers[len(gotCursors)-1]
			return a.entryID, a.res, a.err
		})
		require.NoError(t, err)
		assert.Equal(model.GenericStatusSuccess, gotRes.Status)
		assert.Equal([]string{"", "1-0", "1-0", "1-0"}, gotCursors)
	})
}

func TestCheckResult(t *testing.T) {
	tests := map[string]struct {
		res    *model.OperationResult
		expErr error
		expMsg string
	}{
		"Success should not fail.": {
			res: &model.OperationResult{Status: model.GenericStatusSuccess},
		},

		"Failure should fail with the exception.": {
			res:    &model.OperationResult{Status: model.GenericStatusFailure, Exception: "build step failed"},
			expErr: model.ErrBuild,
			expMsg: "image build for im-1 failed with exception:\nbuild step failed",
		},

		"Terminated should fail as terminated.": {
			res:    &model.OperationResult{Status: model.GenericStatusTerminated},
			expErr: model.ErrTerminated,
			expMsg: "image build for im-1 terminated due to external shut-down, please try again",
		},

		"Timeout should fail as timeout.": {
			res:    &model.OperationResult{Status: model.GenericStatusTimeout},
			expErr: model.ErrTimeout,
			expMsg: "image build for im-1 timed out, please try again with a larger timeout parameter",
		},

		"Unknown statuses should fail naming the status.": {
			res:    &model.OperationResult{Status: model.GenericStatus(42)},
			expErr: model.ErrUnknownStatus,
			expMsg: "image build for im-1 failed with unknown status: status(42)",
		},

		"A missing result should fail as unknown.": {
			res:    nil,
			expErr: model.ErrUnknownStatus,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := poll.CheckResult(model.OperationKindBuild, "image build", "im-1", test.res)
			if test.expErr == nil {
				assert.NoError(err)
				return
			}

			assert.ErrorIs(err, test.expErr)
			if test.expMsg != "" {
				assert.Equal(test.expMsg, err.Error())
			}
		})
	}
}

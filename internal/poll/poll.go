// Package poll waits for the terminal result of remote long running operations.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// PollFunc makes one bounded wait call, a nil or non terminal result means the operation
// is still running.
type PollFunc func(ctx context.Context, timeout time.Duration) (*model.OperationResult, error)

// JoinFunc makes one join call from the last seen entry. It returns the new last entry
// (empty if none was received) and the result if any.
type JoinFunc func(ctx context.Context, lastEntryID string, timeout time.Duration) (entryID string, result *model.OperationResult, err error)

// Config is the poller configuration.
type Config struct {
	Kind      model.OperationKind
	Operation string
	ID        string
	// CallTimeout is the server side timeout of every wait call.
	CallTimeout time.Duration
	// Interval is the time between calls that didn't get a terminal result.
	Interval time.Duration
	// ErrorBackoff is the time waited after a call failed with an error that is not a
	// deadline.
	ErrorBackoff time.Duration
	// MaxConsecutiveErrors is the number of consecutive failed calls (not deadlines)
	// tolerated, after that the error is returned.
	MaxConsecutiveErrors int
	// MaxWait bounds the whole wait, zero means unbounded (only the context).
	MaxWait time.Duration
	Logger  log.Logger
}

func (c *Config) defaults() error {
	if c.Kind == "" {
		return fmt.Errorf("operation kind is required")
	}

	if c.Operation == "" {
		c.Operation = "wait"
	}

	if c.CallTimeout <= 0 {
		c.CallTimeout = 55 * time.Second
	}

	if c.Interval <= 0 {
		c.Interval = time.Second
	}

	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}

	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 10
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "poll.Poller", "kind": c.Kind, "op": c.Operation, "id": c.ID})

	return nil
}

// Poller waits for operation results.
type Poller struct {
	cfg    Config
	logger log.Logger
}

// New returns a new poller.
func New(cfg Config) (*Poller, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Poller{cfg: cfg, logger: cfg.Logger}, nil
}

// Repoll calls the wait call until it returns a terminal result.
func (p *Poller) Repoll(ctx context.Context, fn PollFunc) (*model.OperationResult, error) {
	return p.loop(ctx, func(ctx context.Context) (*model.OperationResult, error) {
		return fn(ctx, p.cfg.CallTimeout)
	})
}

// JoinStream waits for the result of an operation started with the initial result.
// If the initial result is already terminal no join call is made.
func (p *Poller) JoinStream(ctx context.Context, initial *model.OperationResult, fn JoinFunc) (*model.OperationResult, error) {
	if initial.IsTerminal() {
		return initial, nil
	}

	lastEntryID := ""
	return p.loop(ctx, func(ctx context.Context) (*model.OperationResult, error) {
		entryID, res, err := fn(ctx, lastEntryID, p.cfg.CallTimeout)
		if entryID != "" {
			lastEntryID = entryID
		}
		return res, err
	})
}

func (p *Poller) loop(ctx context.Context, call func(ctx context.Context) (*model.OperationResult, error)) (*model.OperationResult, error) {
	if p.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MaxWait)
		defer cancel()
	}

	attempts := 0
	consecutiveErrs := 0
	for {
		attempts++
		res, err := call(ctx)

		if ctx.Err() != nil {
			return nil, p.waitErr(ctx, attempts)
		}

		switch {
		case err != nil && remote.IsDeadlineExceeded(err):
			// The server didn't answer in time, call again right away.
			consecutiveErrs = 0
			continue

		case err != nil:
			consecutiveErrs++
			if consecutiveErrs >= p.cfg.MaxConsecutiveErrors {
				return nil, fmt.Errorf("%s %s (%s) call failed %d times: %w: %w", p.cfg.Kind, p.cfg.Operation, p.cfg.ID, consecutiveErrs, model.ErrTransport, err)
			}
			p.logger.Warningf("%s call failed, retrying in %s: %s", p.cfg.Operation, p.cfg.ErrorBackoff, err)
			if sleep(ctx, p.cfg.ErrorBackoff) != nil {
				return nil, p.waitErr(ctx, attempts)
			}
			continue
		}

		consecutiveErrs = 0
		if res.IsTerminal() {
			return res, nil
		}

		if sleep(ctx, p.cfg.Interval) != nil {
			return nil, p.waitErr(ctx, attempts)
		}
	}
}

// waitErr returns the error of an ended wait, a timeout when MaxWait expired.
func (p *Poller) waitErr(ctx context.Context, attempts int) error {
	err := ctx.Err()
	if p.cfg.MaxWait > 0 && errors.Is(err, context.DeadlineExceeded) {
		return &model.RetryExhaustedError{
			Kind:     p.cfg.Kind,
			Op:       p.cfg.Operation,
			ID:       p.cfg.ID,
			Attempts: attempts,
			Pending:  true,
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CheckResult maps a terminal result to an error, nil when the operation succeeded.
func CheckResult(kind model.OperationKind, op, id string, res *model.OperationResult) error {
	if res == nil {
		return fmt.Errorf("%s %s for %s has no result: %w", kind, op, id, model.ErrUnknownStatus)
	}

	if res.Status == model.GenericStatusSuccess {
		return nil
	}

	return &model.TerminalStatusError{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Status:    res.Status,
		Exception: res.Exception,
	}
}

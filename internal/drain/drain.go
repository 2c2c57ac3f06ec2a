// Package drain retrieves the output of remote operations.
//
// The service serves output in batches through long polling calls. A drainer keeps a
// cursor and polls until the end of the output is reported, recovering from calls
// that time out and from answers that don't have data yet, up to a retry budget.
package drain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// FetchFunc makes one output retrieval call from the cursor position. The timeout is the
// per call timeout. When the call fails, the batches received before the failure are
// returned with the error.
type FetchFunc func(ctx context.Context, cursor model.OutputCursor, timeout time.Duration) ([]model.OutputBatch, error)

// State is the state of a drainer.
type State int

const (
	StatePolling State = iota
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Config is the drainer configuration.
type Config struct {
	// Kind and Operation are used to build the errors.
	Kind      model.OperationKind
	Operation string
	HandleID  string
	// Cursor is the position to start draining from.
	Cursor model.OutputCursor
	// MaxRetries is the number of consecutive attempts without output (deadlines or not
	// ready answers) tolerated before giving up.
	MaxRetries    int
	CallTimeout   time.Duration
	RetryInterval time.Duration
	Logger        log.Logger
}

func (c *Config) defaults() error {
	if c.Kind == "" {
		return fmt.Errorf("operation kind is required")
	}

	if c.Operation == "" {
		c.Operation = "output"
	}

	if c.MaxRetries <= 0 {
		c.MaxRetries = 10
	}

	if c.CallTimeout <= 0 {
		c.CallTimeout = 10 * time.Second
	}

	if c.RetryInterval < 0 {
		c.RetryInterval = 0
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "drain.Drainer", "kind": c.Kind, "op": c.Operation, "id": c.HandleID})

	return nil
}

// Drainer drains the output of a single remote operation. It's not safe for concurrent use.
type Drainer struct {
	cfg    Config
	fetch  FetchFunc
	cursor model.OutputCursor
	state  State
	err    error
	logger log.Logger
}

// New returns a new drainer.
func New(cfg Config, fetch FetchFunc) (*Drainer, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if fetch == nil {
		return nil, fmt.Errorf("fetch func is required")
	}

	d := &Drainer{
		cfg:    cfg,
		fetch:  fetch,
		cursor: cfg.Cursor,
		state:  StatePolling,
		logger: cfg.Logger,
	}
	if d.cursor.Finished {
		d.state = StateCompleted
	}

	return d, nil
}

// State returns the current drainer state.
func (d *Drainer) State() State { return d.state }

// Cursor returns the current cursor.
func (d *Drainer) Cursor() model.OutputCursor { return d.cursor }

// Next polls until some output is available and returns it. When the output has been
// completely drained it returns io.EOF, and no more remote calls are made.
func (d *Drainer) Next(ctx context.Context) ([][]byte, error) {
	switch d.state {
	case StateCompleted:
		return nil, io.EOF
	case StateFailed:
		return nil, d.err
	}

	retries := d.cfg.MaxRetries
	attempts := 0
	for {
		attempts++
		batches, fetchErr := d.fetch(ctx, d.cursor, d.cfg.CallTimeout)

		items, eof, err := d.process(batches)
		if err != nil {
			return nil, d.fail(err)
		}

		// Non recoverable call errors end the drain, already received output is kept.
		if ctxErr := ctx.Err(); ctxErr != nil && len(items) == 0 && !eof {
			return nil, ctxErr
		}
		// EOF is terminal, a call error after it doesn't lose the output.
		if eof {
			if fetchErr != nil {
				d.logger.Debugf("ignoring call error after end of output: %s", fetchErr)
			}
			d.state = StateCompleted
			if len(items) == 0 {
				return nil, io.EOF
			}
			return items, nil
		}

		if fetchErr != nil && !remote.IsDeadlineExceeded(fetchErr) {
			fetchErr = fmt.Errorf("%s %s (%s) call failed: %w: %w", d.cfg.Kind, d.cfg.Operation, d.cfg.HandleID, model.ErrTransport, fetchErr)
			if len(items) == 0 {
				return nil, d.fail(fetchErr)
			}
			d.state = StateFailed
			d.err = fetchErr
			return items, nil
		}

		if len(items) > 0 {
			return items, nil
		}

		// Nothing yet, a deadline and a not ready answer spend the same budget.
		pending := fetchErr == nil
		retries--
		if retries <= 0 {
			return nil, d.fail(&model.RetryExhaustedError{
				Kind:     d.cfg.Kind,
				Op:       d.cfg.Operation,
				ID:       d.cfg.HandleID,
				Attempts: attempts,
				Pending:  pending,
			})
		}
		d.logger.Debugf("no output yet (pending: %t), retrying (%d left)", pending, retries)

		// Cancellations don't fail the drainer, it can be resumed with a new context.
		err = sleep(ctx, d.cfg.RetryInterval)
		if err != nil {
			return nil, err
		}
	}
}

// process applies the batches to the cursor and returns the received items.
func (d *Drainer) process(batches []model.OutputBatch) (items [][]byte, eof bool, err error) {
	for _, b := range batches {
		if b.Error != nil {
			return nil, false, &model.OperationError{
				Kind:    d.cfg.Kind,
				Op:      d.cfg.Operation,
				ID:      d.cfg.HandleID,
				Message: *b.Error,
			}
		}

		for _, item := range b.Items {
			if len(item) > 0 {
				items = append(items, item)
			}
		}
		d.cursor.Advance(b)

		if b.EOF {
			return items, true, nil
		}
	}

	return items, false, nil
}

func (d *Drainer) fail(err error) error {
	d.state = StateFailed
	d.err = err
	return err
}

// Drain calls the sink with every output item until the output is completely drained.
func (d *Drainer) Drain(ctx context.Context, sink func([]byte) error) error {
	for {
		items, err := d.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, item := range items {
			err := sink(item)
			if err != nil {
				return err
			}
		}
	}
}

// Collect drains all the output and returns it concatenated in arrival order.
func (d *Drainer) Collect(ctx context.Context) ([]byte, error) {
	var out []byte
	err := d.Drain(ctx, func(b []byte) error {
		out = append(out, b...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

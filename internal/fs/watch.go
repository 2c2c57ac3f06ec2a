package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// WatchOpts are the options of a directory watch.
type WatchOpts struct {
	Recursive bool
	// Timeout is the remote watch duration, zero watches until the output ends.
	Timeout time.Duration
	// Filter keeps only the events of these types, all when empty.
	Filter []model.FileWatchEventType
}

type wireWatchEvent struct {
	EventType string   `json:"event_type"`
	Paths     []string `json:"paths"`
}

// parseWatchEvents decodes the event records of an output item, malformed ones are dropped.
func parseWatchEvents(item []byte) []model.FileWatchEvent {
	var events []model.FileWatchEvent
	for _, line := range bytes.Split(item, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var we wireWatchEvent
		if err := json.Unmarshal(line, &we); err != nil || we.EventType == "" {
			continue
		}
		if we.Paths == nil {
			we.Paths = []string{}
		}
		events = append(events, model.FileWatchEvent{Type: model.FileWatchEventType(we.EventType), Paths: we.Paths})
	}

	return events
}

func (o WatchOpts) keep(e model.FileWatchEvent) bool {
	return len(o.Filter) == 0 || slices.Contains(o.Filter, e.Type)
}

func (f *Filesystem) startWatch(ctx context.Context, path string, opts WatchOpts) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required: %w", model.ErrNotValid)
	}
	if opts.Timeout < 0 {
		return "", fmt.Errorf("timeout must be non-negative: %w", model.ErrNotValid)
	}

	resp, err := f.client.ContainerFilesystemExec(ctx, remote.FilesystemExecRequest{
		TaskID:      f.taskID,
		Op:          remote.FilesystemOpWatch,
		Path:        path,
		Recursive:   opts.Recursive,
		TimeoutSecs: int(opts.Timeout.Seconds()),
	})
	if err != nil {
		return "", fmt.Errorf("could not start watch of %s: %w", path, err)
	}

	return resp.ExecID, nil
}

// WatchEvents watches the path until the watch ends and returns all the events in
// arrival order. On error the events received until then are returned with it.
func (f *Filesystem) WatchEvents(ctx context.Context, path string, opts WatchOpts) ([]model.FileWatchEvent, error) {
	execID, err := f.startWatch(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	d, err := f.drainer(remote.FilesystemOpWatch, execID)
	if err != nil {
		return nil, err
	}

	events := []model.FileWatchEvent{}
	err = d.Drain(ctx, func(item []byte) error {
		for _, e := range parseWatchEvents(item) {
			if opts.keep(e) {
				events = append(events, e)
			}
		}
		return nil
	})
	if err != nil {
		return events, fmt.Errorf("could not watch %s: %w", path, err)
	}

	return events, nil
}

// Watch is a running directory watch. Events are published in arrival order and the
// channel is closed when the watch ends.
type Watch struct {
	events chan model.FileWatchEvent
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Watch starts watching the path in the background.
func (f *Filesystem) Watch(ctx context.Context, path string, opts WatchOpts) (*Watch, error) {
	execID, err := f.startWatch(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	d, err := f.drainer(remote.FilesystemOpWatch, execID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watch{
		events: make(chan model.FileWatchEvent, 64),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		defer close(w.events)
		defer cancel()

		err := d.Drain(ctx, func(item []byte) error {
			for _, e := range parseWatchEvents(item) {
				if !opts.keep(e) {
					continue
				}
				select {
				case w.events <- e:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
		if err != nil {
			f.logger.Debugf("watch of %s ended: %s", path, err)
			w.mu.Lock()
			w.err = err
			w.mu.Unlock()
		}
	}()

	return w, nil
}

// Events returns the events channel.
func (w *Watch) Events() <-chan model.FileWatchEvent { return w.events }

// Done is closed when the watch ends.
func (w *Watch) Done() <-chan struct{} { return w.done }

// Stop stops the watch and waits until it ends.
func (w *Watch) Stop() {
	w.cancel()
	<-w.done
}

// Err returns the error that ended the watch, nil while running, on a clean end or
// after Stop.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if errors.Is(w.err, context.Canceled) {
		return nil
	}
	return w.err
}

package stream

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// SendFunc sends one indexed input message. The end of input message has eof set.
type SendFunc func(ctx context.Context, data []byte, index uint64, eof bool) error

// Writer writes an input channel of a remote operation. Every write is sent as one message
// with a strictly increasing index starting at 1.
type Writer struct {
	ctx  context.Context
	send SendFunc

	mu     sync.Mutex
	index  uint64
	closed bool
}

// NewWriter returns a new writer, the context bounds the remote calls.
func NewWriter(ctx context.Context, send SendFunc) *Writer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Writer{ctx: ctx, send: send, index: 1}
}

var _ io.WriteCloser = &Writer{}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, os.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	data := make([]byte, len(p))
	copy(data, p)

	err := w.send(w.ctx, data, w.index, false)
	if err != nil {
		return 0, fmt.Errorf("could not write input message %d: %w", w.index, err)
	}
	w.index++

	return len(p), nil
}

// WriteString writes a string.
func (w *Writer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Close sends the end of input. Closing more than once is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.send(w.ctx, nil, w.index, true)
	if err != nil {
		return fmt.Errorf("could not close input: %w", err)
	}
	w.index++

	return nil
}

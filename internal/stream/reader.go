// Package stream exposes remote operation channels (stdout, stderr, stdin) as Go streams.
package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Source is a single pass output source, normally a *drain.Drainer.
type Source interface {
	Next(ctx context.Context) ([][]byte, error)
}

// Reader reads one output channel of a remote operation. It's single pass: once the
// output is completely read it keeps returning io.EOF without remote calls.
type Reader struct {
	ctx context.Context
	src Source

	mu   sync.Mutex
	buf  []byte
	done bool
	err  error
}

// NewReader returns a reader over the source. The context bounds the remote calls made
// by the io.Reader methods.
func NewReader(ctx context.Context, src Source) *Reader {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Reader{ctx: ctx, src: src}
}

var _ io.ReadCloser = &Reader{}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(p) == 0 {
		return 0, nil
	}

	if len(r.buf) == 0 {
		chunk, err := r.next(r.ctx)
		if err != nil {
			return 0, err
		}
		r.buf = chunk
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

// Next returns the next chunk of output, io.EOF when the output has been read.
func (r *Reader) Next(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) > 0 {
		chunk := r.buf
		r.buf = nil
		return chunk, nil
	}

	return r.next(ctx)
}

func (r *Reader) next(ctx context.Context) ([]byte, error) {
	for {
		if r.done {
			return nil, io.EOF
		}
		if r.err != nil {
			return nil, r.err
		}

		items, err := r.src.Next(ctx)
		if errors.Is(err, io.EOF) {
			r.done = true
			return nil, io.EOF
		}
		if err != nil {
			// Cancellations are not terminal, the read can be retried with a new context.
			if !errors.Is(err, context.Canceled) {
				r.err = err
			}
			return nil, err
		}

		var chunk []byte
		for _, it := range items {
			chunk = append(chunk, it...)
		}
		if len(chunk) > 0 {
			return chunk, nil
		}
	}
}

// ReadAll reads the remaining output.
func (r *Reader) ReadAll(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, chunk...)
	}
}

// CopyTo writes the remaining output to w as it arrives. Unlike io.Copy the remote calls
// are bound to ctx instead of the reader context.
func (r *Reader) CopyTo(ctx context.Context, w io.Writer) (int64, error) {
	var n int64
	for {
		chunk, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		wn, err := w.Write(chunk)
		n += int64(wn)
		if err != nil {
			return n, err
		}
	}
}

// Text reads the remaining output as UTF-8 text, invalid sequences are replaced.
func (r *Reader) Text(ctx context.Context) (string, error) {
	b, err := r.ReadAll(ctx)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// Close stops the reader, the following reads return io.EOF.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.done = true
	r.buf = nil

	return nil
}

package fs

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// File is an open file in the remote container.
type File struct {
	fs   *Filesystem
	fd   string
	path string
}

// FileDescriptor returns the remote file descriptor.
func (f *File) FileDescriptor() string { return f.fd }

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

func (f *File) exec(ctx context.Context, req remote.FilesystemExecRequest) ([]byte, error) {
	req.FileDescriptor = f.fd
	_, out, err := f.fs.exec(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("could not %s %s: %w", req.Op, f.path, err)
	}
	return out, nil
}

// Read reads the file from the current position until the end.
func (f *File) Read(ctx context.Context) ([]byte, error) {
	return f.exec(ctx, remote.FilesystemExecRequest{Op: remote.FilesystemOpRead})
}

// ReadText reads the file as UTF-8 text, invalid sequences are replaced.
func (f *File) ReadText(ctx context.Context) (string, error) {
	b, err := f.Read(ctx)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// ReadLine reads the next line including the line break, empty at the end of the file.
func (f *File) ReadLine(ctx context.Context) ([]byte, error) {
	return f.exec(ctx, remote.FilesystemExecRequest{Op: remote.FilesystemOpReadLine})
}

// Write writes the data at the current position and returns the written bytes.
func (f *File) Write(ctx context.Context, data []byte) (int, error) {
	_, err := f.exec(ctx, remote.FilesystemExecRequest{Op: remote.FilesystemOpWrite, Data: data})
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Seek sets the position of the file, whence is one of io.SeekStart, io.SeekCurrent or
// io.SeekEnd. It returns the new absolute position.
func (f *File) Seek(ctx context.Context, offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart, io.SeekCurrent, io.SeekEnd:
	default:
		return 0, fmt.Errorf("invalid whence %d: %w", whence, model.ErrNotValid)
	}

	out, err := f.exec(ctx, remote.FilesystemExecRequest{
		Op:     remote.FilesystemOpSeek,
		Offset: offset,
		Whence: whence,
	})
	if err != nil {
		return 0, err
	}

	pos := strings.TrimSpace(string(out))
	if pos == "" {
		// Without a reported position only absolute seeks know where they are.
		if whence == io.SeekStart {
			return offset, nil
		}
		return 0, fmt.Errorf("seek of %s returned no position: %w", f.path, model.ErrFilesystem)
	}

	n, err := strconv.ParseInt(pos, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seek of %s returned an invalid position %q: %w", f.path, pos, model.ErrFilesystem)
	}

	return n, nil
}

// Tell returns the current position of the file.
func (f *File) Tell(ctx context.Context) (int64, error) {
	return f.Seek(ctx, 0, io.SeekCurrent)
}

// Flush flushes the file buffers.
func (f *File) Flush(ctx context.Context) error {
	_, err := f.exec(ctx, remote.FilesystemExecRequest{Op: remote.FilesystemOpFlush})
	return err
}

// Close closes the file.
func (f *File) Close(ctx context.Context) error {
	_, err := f.exec(ctx, remote.FilesystemExecRequest{Op: remote.FilesystemOpClose})
	return err
}

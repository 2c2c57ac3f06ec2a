package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/blob"
	"github.com/slok/rsbx/internal/printer"
)

type BlobUploadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	path string
}

// NewBlobUploadCommand returns the blob upload command.
func NewBlobUploadCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *BlobUploadCommand {
	c := &BlobUploadCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("upload", "Upload a file to the blob storage and show the blob id.")
	c.Cmd.Arg("file", "File to upload.").Required().StringVar(&c.path)

	return c
}

func (c BlobUploadCommand) Name() string { return c.Cmd.FullCommand() }

func (c BlobUploadCommand) Run(ctx context.Context) error {
	f, err := os.Open(c.path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", c.path, err)
	}
	defer f.Close()

	var total int64
	if st, err := f.Stat(); err == nil {
		total = st.Size()
	}

	var buf bytes.Buffer
	var dst io.Writer = &buf
	var pw *printer.ProgressWriter
	if c.rootCmd.StderrIsTerminal() {
		pw = printer.NewProgressWriter(&buf, c.rootCmd.Stderr, "read", total)
		dst = pw
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("could not read %s: %w", c.path, err)
	}
	if pw != nil {
		pw.Finish()
	}

	t, closeClient, err := c.rootCmd.blobTransfer()
	if err != nil {
		return err
	}
	defer closeClient()

	id, err := t.Upload(ctx, buf.Bytes())
	if err != nil {
		return fmt.Errorf("could not upload blob: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(id)
}

type BlobDownloadCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	id   string
	path string
}

// NewBlobDownloadCommand returns the blob download command.
func NewBlobDownloadCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *BlobDownloadCommand {
	c := &BlobDownloadCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("download", "Download a blob.")
	c.Cmd.Arg("id", "Blob id.").Required().StringVar(&c.id)
	c.Cmd.Arg("file", "Destination file, - writes to the standard output.").Default("-").StringVar(&c.path)

	return c
}

func (c BlobDownloadCommand) Name() string { return c.Cmd.FullCommand() }

func (c BlobDownloadCommand) Run(ctx context.Context) error {
	t, closeClient, err := c.rootCmd.blobTransfer()
	if err != nil {
		return err
	}
	defer closeClient()

	data, err := t.Download(ctx, c.id)
	if err != nil {
		return fmt.Errorf("could not download blob: %w", err)
	}

	if c.path == "-" {
		_, err := c.rootCmd.Stdout.Write(data)
		return err
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", c.path, err)
	}
	defer f.Close()

	var dst io.Writer = f
	var pw *printer.ProgressWriter
	if c.rootCmd.StderrIsTerminal() {
		pw = printer.NewProgressWriter(f, c.rootCmd.Stderr, "written", int64(len(data)))
		dst = pw
	}
	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("could not write %s: %w", c.path, err)
	}
	if pw != nil {
		pw.Finish()
	}

	return f.Close()
}

func (r *RootCommand) blobTransfer() (*blob.Transfer, func(), error) {
	client, closeClient, err := r.RemoteClient()
	if err != nil {
		return nil, nil, err
	}

	t, err := blob.NewTransfer(blob.TransferConfig{Client: client, Logger: r.Logger})
	if err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("could not create blob transfer: %w", err)
	}

	return t, closeClient, nil
}

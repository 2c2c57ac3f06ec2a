package lib

import (
	"context"
	"fmt"

	"github.com/slok/rsbx/internal/blob"
)

// UploadBlob uploads the data as a blob and returns its id.
func (c *Client) UploadBlob(ctx context.Context, data []byte) (string, error) {
	t, err := c.blobTransfer()
	if err != nil {
		return "", err
	}

	return t.Upload(ctx, data)
}

// DownloadBlob downloads a blob.
func (c *Client) DownloadBlob(ctx context.Context, blobID string) ([]byte, error) {
	t, err := c.blobTransfer()
	if err != nil {
		return nil, err
	}

	return t.Download(ctx, blobID)
}

func (c *Client) blobTransfer() (*blob.Transfer, error) {
	t, err := blob.NewTransfer(blob.TransferConfig{Client: c.remote, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create blob transfer: %w", err)
	}
	return t, nil
}

// Package blob transfers payloads through the service blob storage.
package blob

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// MaxObjectSizeBytes is the payload size above which callers should use blobs instead of
// inlining the payload in a request. It's not enforced here.
const MaxObjectSizeBytes = 2 * 1024 * 1024

// TransferConfig is the configuration of the blob transfer.
type TransferConfig struct {
	Client     remote.Client
	HTTPClient *http.Client
	Logger     log.Logger
}

func (c *TransferConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "blob.Transfer"})

	return nil
}

// Transfer uploads and downloads blobs.
type Transfer struct {
	client     remote.Client
	httpClient *http.Client
	logger     log.Logger
}

// NewTransfer returns a new blob transfer.
func NewTransfer(cfg TransferConfig) (*Transfer, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Transfer{
		client:     cfg.Client,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

// Describe returns the content digests and length of the data.
func Describe(data []byte) model.BlobDescriptor {
	md5Sum := md5.Sum(data)
	sha256Sum := sha256.Sum256(data)

	return model.BlobDescriptor{
		ContentMD5:    base64.StdEncoding.EncodeToString(md5Sum[:]),
		ContentSHA256: base64.StdEncoding.EncodeToString(sha256Sum[:]),
		Length:        int64(len(data)),
	}
}

// Upload uploads the data and returns the new blob id.
func (t *Transfer) Upload(ctx context.Context, data []byte) (string, error) {
	desc := Describe(data)

	resp, err := t.client.BlobCreate(ctx, remote.BlobCreateRequest{
		ContentMD5:    desc.ContentMD5,
		ContentSHA256: desc.ContentSHA256,
		ContentLength: desc.Length,
	})
	if err != nil {
		return "", fmt.Errorf("could not create blob: %w", err)
	}

	if resp.Multipart {
		return "", fmt.Errorf("blob of %d bytes needs a multipart upload: %w", desc.Length, model.ErrUnsupported)
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("missing upload url for blob %s: %w", resp.BlobID, model.ErrBlob)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resp.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not create upload request: %w", err)
	}
	req.ContentLength = desc.Length
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Content-MD5", desc.ContentMD5)

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not upload blob %s: %w: %w", resp.BlobID, model.ErrBlob, err)
	}
	defer httpResp.Body.Close()
	_, _ = io.Copy(io.Discard, httpResp.Body)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", fmt.Errorf("failed blob upload: HTTP %d: %w", httpResp.StatusCode, model.ErrBlob)
	}

	t.logger.Debugf("blob %s uploaded (%d bytes)", resp.BlobID, desc.Length)

	return resp.BlobID, nil
}

// Download returns the content of a blob.
func (t *Transfer) Download(ctx context.Context, blobID string) ([]byte, error) {
	resp, err := t.client.BlobGet(ctx, remote.BlobGetRequest{BlobID: blobID})
	if err != nil {
		return nil, fmt.Errorf("could not get blob %s: %w", blobID, err)
	}

	if resp.DownloadURL == "" {
		return nil, fmt.Errorf("no download url for blob %s: %w", blobID, model.ErrMissingLocation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resp.DownloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create download request: %w", err)
	}

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not download blob %s: %w: %w", blobID, model.ErrBlob, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed blob download: HTTP %d: %w", httpResp.StatusCode, model.ErrBlob)
	}

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read blob %s: %w", blobID, err)
	}

	return data, nil
}

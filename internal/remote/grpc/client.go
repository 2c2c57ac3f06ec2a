// Package grpc implements the remote compute service calls over gRPC.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

const (
	serviceName = "rsbx.client.v1.RsbxClient"

	headerTokenID     = "x-rsbx-token-id"
	headerTokenSecret = "x-rsbx-token-secret"
	headerRequestID   = "x-rsbx-request-id"
)

// ClientConfig is the configuration of the gRPC remote client.
type ClientConfig struct {
	// ServerURL is the service address, `https://` enables TLS.
	ServerURL   string
	TokenID     string
	TokenSecret string
	// CallGrace is added to the server side timeout of long polling calls to set the call
	// deadline, so the server answers before the client gives up.
	CallGrace time.Duration
	// DefaultCallTimeout is the deadline for calls without a server side timeout.
	DefaultCallTimeout time.Duration
	DialOptions        []grpc.DialOption
	Logger             log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is required")
	}

	if c.CallGrace == 0 {
		c.CallGrace = 5 * time.Second
	}

	if c.DefaultCallTimeout == 0 {
		c.DefaultCallTimeout = 60 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "remote.grpc.Client"})

	return nil
}

// Client is the gRPC implementation of remote.Client.
type Client struct {
	conn               *grpc.ClientConn
	tokenID            string
	tokenSecret        string
	callGrace          time.Duration
	defaultCallTimeout time.Duration
	logger             log.Logger
}

// NewClient returns a new gRPC remote client, the connection is established lazily.
func NewClient(cfg ClientConfig) (*Client, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	target, useTLS, err := parseServerURL(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	var creds credentials.TransportCredentials
	if useTLS {
		creds = credentials.NewClientTLSFromCert(nil, "")
	} else {
		creds = insecure.NewCredentials()
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(codecName),
			grpc.MaxCallRecvMsgSize(100*1024*1024),
			grpc.MaxCallSendMsgSize(100*1024*1024),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                5 * time.Minute,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  250 * time.Millisecond,
				Multiplier: 1.6,
				Jitter:     0.2,
				MaxDelay:   5 * time.Second,
			},
			MinConnectTimeout: 10 * time.Second,
		}),
	}
	opts = append(opts, cfg.DialOptions...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create grpc client connection: %w", err)
	}

	return &Client{
		conn:               conn,
		tokenID:            cfg.TokenID,
		tokenSecret:        cfg.TokenSecret,
		callGrace:          cfg.CallGrace,
		defaultCallTimeout: cfg.DefaultCallTimeout,
		logger:             cfg.Logger,
	}, nil
}

var _ remote.Client = &Client{}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func parseServerURL(serverURL string) (target string, useTLS bool, err error) {
	if !strings.Contains(serverURL, "://") {
		return serverURL, false, nil
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return "", false, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}

	switch u.Scheme {
	case "passthrough", "dns", "unix":
		// Already a gRPC target.
		return serverURL, false, nil
	case "https", "grpcs":
		useTLS = true
	case "http", "grpc":
	default:
		return "", false, fmt.Errorf("unsupported server url scheme %q: %w", u.Scheme, model.ErrNotValid)
	}

	host := u.Host
	if u.Port() == "" {
		if useTLS {
			host += ":443"
		} else {
			host += ":80"
		}
	}

	return host, useTLS, nil
}

// callCtx prepares the context of a single call: auth metadata, a request id and the
// deadline. The deadline is the server side timeout plus grace when the call has one.
func (c *Client) callCtx(ctx context.Context, serverTimeout time.Duration) (context.Context, context.CancelFunc) {
	md := metadata.Pairs(headerRequestID, uuid.NewString())
	if c.tokenID != "" {
		md.Append(headerTokenID, c.tokenID)
	}
	if c.tokenSecret != "" {
		md.Append(headerTokenSecret, c.tokenSecret)
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	timeout := c.defaultCallTimeout
	if serverTimeout > 0 {
		timeout = serverTimeout + c.callGrace
	}

	return context.WithTimeout(ctx, timeout)
}

func method(name string) string {
	return "/" + serviceName + "/" + name
}

func (c *Client) invoke(ctx context.Context, name string, serverTimeout time.Duration, req, resp any) error {
	ctx, cancel := c.callCtx(ctx, serverTimeout)
	defer cancel()

	err := c.conn.Invoke(ctx, method(name), req, resp)
	if err != nil {
		c.logger.Debugf("%s call failed: %s", name, err)
		return fmt.Errorf("%s call failed: %w", name, err)
	}

	return nil
}

// stream runs a server streaming call and decodes every message into a batch. On error
// the batches received until then are returned with the error.
func (c *Client) stream(ctx context.Context, name string, serverTimeout time.Duration, req any) ([]model.OutputBatch, error) {
	ctx, cancel := c.callCtx(ctx, serverTimeout)
	defer cancel()

	desc := &grpc.StreamDesc{StreamName: name, ServerStreams: true}
	st, err := c.conn.NewStream(ctx, desc, method(name))
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", name, err)
	}

	err = st.SendMsg(req)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", name, err)
	}
	err = st.CloseSend()
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", name, err)
	}

	var batches []model.OutputBatch
	for {
		var wb wireBatch
		err := st.RecvMsg(&wb)
		if errors.Is(err, io.EOF) {
			return batches, nil
		}
		if err != nil {
			return batches, fmt.Errorf("%s stream failed: %w", name, err)
		}
		batches = append(batches, wb.toModel())
	}
}

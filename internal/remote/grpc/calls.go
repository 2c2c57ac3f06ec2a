package grpc

import (
	"context"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

func (c *Client) AppGetOrCreate(ctx context.Context, req remote.AppGetOrCreateRequest) (*remote.AppGetOrCreateResponse, error) {
	resp := &remote.AppGetOrCreateResponse{}
	err := c.invoke(ctx, "AppGetOrCreate", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SecretGetOrCreate(ctx context.Context, req remote.SecretGetOrCreateRequest) (*remote.SecretGetOrCreateResponse, error) {
	resp := &remote.SecretGetOrCreateResponse{}
	err := c.invoke(ctx, "SecretGetOrCreate", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type wirePortSpec struct {
	Port        int    `json:"port"`
	Unencrypted bool   `json:"unencrypted"`
	TunnelType  string `json:"tunnel_type,omitempty"`
}

type wireSandboxDefinition struct {
	EntrypointArgs []string       `json:"entrypoint_args"`
	ImageID        string         `json:"image_id"`
	TimeoutSecs    int            `json:"timeout_secs"`
	Workdir        string         `json:"workdir,omitempty"`
	MilliCPU       int            `json:"milli_cpu"`
	MemoryMB       int            `json:"memory_mb"`
	OpenPorts      []wirePortSpec `json:"open_ports,omitempty"`
	SecretIDs      []string       `json:"secret_ids,omitempty"`
}

func (c *Client) SandboxCreate(ctx context.Context, req remote.SandboxCreateRequest) (*remote.SandboxCreateResponse, error) {
	cfg := req.Config
	def := wireSandboxDefinition{
		EntrypointArgs: cfg.Command,
		ImageID:        cfg.ImageID,
		TimeoutSecs:    int(cfg.Timeout.Seconds()),
		Workdir:        cfg.Workdir,
		MilliCPU:       int(cfg.Resources.CPU * 1000),
		MemoryMB:       cfg.Resources.MemoryMB,
		SecretIDs:      cfg.SecretIDs,
	}
	for _, p := range cfg.Ports {
		def.OpenPorts = append(def.OpenPorts, wirePortSpec{
			Port:        p.Port,
			Unencrypted: p.Unencrypted,
			TunnelType:  string(p.TunnelType),
		})
	}

	wreq := struct {
		AppID      string                `json:"app_id"`
		Definition wireSandboxDefinition `json:"definition"`
	}{AppID: req.AppID, Definition: def}

	resp := &remote.SandboxCreateResponse{}
	err := c.invoke(ctx, "SandboxCreate", 0, wreq, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SandboxGetTaskID(ctx context.Context, req remote.SandboxGetTaskIDRequest) (*remote.SandboxGetTaskIDResponse, error) {
	resp := &wireTaskIDResponse{}
	err := c.invoke(ctx, "SandboxGetTaskId", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return &remote.SandboxGetTaskIDResponse{
		TaskID:     resp.TaskID,
		TaskResult: resp.TaskResult.toModel(),
	}, nil
}

func (c *Client) SandboxTerminate(ctx context.Context, req remote.SandboxTerminateRequest) error {
	return c.invoke(ctx, "SandboxTerminate", 0, req, &struct{}{})
}

func (c *Client) SandboxWait(ctx context.Context, req remote.SandboxWaitRequest) (*remote.SandboxWaitResponse, error) {
	wreq := struct {
		remote.SandboxWaitRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	resp := &wireResultResponse{}
	err := c.invoke(ctx, "SandboxWait", req.Timeout, wreq, resp)
	if err != nil {
		return nil, err
	}
	return &remote.SandboxWaitResponse{Result: resp.Result.toModel()}, nil
}

func (c *Client) SandboxGetTunnels(ctx context.Context, req remote.SandboxGetTunnelsRequest) (*remote.SandboxGetTunnelsResponse, error) {
	wreq := struct {
		remote.SandboxGetTunnelsRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	resp := &wireTunnelsResponse{}
	err := c.invoke(ctx, "SandboxGetTunnels", req.Timeout, wreq, resp)
	if err != nil {
		return nil, err
	}

	r := &remote.SandboxGetTunnelsResponse{Result: resp.Result.toModel()}
	for _, t := range resp.Tunnels {
		r.Tunnels = append(r.Tunnels, remote.TunnelData{
			ContainerPort:   t.ContainerPort,
			Host:            t.Host,
			Port:            t.Port,
			UnencryptedHost: t.UnencryptedHost,
			UnencryptedPort: t.UnencryptedPort,
		})
	}
	return r, nil
}

func (c *Client) SandboxGetLogs(ctx context.Context, req remote.SandboxGetLogsRequest) ([]model.OutputBatch, error) {
	wreq := struct {
		remote.SandboxGetLogsRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	return c.stream(ctx, "SandboxGetLogs", req.Timeout, wreq)
}

func (c *Client) SandboxStdinWrite(ctx context.Context, req remote.SandboxStdinWriteRequest) error {
	return c.invoke(ctx, "SandboxStdinWrite", 0, req, &struct{}{})
}

func (c *Client) ContainerExec(ctx context.Context, req remote.ContainerExecRequest) (*remote.ContainerExecResponse, error) {
	resp := &remote.ContainerExecResponse{}
	err := c.invoke(ctx, "ContainerExec", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ContainerExecGetOutput(ctx context.Context, req remote.ContainerExecGetOutputRequest) ([]model.OutputBatch, error) {
	wreq := struct {
		remote.ContainerExecGetOutputRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	return c.stream(ctx, "ContainerExecGetOutput", req.Timeout, wreq)
}

func (c *Client) ContainerExecPutInput(ctx context.Context, req remote.ContainerExecPutInputRequest) error {
	return c.invoke(ctx, "ContainerExecPutInput", 0, req, &struct{}{})
}

func (c *Client) ContainerExecWait(ctx context.Context, req remote.ContainerExecWaitRequest) (*remote.ContainerExecWaitResponse, error) {
	wreq := struct {
		remote.ContainerExecWaitRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	resp := &remote.ContainerExecWaitResponse{}
	err := c.invoke(ctx, "ContainerExecWait", req.Timeout, wreq, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ContainerFilesystemExec(ctx context.Context, req remote.FilesystemExecRequest) (*remote.FilesystemExecResponse, error) {
	resp := &remote.FilesystemExecResponse{}
	err := c.invoke(ctx, "ContainerFilesystemExec", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ContainerFilesystemExecGetOutput(ctx context.Context, req remote.FilesystemExecGetOutputRequest) ([]model.OutputBatch, error) {
	wreq := struct {
		remote.FilesystemExecGetOutputRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	return c.stream(ctx, "ContainerFilesystemExecGetOutput", req.Timeout, wreq)
}

func (c *Client) ImageGetOrCreate(ctx context.Context, req remote.ImageGetOrCreateRequest) (*remote.ImageGetOrCreateResponse, error) {
	resp := &wireImageResponse{}
	err := c.invoke(ctx, "ImageGetOrCreate", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return &remote.ImageGetOrCreateResponse{
		ImageID: resp.ImageID,
		Result:  resp.Result.toModel(),
	}, nil
}

func (c *Client) ImageJoinStreaming(ctx context.Context, req remote.ImageJoinStreamingRequest) (*remote.ImageJoinStreamingResponse, error) {
	wreq := struct {
		remote.ImageJoinStreamingRequest
		Timeout float64 `json:"timeout"`
	}{req, req.Timeout.Seconds()}

	resp := &wireImageResponse{}
	err := c.invoke(ctx, "ImageJoinStreaming", req.Timeout, wreq, resp)
	if err != nil {
		return nil, err
	}
	return &remote.ImageJoinStreamingResponse{
		EntryID: resp.EntryID,
		Result:  resp.Result.toModel(),
	}, nil
}

func (c *Client) BlobCreate(ctx context.Context, req remote.BlobCreateRequest) (*remote.BlobCreateResponse, error) {
	resp := &remote.BlobCreateResponse{}
	err := c.invoke(ctx, "BlobCreate", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) BlobGet(ctx context.Context, req remote.BlobGetRequest) (*remote.BlobGetResponse, error) {
	resp := &remote.BlobGetResponse{}
	err := c.invoke(ctx, "BlobGet", 0, req, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

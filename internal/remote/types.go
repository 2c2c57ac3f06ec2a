package remote

import (
	"time"

	"github.com/slok/rsbx/internal/model"
)

// ObjectCreationType tells get-or-create calls what to do when the object is missing.
type ObjectCreationType int

const (
	ObjectCreationTypeUnspecified     ObjectCreationType = 0
	ObjectCreationTypeCreateIfMissing ObjectCreationType = 1
)

type AppGetOrCreateRequest struct {
	AppName            string             `json:"app_name"`
	EnvironmentName    string             `json:"environment_name"`
	ObjectCreationType ObjectCreationType `json:"object_creation_type"`
}

type AppGetOrCreateResponse struct {
	AppID string `json:"app_id"`
}

type SecretGetOrCreateRequest struct {
	DeploymentName     string             `json:"deployment_name"`
	EnvironmentName    string             `json:"environment_name"`
	ObjectCreationType ObjectCreationType `json:"object_creation_type"`
	EnvDict            map[string]string  `json:"env_dict,omitempty"`
}

type SecretGetOrCreateResponse struct {
	SecretID string `json:"secret_id"`
}

type SandboxCreateRequest struct {
	AppID  string             `json:"app_id"`
	Config model.SandboxConfig `json:"-"`
}

type SandboxCreateResponse struct {
	SandboxID string `json:"sandbox_id"`
}

type SandboxGetTaskIDRequest struct {
	SandboxID      string `json:"sandbox_id"`
	WaitUntilReady bool   `json:"wait_until_ready"`
}

type SandboxGetTaskIDResponse struct {
	TaskID string `json:"task_id"`
	// TaskResult is set when the sandbox already finished.
	TaskResult *model.OperationResult `json:"task_result,omitempty"`
}

type SandboxTerminateRequest struct {
	SandboxID string `json:"sandbox_id"`
}

type SandboxWaitRequest struct {
	SandboxID string        `json:"sandbox_id"`
	Timeout   time.Duration `json:"-"`
}

type SandboxWaitResponse struct {
	Result *model.OperationResult `json:"result,omitempty"`
}

type SandboxGetTunnelsRequest struct {
	SandboxID string        `json:"sandbox_id"`
	Timeout   time.Duration `json:"-"`
}

// TunnelData is a tunnel as reported by the service, keyed by the container port.
type TunnelData struct {
	ContainerPort   int    `json:"container_port"`
	Host            string `json:"host"`
	Port            int    `json:"port"`
	UnencryptedHost string `json:"unencrypted_host,omitempty"`
	UnencryptedPort int    `json:"unencrypted_port,omitempty"`
}

type SandboxGetTunnelsResponse struct {
	Tunnels []TunnelData           `json:"tunnels"`
	Result  *model.OperationResult `json:"result,omitempty"`
}

type SandboxGetLogsRequest struct {
	SandboxID      string               `json:"sandbox_id"`
	FileDescriptor model.FileDescriptor `json:"file_descriptor"`
	LastEntryID    string               `json:"last_entry_id"`
	Timeout        time.Duration        `json:"-"`
}

type SandboxStdinWriteRequest struct {
	SandboxID string `json:"sandbox_id"`
	Input     []byte `json:"input,omitempty"`
	Index     uint64 `json:"index"`
	EOF       bool   `json:"eof"`
}

type ContainerExecRequest struct {
	TaskID      string   `json:"task_id"`
	Command     []string `json:"command"`
	Workdir     string   `json:"workdir,omitempty"`
	TimeoutSecs int      `json:"timeout_secs"`
}

type ContainerExecResponse struct {
	ExecID string `json:"exec_id"`
}

type ContainerExecGetOutputRequest struct {
	ExecID         string               `json:"exec_id"`
	FileDescriptor model.FileDescriptor `json:"file_descriptor"`
	LastBatchIndex uint64               `json:"last_batch_index"`
	Timeout        time.Duration        `json:"-"`
}

type ContainerExecPutInputRequest struct {
	ExecID       string `json:"exec_id"`
	Message      []byte `json:"message,omitempty"`
	MessageIndex uint64 `json:"message_index"`
	EOF          bool   `json:"eof"`
}

type ContainerExecWaitRequest struct {
	ExecID  string        `json:"exec_id"`
	Timeout time.Duration `json:"-"`
}

type ContainerExecWaitResponse struct {
	Completed bool `json:"completed"`
	ExitCode  *int `json:"exit_code,omitempty"`
}

// FilesystemOp is the filesystem operation a filesystem exec request runs.
type FilesystemOp string

const (
	FilesystemOpOpen     FilesystemOp = "open"
	FilesystemOpRead     FilesystemOp = "read"
	FilesystemOpReadLine FilesystemOp = "readline"
	FilesystemOpWrite    FilesystemOp = "write"
	FilesystemOpSeek     FilesystemOp = "seek"
	FilesystemOpFlush    FilesystemOp = "flush"
	FilesystemOpClose    FilesystemOp = "close"
	FilesystemOpLs       FilesystemOp = "ls"
	FilesystemOpMkdir    FilesystemOp = "mkdir"
	FilesystemOpRm       FilesystemOp = "rm"
	FilesystemOpWatch    FilesystemOp = "watch"
)

// FilesystemExecRequest runs a filesystem operation in a task. Only the fields of the
// selected operation are used.
type FilesystemExecRequest struct {
	TaskID         string       `json:"task_id"`
	Op             FilesystemOp `json:"op"`
	Path           string       `json:"path,omitempty"`
	Mode           string       `json:"mode,omitempty"`
	FileDescriptor string       `json:"file_descriptor,omitempty"`
	Data           []byte       `json:"data,omitempty"`
	Offset         int64        `json:"offset,omitempty"`
	Whence         int          `json:"whence,omitempty"`
	MakeParents    bool         `json:"make_parents,omitempty"`
	Recursive      bool         `json:"recursive,omitempty"`
	TimeoutSecs    int          `json:"timeout_secs,omitempty"`
}

// FilesystemExecResponse is either inline (FileDescriptor set) or deferred (ExecID set,
// output must be drained).
type FilesystemExecResponse struct {
	ExecID         string  `json:"exec_id,omitempty"`
	FileDescriptor *string `json:"file_descriptor,omitempty"`
}

type FilesystemExecGetOutputRequest struct {
	ExecID  string        `json:"exec_id"`
	Timeout time.Duration `json:"-"`
}

// RegistryAuthType is the authentication used to pull base images.
type RegistryAuthType string

const (
	RegistryAuthTypeNone RegistryAuthType = ""
	RegistryAuthTypeAWS  RegistryAuthType = "aws"
)

type ImageRegistryConfig struct {
	AuthType RegistryAuthType `json:"registry_auth_type"`
	SecretID string           `json:"secret_id"`
}

type ImageGetOrCreateRequest struct {
	AppID              string               `json:"app_id,omitempty"`
	DockerfileCommands []string             `json:"dockerfile_commands"`
	BuildArgs          map[string]string    `json:"build_args,omitempty"`
	RegistryConfig     *ImageRegistryConfig `json:"image_registry_config,omitempty"`
	SecretIDs          []string             `json:"secret_ids,omitempty"`
	BuilderVersion     string               `json:"builder_version,omitempty"`
	ForceBuild         bool                 `json:"force_build"`
}

type ImageGetOrCreateResponse struct {
	ImageID string                 `json:"image_id"`
	Result  *model.OperationResult `json:"result,omitempty"`
}

type ImageJoinStreamingRequest struct {
	ImageID     string        `json:"image_id"`
	LastEntryID string        `json:"last_entry_id"`
	Timeout     time.Duration `json:"-"`
}

type ImageJoinStreamingResponse struct {
	EntryID string                 `json:"entry_id"`
	Result  *model.OperationResult `json:"result,omitempty"`
}

type BlobCreateRequest struct {
	ContentMD5    string `json:"content_md5"`
	ContentSHA256 string `json:"content_sha256_base64"`
	ContentLength int64  `json:"content_length"`
}

type BlobCreateResponse struct {
	BlobID    string `json:"blob_id"`
	UploadURL string `json:"upload_url,omitempty"`
	Multipart bool   `json:"multipart"`
}

type BlobGetRequest struct {
	BlobID string `json:"blob_id"`
}

type BlobGetResponse struct {
	DownloadURL string `json:"download_url"`
}

package copy

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/rsbx/internal/conventions"
	"github.com/slok/rsbx/internal/fs"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the copy service.
type ServiceConfig struct {
	Client remote.Client
	// Sandbox is the base configuration of the sandbox handles, the id is set from the
	// copy arguments.
	Sandbox sandbox.Config
	// Repository resolves sandbox names to ids, optional.
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	c.Sandbox.Client = c.Client

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Sandbox.Logger = c.Logger
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Copy"})

	return nil
}

// Service handles file copy operations to/from sandboxes.
type Service struct {
	sbCfg  sandbox.Config
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new copy service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		sbCfg:  cfg.Sandbox,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for a copy operation.
type Request struct {
	Source      string // Source path (with optional sandbox: prefix)
	Destination string // Destination path (with optional sandbox: prefix)
	// Archive downloads the remote path as a gzipped tarball, only for sandbox -> host.
	Archive bool
	// Extract unpacks the downloaded archive into the destination directory instead of
	// storing the tarball, needs Archive.
	Extract bool
}

// ParsedCopy contains the parsed copy operation details.
type ParsedCopy struct {
	// SandboxID is the sandbox reference, an id or a registered name.
	SandboxID  string
	LocalPath  string // Path on the host
	RemotePath string // Path in the sandbox
	ToSandbox  bool   // true = host->sandbox, false = sandbox->host
}

// ParseCopyArgs parses the source and destination arguments to determine
// the copy direction and extract the sandbox id and paths.
func ParseCopyArgs(src, dst string) (*ParsedCopy, error) {
	srcHasColon := strings.Contains(src, ":")
	dstHasColon := strings.Contains(dst, ":")

	if srcHasColon && dstHasColon {
		return nil, fmt.Errorf("cannot copy between two sandboxes, one argument must be a local path: %w", model.ErrNotValid)
	}
	if !srcHasColon && !dstHasColon {
		return nil, fmt.Errorf("invalid syntax, one argument must specify sandbox (e.g., sb-123:/path): %w", model.ErrNotValid)
	}

	if dstHasColon {
		// Host -> Sandbox (CopyTo)
		parts := strings.SplitN(dst, ":", 2)
		if parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid sandbox path format: %s (expected sandbox:/path): %w", dst, model.ErrNotValid)
		}
		return &ParsedCopy{
			SandboxID:  parts[0],
			LocalPath:  src,
			RemotePath: parts[1],
			ToSandbox:  true,
		}, nil
	}

	// Sandbox -> Host (CopyFrom)
	parts := strings.SplitN(src, ":", 2)
	if parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid sandbox path format: %s (expected sandbox:/path): %w", src, model.ErrNotValid)
	}
	return &ParsedCopy{
		SandboxID:  parts[0],
		LocalPath:  dst,
		RemotePath: parts[1],
		ToSandbox:  false,
	}, nil
}

// Run executes a copy operation and returns the copied bytes.
func (s *Service) Run(ctx context.Context, req Request) (int, error) {
	parsed, err := ParseCopyArgs(req.Source, req.Destination)
	if err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	if req.Extract && !req.Archive {
		return 0, fmt.Errorf("extract needs archive mode: %w", model.ErrNotValid)
	}

	if parsed.ToSandbox {
		if req.Archive {
			return 0, fmt.Errorf("archives can only be downloaded from a sandbox: %w", model.ErrNotValid)
		}
		if _, err := os.Stat(parsed.LocalPath); os.IsNotExist(err) {
			return 0, fmt.Errorf("source path '%s' does not exist: %w", parsed.LocalPath, model.ErrNotValid)
		}
	}

	sandboxID, err := storage.ResolveSandboxID(ctx, s.repo, parsed.SandboxID)
	if err != nil {
		return 0, err
	}

	sbCfg := s.sbCfg
	sbCfg.SandboxID = sandboxID
	sb, err := sandbox.New(sbCfg)
	if err != nil {
		return 0, err
	}

	switch {
	case parsed.ToSandbox:
		s.logger.Infof("Copying %s to %s:%s", parsed.LocalPath, sb.ID(), parsed.RemotePath)
		return s.CopyTo(ctx, sb, parsed.LocalPath, parsed.RemotePath)
	case req.Extract:
		s.logger.Infof("Extracting %s:%s into %s", sb.ID(), parsed.RemotePath, parsed.LocalPath)
		return s.ExtractArchive(ctx, sb, []string{parsed.RemotePath}, parsed.LocalPath)
	case req.Archive:
		s.logger.Infof("Downloading %s:%s archive to %s", sb.ID(), parsed.RemotePath, parsed.LocalPath)
		return s.DownloadArchive(ctx, sb, []string{parsed.RemotePath}, parsed.LocalPath)
	default:
		s.logger.Infof("Copying %s:%s to %s", sb.ID(), parsed.RemotePath, parsed.LocalPath)
		return s.CopyFrom(ctx, sb, parsed.RemotePath, parsed.LocalPath)
	}
}

// CopyFrom copies a sandbox file to the host and returns the copied bytes. A local
// directory destination receives the file with its remote name.
func (s *Service) CopyFrom(ctx context.Context, sb *sandbox.Sandbox, remotePath, localPath string) (int, error) {
	data, err := s.readRemoteFile(ctx, sb, remotePath)
	if err != nil {
		return 0, fmt.Errorf("could not copy from sandbox: %w", err)
	}

	localPath = localDestination(localPath, path.Base(remotePath))
	err = writeLocalFile(localPath, data)
	if err != nil {
		return 0, err
	}
	s.logger.Debugf("copied %d bytes from %s", len(data), remotePath)

	return len(data), nil
}

// CopyTo copies a host file to the sandbox and returns the copied bytes. A remote path
// ending in `/` receives the file with its local name.
func (s *Service) CopyTo(ctx context.Context, sb *sandbox.Sandbox, localPath, remotePath string) (int, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return 0, fmt.Errorf("could not stat %s: %w", localPath, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory, only files can be copied to a sandbox: %w", localPath, model.ErrNotValid)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return 0, fmt.Errorf("could not read %s: %w", localPath, err)
	}

	if strings.HasSuffix(remotePath, "/") {
		remotePath = path.Join(remotePath, filepath.Base(localPath))
	}

	f, err := sb.Open(ctx, remotePath, "wb")
	if err != nil {
		return 0, fmt.Errorf("could not copy to sandbox: %w", err)
	}

	n, err := f.Write(ctx, data)
	if err != nil {
		closeQuietly(ctx, f, s.logger)
		return 0, fmt.Errorf("could not copy to sandbox: %w", err)
	}

	err = f.Close(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not copy to sandbox: %w", err)
	}
	s.logger.Debugf("copied %d bytes to %s", n, remotePath)

	return n, nil
}

// DownloadArchive archives the sandbox paths in a gzipped tarball, downloads it to the
// host and returns its size. The remote archive is removed afterwards.
func (s *Service) DownloadArchive(ctx context.Context, sb *sandbox.Sandbox, paths []string, localFile string) (int, error) {
	data, err := s.fetchArchive(ctx, sb, paths)
	if err != nil {
		return 0, err
	}

	err = writeLocalFile(localFile, data)
	if err != nil {
		return 0, err
	}
	s.logger.Debugf("downloaded %d bytes archive", len(data))

	return len(data), nil
}

// ExtractArchive downloads the sandbox paths like DownloadArchive but unpacks them into
// the local directory. It returns the extracted bytes.
func (s *Service) ExtractArchive(ctx context.Context, sb *sandbox.Sandbox, paths []string, localDir string) (int, error) {
	data, err := s.fetchArchive(ctx, sb, paths)
	if err != nil {
		return 0, err
	}

	n, err := extractTarGz(bytes.NewReader(data), localDir)
	if err != nil {
		return 0, fmt.Errorf("could not extract archive: %w", err)
	}
	s.logger.Debugf("extracted %d bytes into %s", n, localDir)

	return int(n), nil
}

func (s *Service) fetchArchive(ctx context.Context, sb *sandbox.Sandbox, paths []string) ([]byte, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one path is required: %w", model.ErrNotValid)
	}

	archivePath := conventions.DownloadArchivePath(ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String())
	logger := s.logger.WithValues(log.Kv{"archive": archivePath})

	p, err := sb.Exec(ctx, append([]string{"tar", "-czf", archivePath}, paths...), model.ExecOpts{})
	if err != nil {
		return nil, fmt.Errorf("could not create archive: %w", err)
	}

	code, err := p.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create archive: %w", err)
	}
	if code != 0 {
		return nil, fmt.Errorf("could not create archive (exit code: %d): %w", code, model.ErrFilesystem)
	}
	defer func() {
		if err := sb.Rm(context.WithoutCancel(ctx), archivePath, false); err != nil {
			logger.Warningf("could not remove remote archive: %s", err)
		}
	}()

	data, err := s.readRemoteFile(ctx, sb, archivePath)
	if err != nil {
		return nil, fmt.Errorf("could not download archive: %w", err)
	}

	return data, nil
}

func (s *Service) readRemoteFile(ctx context.Context, sb *sandbox.Sandbox, remotePath string) ([]byte, error) {
	f, err := sb.Open(ctx, remotePath, "rb")
	if err != nil {
		return nil, err
	}

	data, err := f.Read(ctx)
	if err != nil {
		closeQuietly(ctx, f, s.logger)
		return nil, err
	}

	err = f.Close(ctx)
	if err != nil {
		return nil, err
	}

	return data, nil
}

func closeQuietly(ctx context.Context, f *fs.File, logger log.Logger) {
	if err := f.Close(ctx); err != nil {
		logger.Warningf("could not close %s: %s", f.Path(), err)
	}
}

func localDestination(localPath, name string) string {
	if strings.HasSuffix(localPath, string(os.PathSeparator)) {
		return filepath.Join(localPath, name)
	}
	if info, err := os.Stat(localPath); err == nil && info.IsDir() {
		return filepath.Join(localPath, name)
	}
	return localPath
}

func writeLocalFile(localPath string, data []byte) error {
	err := os.MkdirAll(filepath.Dir(localPath), 0o755)
	if err != nil {
		return fmt.Errorf("could not create %s parent directory: %w", localPath, err)
	}

	err = os.WriteFile(localPath, data, 0o644)
	if err != nil {
		return fmt.Errorf("could not write %s: %w", localPath, err)
	}

	return nil
}

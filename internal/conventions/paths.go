package conventions

import (
	"path"
	"path/filepath"
)

const (
	// DefaultDataDir is the default rsbx data directory name (relative to home).
	DefaultDataDir = ".rsbx"
	// RegistryDBFile is the filename of the local sandbox registry database.
	RegistryDBFile = "rsbx.db"

	// Sandbox-side paths.

	// RemoteTmpDir is the directory inside the sandbox used for transient files.
	RemoteTmpDir = "/tmp"
	// DownloadArchivePrefix is the name prefix of the archives created to download paths.
	DownloadArchivePrefix = "rsbx_download_"
	// DownloadArchiveExt is the extension of the download archives.
	DownloadArchiveExt = ".tar.gz"
)

// RegistryDBPath returns the path of the local sandbox registry database.
func RegistryDBPath(dataDir string) string {
	return filepath.Join(dataDir, RegistryDBFile)
}

// DownloadArchivePath returns the sandbox path of a download archive, `id` must be unique.
func DownloadArchivePath(id string) string {
	return path.Join(RemoteTmpDir, DownloadArchivePrefix+id+DownloadArchiveExt)
}

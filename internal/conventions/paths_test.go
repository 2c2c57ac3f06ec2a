package conventions_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/rsbx/internal/conventions"
)

func TestRegistryDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u/.rsbx", "rsbx.db"), conventions.RegistryDBPath("/home/u/.rsbx"))
}

func TestDownloadArchivePath(t *testing.T) {
	assert.Equal(t, "/tmp/rsbx_download_01ABC.tar.gz", conventions.DownloadArchivePath("01ABC"))
}

package copy

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/rsbx/internal/model"
)

type tarEntry struct {
	name string
	dir  bool
	data string
}

func tarGz(t *testing.T, entries []tarEntry) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Size: int64(len(e.data)), Typeflag: tar.TypeReg}
		if e.dir {
			hdr = &tar.Header{Name: e.name, Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir {
			_, err := tw.Write([]byte(e.data))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestExtractTarGz(t *testing.T) {
	tests := map[string]struct {
		entries  []tarEntry
		expFiles map[string]string
		expBytes int64
		expErrIs error
		expErr   bool
	}{
		"Files and directories should be extracted": {
			entries: []tarEntry{
				{name: "data/", dir: true},
				{name: "data/a.txt", data: "hello"},
				{name: "data/sub/b.txt", data: "world!"},
			},
			expFiles: map[string]string{"data/a.txt": "hello", "data/sub/b.txt": "world!"},
			expBytes: 11,
		},

		"Entries escaping the destination should fail": {
			entries:  []tarEntry{{name: "../evil.txt", data: "x"}},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			n, err := extractTarGz(bytes.NewReader(tarGz(t, test.entries)), dir)
			if test.expErr {
				require.Error(err)
				assert.ErrorIs(err, test.expErrIs)
				return
			}
			require.NoError(err)

			assert.Equal(test.expBytes, n)
			for path, exp := range test.expFiles {
				got, err := os.ReadFile(filepath.Join(dir, path))
				require.NoError(err)
				assert.Equal(exp, string(got))
			}
		})
	}
}

func TestExtractTarGzInvalidData(t *testing.T) {
	_, err := extractTarGz(bytes.NewReader([]byte("not gzip")), t.TempDir())
	assert.Error(t, err)
}

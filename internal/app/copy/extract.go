package copy

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/slok/rsbx/internal/model"
)

// extractTarGz unpacks a gzipped tarball into dir and returns the written file bytes.
// Only directories and regular files are extracted, entries escaping dir fail.
func extractTarGz(r io.Reader, dir string) (int64, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("could not read gzip: %w", err)
	}
	defer gz.Close()

	root, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}

	var total int64
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("could not read tar: %w", err)
		}

		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return total, fmt.Errorf("archive entry %q is outside the destination: %w", hdr.Name, model.ErrNotValid)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return total, err
			}
		case tar.TypeReg:
			n, err := writeEntry(tr, target, hdr.FileInfo().Mode().Perm())
			total += n
			if err != nil {
				return total, err
			}
		}
	}
}

func writeEntry(r io.Reader, target string, perm os.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("could not write %s: %w", target, err)
	}

	return n, f.Close()
}

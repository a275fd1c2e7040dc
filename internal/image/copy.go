// internal/image/copy.go
package image

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyToDir copies src into dir under its base name and returns the
// destination path. Symlinks in src are followed.
func CopyToDir(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	if err := CopyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// CopyFile copies src to dst, truncating dst.
// The destination is synced before close: removable drives only commit
// the image once the write has reached the medium.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("copy: create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy: %s -> %s: %w", src, dst, err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy: sync %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy: close %s: %w", dst, err)
	}
	return nil
}

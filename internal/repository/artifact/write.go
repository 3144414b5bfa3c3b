package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileMode is the permission used for written outputs.
const DefaultFileMode os.FileMode = 0o644

// WriteFile writes data to path unless the file already holds the same bytes.
// It reports whether the file was written.
func WriteFile(path string, data []byte) (bool, error) {
	path = filepath.Clean(path)

	same, err := hasContent(path, data)
	if err != nil {
		return false, err
	}

	if same {
		return false, nil
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}

	if err = os.WriteFile(path, data, DefaultFileMode); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}

	return true, nil
}

// CopyFile copies src to dst, reporting whether dst was written.
func CopyFile(src, dst string) (bool, error) {
	data, err := os.ReadFile(filepath.Clean(src))
	if err != nil {
		return false, fmt.Errorf("read %s: %w", src, err)
	}

	return WriteFile(dst, data)
}

// hasContent reports whether the file at path exists with exactly data as its content.
func hasContent(path string, data []byte) (bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.Mode().IsRegular() || info.Size() != int64(len(data)) {
		return false, nil
	}

	existing, err := io.ReadAll(f)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	return bytes.Equal(existing, data), nil
}

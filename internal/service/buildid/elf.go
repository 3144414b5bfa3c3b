package buildid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// elfMagic is the first four bytes of every ELF file.
//
//nolint:gochecknoglobals // Constant byte sequence.
var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// IsBinary reports whether the file at path starts with the ELF magic.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	header := make([]byte, len(elfMagic))
	if _, err = io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}

		return false, fmt.Errorf("read %s: %w", path, err)
	}

	return bytes.Equal(header, elfMagic), nil
}

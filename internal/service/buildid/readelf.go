package buildid

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultReadelf is the symbol tool looked up in PATH when none is configured.
const DefaultReadelf = "readelf"

// NoteReader dumps the ELF notes of several files in one call.
type NoteReader interface {
	ReadNotes(ctx context.Context, paths []string) ([]byte, error)
}

// Readelf runs "readelf -n" as a subprocess.
type Readelf struct {
	// Path is the readelf executable.
	Path string
}

// NewReadelf returns a Readelf using path, or DefaultReadelf when path is empty.
func NewReadelf(path string) *Readelf {
	if path == "" {
		path = DefaultReadelf
	}

	return &Readelf{Path: path}
}

// ReadNotes returns readelf's complete standard output for paths.
func (r *Readelf) ReadNotes(ctx context.Context, paths []string) ([]byte, error) {
	args := append([]string{"-n"}, paths...)

	//nolint:gosec // The tool path comes from the build configuration.
	out, err := exec.CommandContext(ctx, r.Path, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s -n: %w: %s", r.Path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}

		return nil, fmt.Errorf("%s -n: %w", r.Path, err)
	}

	return out, nil
}

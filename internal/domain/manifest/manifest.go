package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
)

const (
	// PackageIdentityPath is the package path of the name/version record.
	PackageIdentityPath = "meta/package"

	// MetadataDir is the package directory holding component manifests.
	MetadataDir = "meta"
)

// ErrConflictingEntry is returned when two different sources claim the same package path.
var ErrConflictingEntry = errors.New("conflicting manifest entry")

// Manifest maps package paths to source paths.
type Manifest struct {
	// entries is keyed by package path.
	entries map[string]string
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
	}
}

// Add records packagePath → source. Adding the same pair twice is a no-op;
// a different source for a known package path is an error.
func (m *Manifest) Add(packagePath, source string) error {
	if existing, ok := m.entries[packagePath]; ok && existing != source {
		return fmt.Errorf("%w: %s is provided by both %s and %s",
			ErrConflictingEntry, packagePath, existing, source)
	}

	m.entries[packagePath] = source

	return nil
}

// Source returns the source recorded for packagePath.
func (m *Manifest) Source(packagePath string) (string, bool) {
	source, ok := m.entries[packagePath]

	return source, ok
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// Paths returns all package paths in lexicographic order.
func (m *Manifest) Paths() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

// WriteTo writes one "package_path=source_path" line per entry, sorted by package path.
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	var written int64

	for _, packagePath := range m.Paths() {
		n, err := fmt.Fprintf(w, "%s=%s\n", packagePath, m.entries[packagePath])
		written += int64(n)

		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// Bytes returns the serialized manifest.
func (m *Manifest) Bytes() []byte {
	var buf bytes.Buffer

	// Writes into a bytes.Buffer never fail.
	_, _ = m.WriteTo(&buf)

	return buf.Bytes()
}

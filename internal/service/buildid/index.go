package buildid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/oshokin/package-inputs/internal/logger"
)

// ErrMissingBinary is returned when a path about to be inspected does not exist.
var ErrMissingBinary = errors.New("binary to inspect does not exist")

// Record maps a build ID to the unstripped binary holding its symbols.
type Record struct {
	// BuildID is the identifier reported by readelf.
	BuildID string
	// Path is the unstripped binary relative to the index file's directory.
	Path string
}

// Indexer builds the build-ID index for a set of expanded files.
type Indexer struct {
	notes  NoteReader
	exists func(string) bool
}

// NewIndexer returns an Indexer reading notes through reader.
func NewIndexer(reader NoteReader) *Indexer {
	return &Indexer{
		notes:  reader,
		exists: FileExists,
	}
}

// Build detects ELF binaries among files, asks the note reader for their
// build IDs in one batch and returns one record per stripped binary, ordered
// by stripped path. Record paths are relative to indexPath's directory.
func (ix *Indexer) Build(ctx context.Context, files []string, indexPath string) ([]Record, error) {
	// unstripped maps each stripped path to the files it stands for.
	unstripped := make(map[string][]string)

	for _, file := range files {
		binary, err := IsBinary(file)
		if err != nil {
			return nil, err
		}

		if !binary {
			continue
		}

		stripped := StrippedPath(file, ix.exists)
		unstripped[stripped] = append(unstripped[stripped], file)
	}

	if len(unstripped) == 0 {
		logger.Debug(ctx, "No binaries found, build-ID index is empty")

		return nil, nil
	}

	requested := make([]string, 0, len(unstripped))
	for stripped := range unstripped {
		requested = append(requested, stripped)
	}

	slices.Sort(requested)

	for _, path := range requested {
		if !ix.exists(path) {
			return nil, fmt.Errorf("%w: %s", ErrMissingBinary, path)
		}
	}

	logger.InfoKV(ctx, "Reading build IDs", "binaries", len(requested))

	output, err := ix.notes.ReadNotes(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("read build IDs: %w", err)
	}

	ids, err := parseNotes(output, requested)
	if err != nil {
		return nil, err
	}

	indexDir, err := filepath.Abs(filepath.Dir(indexPath))
	if err != nil {
		return nil, fmt.Errorf("resolve index directory: %w", err)
	}

	records := make([]Record, 0, len(requested))

	for _, stripped := range requested {
		symbols, err := filepath.Abs(symbolFile(stripped, unstripped[stripped]))
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", stripped, err)
		}

		rel, err := filepath.Rel(indexDir, symbols)
		if err != nil {
			return nil, fmt.Errorf("relativize %s: %w", symbols, err)
		}

		records = append(records, Record{
			BuildID: ids[stripped],
			Path:    filepath.ToSlash(rel),
		})
	}

	return records, nil
}

// symbolFile picks the file carrying debug symbols among candidates that
// share one stripped path: any candidate other than the stripped file itself.
func symbolFile(stripped string, candidates []string) string {
	sorted := slices.Clone(candidates)
	slices.Sort(sorted)

	for _, candidate := range sorted {
		if candidate != stripped {
			return candidate
		}
	}

	return stripped
}

// Format serializes records as "<build_id> <path>" lines.
func Format(records []Record) []byte {
	var buf bytes.Buffer

	for _, r := range records {
		buf.WriteString(r.BuildID)
		buf.WriteByte(' ')
		buf.WriteString(r.Path)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

package buildid

import (
	"os"
	"path/filepath"
	"strings"
)

// strippedSegments maps unstripped output directories to their stripped
// counterpart. An empty replacement drops the segment.
//
//nolint:gochecknoglobals // Closed lookup table.
var strippedSegments = map[string]string{
	"lib.unstripped": "lib",
	"exe.unstripped": "",
}

// StrippedCandidate returns path with every unstripped directory segment
// replaced by its stripped counterpart. The file name itself is never rewritten.
func StrippedCandidate(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	result := make([]string, 0, len(segments))

	for i, segment := range segments {
		replacement, ok := strippedSegments[segment]
		if !ok || i == len(segments)-1 {
			result = append(result, segment)

			continue
		}

		if replacement != "" {
			result = append(result, replacement)
		}
	}

	return filepath.FromSlash(strings.Join(result, "/"))
}

// StrippedPath returns the stripped counterpart of path when exists reports
// it present, and path itself otherwise.
func StrippedPath(path string, exists func(string) bool) string {
	candidate := StrippedCandidate(path)
	if candidate != path && exists(candidate) {
		return candidate
	}

	return path
}

// FileExists reports whether path names an existing non-directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

package packager

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// formatDepfile renders "<target>: <deps…>" where deps are the expanded
// files and component manifest outputs relative to outDir, sorted.
func formatDepfile(target, outDir string, expanded, outputs []string) ([]byte, error) {
	base, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	deps := make([]string, 0, len(expanded)+len(outputs))

	for _, file := range slices.Concat(expanded, outputs) {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", file, err)
		}

		rel, err := filepath.Rel(base, abs)
		if err != nil {
			return nil, fmt.Errorf("relativize %s: %w", file, err)
		}

		deps = append(deps, escapeDepfilePath(filepath.ToSlash(rel)))
	}

	slices.Sort(deps)
	deps = slices.Compact(deps)

	return []byte(escapeDepfilePath(filepath.ToSlash(target)) + ": " + strings.Join(deps, " ") + "\n"), nil
}

// escapeDepfilePath escapes spaces, which separate paths in a depfile.
func escapeDepfilePath(path string) string {
	return strings.ReplaceAll(path, " ", `\ `)
}

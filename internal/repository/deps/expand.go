package deps

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// HiddenPrefix marks file names skipped while walking directories.
const HiddenPrefix = "."

// Expand reads a newline-delimited list of paths and returns every file it
// references. Directories are walked recursively, skipping hidden files.
// Paths are cleaned, deduplicated and returned in lexicographic order.
func Expand(ctx context.Context, listPath string) ([]string, error) {
	listed, err := readList(listPath)
	if err != nil {
		return nil, err
	}

	files := make(map[string]struct{}, len(listed))

	for _, next := range listed {
		info, err := os.Stat(next)
		if err != nil || !info.IsDir() {
			// Plain files are taken as-is, even when absent: reading them later reports the error.
			files[filepath.Clean(next)] = struct{}{}

			continue
		}

		if err = walkDir(ctx, next, files); err != nil {
			return nil, err
		}
	}

	result := make([]string, 0, len(files))
	for file := range files {
		result = append(result, file)
	}

	slices.Sort(result)

	return result, nil
}

// readList returns non-empty trimmed lines of the deps list.
func readList(listPath string) ([]string, error) {
	f, err := os.Open(filepath.Clean(listPath))
	if err != nil {
		return nil, fmt.Errorf("open deps list: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	var (
		lines   []string
		scanner = bufio.NewScanner(f)
	)

	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("read deps list %s: %w", listPath, err)
	}

	return lines, nil
}

// walkDir adds every non-hidden file below dir to files.
// A linked dir is walked through its target, results stay under dir.
func walkDir(ctx context.Context, dir string, files map[string]struct{}) error {
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		if d.IsDir() || strings.HasPrefix(d.Name(), HiddenPrefix) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Links below the root are not followed; a link to a directory is not a file.
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files[filepath.Join(dir, rel)] = struct{}{}

		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	return nil
}

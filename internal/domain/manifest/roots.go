package manifest

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

// RootSet is an ordered set of base directories used to relativize file paths.
// Roots are kept sorted by descending length so a deeper root always wins
// over a shallower one that is also a prefix.
type RootSet struct {
	// roots are cleaned directory paths, each ending with a separator.
	roots []string
}

// NewRootSet builds a RootSet. Empty roots are dropped and a trailing
// separator on the input is insignificant.
func NewRootSet(roots ...string) *RootSet {
	normalized := make([]string, 0, len(roots))

	for _, root := range roots {
		if root == "" {
			continue
		}

		root = filepath.Clean(root)
		if !strings.HasSuffix(root, string(filepath.Separator)) {
			root += string(filepath.Separator)
		}

		if !slices.Contains(normalized, root) {
			normalized = append(normalized, root)
		}
	}

	slices.SortStableFunc(normalized, func(a, b string) int {
		if n := cmp.Compare(len(b), len(a)); n != 0 {
			return n
		}

		return cmp.Compare(a, b)
	})

	return &RootSet{roots: normalized}
}

// Roots returns the normalized roots in matching order.
func (r *RootSet) Roots() []string {
	return slices.Clone(r.roots)
}

// Resolve returns path relative to the longest root that prefixes it.
// A path outside every root is returned unchanged.
func (r *RootSet) Resolve(path string) string {
	for _, root := range r.roots {
		if rel, ok := strings.CutPrefix(path, root); ok {
			return rel
		}
	}

	return path
}

package manifest

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnconsumedClaims is returned by ClaimSet.Verify when some claim never matched a file.
var ErrUnconsumedClaims = errors.New("claimed package paths not found in the deps list")

// ClaimSet holds package paths that the expanded-file pass must not add.
//
// It is used in two phases: Claim everything up front, then Consume while
// walking expanded files. Verify checks that every claim was matched.
type ClaimSet struct {
	// pending holds claims not yet matched by any file.
	pending map[string]struct{}
	// consumed holds claims matched at least once.
	consumed map[string]struct{}
}

// NewClaimSet returns a claim set pre-populated with paths.
func NewClaimSet(paths ...string) *ClaimSet {
	c := &ClaimSet{
		pending:  make(map[string]struct{}, len(paths)),
		consumed: make(map[string]struct{}, len(paths)),
	}

	for _, path := range paths {
		c.Claim(path)
	}

	return c
}

// Claim marks packagePath as covered elsewhere.
func (c *ClaimSet) Claim(packagePath string) {
	if _, ok := c.consumed[packagePath]; ok {
		return
	}

	c.pending[packagePath] = struct{}{}
}

// Consume reports whether packagePath is claimed and marks the claim as matched.
// A claim stays claimed after its first match, so aliases resolving to the
// same package path are skipped as well.
func (c *ClaimSet) Consume(packagePath string) bool {
	if _, ok := c.consumed[packagePath]; ok {
		return true
	}

	if _, ok := c.pending[packagePath]; !ok {
		return false
	}

	delete(c.pending, packagePath)
	c.consumed[packagePath] = struct{}{}

	return true
}

// Pending returns unmatched claims in lexicographic order.
func (c *ClaimSet) Pending() []string {
	return slices.Sorted(maps.Keys(c.pending))
}

// Verify fails when any claim was never consumed.
func (c *ClaimSet) Verify() error {
	if len(c.pending) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnconsumedClaims, strings.Join(c.Pending(), ", "))
}

package packager

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/oshokin/package-inputs/internal/domain/manifest"
	"github.com/oshokin/package-inputs/internal/repository/artifact"
)

// packageIdentityFilename is written beside the package manifest.
const packageIdentityFilename = "package"

// packageIdentity is the content of meta/package.
type packageIdentity struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

// writeMetaPackage writes the package identity record and adds it as the first entry.
func (p *packager) writeMetaPackage() error {
	contents, err := json.Marshal(packageIdentity{
		Version: p.cfg.PackageVersion,
		Name:    p.cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("marshal package identity: %w", err)
	}

	dest := filepath.Join(filepath.Dir(p.cfg.ManifestPath), packageIdentityFilename)
	if _, err = artifact.WriteFile(dest, contents); err != nil {
		return fmt.Errorf("write package identity: %w", err)
	}

	return p.entries.Add(manifest.PackageIdentityPath, dest)
}

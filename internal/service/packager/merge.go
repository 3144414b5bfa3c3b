package packager

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/oshokin/package-inputs/internal/domain/component"
	"github.com/oshokin/package-inputs/internal/domain/manifest"
	"github.com/oshokin/package-inputs/internal/logger"
	"github.com/oshokin/package-inputs/internal/repository/artifact"
	"github.com/oshokin/package-inputs/internal/service/buildid"
)

// packagePath resolves file against the package roots.
// A file outside every root keeps its own path.
func (p *packager) packagePath(file string) (string, error) {
	file = filepath.Clean(file)

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", file, err)
	}

	resolved := p.roots.Resolve(abs)
	if resolved == abs {
		resolved = file
	}

	return filepath.ToSlash(resolved), nil
}

// mergeComponents adds every resource and every unclaimed expanded file.
//
// Claims cover the caller's exclusions, the manifest sources and the natural
// location of each resource source of all components. Each claim must match
// an expanded file, otherwise the exclusion or descriptor is stale.
func (p *packager) mergeComponents(ctx context.Context, components []component.Component, expanded []string) error {
	claims := manifest.NewClaimSet(p.cfg.ExcludeFiles...)

	for i := range components {
		if err := p.claimComponent(claims, &components[i]); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}

	for _, file := range expanded {
		file = buildid.StrippedPath(file, p.exists)

		inPackage, err := p.packagePath(file)
		if err != nil {
			return err
		}

		if claims.Consume(inPackage) {
			logger.DebugKV(ctx, "Skipping claimed file", "path", inPackage, "source", file)

			continue
		}

		if err = p.entries.Add(inPackage, file); err != nil {
			return err
		}
	}

	return claims.Verify()
}

// claimComponent claims the component's manifest sources and adds its
// resources at their explicit destinations.
func (p *packager) claimComponent(claims *manifest.ClaimSet, c *component.Component) error {
	for _, m := range c.Manifests {
		claimed, err := p.packagePath(m.Source)
		if err != nil {
			return err
		}

		claims.Claim(claimed)
	}

	for _, r := range c.Resources {
		source := filepath.Clean(r.Source)
		if err := p.entries.Add(r.Dest, source); err != nil {
			return err
		}

		claimed, err := p.packagePath(source)
		if err != nil {
			return err
		}

		claims.Claim(claimed)
	}

	return nil
}

// writeComponentManifests copies each manifest descriptor's source beside
// the package manifest and adds it under the metadata directory.
func (p *packager) writeComponentManifests(ctx context.Context, c *component.Component) error {
	outputDir := filepath.Dir(p.cfg.ManifestPath)

	for _, m := range c.Manifests {
		name, err := m.FileName()
		if err != nil {
			return err
		}

		dest := filepath.Join(outputDir, name)

		written, err := artifact.CopyFile(m.Source, dest)
		if err != nil {
			return fmt.Errorf("copy component manifest: %w", err)
		}

		logger.DebugKV(ctx, "Component manifest", "source", m.Source, "dest", dest, "written", written)

		if err = p.entries.Add(path.Join(manifest.MetadataDir, name), dest); err != nil {
			return err
		}

		p.componentOutputs = append(p.componentOutputs, dest)
	}

	return nil
}

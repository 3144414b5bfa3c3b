package packager

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/oshokin/package-inputs/internal/config"
	"github.com/oshokin/package-inputs/internal/domain/component"
	"github.com/oshokin/package-inputs/internal/domain/manifest"
	"github.com/oshokin/package-inputs/internal/logger"
	"github.com/oshokin/package-inputs/internal/repository/artifact"
	"github.com/oshokin/package-inputs/internal/repository/deps"
	"github.com/oshokin/package-inputs/internal/repository/descriptor"
	"github.com/oshokin/package-inputs/internal/service/buildid"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// Config holds the run's paths and package metadata.
	Config *config.Config
	// NoteReader replaces the readelf subprocess when set.
	NoteReader buildid.NoteReader
}

// packager holds the state of one run.
// It is unexported, callers should use Run, which encapsulates setup and validation.
type packager struct {
	// cfg is the validated configuration.
	cfg *config.Config
	// roots relativizes absolute file paths into package paths.
	roots *manifest.RootSet
	// entries is the manifest being assembled.
	entries *manifest.Manifest
	// indexer produces the build-ID index.
	indexer *buildid.Indexer
	// exists reports whether a stripped sibling is present.
	exists func(string) bool
	// componentOutputs lists copied component manifests.
	componentOutputs []string
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "prepare-package-inputs")

	if err := config.Validate(opts.Config); err != nil {
		return err
	}

	pkg, err := newPackager(opts)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	if err = pkg.run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.InfoKV(ctx, "Package inputs prepared",
		"manifest", opts.Config.ManifestPath,
		"entries", pkg.entries.Len())

	return nil
}

// newPackager creates a packager for a validated configuration.
func newPackager(opts *Options) (*packager, error) {
	cfg := opts.Config

	roots, err := newRoots(cfg.OutDir, cfg.RootDir)
	if err != nil {
		return nil, err
	}

	notes := opts.NoteReader
	if notes == nil {
		notes = buildid.NewReadelf(cfg.Readelf)
	}

	return &packager{
		cfg:     cfg,
		roots:   roots,
		entries: manifest.New(),
		indexer: buildid.NewIndexer(notes),
		exists:  buildid.FileExists,
	}, nil
}

// newRoots returns the package roots: the gen directory, the source root and the output root.
func newRoots(outDir, rootDir string) (*manifest.RootSet, error) {
	candidates := []string{filepath.Join(outDir, "gen"), rootDir, outDir}
	roots := make([]string, 0, len(candidates))

	for _, root := range candidates {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", root, err)
		}

		roots = append(roots, abs)
	}

	return manifest.NewRootSet(roots...), nil
}

// run performs every step of the pipeline in order.
func (p *packager) run(ctx context.Context) error {
	expanded, err := deps.Expand(ctx, p.cfg.RuntimeDepsFile)
	if err != nil {
		return err
	}

	logger.DebugKV(ctx, "Expanded runtime deps", "files", len(expanded))

	components, err := p.loadComponents()
	if err != nil {
		return err
	}

	if err = p.writeMetaPackage(); err != nil {
		return err
	}

	if err = p.mergeComponents(ctx, components, expanded); err != nil {
		return err
	}

	for i := range components {
		componentCtx := logger.WithKV(ctx, "component", i)

		if err = p.writeComponentManifests(componentCtx, &components[i]); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}

	if _, err = artifact.WriteFile(p.cfg.ManifestPath, p.entries.Bytes()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	records, err := p.indexer.Build(ctx, expanded, p.cfg.BuildIDsFile)
	if err != nil {
		return fmt.Errorf("build-ID index: %w", err)
	}

	if _, err = artifact.WriteFile(p.cfg.BuildIDsFile, buildid.Format(records)); err != nil {
		return fmt.Errorf("write build-ID index: %w", err)
	}

	depfile, err := formatDepfile(p.cfg.ManifestPath, p.cfg.OutDir, expanded, p.componentOutputs)
	if err != nil {
		return err
	}

	if _, err = artifact.WriteFile(p.cfg.DepfilePath, depfile); err != nil {
		return fmt.Errorf("write depfile: %w", err)
	}

	return nil
}

// loadComponents reads every descriptor source in order.
func (p *packager) loadComponents() ([]component.Component, error) {
	var components []component.Component

	for _, path := range p.cfg.ComponentFiles {
		loaded, err := descriptor.Load(path)
		if err != nil {
			return nil, err
		}

		components = append(components, loaded...)
	}

	return components, nil
}

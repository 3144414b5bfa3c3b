package packager

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/package-inputs/internal/config"
	"github.com/oshokin/package-inputs/internal/domain/component"
	"github.com/oshokin/package-inputs/internal/domain/manifest"
	"github.com/oshokin/package-inputs/internal/service/buildid"
)

// elfHeader is enough of an ELF file for magic detection.
const elfHeader = "\x7fELF\x02\x01\x01\x00"

// staticNotes answers every readelf call with the same output.
type staticNotes struct {
	output string
	calls  int
}

func (s *staticNotes) ReadNotes(context.Context, []string) ([]byte, error) {
	s.calls++

	return []byte(s.output), nil
}

// fixture is a scratch source tree with an output directory inside it.
type fixture struct {
	t    *testing.T
	root string
	out  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()

	return &fixture{t: t, root: root, out: filepath.Join(root, "out")}
}

// file writes contents at a path relative to the output directory and returns its absolute path.
func (f *fixture) file(rel, contents string) string {
	f.t.Helper()

	path := filepath.Join(f.out, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(f.t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

// config writes the deps list and descriptors and returns a configuration pointing at them.
func (f *fixture) config(deps []string, descriptors string) *config.Config {
	f.t.Helper()

	depsFile := f.file("gen/app.runtime_deps", strings.Join(deps, "\n")+"\n")
	jsonFile := f.file("gen/app.components.json", descriptors)

	return &config.Config{
		RootDir:         f.root,
		OutDir:          f.out,
		AppName:         "app",
		RuntimeDepsFile: depsFile,
		ComponentFiles:  []string{jsonFile},
		ManifestPath:    filepath.Join(f.out, "pkg", "app.manifest"),
		BuildIDsFile:    filepath.Join(f.out, "pkg", "ids.txt"),
		DepfilePath:     filepath.Join(f.out, "pkg", "app.manifest.d"),
	}
}

// read returns the content of path.
func (f *fixture) read(path string) string {
	f.t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(f.t, err)

	return string(contents)
}

// TestRun_EndToEnd assembles a package with a binary, a generated file and a resource.
func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	app := f.file("bin/app", elfHeader)
	data := f.file("gen/data.txt", "data")
	extra := f.file("extra.txt", "extra")

	cfg := f.config(
		[]string{app, data, extra},
		`[{"type": "resource", "source": "`+extra+`", "dest": "data/extra.txt"}]`,
	)
	notes := &staticNotes{output: "    Build ID: 0011aabb\n"}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: notes}))

	metaPackage := filepath.Join(f.out, "pkg", "package")
	require.Equal(t, strings.Join([]string{
		"bin/app=" + app,
		"data.txt=" + data,
		"data/extra.txt=" + extra,
		"meta/package=" + metaPackage,
	}, "\n")+"\n", f.read(cfg.ManifestPath))

	require.JSONEq(t, `{"version": "0", "name": "app"}`, f.read(metaPackage))
	require.Equal(t, "0011aabb ../bin/app\n", f.read(cfg.BuildIDsFile))
	require.Equal(t, cfg.ManifestPath+": bin/app extra.txt gen/data.txt\n", f.read(cfg.DepfilePath))
	require.Equal(t, 1, notes.calls)
}

// TestRun_Idempotent produces byte-identical outputs on a second run.
func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	app := f.file("bin/app", elfHeader)
	lib := f.file("lib/libfoo.so", elfHeader)
	f.file("data/a.txt", "a")
	f.file("data/b.txt", "b")

	cfg := f.config([]string{filepath.Join(f.out, "data"), lib, app}, `[]`)
	notes := &staticNotes{output: "File: " + app + "\nBuild ID: 01\nFile: " + lib + "\nBuild ID: 02\n"}

	outputs := []string{cfg.ManifestPath, cfg.BuildIDsFile, cfg.DepfilePath}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: notes}))

	first := make([]string, 0, len(outputs))
	for _, path := range outputs {
		first = append(first, f.read(path))
	}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: notes}))

	for i, path := range outputs {
		require.Equal(t, first[i], f.read(path), path)
	}

	require.Equal(t, "01 ../bin/app\n02 ../lib/libfoo.so\n", first[1])
}

// TestRun_Exclusions removes excluded files and fails on exclusions matching nothing.
func TestRun_Exclusions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	keep := f.file("data/keep.txt", "keep")
	drop := f.file("data/drop.txt", "drop")

	cfg := f.config([]string{keep, drop}, `[]`)
	cfg.ExcludeFiles = []string{"data/drop.txt"}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}}))

	contents := f.read(cfg.ManifestPath)
	require.Contains(t, contents, "data/keep.txt="+keep)
	require.NotContains(t, contents, "drop.txt")

	cfg = f.config([]string{keep}, `[]`)
	cfg.ExcludeFiles = []string{"data/never-built.txt"}

	err := Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}})
	require.ErrorIs(t, err, manifest.ErrUnconsumedClaims)
	require.Contains(t, err.Error(), "data/never-built.txt")
}

// TestRun_ComponentManifest copies the manifest into meta/ and keeps its source out of the generic pass.
func TestRun_ComponentManifest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	source := f.file("obj/app/app.cm", "compiled manifest")
	data := f.file("data/a.txt", "a")

	cfg := f.config(
		[]string{source, data},
		`[[{"type": "manifest", "manifest_version": "v2", "output_name": "app", "source": "`+source+`"}]]`,
	)

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}}))

	copied := filepath.Join(f.out, "pkg", "app.cm")
	require.Equal(t, "compiled manifest", f.read(copied))

	contents := f.read(cfg.ManifestPath)
	require.Contains(t, contents, "meta/app.cm="+copied+"\n")
	require.NotContains(t, contents, "obj/app/app.cm")
	require.Equal(t, cfg.ManifestPath+": data/a.txt obj/app/app.cm pkg/app.cm\n", f.read(cfg.DepfilePath))
}

// TestRun_ComponentManifestErrors covers unknown versions and manifests missing from the deps list.
func TestRun_ComponentManifestErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	source := f.file("obj/app/app.cmx", "manifest")

	cfg := f.config(
		[]string{source},
		`[{"type": "manifest", "manifest_version": "v9", "output_name": "app", "source": "`+source+`"}]`,
	)

	err := Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}})
	require.ErrorIs(t, err, component.ErrUnknownManifestVersion)

	other := f.file("data/a.txt", "a")
	cfg = f.config(
		[]string{other},
		`[{"type": "manifest", "manifest_version": "v1", "output_name": "app", "source": "`+source+`"}]`,
	)

	err = Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}})
	require.ErrorIs(t, err, manifest.ErrUnconsumedClaims)
}

// TestRun_StrippedPreferred ships the stripped binary and indexes the unstripped one.
func TestRun_StrippedPreferred(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	unstripped := f.file("exe.unstripped/app", elfHeader+"symbols")
	stripped := f.file("app", elfHeader)

	cfg := f.config([]string{unstripped}, `[]`)
	notes := &staticNotes{output: "Build ID: beef\n"}

	require.NoError(t, Run(context.Background(), &Options{Config: cfg, NoteReader: notes}))

	require.Contains(t, f.read(cfg.ManifestPath), "app="+stripped+"\n")
	require.NotContains(t, f.read(cfg.ManifestPath), "exe.unstripped")
	require.Equal(t, "beef ../exe.unstripped/app\n", f.read(cfg.BuildIDsFile))
	require.Equal(t, cfg.ManifestPath+": exe.unstripped/app\n", f.read(cfg.DepfilePath))
}

// TestRun_ConflictingResource rejects a resource that collides with an expanded file.
func TestRun_ConflictingResource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	app := f.file("bin/app", "script")
	other := f.file("tools/app", "other")

	cfg := f.config(
		[]string{app, other},
		`[{"type": "resource", "source": "`+other+`", "dest": "bin/app"}]`,
	)

	err := Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{}})
	require.ErrorIs(t, err, manifest.ErrConflictingEntry)
}

// TestRun_MissingBuildID fails when the tool reports nothing for a binary.
func TestRun_MissingBuildID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	app := f.file("bin/app", elfHeader)

	cfg := f.config([]string{app}, `[]`)

	err := Run(context.Background(), &Options{Config: cfg, NoteReader: &staticNotes{output: "no notes\n"}})
	require.ErrorIs(t, err, buildid.ErrMissingBuildID)
}

// TestRun_InvalidConfig rejects an incomplete configuration before touching the disk.
func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{Config: &config.Config{AppName: "app"}})
	require.ErrorIs(t, err, config.ErrMissingRequired)
}

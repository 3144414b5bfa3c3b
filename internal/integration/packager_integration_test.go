package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/package-inputs/internal/config"
	"github.com/oshokin/package-inputs/internal/service/packager"
)

// fakeReadelf is a stand-in for "readelf -n" printing one build ID per argument after -n.
const fakeReadelf = `#!/bin/sh
shift
for f in "$@"; do
  if [ $# -gt 1 ]; then echo "File: $f"; fi
  echo "Displaying notes found in: .note.gnu.build-id"
  echo "    Build ID: $(basename "$f")-id"
done
`

// writeFile creates rel below the working directory.
func writeFile(t *testing.T, rel, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(rel), 0o755))
	require.NoError(t, os.WriteFile(rel, []byte(contents), 0o755))
}

// readFile returns the content of rel.
func readFile(t *testing.T, rel string) string {
	t.Helper()

	contents, err := os.ReadFile(rel)
	require.NoError(t, err)

	return string(contents)
}

// TestPackager_EndToEnd runs the whole pipeline on relative paths with a scripted readelf.
func TestPackager_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("the fake readelf is a shell script")
	}

	t.Chdir(t.TempDir())

	writeFile(t, "tools/readelf", fakeReadelf)
	writeFile(t, "out/bin/app", "\x7fELF\x02\x01\x01\x00")
	writeFile(t, "out/lib.unstripped/libfoo.so", "\x7fELF\x02\x01\x01\x00symbols")
	writeFile(t, "out/lib/libfoo.so", "\x7fELF\x02\x01\x01\x00")
	writeFile(t, "out/gen/data.txt", "data")
	writeFile(t, "out/extra.txt", "extra")
	writeFile(t, "out/gen/.swp", "")
	writeFile(t, "out/obj/app/app.cm", "manifest")
	writeFile(t, "out/app.runtime_deps", strings.Join([]string{
		"out/bin/app",
		"out/lib.unstripped/libfoo.so",
		"out/gen",
		"out/extra.txt",
		"out/obj/app/app.cm",
		"out/bin/../bin/app",
	}, "\n")+"\n")
	writeFile(t, "out/app.components.json", `[
  {"type": "resource", "source": "out/extra.txt", "dest": "data/extra.txt"},
  {"type": "manifest", "manifest_version": "v2", "output_name": "app", "source": "out/obj/app/app.cm"}
]`)

	cfg := &config.Config{
		RootDir:         ".",
		OutDir:          "out",
		AppName:         "app",
		PackageVersion:  "7",
		RuntimeDepsFile: "out/app.runtime_deps",
		ComponentFiles:  []string{"out/app.components.json"},
		ExcludeFiles:    []string{"app.runtime_deps"},
		ManifestPath:    "out/pkg/app.manifest",
		BuildIDsFile:    "out/pkg/ids.txt",
		DepfilePath:     "out/pkg/app.manifest.d",
		Readelf:         "tools/readelf",
	}

	// The deps list is not in the runtime deps, so excluding it must fail.
	err := packager.Run(context.Background(), &packager.Options{Config: cfg})
	require.Error(t, err)

	cfg.ExcludeFiles = nil
	require.NoError(t, packager.Run(context.Background(), &packager.Options{Config: cfg}))

	manifest := readFile(t, "out/pkg/app.manifest")
	require.Equal(t, strings.Join([]string{
		"bin/app=out/bin/app",
		"data.txt=out/gen/data.txt",
		"data/extra.txt=out/extra.txt",
		"lib/libfoo.so=out/lib/libfoo.so",
		"meta/app.cm=out/pkg/app.cm",
		"meta/package=out/pkg/package",
	}, "\n")+"\n", manifest)

	require.Equal(t, "app-id ../bin/app\nlibfoo.so-id ../lib.unstripped/libfoo.so\n", readFile(t, "out/pkg/ids.txt"))
	require.Equal(t,
		"out/pkg/app.manifest: bin/app extra.txt gen/data.txt lib.unstripped/libfoo.so obj/app/app.cm pkg/app.cm\n",
		readFile(t, "out/pkg/app.manifest.d"))
	require.JSONEq(t, `{"version": "7", "name": "app"}`, readFile(t, "out/pkg/package"))

	// A second run leaves every output byte-identical.
	require.NoError(t, packager.Run(context.Background(), &packager.Options{Config: cfg}))
	require.Equal(t, manifest, readFile(t, "out/pkg/app.manifest"))
}

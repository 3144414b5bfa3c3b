package component

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestManifestFileName maps every supported version to its extension.
func TestManifestFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"v1": "app.cmx",
		"v2": "app.cm",
	}
	for version, want := range cases {
		m := Manifest{ManifestVersion: version, OutputName: "app"}

		got, err := m.FileName()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

// TestManifestFileName_Unknown rejects versions outside the closed set.
func TestManifestFileName_Unknown(t *testing.T) {
	t.Parallel()

	for _, version := range []string{"", "v3", "V2"} {
		m := Manifest{ManifestVersion: version, OutputName: "app"}

		_, err := m.FileName()
		require.ErrorIs(t, err, ErrUnknownManifestVersion, version)
	}
}

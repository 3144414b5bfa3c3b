package component

import (
	"errors"
	"fmt"
)

// ErrUnknownManifestVersion is returned for a manifest_version outside the supported set.
var ErrUnknownManifestVersion = errors.New("unknown manifest_version")

// Descriptor type discriminators.
const (
	TypeManifest = "manifest"
	TypeResource = "resource"
)

// manifestExtensions maps each supported manifest version to the copied file's extension.
//
//nolint:gochecknoglobals // Closed lookup table.
var manifestExtensions = map[string]string{
	"v1": ".cmx",
	"v2": ".cm",
}

// Manifest describes a component manifest file.
type Manifest struct {
	// ManifestVersion selects the output extension.
	ManifestVersion string
	// OutputName is the copied file's name without extension.
	OutputName string
	// Source is the manifest file produced by the build.
	Source string
}

// Extension returns the file extension for the manifest version.
func (m *Manifest) Extension() (string, error) {
	ext, ok := manifestExtensions[m.ManifestVersion]
	if !ok {
		return "", fmt.Errorf("%w: %q (output %q)", ErrUnknownManifestVersion, m.ManifestVersion, m.OutputName)
	}

	return ext, nil
}

// FileName returns OutputName plus the version's extension.
func (m *Manifest) FileName() (string, error) {
	ext, err := m.Extension()
	if err != nil {
		return "", err
	}

	return m.OutputName + ext, nil
}

// Resource describes a file placed at an explicit package path.
type Resource struct {
	// Source is the file produced by the build.
	Source string
	// Dest is the package path.
	Dest string
}

// Component groups the descriptors of one logical component.
type Component struct {
	Manifests []Manifest
	Resources []Resource
}

package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/package-inputs/internal/domain/component"
)

var (
	// ErrUnsupportedExtension is returned for descriptor files that are neither JSON nor YAML.
	ErrUnsupportedExtension = errors.New("unsupported descriptor file extension")
	// ErrInvalidLayout is returned when the document is not a sequence of records or of record sequences.
	ErrInvalidLayout = errors.New("invalid descriptor layout")
)

// supportedExtensions lists descriptor file extensions. JSON is decoded by the YAML decoder.
//
//nolint:gochecknoglobals // Closed lookup table.
var supportedExtensions = map[string]struct{}{
	".json": {},
	".yaml": {},
	".yml":  {},
}

// record is one descriptor as it appears in the file.
type record struct {
	Type            string `yaml:"type"`
	ManifestVersion string `yaml:"manifest_version"`
	OutputName      string `yaml:"output_name"`
	Source          string `yaml:"source"`
	Dest            string `yaml:"dest"`
}

// Load reads the components described by the file at path.
func Load(path string) ([]component.Component, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnsupportedExtension, ext, path)
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}

	components, err := Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("parse descriptors %s: %w", path, err)
	}

	return components, nil
}

// Parse decodes descriptor data. Records with an unknown type are ignored.
func Parse(data []byte) ([]component.Component, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: top level must be a sequence", ErrInvalidLayout)
	}

	if len(root.Content) == 0 {
		return nil, nil
	}

	switch root.Content[0].Kind {
	case yaml.MappingNode:
		c, err := parseComponent(root)
		if err != nil {
			return nil, err
		}

		return []component.Component{c}, nil
	case yaml.SequenceNode:
		components := make([]component.Component, 0, len(root.Content))

		for i, item := range root.Content {
			if item.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%w: item %d is not a sequence", ErrInvalidLayout, i)
			}

			c, err := parseComponent(item)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}

			components = append(components, c)
		}

		return components, nil
	default:
		return nil, fmt.Errorf("%w: items must be records or sequences of records", ErrInvalidLayout)
	}
}

// parseComponent dispatches every record of node by its type.
func parseComponent(node *yaml.Node) (component.Component, error) {
	var c component.Component

	for i, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return c, fmt.Errorf("%w: record %d is not a mapping", ErrInvalidLayout, i)
		}

		var rec record
		if err := item.Decode(&rec); err != nil {
			return c, fmt.Errorf("record %d: %w", i, err)
		}

		switch rec.Type {
		case component.TypeManifest:
			c.Manifests = append(c.Manifests, component.Manifest{
				ManifestVersion: rec.ManifestVersion,
				OutputName:      rec.OutputName,
				Source:          rec.Source,
			})
		case component.TypeResource:
			c.Resources = append(c.Resources, component.Resource{
				Source: rec.Source,
				Dest:   rec.Dest,
			})
		}
	}

	return c, nil
}

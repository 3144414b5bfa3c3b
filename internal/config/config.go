package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/package-inputs/internal/logger"
)

// Config holds every input of a packaging run.
type Config struct {
	// RootDir is the source root, used only to relativize paths.
	RootDir string `yaml:"root_dir"`
	// OutDir is the build output directory, used to relativize paths.
	OutDir string `yaml:"out_dir"`
	// AppName is the package name written into meta/package.
	AppName string `yaml:"app_name"`
	// PackageVersion is the package version written into meta/package.
	PackageVersion string `yaml:"package_version"`
	// RuntimeDepsFile lists the files and directories shipped in the package.
	RuntimeDepsFile string `yaml:"runtime_deps_file"`
	// ComponentFiles are the component descriptor sources.
	ComponentFiles []string `yaml:"component_files"`
	// ExcludeFiles are package paths kept out of the generic file pass.
	ExcludeFiles []string `yaml:"exclude_files"`
	// ManifestPath is where the package manifest is written.
	ManifestPath string `yaml:"manifest_path"`
	// BuildIDsFile is where the build-ID index is written.
	BuildIDsFile string `yaml:"build_ids_file"`
	// DepfilePath is where the build-system depfile is written.
	DepfilePath string `yaml:"depfile_path"`
	// Readelf is the symbol tool executable.
	Readelf string `yaml:"readelf"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultPackageVersion is used when no version is given.
	DefaultPackageVersion = "0"

	// DefaultReadelf is the symbol tool looked up in PATH.
	DefaultReadelf = "readelf"

	// DefaultLogLevel keeps successful runs silent.
	DefaultLogLevel = "warn"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// ErrMissingRequired is returned when required inputs are absent.
	ErrMissingRequired = errors.New("missing required settings")
	// ErrInvalidLogLevel is returned for an unknown log level name.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Load reads configuration from the YAML file at path.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Merge overlays other on c: non-empty scalars replace, lists are appended.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	override(&c.RootDir, other.RootDir)
	override(&c.OutDir, other.OutDir)
	override(&c.AppName, other.AppName)
	override(&c.PackageVersion, other.PackageVersion)
	override(&c.RuntimeDepsFile, other.RuntimeDepsFile)
	override(&c.ManifestPath, other.ManifestPath)
	override(&c.BuildIDsFile, other.BuildIDsFile)
	override(&c.DepfilePath, other.DepfilePath)
	override(&c.Readelf, other.Readelf)
	override(&c.LogLevel, other.LogLevel)

	c.ComponentFiles = append(c.ComponentFiles, other.ComponentFiles...)
	c.ExcludeFiles = append(c.ExcludeFiles, other.ExcludeFiles...)
}

// Validate checks required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PackageVersion == "" {
		cfg.PackageVersion = DefaultPackageVersion
	}

	if cfg.Readelf == "" {
		cfg.Readelf = DefaultReadelf
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	required := []struct {
		name  string
		value string
	}{
		{"root-dir", cfg.RootDir},
		{"out-dir", cfg.OutDir},
		{"app-name", cfg.AppName},
		{"runtime-deps-file", cfg.RuntimeDepsFile},
		{"manifest-path", cfg.ManifestPath},
		{"build-ids-file", cfg.BuildIDsFile},
		{"depfile-path", cfg.DepfilePath},
	}

	var missing []string

	for _, field := range required {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}

	if len(cfg.ComponentFiles) == 0 {
		missing = append(missing, "json-file")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	return nil
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/package-inputs/internal/config"
	"github.com/oshokin/package-inputs/internal/logger"
	"github.com/oshokin/package-inputs/internal/service/packager"
	"github.com/oshokin/package-inputs/internal/version"
)

var (
	// configPath to an optional YAML file with default settings.
	configPath string

	// flags collects values given on the command line.
	flags config.Config

	// rootCmd represents the base command for preparing package inputs.
	rootCmd = &cobra.Command{
		Use:           "prepare-package-inputs",
		Short:         "Assemble a package manifest, build-ID index and depfile from build outputs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling, readelf is killed on interrupt.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg := new(config.Config)

			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}

				cfg = loaded
			}

			cfg.Merge(&flags)

			if err := config.Validate(cfg); err != nil {
				return err
			}

			if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
				logger.SetLevel(level)
			}

			return packager.Run(ctx, &packager.Options{Config: cfg})
		},
	}
)

// Execute runs the prepare-package-inputs CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	f := rootCmd.Flags()

	f.StringVarP(&configPath, "config", "c", "", "path to a YAML file with default settings")
	f.StringVar(&flags.RootDir, "root-dir", "", "build root directory")
	f.StringVar(&flags.OutDir, "out-dir", "", "build output directory")
	f.StringVar(&flags.AppName, "app-name", "", "package name")
	f.StringVar(&flags.PackageVersion, "package-version", "", `version of the package (default "0")`)
	f.StringVar(&flags.RuntimeDepsFile, "runtime-deps-file", "", "file with the list of runtime dependencies")
	f.StringArrayVar(&flags.ComponentFiles, "json-file", nil, "component descriptor file (repeatable)")
	f.StringArrayVar(&flags.ExcludeFiles, "exclude-file", nil, "package-relative file path to exclude from the package (repeatable)")
	f.StringVar(&flags.ManifestPath, "manifest-path", "", "manifest output path")
	f.StringVar(&flags.BuildIDsFile, "build-ids-file", "", "debug symbol index path")
	f.StringVar(&flags.DepfilePath, "depfile-path", "", "path to write the depfile")
	f.StringVar(&flags.Readelf, "readelf", "", `readelf executable (default "readelf")`)
	f.StringVar(&flags.LogLevel, "log-level", "", `log level: debug, info, warn or error (default "warn")`)
}

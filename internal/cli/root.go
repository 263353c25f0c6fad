package cli

import (
	"path/filepath"

	"github.com/Spencerx/pesign-obs-integration/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var config models.Config

	rootCmd := &cobra.Command{
		Use:   "pesign-gen-repackage-spec [flags] package.rpm...",
		Short: "Regenerate a build recipe for already-built packages",
		Long: `pesign-gen-repackage-spec reads the metadata of already-built RPM
packages and reconstructs a specfile that rebuilds them from an unpacked
payload tree with identical names, dependencies, scriptlets, triggers and
file lists. It is used in signing pipelines: the payload files are resigned
on disk and the packages are then rebuilt around them.`,
		Args: cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config.Packages = args
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Info("Starting specfile generation...")
			logrus.Debugf("Configuration: %+v", config)

			return runGeneration(cmd.Context(), &config)
		},
	}

	rootCmd.Flags().StringVarP(&config.PayloadDir, "payload-dir", "d", "", "Directory holding the unpacked package trees (absolute)")
	rootCmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", ".", "Output directory for repackage.spec and side files")
	rootCmd.Flags().StringVarP(&config.CertTemplate, "cert-subpackage", "c", "", "Certificate subpackage template file")
	rootCmd.Flags().StringVarP(&config.Compression, "compress", "z", "none", "Kernel module compression codec (none, gzip, xz, zstd)")
	rootCmd.Flags().StringVarP(&config.MacroFile, "macros", "m", "", "Macro file preloaded into metadata queries")
	rootCmd.Flags().BoolVar(&config.FromHeaders, "from-headers", false, "Read package headers directly instead of querying rpm")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	return rootCmd
}

func validateConfig(config *models.Config) error {
	if config.PayloadDir == "" {
		return models.Errorf(models.ErrInput, "", "payload-dir is required")
	}
	if !filepath.IsAbs(config.PayloadDir) {
		return models.Errorf(models.ErrInput, "", "payload-dir %q is not absolute", config.PayloadDir)
	}
	if len(config.Packages) == 0 {
		return models.Errorf(models.ErrInput, "", "no packages given")
	}
	if config.OutputDir == "" {
		return models.Errorf(models.ErrInput, "", "output-dir is required")
	}
	return nil
}

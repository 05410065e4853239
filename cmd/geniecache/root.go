package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ollie314/genie-agent-cache/config"
)

var (
	configFileFlag string
	cacheDirFlag   string
	debugFlag      bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "geniecache",
	Short: "geniecache materializes remote Genie agent resources onto local disk",
	Long: `geniecache is the operator-facing CLI over the Genie agent's fetching
cache: a content-addressed, version-keyed on-disk cache that serializes
concurrent and multi-process downloads of job configs and dependency
artifacts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if debugFlag {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("geniecache: build logger: %w", err)
		}

		// A missing cacheDirectory is recoverable here if --cache-dir
		// was passed on the command line: exporting it before Load
		// satisfies the required check. Any other load error (bad
		// YAML, unreadable file) is not.
		if cacheDirFlag != "" {
			if err := os.Setenv("GENIE_CACHE_DIRECTORY", cacheDirFlag); err != nil {
				return fmt.Errorf("geniecache: set cache directory: %w", err)
			}
		}
		cfg, err = config.Load(configFileFlag)
		if err != nil {
			return err
		}
		if cacheDirFlag != "" {
			cfg.CacheDirectory = cacheDirFlag
		}
		if cfg.CacheDirectory == "" {
			return fmt.Errorf("geniecache: cache directory is required (--cache-dir or cacheDirectory in --config)")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFileFlag, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "cache root directory (overrides config file)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable verbose development logging")

	rootCmd.AddCommand(getCmd, gcCmd, serveCmd)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

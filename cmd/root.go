package cmd

import (
	"fmt"
	"os"

	"cafefinder/config"
	"cafefinder/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "cafe",
	Short:         "Directory of cafes that are good for remote work",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd(), importCmd())
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	v := config.New()
	if f := cmd.Flags().Lookup("port"); f != nil {
		if err := v.BindPFlag("server.port", f); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Read(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Server.Mode != "release")
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

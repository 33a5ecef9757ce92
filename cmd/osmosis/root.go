package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"osmosis-ai/osmosis-go/pkg/cli"
	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "osmosis",
	Short: "OSMOSIS-AI - LLM client call interceptor",
	Long: `OSMOSIS-AI records the calls an application makes through its LLM clients
(OpenAI, Anthropic, LangChain) and mirrors them to the console and the
OSMOSIS-AI ingest service.

This command validates interceptor configuration, computes owner hashes and
runs a local ingest endpoint for development.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: defaults plus OSMOSIS_* environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads --config with environment overrides, or the environment
// alone when no file is given.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile == "" {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.LoadConfigWithEnvOverrides(cfgFile)
	}
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) (*logging.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:         level,
		Format:        "text",
		RedactSecrets: true,
		Writer:        cmd.ErrOrStderr(),
	})
}

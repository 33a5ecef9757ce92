package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"osmosis-ai/osmosis-go/pkg/cli"
	"osmosis-ai/osmosis-go/pkg/config"
	"osmosis-ai/osmosis-go/pkg/identity"
	"osmosis-ai/osmosis-go/pkg/telemetry/logging"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate interceptor configuration",
	Long: `Load the configuration the interceptor would run with and report it.

The file given with --config is merged over the defaults, then OSMOSIS_*
environment variables are applied. The command exits with status 2 when
the result is invalid.

Examples:
  osmosis validate --config osmosis.yaml
  OSMOSIS_LOG_DESTINATION=both osmosis validate --format json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// configSummary is the effective configuration with the API key redacted.
type configSummary struct {
	Enabled        bool          `json:"enabled"`
	LogDestination string        `json:"log_destination"`
	CloudAPIKey    string        `json:"cloud_api_key,omitempty"`
	Owner          string        `json:"owner,omitempty"`
	EnabledAPIs    []string      `json:"enabled_apis"`
	DisabledAPIs   []string      `json:"disabled_apis,omitempty"`
	BaseURL        string        `json:"base_url"`
	Timeout        time.Duration `json:"timeout"`
}

func summarize(cfg *config.Config) configSummary {
	s := configSummary{
		Enabled:        cfg.Enabled,
		LogDestination: string(cfg.LogDestination),
		BaseURL:        cfg.Cloud.BaseURL,
		Timeout:        cfg.Cloud.Timeout,
		EnabledAPIs:    []string{},
	}
	if cfg.CloudAPIKey != "" {
		s.CloudAPIKey = logging.RedactAPIKey(cfg.CloudAPIKey)
		s.Owner = identity.OwnerHash(cfg.CloudAPIKey)
	}
	for api, on := range cfg.EnabledAPIs {
		if on {
			s.EnabledAPIs = append(s.EnabledAPIs, api)
		} else {
			s.DisabledAPIs = append(s.DisabledAPIs, api)
		}
	}
	slices.Sort(s.EnabledAPIs)
	slices.Sort(s.DisabledAPIs)
	return s
}

func (s configSummary) String() string {
	var sb strings.Builder
	sb.WriteString("✓ Configuration valid\n")
	fmt.Fprintf(&sb, "  Enabled: %t\n", s.Enabled)
	fmt.Fprintf(&sb, "  Destination: %s\n", s.LogDestination)
	fmt.Fprintf(&sb, "  APIs: %s\n", strings.Join(s.EnabledAPIs, ", "))
	if len(s.DisabledAPIs) > 0 {
		fmt.Fprintf(&sb, "  Disabled APIs: %s\n", strings.Join(s.DisabledAPIs, ", "))
	}
	fmt.Fprintf(&sb, "  Ingest: %s (timeout %s)\n", s.BaseURL, s.Timeout)
	if s.CloudAPIKey != "" {
		fmt.Fprintf(&sb, "  API key: %s (owner %s)", s.CloudAPIKey, s.Owner)
	} else {
		sb.WriteString("  API key: not set")
	}
	return sb.String()
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s := summarize(cfg)
	if cfg.LogDestination.Cloud() && cfg.CloudAPIKey == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: cloud destination without an API key; envelopes will not be sent until InitCloud")
	}
	return cli.NewFormatter(format, false).FormatTo(cmd.OutOrStdout(), s)
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"osmosis-ai/osmosis-go/pkg/identity"
)

var hashFlags struct {
	seed uint32
}

var hashCmd = &cobra.Command{
	Use:   "hash [api-key]",
	Short: "Print the owner hash for a cloud API key",
	Long: `Print the owner hash envelopes carry for a cloud API key.

Without an argument the key is taken from the configuration
(cloud_api_key or OSMOSIS_CLOUD_API_KEY).

Examples:
  osmosis hash osm-live-1234
  OSMOSIS_CLOUD_API_KEY=osm-live-1234 osmosis hash`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)

	hashCmd.Flags().Uint32Var(&hashFlags.seed, "seed", identity.DefaultSeed, "hash seed")
}

func runHash(cmd *cobra.Command, args []string) error {
	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		key = cfg.CloudAPIKey
	}
	if key == "" {
		return errors.New("no API key given and none configured")
	}

	hasher := identity.NewHasher(hashFlags.seed)
	hasher.Warm()
	_, err := fmt.Fprintln(cmd.OutOrStdout(), hasher.Hash(key))
	return err
}

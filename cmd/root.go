package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/client"
	"nova-swap/pkg/store"
)

var rootCmd = &cobra.Command{
	Use:   "nova-swap",
	Short: "A CLI for cross-chain swap intents using the NEAR Intents 1Click API",
	Long: `nova-swap drives the full cross-chain swap intent lifecycle against the
NEAR Intents 1Click API: live dry quotes, executable quotes, on-chain
deposit from a configured wallet, and execution-status polling until the
swap settles.

Examples:
  nova-swap tokens --chain near
  nova-swap quote 2.5 --to USDC --recipient your.near
  nova-swap swap 2.5 --to USDC --recipient your.near
  nova-swap status <deposit-address> --watch
  nova-swap resume <deposit-address>`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

func newClient(cfg *config.Config) *client.Client {
	return client.New(client.Options{
		JWTToken:    cfg.JWTToken,
		BaseURL:     cfg.BaseURL,
		OriginAsset: cfg.OriginAsset,
		Referral:    cfg.Referral,
		HTTPTimeout: cfg.HTTPTimeout,
	})
}

// newStore picks Redis when an address is configured, otherwise the
// JSON file store.
func newStore(cmd *cobra.Command, cfg *config.Config) (store.Store, error) {
	if cfg.RedisAddr != "" {
		return store.NewRedisStore(cmd.Context(), cfg.RedisAddr, "", cfg.RedisDB)
	}
	return store.NewFileStore(cfg.StorePath)
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/amount"
	"nova-swap/pkg/tokens"
	"nova-swap/pkg/types"
)

var (
	quoteTo        string
	quoteToChain   string
	quoteRecipient string
	quoteSlippage  int
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount>",
	Short: "Fetch an indicative (dry) quote",
	Long: `Fetch a dry quote for converting an amount of the configured origin
asset into a destination token. Dry quotes are indicative only and never
allocate a deposit address.

Examples:
  nova-swap quote 2.5 --to USDC --recipient your.near
  nova-swap quote 0.1 --to nep141:usdt.tether-token.near --recipient your.near
  nova-swap quote 1 --to USDC --to-chain sol --recipient <solana-addr>`,
	Args: cobra.ExactArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteTo, "to", "", "Destination token symbol or asset id (REQUIRED)")
	quoteCmd.Flags().StringVar(&quoteToChain, "to-chain", "", "Destination blockchain (narrows symbol lookup)")
	quoteCmd.Flags().StringVar(&quoteRecipient, "recipient", "", "Recipient address on the destination chain (REQUIRED)")
	quoteCmd.Flags().IntVar(&quoteSlippage, "slippage", 0, "Slippage tolerance in basis points (0 = backend default)")
	_ = quoteCmd.MarkFlagRequired("to")
	_ = quoteCmd.MarkFlagRequired("recipient")
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := newClient(cfg)
	logger := newLogger(verbose)
	ctx := cmd.Context()

	units, err := amount.ToBaseUnits(args[0], cfg.OriginDecimals)
	if err != nil {
		printError(fmt.Errorf("invalid amount %q: %w", args[0], err))
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	token, err := resolveDestination(ctx, apiClient, logger, quoteTo, quoteToChain)
	var quote *types.Quote
	if err == nil {
		quote, err = apiClient.DryQuote(ctx, types.QuoteRequest{
			DestinationAsset:  token.AssetID,
			Amount:            units,
			Recipient:         quoteRecipient,
			SlippageTolerance: quoteSlippage,
		})
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(quote, "", "  ")
		fmt.Println(string(jsonData))
		return
	}
	displayDryQuote(cfg, quote, token)
}

// resolveDestination accepts either a raw asset id (contains ':') or a
// symbol, optionally narrowed by chain, resolved against a fresh catalog.
func resolveDestination(ctx context.Context, source tokens.Source, logger *logrus.Logger, to, toChain string) (types.Token, error) {
	catalog := tokens.NewCatalog(source, logger)
	if err := catalog.Refresh(ctx); err != nil {
		return types.Token{}, err
	}
	if strings.Contains(to, ":") {
		return catalog.ByAssetID(to)
	}
	return catalog.BySymbol(to, toChain)
}

func displayDryQuote(cfg *config.Config, quote *types.Quote, token types.Token) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                  INDICATIVE QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  You send:       %s %s\n", formatIn(cfg, quote), color.YellowString(cfg.OriginChain))
	fmt.Printf("  You receive:    ~%s %s\n", formatOut(quote, token), color.YellowString(token.Symbol))
	if quote.MinAmountOut != "" {
		fmt.Printf("  Minimum:        %s %s\n", amount.FromBaseUnits(quote.MinAmountOut, token.Decimals, 6), token.Symbol)
	}
	if quote.AmountOutUsd != "" {
		fmt.Printf("  Value:          $%s\n", quote.AmountOutUsd)
	}
	fmt.Printf("  Estimated time: %.0f seconds\n", quote.TimeEstimate)

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("\nDry quotes are indicative. Run 'nova-swap swap' to execute.")
	fmt.Println()
}

func formatIn(cfg *config.Config, quote *types.Quote) string {
	if quote.AmountInFormatted != "" {
		return quote.AmountInFormatted
	}
	return amount.FromBaseUnits(quote.AmountIn, cfg.OriginDecimals, 6)
}

func formatOut(quote *types.Quote, token types.Token) string {
	if quote.AmountOutFormatted != "" {
		return quote.AmountOutFormatted
	}
	return amount.FromBaseUnits(quote.AmountOut, token.Decimals, 6)
}

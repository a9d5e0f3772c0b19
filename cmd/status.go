package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/client"
	"nova-swap/pkg/poller"
	"nova-swap/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
	statusMemo    string
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a cross-chain swap by its deposit address.

Examples:
  nova-swap status 0x1234...abcd
  nova-swap status 0x1234...abcd --watch
  nova-swap status 0x1234...abcd --watch --interval 10
  nova-swap status <address> --memo <memo>`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the swap settles")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
	statusCmd.Flags().StringVar(&statusMemo, "memo", "", "Deposit memo, when the quote required one")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := newClient(cfg)

	if watchStatus {
		if jsonOutput {
			fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
			os.Exit(1)
		}
		watchSwapStatus(cmd, cfg, apiClient, depositAddress, verbose)
	} else {
		checkSwapStatus(cmd, apiClient, depositAddress, jsonOutput)
	}
}

func checkSwapStatus(cmd *cobra.Command, apiClient *client.Client, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	record, err := apiClient.ExecutionStatus(cmd.Context(), depositAddress, statusMemo)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(record, depositAddress)
	}
}

// watchSwapStatus runs a poll session against the deposit address and
// prints each observed record until a terminal status or timeout.
func watchSwapStatus(cmd *cobra.Command, cfg *config.Config, apiClient *client.Client, depositAddress string, verbose bool) {
	fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n", watchInterval)

	p := poller.New(apiClient, newLogger(verbose),
		time.Duration(watchInterval)*time.Second, cfg.PollTimeout)

	res := p.Run(cmd.Context(), depositAddress, statusMemo, func(record *types.ExecutionRecord) {
		displayStatus(record, depositAddress)
	})

	switch res.State {
	case poller.StateTerminal:
		// Final record already displayed.
	case poller.StateTimedOut:
		color.Yellow("\nPolling window elapsed before the swap settled.")
		if res.LastErr != nil {
			fmt.Printf("  Last poll error: %v\n", res.LastErr)
		}
		os.Exit(1)
	case poller.StateCancelled:
		os.Exit(1)
	}
}

func displayStatus(record *types.ExecutionRecord, depositAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(depositAddress))
	fmt.Printf("  Status:          %s\n", coloredStatus(string(record.Status)))
	if !record.UpdatedAt.IsZero() {
		fmt.Printf("  Last Updated:    %s\n", record.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	if q := record.Quote; q != nil {
		if q.AmountInFormatted != "" {
			fmt.Printf("  Amount In:       %s\n", q.AmountInFormatted)
		}
		if q.AmountOutFormatted != "" {
			fmt.Printf("  Amount Out:      %s\n", q.AmountOutFormatted)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredStatus(status string) string {
	switch types.ExecutionStatus(strings.ToUpper(status)) {
	case types.StatusSuccess:
		return color.GreenString(status)
	case types.StatusKnownDepositTx, types.StatusPendingDeposit, types.StatusProcessing:
		return color.YellowString(status)
	case types.StatusFailed, types.StatusRefunded:
		return color.RedString(status)
	case types.StatusIncompleteDeposit:
		return color.MagentaString(status)
	default:
		return status
	}
}

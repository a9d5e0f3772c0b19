package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/poller"
	"nova-swap/pkg/types"
)

var resumeMemo string

var resumeCmd = &cobra.Command{
	Use:   "resume <deposit-address>",
	Short: "Re-attach status polling to an in-flight swap",
	Long: `Re-attach a polling session to a swap whose deposit was already sent,
for example after a timed-out watch or an interrupted swap command. The
deposit address identifies the swap; no funds move.

Examples:
  nova-swap resume 0x1234...abcd
  nova-swap resume <address> --memo <memo>`,
	Args: cobra.ExactArgs(1),
	Run:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().StringVar(&resumeMemo, "memo", "", "Deposit memo, when the quote required one")
}

func runResume(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := newClient(cfg)

	fmt.Printf("\nResuming swap (Deposit Address: %s)\n", color.CyanString(depositAddress))

	p := poller.New(apiClient, newLogger(verbose), cfg.PollInterval, cfg.PollTimeout)
	res := p.Run(cmd.Context(), depositAddress, resumeMemo, func(record *types.ExecutionRecord) {
		fmt.Printf("  %s\n", coloredStatus(string(record.Status)))
	})

	switch res.State {
	case poller.StateTerminal:
		if res.Record != nil {
			displayStatus(res.Record, depositAddress)
		}
		if res.Record != nil && res.Record.Status != types.StatusSuccess {
			os.Exit(1)
		}
	case poller.StateTimedOut:
		color.Yellow("\nPolling window elapsed before the swap settled. Run resume again.")
		if res.LastErr != nil {
			fmt.Printf("  Last poll error: %v\n", res.LastErr)
		}
		os.Exit(1)
	case poller.StateCancelled:
		os.Exit(1)
	}
}

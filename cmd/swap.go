package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nova-swap/config"
	"nova-swap/pkg/deposit"
	"nova-swap/pkg/poller"
	"nova-swap/pkg/store"
	"nova-swap/pkg/swap"
	"nova-swap/pkg/types"
	"nova-swap/pkg/wallet"
)

var (
	swapTo        string
	swapToChain   string
	swapRecipient string
	swapRefundTo  string
	swapSlippage  int
	swapNoConfirm bool
	purchaseGroup string
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount>",
	Short: "Execute a cross-chain swap intent",
	Long: `Execute the full swap lifecycle: executable quote, on-chain deposit
from your configured wallet, deposit receipt submission, and status
polling until the swap settles or is refunded.

The amount is denominated in the configured origin asset.

The origin deposit is funded by a built-in EVM or Solana wallet; set
origin_chain (and the matching RPC URL and private key) to one of those.
NEAR-origin deposits have no built-in wallet yet and must be funded
externally, then resumed with "nova-swap resume".

Examples:
  nova-swap swap 2.5 --to USDC --recipient your.near
  nova-swap swap 1 --to USDC --to-chain sol --recipient <solana-addr> --refund-to your.near
  nova-swap swap 2.5 --to USDC --recipient your.near --yes`,
	Args: cobra.ExactArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&swapTo, "to", "", "Destination token symbol or asset id (REQUIRED)")
	swapCmd.Flags().StringVar(&swapToChain, "to-chain", "", "Destination blockchain (narrows symbol lookup)")
	swapCmd.Flags().StringVar(&swapRecipient, "recipient", "", "Recipient address on the destination chain (REQUIRED)")
	swapCmd.Flags().StringVar(&swapRefundTo, "refund-to", "", "Refund address on the origin chain (defaults to recipient)")
	swapCmd.Flags().IntVar(&swapSlippage, "slippage", 0, "Slippage tolerance in basis points (0 = backend default)")
	swapCmd.Flags().BoolVarP(&swapNoConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().StringVar(&purchaseGroup, "purchase-group", "", "Record a marketplace purchase for this group id on success")
	_ = swapCmd.MarkFlagRequired("to")
	_ = swapCmd.MarkFlagRequired("recipient")
}

func runSwap(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	logger := newLogger(verbose)
	apiClient := newClient(cfg)
	ctx := cmd.Context()

	w, err := originWallet(cfg)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	destChain := swapToChain
	if destChain == "" {
		destChain = cfg.DestinationChain
	}

	token, err := resolveDestination(ctx, apiClient, logger, swapTo, destChain)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	orch := swap.New(
		apiClient,
		deposit.NewSubmitter(apiClient, logger),
		apiClient,
		w,
		logger,
		swap.Config{
			OriginDecimals:   cfg.OriginDecimals,
			OriginChain:      cfg.OriginChain,
			DestinationChain: destChain,
			DebounceDelay:    cfg.DebounceDelay,
			PollInterval:     cfg.PollInterval,
			PollTimeout:      cfg.PollTimeout,
		},
	)

	if err := orch.RefreshBalance(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}

	orch.UpdateInputs(swap.Inputs{
		DestinationAsset:  token.AssetID,
		Recipient:         swapRecipient,
		RefundTo:          swapRefundTo,
		SellAmount:        args[0],
		SlippageTolerance: swapSlippage,
	})

	// Preview with the dry quote before committing funds.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Fetching quote..."
	s.Start()
	snap := waitForDryQuote(orch, cfg.DebounceDelay)
	s.Stop()

	if snap.ValidationErr != "" {
		printError(fmt.Errorf("%s", snap.ValidationErr))
		os.Exit(1)
	}
	if snap.QuoteErr != "" {
		printError(fmt.Errorf("%s", snap.QuoteErr))
		os.Exit(1)
	}
	displayDryQuote(cfg, snap.DryQuote, token)

	if !swapNoConfirm && !confirmSwap() {
		fmt.Println("\nSwap cancelled.")
		os.Exit(0)
	}

	s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Submitting swap..."
	s.Start()
	err = orch.ConfirmSwap(ctx)
	s.Stop()

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	snap = orch.Snapshot()
	color.Green("\n✓ Deposit sent")
	fmt.Printf("  Deposit Address: %s\n", color.CyanString(snap.DepositAddress))
	fmt.Printf("  Transaction:     %s\n", color.CyanString(snap.TxHash))
	for _, warning := range snap.Warnings {
		color.Yellow("  Warning: %s", warning)
	}

	final := watchSnapshot(orch)
	reportOutcome(final)

	if purchaseGroup != "" && swapSettled(final, types.StatusSuccess) {
		recordPurchase(cmd, cfg, w.AccountID(), final)
	}

	if final.PollState != poller.StateTerminal {
		fmt.Println("\nThe swap is still in flight. Re-attach with:")
		color.Cyan("  nova-swap resume %s\n", final.DepositAddress)
		os.Exit(1)
	}
}

// originWallet builds the wallet for the configured origin chain.
func originWallet(cfg *config.Config) (wallet.Wallet, error) {
	manager := wallet.NewManager()

	if cfg.EVMRPCURL != "" && cfg.EVMPrivateKey != "" {
		w, err := wallet.NewEVMWallet(wallet.EVMConfig{
			RPCURL:     cfg.EVMRPCURL,
			PrivateKey: cfg.EVMPrivateKey,
			ChainID:    cfg.EVMChainID,
		})
		if err != nil {
			return nil, err
		}
		manager.Register("eth", w)
	}

	if cfg.SolanaRPCURL != "" && cfg.SolanaPrivateKey != "" {
		w, err := wallet.NewSolanaWallet(wallet.SolanaConfig{
			RPCURL:     cfg.SolanaRPCURL,
			PrivateKey: cfg.SolanaPrivateKey,
		})
		if err != nil {
			return nil, err
		}
		manager.Register("sol", w)
	}

	w, err := manager.For(cfg.OriginChain)
	if err != nil {
		return nil, fmt.Errorf("no wallet configured for origin chain %q: set the RPC URL and private key for it", cfg.OriginChain)
	}
	return w, nil
}

// waitForDryQuote blocks until the debounced dry quote resolves one way or
// the other.
func waitForDryQuote(orch *swap.Orchestrator, debounce time.Duration) swap.Snapshot {
	deadline := time.Now().Add(debounce + 30*time.Second)
	for time.Now().Before(deadline) {
		snap := orch.Snapshot()
		if snap.ValidationErr != "" || snap.QuoteErr != "" || snap.DryQuote != nil {
			return snap
		}
		time.Sleep(50 * time.Millisecond)
	}
	return orch.Snapshot()
}

// watchSnapshot prints status transitions until the poll session ends.
func watchSnapshot(orch *swap.Orchestrator) swap.Snapshot {
	fmt.Println("\nWaiting for the swap to settle. Press Ctrl+C to detach; the")
	fmt.Println("swap continues server-side and can be resumed later.")

	var lastStatus types.ExecutionStatus
	for {
		snap := orch.Snapshot()
		if snap.Execution != nil && snap.Execution.Status != lastStatus {
			lastStatus = snap.Execution.Status
			fmt.Printf("  %s  %s\n",
				time.Now().Format("15:04:05"),
				coloredStatus(string(lastStatus)))
		}
		if snap.PollState != poller.StatePolling && snap.Phase == swap.PhaseIdle {
			return snap
		}
		time.Sleep(250 * time.Millisecond)
	}
}

func reportOutcome(snap swap.Snapshot) {
	switch snap.PollState {
	case poller.StateTerminal:
		if snap.Execution == nil {
			return
		}
		switch snap.Execution.Status {
		case types.StatusSuccess:
			color.Green("\n✓ Swap completed successfully")
		case types.StatusRefunded:
			color.Yellow("\nSwap refunded. Funds returned to the refund address.")
		case types.StatusFailed:
			color.Red("\nSwap failed.")
		}
	case poller.StateTimedOut:
		color.Yellow("\nStatus polling timed out before the swap settled.")
		if snap.PollErr != "" {
			fmt.Printf("  Last poll error: %s\n", snap.PollErr)
		}
	case poller.StateCancelled:
		color.Yellow("\nStatus polling cancelled.")
	}
}

func swapSettled(snap swap.Snapshot, want types.ExecutionStatus) bool {
	return snap.PollState == poller.StateTerminal &&
		snap.Execution != nil &&
		snap.Execution.Status == want
}

// recordPurchase appends a purchase receipt to the store, best-effort.
func recordPurchase(cmd *cobra.Command, cfg *config.Config, buyer string, snap swap.Snapshot) {
	st, err := newStore(cmd, cfg)
	if err != nil {
		color.Yellow("Could not open store to record purchase: %v", err)
		return
	}
	err = st.AppendPurchase(cmd.Context(), store.Purchase{
		Buyer:     buyer,
		GroupID:   purchaseGroup,
		TxHash:    snap.TxHash,
		Amount:    amountOrEmpty(snap),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		color.Yellow("Could not record purchase: %v", err)
		return
	}
	fmt.Printf("\nPurchase recorded for group %s\n", color.CyanString(purchaseGroup))
}

// amountOrEmpty is the amount that actually left the wallet: the executable
// quote's amountIn, not the earlier dry estimate.
func amountOrEmpty(snap swap.Snapshot) string {
	if snap.ExecutableQuote != nil {
		return snap.ExecutableQuote.AmountIn
	}
	return ""
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

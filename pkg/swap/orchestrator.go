// Package swap owns the cross-chain swap intent lifecycle: validated
// inputs, debounced dry quotes for live pricing, and the confirmed
// execute path of executable quote, wallet transfer, best-effort deposit
// receipt, and status polling to a terminal state. The orchestrator is the
// only component that sequences the others and the single source of truth
// for what stage the current attempt is at.
package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nova-swap/pkg/poller"
	"nova-swap/pkg/types"
)

// Phase is the coarse submission state surfaced to the presentation layer.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
)

// ErrProtocol marks a backend or wallet contract breach (missing deposit
// address, missing tx hash) as opposed to a transient network condition.
var ErrProtocol = errors.New("unexpected response")

// ErrSwapInProgress is returned when ConfirmSwap is invoked while a
// previous invocation is still submitting. The call is a no-op.
var ErrSwapInProgress = errors.New("swap already in progress")

// ErrSwapSuperseded is returned by ConfirmSwap when Reset discarded the
// attempt while it was in flight. No state from the attempt survives.
var ErrSwapSuperseded = errors.New("swap attempt superseded")

// Quoter requests quotes from the execution backend.
type Quoter interface {
	DryQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
	ExecutableQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error)
}

// Submitter reports a deposit transaction to the backend, best-effort.
type Submitter interface {
	Submit(ctx context.Context, txHash, depositAddress string) error
}

// Wallet is the injected fund-transfer capability.
type Wallet interface {
	AccountID() string
	Balance(ctx context.Context) (string, error)
	Transfer(ctx context.Context, params types.TransferParams) (*types.TransferResult, error)
}

// Config carries the orchestrator's tunables.
type Config struct {
	// OriginDecimals is the decimal count of the fixed origin asset.
	OriginDecimals int
	// OriginChain names the origin chain, for logging and display.
	OriginChain string
	// DestinationChain names the chain recipient addresses are checked
	// against.
	DestinationChain string

	DebounceDelay time.Duration
	PollInterval  time.Duration
	PollTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = 400 * time.Millisecond
	}
	if c.PollInterval <= 0 {
		c.PollInterval = poller.DefaultInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = poller.DefaultTimeout
	}
	return c
}

// Inputs is the user's current form state.
type Inputs struct {
	DestinationAsset  string // asset id from the token catalog
	Recipient         string
	RefundTo          string
	SellAmount        string // human decimal string of the origin asset
	SlippageTolerance int    // basis points; 0 means backend default
}

// Snapshot is the orchestrator's externally visible state.
type Snapshot struct {
	Inputs        Inputs
	ValidationErr string

	DryQuote *types.Quote
	QuoteErr string

	Phase          Phase
	PollState      poller.State
	Execution      *types.ExecutionRecord
	PollErr        string
	DepositAddress string
	DepositMemo    string
	TxHash         string
	Warnings       []string

	// ExecutableQuote is the binding quote the current attempt actually
	// transferred against; nil until one is obtained. Its AmountIn is the
	// amount that left the wallet, which may differ from the last dry
	// quote's estimate.
	ExecutableQuote *types.Quote
}

// Orchestrator composes the quote client, wallet, deposit submitter, and
// status poller into one swap attempt at a time.
type Orchestrator struct {
	quoter   Quoter
	submit   Submitter
	statuses poller.StatusFetcher
	wallet   Wallet
	logger   *logrus.Logger
	cfg      Config

	mu             sync.Mutex
	inputs         Inputs
	balance        string
	validationErr  error
	dryQuote       *types.Quote
	quoteErr       error
	phase          Phase
	pollState      poller.State
	execution      *types.ExecutionRecord
	pollErr        error
	depositAddress string
	depositMemo    string
	txHash         string
	warnings       []string
	execQuote      *types.Quote

	swapSubmitting bool

	// Session counters: results from a superseded quote, poll, or swap
	// attempt are compared against these at apply time and discarded when
	// stale.
	quoteSeq uint64
	pollSeq  uint64
	swapSeq  uint64

	debounce    *time.Timer
	quoteCancel context.CancelFunc
	pollCancel  context.CancelFunc
	swapCancel  context.CancelFunc
}

// New creates an orchestrator with its collaborators injected; there is no
// ambient shared state.
func New(quoter Quoter, submit Submitter, statuses poller.StatusFetcher, w Wallet, logger *logrus.Logger, cfg Config) *Orchestrator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Orchestrator{
		quoter:    quoter,
		submit:    submit,
		statuses:  statuses,
		wallet:    w,
		logger:    logger,
		cfg:       cfg.withDefaults(),
		phase:     PhaseIdle,
		pollState: poller.StateIdle,
		balance:   "0",
	}
}

// RefreshBalance pulls the wallet's current balance into the validation
// state. Call it once per session and after transfers.
func (o *Orchestrator) RefreshBalance(ctx context.Context) error {
	balance, err := o.wallet.Balance(ctx)
	if err != nil {
		return fmt.Errorf("refresh balance: %w", err)
	}
	o.mu.Lock()
	o.balance = balance
	o.mu.Unlock()
	return nil
}

// UpdateInputs replaces the form state, revalidates, and schedules a
// debounced dry quote. A newer update cancels the pending timer and any
// in-flight dry-quote request; only the most recent request's result may
// reach visible state.
func (o *Orchestrator) UpdateInputs(in Inputs) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.inputs = in
	o.cancelDryQuoteLocked()

	units, err := ValidateInputs(in, o.cfg, o.balance)
	o.validationErr = err
	if err != nil {
		o.dryQuote = nil
		o.quoteErr = nil
		return
	}

	o.quoteSeq++
	seq := o.quoteSeq
	ctx, cancel := context.WithCancel(context.Background())
	o.quoteCancel = cancel

	req := types.QuoteRequest{
		DestinationAsset:  in.DestinationAsset,
		Amount:            units,
		Recipient:         in.Recipient,
		RefundTo:          in.RefundTo,
		SlippageTolerance: in.SlippageTolerance,
	}

	o.debounce = time.AfterFunc(o.cfg.DebounceDelay, func() {
		o.fetchDryQuote(ctx, seq, req)
	})
}

func (o *Orchestrator) cancelDryQuoteLocked() {
	if o.debounce != nil {
		o.debounce.Stop()
		o.debounce = nil
	}
	if o.quoteCancel != nil {
		o.quoteCancel()
		o.quoteCancel = nil
	}
}

func (o *Orchestrator) fetchDryQuote(ctx context.Context, seq uint64, req types.QuoteRequest) {
	if ctx.Err() != nil {
		return
	}

	quote, err := o.quoter.DryQuote(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.quoteSeq || ctx.Err() != nil {
		// Superseded while in flight; discard.
		return
	}
	if err != nil {
		o.dryQuote = nil
		o.quoteErr = err
		o.logger.WithError(err).Debug("dry quote failed")
		return
	}
	o.dryQuote = quote
	o.quoteErr = nil
}

// ConfirmSwap executes the full intent lifecycle for the current inputs.
// It is single-flight: a second invocation while one is in progress is a
// no-op returning ErrSwapInProgress. The call blocks until polling starts
// (or the attempt fails); polling itself continues in the background.
func (o *Orchestrator) ConfirmSwap(ctx context.Context) error {
	o.mu.Lock()
	if o.swapSubmitting {
		o.mu.Unlock()
		return ErrSwapInProgress
	}

	in := o.inputs
	units, err := ValidateInputs(in, o.cfg, o.balance)
	if err != nil {
		o.validationErr = err
		o.mu.Unlock()
		return err
	}

	o.swapSubmitting = true
	o.phase = PhaseSubmitting
	o.warnings = nil
	o.txHash = ""
	o.depositAddress = ""
	o.depositMemo = ""
	o.execQuote = nil
	o.swapSeq++
	seq := o.swapSeq
	attemptCtx, cancel := context.WithCancel(ctx)
	o.swapCancel = cancel
	o.mu.Unlock()
	defer cancel()

	err = o.executeSwap(attemptCtx, seq, in, units)

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.swapSeq {
		// Reset fired mid-attempt; it already owns visible state.
		return ErrSwapSuperseded
	}
	o.swapSubmitting = false
	o.swapCancel = nil
	if err != nil {
		o.phase = PhaseIdle
	}
	return err
}

// executeSwap runs steps 2-7 of the lifecycle for attempt seq. Any error
// before the poller starts is fatal for this attempt; previously observed
// execution status is left untouched. Every state write checks that the
// attempt has not been superseded by Reset, so a late return from a blocked
// collaborator cannot resurrect a reset session.
func (o *Orchestrator) executeSwap(ctx context.Context, seq uint64, in Inputs, units string) error {
	log := o.logger.WithFields(logrus.Fields{
		"destination_asset": in.DestinationAsset,
		"recipient":         in.Recipient,
		"amount":            units,
	})

	quote, err := o.quoter.ExecutableQuote(ctx, types.QuoteRequest{
		DestinationAsset:  in.DestinationAsset,
		Amount:            units,
		Recipient:         in.Recipient,
		RefundTo:          in.RefundTo,
		SlippageTolerance: in.SlippageTolerance,
	})
	if err != nil {
		o.setQuoteErr(seq, err)
		return fmt.Errorf("executable quote: %w", err)
	}

	if quote.DepositAddress == "" {
		err := fmt.Errorf("%w: executable quote has no deposit address", ErrProtocol)
		o.setQuoteErr(seq, err)
		return err
	}

	o.mu.Lock()
	if seq != o.swapSeq {
		o.mu.Unlock()
		return ErrSwapSuperseded
	}
	o.depositAddress = quote.DepositAddress
	o.depositMemo = quote.DepositMemo
	o.execQuote = quote
	o.mu.Unlock()

	log = log.WithField("deposit_address", quote.DepositAddress)
	log.Info("executable quote obtained")

	result, err := o.wallet.Transfer(ctx, types.TransferParams{
		ReceiverID: quote.DepositAddress,
		Amount:     quote.AmountIn,
		Memo:       quote.DepositMemo,
	})
	if err != nil {
		return fmt.Errorf("wallet transfer: %w", err)
	}
	if result == nil || result.TxHash == "" {
		// The transfer may have landed on-chain, but without its hash
		// the receipt cannot be submitted. Reported, not retried.
		return fmt.Errorf("%w: wallet transfer returned no transaction hash", ErrProtocol)
	}

	o.mu.Lock()
	if seq != o.swapSeq {
		o.mu.Unlock()
		return ErrSwapSuperseded
	}
	o.txHash = result.TxHash
	o.mu.Unlock()
	log.WithField("tx_hash", result.TxHash).Info("deposit transferred")

	if err := o.submit.Submit(ctx, result.TxHash, quote.DepositAddress); err != nil {
		o.addWarning(seq, fmt.Sprintf("deposit receipt submission failed: %v", err))
	}

	o.mu.Lock()
	if seq != o.swapSeq {
		o.mu.Unlock()
		return ErrSwapSuperseded
	}
	o.startPollingLocked(quote.DepositAddress, quote.DepositMemo)
	o.mu.Unlock()
	return nil
}

// ResumePolling re-attaches a poll session to an existing deposit target,
// e.g. after a timed-out session.
func (o *Orchestrator) ResumePolling(depositAddress, depositMemo string) {
	o.mu.Lock()
	o.depositAddress = depositAddress
	o.depositMemo = depositMemo
	o.mu.Unlock()
	o.startPolling(depositAddress, depositMemo)
}

func (o *Orchestrator) startPolling(depositAddress, depositMemo string) {
	o.mu.Lock()
	o.startPollingLocked(depositAddress, depositMemo)
	o.mu.Unlock()
}

// startPollingLocked starts a poll session while o.mu is held, so callers
// can check attempt freshness and hand off to the poller atomically.
func (o *Orchestrator) startPollingLocked(depositAddress, depositMemo string) {
	if o.pollCancel != nil {
		o.pollCancel()
	}
	o.pollSeq++
	seq := o.pollSeq
	ctx, cancel := context.WithCancel(context.Background())
	o.pollCancel = cancel
	o.phase = PhasePolling
	o.pollState = poller.StatePolling
	o.pollErr = nil

	p := poller.New(o.statuses, o.logger, o.cfg.PollInterval, o.cfg.PollTimeout)

	go func() {
		defer cancel()

		res := p.Run(ctx, depositAddress, depositMemo, func(record *types.ExecutionRecord) {
			o.applyRecord(seq, record)
		})

		o.mu.Lock()
		defer o.mu.Unlock()
		if seq != o.pollSeq {
			// A newer session owns visible state now.
			return
		}
		o.pollState = res.State
		o.pollErr = res.LastErr
		o.phase = PhaseIdle
	}()
}

// applyRecord applies a polled execution record to visible state unless
// its session has been superseded.
func (o *Orchestrator) applyRecord(seq uint64, record *types.ExecutionRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.pollSeq {
		return
	}
	o.execution = record
}

// Reset cancels the debounce timer, any in-flight dry quote, the poll
// session, and any in-flight swap attempt, and clears attempt state. Late
// results from the superseded sessions are discarded at apply time.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cancelDryQuoteLocked()
	if o.pollCancel != nil {
		o.pollCancel()
		o.pollCancel = nil
	}
	if o.swapCancel != nil {
		o.swapCancel()
		o.swapCancel = nil
	}
	o.quoteSeq++
	o.pollSeq++
	o.swapSeq++

	o.inputs = Inputs{}
	o.validationErr = nil
	o.dryQuote = nil
	o.quoteErr = nil
	o.phase = PhaseIdle
	o.pollState = poller.StateIdle
	o.execution = nil
	o.pollErr = nil
	o.depositAddress = ""
	o.depositMemo = ""
	o.txHash = ""
	o.warnings = nil
	o.execQuote = nil
	o.swapSubmitting = false
}

// Snapshot returns a copy of the visible state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Inputs:         o.inputs,
		Phase:          o.phase,
		PollState:      o.pollState,
		Execution:      o.execution,
		DryQuote:       o.dryQuote,
		DepositAddress: o.depositAddress,
		DepositMemo:    o.depositMemo,
		TxHash:         o.txHash,
		Warnings:       append([]string(nil), o.warnings...),

		ExecutableQuote: o.execQuote,
	}
	if o.validationErr != nil {
		snap.ValidationErr = o.validationErr.Error()
	}
	if o.quoteErr != nil {
		snap.QuoteErr = o.quoteErr.Error()
	}
	if o.pollErr != nil {
		snap.PollErr = o.pollErr.Error()
	}
	return snap
}

// setQuoteErr records a fatal quote error for attempt seq unless the
// attempt was superseded in the meantime.
func (o *Orchestrator) setQuoteErr(seq uint64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.swapSeq {
		return
	}
	o.quoteErr = err
}

func (o *Orchestrator) addWarning(seq uint64, msg string) {
	o.mu.Lock()
	if seq == o.swapSeq {
		o.warnings = append(o.warnings, msg)
	}
	o.mu.Unlock()
	o.logger.Warn(msg)
}

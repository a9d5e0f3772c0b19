// Package poller drives the execution-status polling loop for one swap
// attempt: query the backend at a fixed interval, surface every observed
// record, and stop on the first terminal status, on timeout, or on
// cancellation.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nova-swap/pkg/types"
)

// State is the externally observable state of a poll session.
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateTerminal  State = "terminal"
	StateTimedOut  State = "timed_out"
	StateCancelled State = "cancelled"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 10 * time.Minute
)

// StatusFetcher reads the backend's execution record for a deposit target.
type StatusFetcher interface {
	ExecutionStatus(ctx context.Context, depositAddress, depositMemo string) (*types.ExecutionRecord, error)
}

// Result is the end state of a completed poll session. Record is the last
// observed execution record, which for StateTerminal carries the terminal
// status. TimedOut is recoverable: the swap may still resolve out-of-band
// and the session can be re-attached later.
type Result struct {
	State   State
	Record  *types.ExecutionRecord
	LastErr error
}

// Poller polls execution status until a terminal state, timeout, or
// cancellation. One Poller serves one logical swap attempt at a time;
// Run must not be invoked concurrently on the same instance.
type Poller struct {
	fetcher  StatusFetcher
	logger   *logrus.Logger
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	state   State
	lastErr error
}

// New creates a Poller. Zero durations fall back to the defaults.
func New(fetcher StatusFetcher, logger *logrus.Logger, interval, timeout time.Duration) *Poller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poller{
		fetcher:  fetcher,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		state:    StateIdle,
	}
}

// State returns the current session state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LastErr returns the most recent transient fetch error, if any. Transient
// errors never stop the loop; they are kept visible here.
func (p *Poller) LastErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) setLastErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Run polls until terminal status, timeout, or ctx cancellation, invoking
// observe for every fetched record in arrival order, including duplicate
// and out-of-expected-order non-terminal statuses. It blocks until the
// session ends and returns the end state.
func (p *Poller) Run(ctx context.Context, depositAddress, depositMemo string, observe func(*types.ExecutionRecord)) Result {
	p.setState(StatePolling)
	p.setLastErr(nil)

	log := p.logger.WithFields(logrus.Fields{
		"deposit_address": depositAddress,
	})
	log.Info("polling execution status")

	deadline := time.Now().Add(p.timeout)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last *types.ExecutionRecord

	// Fetch immediately, then on every tick.
	for {
		record, err := p.fetcher.ExecutionStatus(ctx, depositAddress, depositMemo)
		switch {
		case ctx.Err() != nil:
			// A cancelled session discards whatever the in-flight
			// request returned.
			p.setState(StateCancelled)
			return Result{State: StateCancelled, Record: last, LastErr: p.LastErr()}
		case err != nil:
			p.setLastErr(err)
			log.WithError(err).Debug("transient status fetch error")
		default:
			p.setLastErr(nil)
			last = record
			if observe != nil {
				observe(record)
			}
			if record.Status.IsTerminal() {
				p.setState(StateTerminal)
				log.WithField("status", record.Status).Info("swap reached terminal status")
				return Result{State: StateTerminal, Record: record}
			}
		}

		if time.Now().After(deadline) {
			p.setState(StateTimedOut)
			log.Warn("status polling window elapsed without terminal status")
			return Result{State: StateTimedOut, Record: last, LastErr: p.LastErr()}
		}

		select {
		case <-ctx.Done():
			p.setState(StateCancelled)
			return Result{State: StateCancelled, Record: last, LastErr: p.LastErr()}
		case <-ticker.C:
		}
	}
}

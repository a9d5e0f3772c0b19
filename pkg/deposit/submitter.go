// Package deposit submits proof of an on-chain transfer to the execution
// backend. Submission is best-effort: the backend independently discovers
// deposits by chain scanning, so a failure here accelerates nothing worse
// than recognition latency and must never abort the swap.
package deposit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
)

// TxSubmitter is the backend side channel for deposit receipts.
type TxSubmitter interface {
	SubmitDepositTx(ctx context.Context, txHash, depositAddress string) error
}

// Submitter retries a deposit receipt a bounded number of times before
// giving up with a warning.
type Submitter struct {
	backend  TxSubmitter
	logger   *logrus.Logger
	maxTries uint
}

// NewSubmitter creates a Submitter. A nil logger falls back to the logrus
// standard logger.
func NewSubmitter(backend TxSubmitter, logger *logrus.Logger) *Submitter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Submitter{
		backend:  backend,
		logger:   logger,
		maxTries: 3,
	}
}

// Submit reports txHash as payment for depositAddress. The returned error
// is informational; callers log it as a warning and continue to polling.
func (s *Submitter) Submit(ctx context.Context, txHash, depositAddress string) error {
	operation := func() (struct{}, error) {
		return struct{}{}, s.backend.SubmitDepositTx(ctx, txHash, depositAddress)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxTries))
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"tx_hash":         txHash,
			"deposit_address": depositAddress,
		}).WithError(err).Warn("deposit receipt submission failed; backend chain scanning will pick it up")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"tx_hash":         txHash,
		"deposit_address": depositAddress,
	}).Info("deposit receipt submitted")
	return nil
}

package types

import "time"

// ExecutionStatus is the backend-reported state of a swap attempt.
type ExecutionStatus string

const (
	StatusKnownDepositTx    ExecutionStatus = "KNOWN_DEPOSIT_TX"
	StatusPendingDeposit    ExecutionStatus = "PENDING_DEPOSIT"
	StatusIncompleteDeposit ExecutionStatus = "INCOMPLETE_DEPOSIT"
	StatusProcessing        ExecutionStatus = "PROCESSING"
	StatusSuccess           ExecutionStatus = "SUCCESS"
	StatusRefunded          ExecutionStatus = "REFUNDED"
	StatusFailed            ExecutionStatus = "FAILED"
)

// IsTerminal reports whether no further transition can leave this status.
// Unknown statuses are treated as non-terminal so polling keeps going.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusRefunded, StatusFailed:
		return true
	default:
		return false
	}
}

// Token identifies a tradeable asset in the quoting backend's catalog.
type Token struct {
	AssetID         string  `json:"assetId"`
	Blockchain      string  `json:"blockchain"`
	Symbol          string  `json:"symbol"`
	Decimals        int     `json:"decimals"`
	Price           float64 `json:"price"`
	PriceUpdatedAt  string  `json:"priceUpdatedAt"`
	ContractAddress string  `json:"contractAddress,omitempty"`
}

// QuoteRequest is the intent to convert a source amount of the configured
// origin asset into a destination asset, possibly on another chain.
// Amount is in base units of the origin asset.
type QuoteRequest struct {
	Dry               bool   `json:"dry"`
	DestinationAsset  string `json:"destinationAsset"`
	Amount            string `json:"amount"`
	Recipient         string `json:"recipient"`
	RefundTo          string `json:"refundTo,omitempty"`
	SlippageTolerance int    `json:"slippageTolerance,omitempty"`
}

// Quote is the backend's response to a QuoteRequest. DepositAddress and
// DepositMemo are only present for executable (non-dry) quotes; each
// executable quote allocates a fresh, single-use deposit target.
type Quote struct {
	DepositAddress     string    `json:"depositAddress,omitempty"`
	DepositMemo        string    `json:"depositMemo,omitempty"`
	AmountIn           string    `json:"amountIn"`
	AmountInFormatted  string    `json:"amountInFormatted"`
	AmountInUsd        string    `json:"amountInUsd"`
	AmountOut          string    `json:"amountOut"`
	AmountOutFormatted string    `json:"amountOutFormatted"`
	AmountOutUsd       string    `json:"amountOutUsd"`
	MinAmountOut       string    `json:"minAmountOut"`
	TimeEstimate       float64   `json:"timeEstimate"`
	Deadline           time.Time `json:"deadline,omitempty"`
}

// ExecutionRecord is the backend's view of one swap attempt, keyed by
// deposit address. This system only ever observes it; the backend owns it.
type ExecutionRecord struct {
	Status    ExecutionStatus `json:"status"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Quote     *Quote          `json:"quoteResponse,omitempty"`
}

// TransferParams describes a wallet fund transfer to a deposit address.
type TransferParams struct {
	ReceiverID string
	Amount     string // base units
	Memo       string
}

// TransferResult carries the proof of an on-chain transfer.
type TransferResult struct {
	TxHash string
}

package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"nova-swap/pkg/types"
)

// lamportsPerSignature is the typical Solana fee reserved on top of the
// transfer amount when checking balance.
const lamportsPerSignature = uint64(5000)

// SolanaConfig configures a Solana wallet.
type SolanaConfig struct {
	RPCURL        string
	PrivateKey    string // base58-encoded
	Commitment    string // finalized, confirmed, or processed
	SkipPreflight bool
}

// SolanaWallet funds deposit addresses on Solana. Amounts are base-unit
// (lamport) strings end-to-end.
type SolanaWallet struct {
	cfg        SolanaConfig
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSolanaWallet connects to the Solana RPC and derives the funding
// account from the configured key.
func NewSolanaWallet(cfg SolanaConfig) (*SolanaWallet, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("solana wallet: RPC URL is required")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("solana wallet: private key is required")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: invalid private key: %w", err)
	}

	return &SolanaWallet{
		cfg:        cfg,
		client:     rpc.New(cfg.RPCURL),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

func (w *SolanaWallet) AccountID() string {
	return w.publicKey.String()
}

// Balance returns the account's lamport balance as a decimal string.
func (w *SolanaWallet) Balance(ctx context.Context) (string, error) {
	balance, err := w.client.GetBalance(ctx, w.publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("solana wallet: get balance: %w", err)
	}
	return strconv.FormatUint(balance.Value, 10), nil
}

// Transfer sends a system-program transfer and returns its signature.
func (w *SolanaWallet) Transfer(ctx context.Context, params types.TransferParams) (*types.TransferResult, error) {
	recipient, err := solana.PublicKeyFromBase58(params.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: invalid recipient %q: %w", params.ReceiverID, err)
	}

	lamports, err := strconv.ParseUint(params.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: invalid base-unit amount %q: %w", params.Amount, err)
	}

	balance, err := w.client.GetBalance(ctx, w.publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: get balance: %w", err)
	}
	if balance.Value < lamports+lamportsPerSignature {
		return nil, fmt.Errorf("solana wallet: insufficient balance: have %d lamports, need %d including fees",
			balance.Value, lamports+lamportsPerSignature)
	}

	recent, err := w.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: get recent blockhash: %w", err)
	}

	instruction := system.NewTransferInstruction(lamports, w.publicKey, recipient).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(w.publicKey),
	)
	if err != nil {
		return nil, fmt.Errorf("solana wallet: build transaction: %w", err)
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.publicKey) {
			return &w.privateKey
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("solana wallet: sign transaction: %w", err)
	}

	sig, err := w.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       w.cfg.SkipPreflight,
		PreflightCommitment: w.commitment(),
	})
	if err != nil {
		return nil, fmt.Errorf("solana wallet: send transaction: %w", err)
	}

	return &types.TransferResult{TxHash: sig.String()}, nil
}

func (w *SolanaWallet) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("solana wallet: invalid address %q: %w", address, err)
	}
	return nil
}

func (w *SolanaWallet) commitment() rpc.CommitmentType {
	switch strings.ToLower(w.cfg.Commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

// Package wallet is the fund-transfer capability injected into the swap
// orchestrator: balance queries, native-coin transfers to a deposit
// address, and chain-specific address-shape checks. Signing is delegated
// to the chain libraries; nothing here implements cryptography.
package wallet

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"

	"nova-swap/pkg/types"
)

// Wallet funds deposit addresses on one chain.
type Wallet interface {
	// AccountID is the funding account's address on its chain.
	AccountID() string
	// Balance returns the account's spendable native balance in base units.
	Balance(ctx context.Context) (string, error)
	// Transfer sends params.Amount base units of the native coin to
	// params.ReceiverID and returns the transaction hash.
	Transfer(ctx context.Context, params types.TransferParams) (*types.TransferResult, error)
	// ValidateAddress checks that an address is well-formed for this chain.
	ValidateAddress(address string) error
}

// Manager dispatches wallet operations by chain identifier.
type Manager struct {
	wallets map[string]Wallet
}

// NewManager creates an empty wallet manager.
func NewManager() *Manager {
	return &Manager{wallets: make(map[string]Wallet)}
}

// Register adds a wallet for a chain. Chain aliases ("ethereum"/"eth",
// "solana"/"sol") map to one canonical key, so registration and lookup
// agree regardless of which spelling either side uses.
func (m *Manager) Register(chain string, w Wallet) {
	m.wallets[normalizeChain(chain)] = w
}

// For returns the wallet registered for a chain or any of its aliases.
func (m *Manager) For(chain string) (Wallet, error) {
	w, ok := m.wallets[normalizeChain(chain)]
	if !ok {
		return nil, fmt.Errorf("no wallet configured for chain %q", chain)
	}
	return w, nil
}

// Chains lists the chains with a registered wallet.
func (m *Manager) Chains() []string {
	chains := make([]string, 0, len(m.wallets))
	for chain := range m.wallets {
		chains = append(chains, chain)
	}
	return chains
}

// NEAR account ids: lowercase alphanumerics separated by . - _ between 2
// and 64 characters, or a 64-char hex implicit account.
var nearAccountPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// ValidateRecipientAddress checks an address against the shape rules of the
// named chain. Unknown chains only require a non-empty address, since the
// quoting backend performs its own validation.
func ValidateRecipientAddress(chain, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("recipient address is empty")
	}

	switch normalizeChain(chain) {
	case "near":
		if len(address) < 2 || len(address) > 64 || !nearAccountPattern.MatchString(address) {
			return fmt.Errorf("%q is not a valid NEAR account id", address)
		}
	case "eth", "base", "arb", "bsc", "pol", "gnosis", "avax", "op":
		if !common.IsHexAddress(address) {
			return fmt.Errorf("%q is not a valid EVM address", address)
		}
	case "sol":
		if _, err := solana.PublicKeyFromBase58(address); err != nil {
			return fmt.Errorf("%q is not a valid Solana address: %w", address, err)
		}
	}
	return nil
}

func normalizeChain(chain string) string {
	switch strings.ToLower(strings.TrimSpace(chain)) {
	case "ethereum", "eth":
		return "eth"
	case "solana", "sol":
		return "sol"
	case "near":
		return "near"
	case "arbitrum", "arb":
		return "arb"
	case "polygon", "pol", "matic":
		return "pol"
	case "binance", "bsc", "bnb":
		return "bsc"
	default:
		return strings.ToLower(strings.TrimSpace(chain))
	}
}

package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-swap/pkg/types"
)

type stubWallet struct{ account string }

func (s *stubWallet) AccountID() string                           { return s.account }
func (s *stubWallet) Balance(ctx context.Context) (string, error) { return "0", nil }
func (s *stubWallet) ValidateAddress(address string) error        { return nil }
func (s *stubWallet) Transfer(ctx context.Context, params types.TransferParams) (*types.TransferResult, error) {
	return &types.TransferResult{TxHash: "stub"}, nil
}

func TestManagerDispatch(t *testing.T) {
	m := NewManager()
	m.Register("ETH", &stubWallet{account: "0xabc"})

	w, err := m.For("eth")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", w.AccountID())

	_, err = m.For("sol")
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"eth"}, m.Chains())
}

func TestManagerResolvesChainAliases(t *testing.T) {
	m := NewManager()
	m.Register("eth", &stubWallet{account: "0xabc"})
	m.Register("solana", &stubWallet{account: "So1Acct"})

	// Registration and lookup may use different spellings of the chain.
	w, err := m.For("ethereum")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", w.AccountID())

	w, err = m.For("sol")
	require.NoError(t, err)
	assert.Equal(t, "So1Acct", w.AccountID())

	_, err = m.For("near")
	assert.Error(t, err)
}

func TestValidateRecipientAddress(t *testing.T) {
	tests := []struct {
		name    string
		chain   string
		address string
		wantErr bool
	}{
		{name: "near named account", chain: "near", address: "alice.near"},
		{name: "near subaccount", chain: "near", address: "swap.alice.near"},
		{name: "near implicit", chain: "near", address: "98793cd91a3f870fb126f66285808c7e094afcfc4eda8a970f6648cdf0dbd6de"},
		{name: "near uppercase rejected", chain: "near", address: "Alice.near", wantErr: true},
		{name: "near single char rejected", chain: "near", address: "a", wantErr: true},
		{name: "near trailing dot rejected", chain: "near", address: "alice.", wantErr: true},
		{name: "evm address", chain: "eth", address: "0x52908400098527886E0F7030069857D2E4169EE7"},
		{name: "evm bad hex rejected", chain: "eth", address: "0x1234", wantErr: true},
		{name: "evm alias chain", chain: "ethereum", address: "0x52908400098527886E0F7030069857D2E4169EE7"},
		{name: "solana address", chain: "sol", address: "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"},
		{name: "solana bad base58 rejected", chain: "sol", address: "not-base58!", wantErr: true},
		{name: "unknown chain passes non-empty", chain: "btc", address: "bc1qsomething"},
		{name: "empty always rejected", chain: "btc", address: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecipientAddress(tt.chain, tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

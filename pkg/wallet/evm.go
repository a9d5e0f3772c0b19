package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"nova-swap/pkg/types"
)

// nativeTransferGas is the fixed gas cost of a plain value transfer.
const nativeTransferGas = uint64(21000)

// EVMConfig configures an EVM wallet for one network.
type EVMConfig struct {
	RPCURL     string
	PrivateKey string
	ChainID    int64
	GasLimit   uint64 // optional override
	GasPrice   int64  // optional override, wei
}

// EVMWallet funds deposit addresses on an EVM-compatible chain. Amounts
// are base-unit (wei) strings end-to-end; no float conversion happens here.
type EVMWallet struct {
	cfg        EVMConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	account    common.Address
}

// NewEVMWallet connects to the network RPC and derives the funding account
// from the configured key.
func NewEVMWallet(cfg EVMConfig) (*EVMWallet, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("evm wallet: RPC URL is required")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("evm wallet: private key is required")
	}
	if cfg.ChainID == 0 {
		return nil, fmt.Errorf("evm wallet: chain id is required")
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("evm wallet: connect %s: %w", cfg.RPCURL, err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("evm wallet: invalid private key: %w", err)
	}

	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("evm wallet: cannot derive public key")
	}

	return &EVMWallet{
		cfg:        cfg,
		client:     client,
		privateKey: privateKey,
		account:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

func (w *EVMWallet) AccountID() string {
	return w.account.Hex()
}

// Balance returns the account's native balance in wei as a decimal string.
func (w *EVMWallet) Balance(ctx context.Context) (string, error) {
	balance, err := w.client.BalanceAt(ctx, w.account, nil)
	if err != nil {
		return "", fmt.Errorf("evm wallet: get balance: %w", err)
	}
	return balance.String(), nil
}

// Transfer sends a native-coin value transfer and returns its hash.
func (w *EVMWallet) Transfer(ctx context.Context, params types.TransferParams) (*types.TransferResult, error) {
	if err := w.ValidateAddress(params.ReceiverID); err != nil {
		return nil, err
	}

	amountWei, ok := new(big.Int).SetString(params.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("evm wallet: invalid base-unit amount %q", params.Amount)
	}

	nonce, err := w.client.PendingNonceAt(ctx, w.account)
	if err != nil {
		return nil, fmt.Errorf("evm wallet: get nonce: %w", err)
	}

	gasPrice, err := w.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gasLimit := nativeTransferGas
	if w.cfg.GasLimit != 0 {
		gasLimit = w.cfg.GasLimit
	}

	tx := ethtypes.NewTransaction(nonce, common.HexToAddress(params.ReceiverID), amountWei, gasLimit, gasPrice, nil)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(big.NewInt(w.cfg.ChainID)), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("evm wallet: sign transaction: %w", err)
	}

	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return nil, fmt.Errorf("evm wallet: send transaction: %w", err)
	}

	return &types.TransferResult{TxHash: signedTx.Hash().Hex()}, nil
}

func (w *EVMWallet) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("evm wallet: invalid address %q", address)
	}
	return nil
}

func (w *EVMWallet) gasPrice(ctx context.Context) (*big.Int, error) {
	if w.cfg.GasPrice != 0 {
		return big.NewInt(w.cfg.GasPrice), nil
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("evm wallet: suggest gas price: %w", err)
	}
	return gasPrice, nil
}

// Close releases the RPC connection.
func (w *EVMWallet) Close() {
	if w.client != nil {
		w.client.Close()
	}
}

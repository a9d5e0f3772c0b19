package swap

import (
	"fmt"
	"strings"

	"nova-swap/pkg/amount"
	"nova-swap/pkg/wallet"
)

// ValidateInputs checks the form state before any network call: a
// destination token is selected, the recipient passes the destination
// chain's address-shape rules, and the sell amount parses to a positive
// base-unit integer within the known wallet balance. It returns the sell
// amount in base units. Pure function of its arguments.
func ValidateInputs(in Inputs, cfg Config, balance string) (string, error) {
	if strings.TrimSpace(in.DestinationAsset) == "" {
		return "", fmt.Errorf("select a destination token")
	}

	if strings.TrimSpace(in.Recipient) == "" {
		return "", fmt.Errorf("enter a recipient address")
	}
	if err := wallet.ValidateRecipientAddress(cfg.DestinationChain, in.Recipient); err != nil {
		return "", fmt.Errorf("invalid recipient: %w", err)
	}

	if strings.TrimSpace(in.SellAmount) == "" {
		return "", fmt.Errorf("enter an amount to sell")
	}
	units, err := amount.ToBaseUnits(in.SellAmount, cfg.OriginDecimals)
	if err != nil {
		return "", fmt.Errorf("invalid sell amount: %w", err)
	}
	if !amount.IsPositive(units) {
		return "", fmt.Errorf("sell amount must be greater than zero")
	}
	if !amount.IsWithinBalance(units, balance) {
		return "", fmt.Errorf("sell amount exceeds wallet balance")
	}

	return units, nil
}

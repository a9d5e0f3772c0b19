// Package tokens holds the per-session snapshot of the quoting backend's
// token catalog. The snapshot is replaced wholesale on refresh and never
// mutated in place.
package tokens

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nova-swap/pkg/types"
)

// Source fetches the token catalog from the backend.
type Source interface {
	Tokens(ctx context.Context) ([]types.Token, error)
}

// Catalog caches the supported-token list for a session.
type Catalog struct {
	source Source
	logger *logrus.Logger

	mu        sync.RWMutex
	tokens    []types.Token
	byAssetID map[string]types.Token
	fetchedAt time.Time
}

// NewCatalog creates an empty catalog; call Refresh before lookups.
func NewCatalog(source Source, logger *logrus.Logger) *Catalog {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Catalog{source: source, logger: logger}
}

// Refresh replaces the snapshot with a fresh fetch.
func (c *Catalog) Refresh(ctx context.Context) error {
	fetched, err := c.source.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("refresh token catalog: %w", err)
	}

	byAssetID := make(map[string]types.Token, len(fetched))
	for _, t := range fetched {
		byAssetID[t.AssetID] = t
	}

	c.mu.Lock()
	c.tokens = fetched
	c.byAssetID = byAssetID
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.WithField("tokens", len(fetched)).Debug("token catalog refreshed")
	return nil
}

// All returns the current snapshot.
func (c *Catalog) All() []types.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// FetchedAt returns when the snapshot was taken; zero before first Refresh.
func (c *Catalog) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// ByAssetID looks a token up by its opaque protocol identifier.
func (c *Catalog) ByAssetID(assetID string) (types.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.byAssetID[assetID]
	if !ok {
		return types.Token{}, fmt.Errorf("asset %q not in catalog", assetID)
	}
	return t, nil
}

// BySymbol finds a token by symbol, optionally constrained to a chain.
// Exact symbol matches win over partial ones, mirroring how users type
// symbols rather than asset ids.
func (c *Catalog) BySymbol(symbol, chain string) (types.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	chain = strings.ToLower(strings.TrimSpace(chain))

	for _, t := range c.tokens {
		if strings.ToUpper(t.Symbol) == symbol &&
			(chain == "" || strings.ToLower(t.Blockchain) == chain) {
			return t, nil
		}
	}

	for _, t := range c.tokens {
		if strings.Contains(strings.ToUpper(t.Symbol), symbol) &&
			(chain == "" || strings.ToLower(t.Blockchain) == chain) {
			return t, nil
		}
	}

	if chain != "" {
		return types.Token{}, fmt.Errorf("token %q not found on chain %q", symbol, chain)
	}
	return types.Token{}, fmt.Errorf("token %q not found", symbol)
}

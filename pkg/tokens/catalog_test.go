package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-swap/pkg/types"
)

type fakeSource struct {
	tokens []types.Token
	err    error
	calls  int
}

func (f *fakeSource) Tokens(ctx context.Context) ([]types.Token, error) {
	f.calls++
	return f.tokens, f.err
}

func testTokens() []types.Token {
	return []types.Token{
		{AssetID: "nep141:wrap.near", Blockchain: "near", Symbol: "wNEAR", Decimals: 24},
		{AssetID: "nep141:usdc.near", Blockchain: "near", Symbol: "USDC", Decimals: 6},
		{AssetID: "sol:usdc", Blockchain: "sol", Symbol: "USDC", Decimals: 6},
	}
}

func newTestCatalog(t *testing.T, src *fakeSource) *Catalog {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	c := NewCatalog(src, logger)
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	src := &fakeSource{tokens: testTokens()}
	c := newTestCatalog(t, src)

	assert.Len(t, c.All(), 3)
	assert.False(t, c.FetchedAt().IsZero())

	src.tokens = testTokens()[:1]
	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.All(), 1)
	assert.Equal(t, 2, src.calls)
}

func TestRefreshErrorKeepsOldSnapshot(t *testing.T) {
	src := &fakeSource{tokens: testTokens()}
	c := newTestCatalog(t, src)

	src.err = errors.New("backend down")
	require.Error(t, c.Refresh(context.Background()))
	assert.Len(t, c.All(), 3)
}

func TestByAssetID(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{tokens: testTokens()})

	tok, err := c.ByAssetID("nep141:usdc.near")
	require.NoError(t, err)
	assert.Equal(t, 6, tok.Decimals)

	_, err = c.ByAssetID("missing")
	assert.Error(t, err)
}

func TestBySymbol(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{tokens: testTokens()})

	// Chain narrows ambiguous symbols.
	tok, err := c.BySymbol("usdc", "sol")
	require.NoError(t, err)
	assert.Equal(t, "sol:usdc", tok.AssetID)

	// Exact match wins over partial: "NEAR" must not match "wNEAR" first
	// when an exact entry is absent on the requested chain.
	tok, err = c.BySymbol("wnear", "near")
	require.NoError(t, err)
	assert.Equal(t, "nep141:wrap.near", tok.AssetID)

	_, err = c.BySymbol("DOGE", "")
	assert.Error(t, err)

	_, err = c.BySymbol("USDC", "btc")
	assert.Error(t, err)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nova-swap/pkg/types"
)

func errorResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestQuoteErrorMessage(t *testing.T) {
	err := &QuoteError{Message: "insufficient liquidity"}
	assert.Equal(t, "insufficient liquidity", err.Error())

	err = &QuoteError{Message: "insufficient liquidity", CorrelationID: "abc-123"}
	assert.Equal(t, "insufficient liquidity (correlation: abc-123)", err.Error())
}

func TestWrapErrorParsesBackendBody(t *testing.T) {
	c := New(Options{})

	err := c.wrapError("get quote", errorResponse(400, `{"message":"amount too small","correlationId":"corr-1"}`), errors.New("400"))

	var qe *QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "amount too small", qe.Message)
	assert.Equal(t, "corr-1", qe.CorrelationID)
	assert.Equal(t, 400, qe.StatusCode)
}

func TestWrapErrorNonJSONBody(t *testing.T) {
	c := New(Options{})

	err := c.wrapError("get quote", errorResponse(502, "<html>bad gateway</html>"), errors.New("502"))

	var qe *QuoteError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 502, qe.StatusCode)
	assert.Empty(t, qe.CorrelationID)
}

// statusResponseJSON builds a wire-faithful status payload from the SDK
// models so the round trip exercises the same decoder the client uses.
func statusResponseJSON(t *testing.T, status, depositAddress, depositMemo string) []byte {
	t.Helper()

	quote := oneclick.NewQuote(
		"2400000000000000000000000", "2.4", "2.40",
		"2300000000000000000000000",
		"99000000", "99", "99.00", "98000000", 30)
	quote.SetDepositAddress(depositAddress)
	if depositMemo != "" {
		quote.SetDepositMemo(depositMemo)
	}

	quoteReq := oneclick.NewQuoteRequest(
		false, "EXACT_INPUT", 100,
		"nep141:wrap.near", "ORIGIN_CHAIN",
		"nep141:usdc.near", "2400000000000000000000000",
		"alice.near", "ORIGIN_CHAIN",
		"alice.near", "DESTINATION_CHAIN",
		time.Now().UTC().Add(3*time.Minute))

	quoteResp := oneclick.NewQuoteResponse(time.Now().UTC(), "sig", *quoteReq, *quote)
	details := oneclick.NewSwapDetails(
		[]string{}, []string{},
		[]oneclick.TransactionDetails{}, []oneclick.TransactionDetails{})

	body, err := json.Marshal(oneclick.NewGetExecutionStatusResponse(
		*quoteResp, status, time.Now().UTC(), *details))
	require.NoError(t, err)
	return body
}

func TestExecutionStatusMapsQuoteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v0/status", r.URL.Path)
		assert.Equal(t, "addr-1", r.URL.Query().Get("depositAddress"))
		assert.Empty(t, r.URL.Query().Get("depositMemo"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(statusResponseJSON(t, "PROCESSING", "addr-1", ""))
	}))
	defer srv.Close()

	c := New(Options{JWTToken: "test-jwt", BaseURL: srv.URL})

	record, err := c.ExecutionStatus(context.Background(), "addr-1", "")
	require.NoError(t, err)

	assert.Equal(t, types.StatusProcessing, record.Status)
	assert.False(t, record.UpdatedAt.IsZero())
	require.NotNil(t, record.Quote, "the quote the status was issued against must come through")
	assert.Equal(t, "addr-1", record.Quote.DepositAddress)
	assert.Equal(t, "2400000000000000000000000", record.Quote.AmountIn)
	assert.Equal(t, "99000000", record.Quote.AmountOut)
}

func TestExecutionStatusSendsMemoAsQueryParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v0/status", r.URL.Path)
		assert.Equal(t, "addr-1", r.URL.Query().Get("depositAddress"))
		assert.Equal(t, "memo-1", r.URL.Query().Get("depositMemo"))
		assert.Equal(t, "Bearer test-jwt", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(statusResponseJSON(t, "SUCCESS", "addr-1", "memo-1"))
	}))
	defer srv.Close()

	c := New(Options{JWTToken: "test-jwt", BaseURL: srv.URL})

	record, err := c.ExecutionStatus(context.Background(), "addr-1", "memo-1")
	require.NoError(t, err)

	assert.Equal(t, types.StatusSuccess, record.Status)
	require.NotNil(t, record.Quote)
	assert.Equal(t, "memo-1", record.Quote.DepositMemo)
}

func TestQuoteRequestWireFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v0/quote", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["dry"])
		assert.Equal(t, "EXACT_INPUT", body["swapType"])
		assert.Equal(t, float64(250), body["slippageTolerance"])
		assert.Equal(t, "nova", body["referral"])
		assert.Equal(t, float64(3000), body["quoteWaitingTimeMs"])
		assert.Equal(t, "alice.near", body["refundTo"], "refundTo defaults to the recipient")

		quote := oneclick.NewQuote(
			"1000", "0.001", "0.10", "990",
			"500", "0.5", "0.10", "490", 10)
		quoteReq := oneclick.NewQuoteRequest(
			true, "EXACT_INPUT", 250,
			"nep141:wrap.near", "ORIGIN_CHAIN",
			"nep141:usdc.near", "1000",
			"alice.near", "ORIGIN_CHAIN",
			"alice.near", "DESTINATION_CHAIN",
			time.Now().UTC().Add(3*time.Minute))
		resp := oneclick.NewQuoteResponse(time.Now().UTC(), "sig", *quoteReq, *quote)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := New(Options{
		JWTToken:    "test-jwt",
		BaseURL:     srv.URL,
		OriginAsset: "nep141:wrap.near",
		Referral:    "nova",
	})

	quote, err := c.DryQuote(context.Background(), types.QuoteRequest{
		DestinationAsset:  "nep141:usdc.near",
		Amount:            "1000",
		Recipient:         "alice.near",
		SlippageTolerance: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000", quote.AmountIn)
	assert.Equal(t, "500", quote.AmountOut)
}

func TestWrapErrorNoResponse(t *testing.T) {
	c := New(Options{})

	cause := errors.New("dial tcp: connection refused")
	err := c.wrapError("get quote", nil, cause)

	require.ErrorIs(t, err, cause)
	var qe *QuoteError
	assert.False(t, errors.As(err, &qe))
}

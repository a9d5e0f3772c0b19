// Package client wraps the 1Click quote/execution API behind the narrow
// contract the orchestrator consumes: token catalog, dry and executable
// quotes, deposit receipt submission, and execution status reads. The
// client never retries; retry policy belongs to the caller.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"

	"nova-swap/pkg/types"
)

const (
	// quoteDeadline is the absolute expiry attached to every quote
	// request; executable quotes are short-lived by design.
	quoteDeadline = 3 * time.Minute

	defaultSlippageBps = 100
	quoteWaitingTimeMs = 3000

	statusPath = "/v0/status"
)

// Options configures a Client.
type Options struct {
	JWTToken    string
	BaseURL     string
	OriginAsset string // asset id of the fixed origin asset, e.g. nep141:wrap.near
	Referral    string
	HTTPTimeout time.Duration
}

// Client is a stateless wrapper around the 1Click SDK.
type Client struct {
	api         *oneclick.APIClient
	jwtToken    string
	originAsset string
	referral    string
}

// QuoteError is a failure reported by the quoting backend. CorrelationID is
// attached when the error body carried one, for support traceability.
type QuoteError struct {
	Message       string
	CorrelationID string
	StatusCode    int
}

func (e *QuoteError) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("%s (correlation: %s)", e.Message, e.CorrelationID)
	}
	return e.Message
}

// New creates a 1Click API client.
func New(opts Options) *Client {
	cfg := oneclick.NewConfiguration()
	if opts.BaseURL != "" {
		cfg.Servers = oneclick.ServerConfigurations{{URL: opts.BaseURL}}
	}
	timeout := opts.HTTPTimeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:         oneclick.NewAPIClient(cfg),
		jwtToken:    opts.JWTToken,
		originAsset: opts.OriginAsset,
		referral:    opts.Referral,
	}
}

// withAuth layers bearer auth onto the caller's context so cancellation
// still propagates from the caller.
func (c *Client) withAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// Tokens retrieves the backend's supported token catalog.
func (c *Client) Tokens(ctx context.Context) ([]types.Token, error) {
	resp, httpResp, err := c.api.OneClickAPI.GetTokens(c.withAuth(ctx)).Execute()
	if err != nil {
		return nil, c.wrapError("get tokens", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &QuoteError{Message: "token list request failed", StatusCode: httpResp.StatusCode}
	}

	tokens := make([]types.Token, 0, len(resp))
	for _, t := range resp {
		tokens = append(tokens, types.Token{
			AssetID:         t.GetAssetId(),
			Blockchain:      t.GetBlockchain(),
			Symbol:          t.GetSymbol(),
			Decimals:        int(t.GetDecimals()),
			Price:           float64(t.GetPrice()),
			PriceUpdatedAt:  t.GetPriceUpdatedAt().Format(time.RFC3339),
			ContractAddress: t.GetContractAddress(),
		})
	}
	return tokens, nil
}

// DryQuote requests a non-binding estimate for live pricing. Safe to call
// repeatedly; no deposit address is allocated.
func (c *Client) DryQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	req.Dry = true
	return c.quote(ctx, req)
}

// ExecutableQuote requests a binding quote. The backend allocates a fresh,
// single-use deposit address; callers must never reuse a stale quote for a
// new transfer attempt.
func (c *Client) ExecutableQuote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	req.Dry = false
	return c.quote(ctx, req)
}

func (c *Client) quote(ctx context.Context, req types.QuoteRequest) (*types.Quote, error) {
	refundTo := req.RefundTo
	if refundTo == "" {
		refundTo = req.Recipient
	}
	slippage := req.SlippageTolerance
	if slippage <= 0 {
		slippage = defaultSlippageBps
	}

	quoteReq := oneclick.NewQuoteRequest(
		req.Dry,
		"EXACT_INPUT",
		float32(slippage),
		c.originAsset,
		"ORIGIN_CHAIN",
		req.DestinationAsset,
		req.Amount,
		refundTo,
		"ORIGIN_CHAIN",
		req.Recipient,
		"DESTINATION_CHAIN",
		time.Now().Add(quoteDeadline),
	)
	if c.referral != "" {
		quoteReq.SetReferral(c.referral)
	}
	quoteReq.SetQuoteWaitingTimeMs(quoteWaitingTimeMs)

	resp, httpResp, err := c.api.OneClickAPI.GetQuote(c.withAuth(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, c.wrapError("get quote", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &QuoteError{Message: "quote request failed", StatusCode: httpResp.StatusCode}
	}
	if resp == nil {
		return nil, &QuoteError{Message: "empty quote response", StatusCode: httpResp.StatusCode}
	}

	return quoteFromSDK(resp.GetQuote()), nil
}

// quoteFromSDK maps the SDK quote payload onto the domain type.
func quoteFromSDK(q oneclick.Quote) *types.Quote {
	out := &types.Quote{
		DepositAddress:     q.GetDepositAddress(),
		AmountIn:           q.GetAmountIn(),
		AmountInFormatted:  q.GetAmountInFormatted(),
		AmountInUsd:        q.GetAmountInUsd(),
		AmountOut:          q.GetAmountOut(),
		AmountOutFormatted: q.GetAmountOutFormatted(),
		AmountOutUsd:       q.GetAmountOutUsd(),
		MinAmountOut:       q.GetMinAmountOut(),
		TimeEstimate:       float64(q.GetTimeEstimate()),
	}
	if q.HasDepositMemo() {
		out.DepositMemo = q.GetDepositMemo()
	}
	if q.HasDeadline() {
		out.Deadline = q.GetDeadline()
	}
	return out
}

// SubmitDepositTx tells the backend that txHash pays depositAddress. The
// backend also discovers deposits by chain scanning, so callers treat
// failures here as non-fatal.
func (c *Client) SubmitDepositTx(ctx context.Context, txHash, depositAddress string) error {
	req := oneclick.NewSubmitDepositTxRequest(txHash, depositAddress)

	_, httpResp, err := c.api.OneClickAPI.SubmitDepositTx(c.withAuth(ctx)).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return c.wrapError("submit deposit", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return &QuoteError{Message: "submit deposit failed", StatusCode: httpResp.StatusCode}
	}
	return nil
}

// ExecutionStatus reads the backend's execution record for a deposit
// address, with the memo when the quote carried one. The generated SDK
// request only keys by deposit address, so memo-keyed reads go through the
// same endpoint with the memo as an explicit query parameter.
func (c *Client) ExecutionStatus(ctx context.Context, depositAddress, depositMemo string) (*types.ExecutionRecord, error) {
	if depositMemo != "" {
		return c.executionStatusWithMemo(ctx, depositAddress, depositMemo)
	}

	resp, httpResp, err := c.api.OneClickAPI.GetExecutionStatus(c.withAuth(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, c.wrapError("get execution status", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &QuoteError{Message: "status request failed", StatusCode: httpResp.StatusCode}
	}

	return recordFromSDK(resp), nil
}

func (c *Client) executionStatusWithMemo(ctx context.Context, depositAddress, depositMemo string) (*types.ExecutionRecord, error) {
	base, err := c.api.GetConfig().ServerURLWithContext(ctx, "OneClickAPIService.GetExecutionStatus")
	if err != nil {
		return nil, fmt.Errorf("get execution status: %w", err)
	}

	query := url.Values{}
	query.Set("depositAddress", depositAddress)
	query.Set("depositMemo", depositMemo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+statusPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("get execution status: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwtToken)

	httpResp, err := c.api.GetConfig().HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get execution status: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, c.wrapError("get execution status", httpResp,
			fmt.Errorf("unexpected status %d", httpResp.StatusCode))
	}
	defer httpResp.Body.Close()

	var resp oneclick.GetExecutionStatusResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("get execution status: decode response: %w", err)
	}
	return recordFromSDK(&resp), nil
}

// recordFromSDK maps the SDK status payload, including the quote it was
// issued against, onto the domain type.
func recordFromSDK(resp *oneclick.GetExecutionStatusResponse) *types.ExecutionRecord {
	record := &types.ExecutionRecord{
		Status:    types.ExecutionStatus(resp.GetStatus()),
		UpdatedAt: resp.GetUpdatedAt(),
	}
	if qr, ok := resp.GetQuoteResponseOk(); ok && qr != nil {
		record.Quote = quoteFromSDK(qr.GetQuote())
	}
	return record
}

// wrapError extracts {message, correlationId} from an error body when the
// backend sent one; anything else maps to a generic status-code error.
func (c *Client) wrapError(op string, httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer httpResp.Body.Close()

	body, readErr := io.ReadAll(httpResp.Body)
	if readErr == nil && len(body) > 0 {
		var payload struct {
			Message       string `json:"message"`
			CorrelationID string `json:"correlationId"`
		}
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Message != "" {
			return &QuoteError{
				Message:       payload.Message,
				CorrelationID: payload.CorrelationID,
				StatusCode:    httpResp.StatusCode,
			}
		}
	}

	return &QuoteError{
		Message:    fmt.Sprintf("%s: request failed: %v", op, err),
		StatusCode: httpResp.StatusCode,
	}
}

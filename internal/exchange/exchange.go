package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// defaultTimeout bounds each quote call when no client is supplied.
const defaultTimeout = 5 * time.Second

// Client fetches the blue-market USD sell rate from a quote endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// New constructs a Client for the given quote endpoint.
func New(url string) *Client {
	return NewWithHTTPClient(url, &http.Client{Timeout: defaultTimeout})
}

// NewWithHTTPClient constructs a Client using a caller-provided HTTP client.
func NewWithHTTPClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: strings.TrimSpace(url), httpClient: httpClient}
}

// quoteResponse maps the fields used from the quote endpoint.
type quoteResponse struct {
	Venta float64 `json:"venta"`
}

// SellRate returns the current USD sell rate in ARS.
func (c *Client) SellRate(ctx context.Context) (float64, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if errReq != nil {
		return 0, fmt.Errorf("exchange: build request: %w", errReq)
	}

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return 0, fmt.Errorf("exchange: request failed: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("exchange: unexpected status %d", resp.StatusCode)
	}

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return 0, fmt.Errorf("exchange: read response: %w", errRead)
	}

	var quote quoteResponse
	if errUnmarshal := json.Unmarshal(body, &quote); errUnmarshal != nil {
		return 0, fmt.Errorf("exchange: decode quote: %w", errUnmarshal)
	}
	if quote.Venta <= 0 {
		return 0, fmt.Errorf("exchange: non-positive sell rate %v", quote.Venta)
	}
	return quote.Venta, nil
}

// ConvertExpenseAmount converts a USD amount to ARS at the live sell rate.
// On quote failure the original amount is returned unchanged and the
// condition is logged: the ledger degrades, it never fails or zeroes.
// Non-USD amounts pass through untouched. The call is made once, at write
// time; stored amounts are never reconverted.
func (c *Client) ConvertExpenseAmount(ctx context.Context, amount float64, currency string) float64 {
	if strings.ToUpper(strings.TrimSpace(currency)) != "USD" {
		return amount
	}
	rate, errRate := c.SellRate(ctx)
	if errRate != nil {
		log.WithError(errRate).Warn("exchange: quote unavailable, storing unconverted amount")
		return amount
	}
	return amount * rate
}

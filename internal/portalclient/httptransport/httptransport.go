// Package httptransport is the default portalclient.Transport
// implementation: a thin wrapper over github.com/hashicorp/go-retryablehttp
// giving the streaming client retried GETs for the height endpoint and a
// single, unretried POST for the streaming endpoint (retrying a
// partially-read streaming body would duplicate blocks; the ingest loop's
// own resumption logic, not the transport, handles a truncated 200).
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/thirdweb-dev/portal-client/internal/query"
)

// Transport is the go-retryablehttp-backed portalclient.Transport.
type Transport struct {
	baseURL string
	headers http.Header
	client  *retryablehttp.Client
}

// Option configures a Transport at construction.
type Option func(*Transport)

// WithHeaders sets headers sent with every request (e.g. auth).
func WithHeaders(h http.Header) Option {
	return func(t *Transport) { t.headers = h }
}

// WithRetry overrides the retry schedule applied to the height endpoint.
func WithRetry(maxRetries int, waitMin, waitMax time.Duration) Option {
	return func(t *Transport) {
		t.client.RetryMax = maxRetries
		t.client.RetryWaitMin = waitMin
		t.client.RetryWaitMax = waitMax
	}
}

// WithRequestTimeout bounds each individual HTTP request.
func WithRequestTimeout(d time.Duration) Option {
	return func(t *Transport) { t.client.HTTPClient.Timeout = d }
}

// New returns a Transport against baseURL (no trailing slash expected).
func New(baseURL string, opts ...Option) *Transport {
	t := &Transport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  retryablehttp.NewClient(),
	}
	t.client.RetryMax = 3
	t.client.RetryWaitMin = 200 * time.Millisecond
	t.client.RetryWaitMax = 2 * time.Second
	t.client.Logger = nil

	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) applyHeaders(req *retryablehttp.Request) {
	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

// Height implements portalclient.Transport.
func (t *Transport) Height(ctx context.Context) (uint64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/finalized-stream/height", nil)
	if err != nil {
		return 0, fmt.Errorf("httptransport: build height request: %w", err)
	}
	t.applyHeaders(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("httptransport: height request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("httptransport: height request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("httptransport: read height body: %w", err)
	}

	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("httptransport: parse height %q: %w", body, err)
	}
	return height, nil
}

// OpenStream implements portalclient.Transport. It performs a single,
// unretried POST — go-retryablehttp's CheckRetry never sees this request
// because we bypass the retry client for it and use its underlying
// *http.Client directly, leaving the streaming body's lifecycle entirely
// to the caller.
func (t *Transport) OpenStream(ctx context.Context, wireReq query.WireRequest) (io.ReadCloser, int, error) {
	payload, err := json.Marshal(wireReq)
	if err != nil {
		return nil, 0, fmt.Errorf("httptransport: marshal wire request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/finalized-stream", bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("httptransport: build stream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range t.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := t.client.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("httptransport: stream request: %w", err)
	}
	return resp.Body, resp.StatusCode, nil
}

package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBodySize caps how much of an events response is read.
const maxResponseBodySize = 1 << 20

const userAgent = "triggerboard"

// a board polls one host; a couple of kept-alive connections are plenty
const (
	maxIdleConns    = 4
	maxConnsPerHost = 2
	idleConnTimeout = 60 * time.Second
)

// ErrBodyTooLarge is reported when an events response exceeds 1 MiB.
var ErrBodyTooLarge = errors.New("response body exceeds 1 MiB")

// Request describes one fetch of the events endpoint.
type Request struct {
	URL     string
	Headers map[string]string

	// Timeout bounds the whole exchange. Zero leaves it to the caller's ctx.
	Timeout time.Duration
}

// Response is the outcome of a [Client.Get].
type Response struct {
	Body []byte

	// StatusCode is zero when no response arrived.
	StatusCode int

	Latency time.Duration

	// Error is set when the exchange failed. A non-2xx status is not an
	// error at this level.
	Error error
}

// Client fetches the events endpoint over a small keep-alive pool.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client. Timeouts come from each [Request], the
// underlying http.Client has none.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        maxIdleConns,
				MaxIdleConnsPerHost: maxConnsPerHost,
				MaxConnsPerHost:     maxConnsPerHost,
				IdleConnTimeout:     idleConnTimeout,
			},
		},
	}
}

// Get issues the GET described by r. It never returns a nil Response;
// failures are carried in [Response.Error].
func (c *Client) Get(ctx context.Context, r Request) Response {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	fail := func(code int, err error) Response {
		return Response{StatusCode: code, Latency: time.Since(start), Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	// one extra byte tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(body) > maxResponseBodySize {
		return fail(resp.StatusCode, ErrBodyTooLarge)
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close drops idle connections. The client stays usable. Safe on nil.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}

// Package jobapi provides the HTTP client for the remote job-listing API.
package jobapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/jobsearch/internal/schemas"
	"github.com/jonathan/jobsearch/internal/types"
)

// DefaultBaseURL is the public job-listing API.
const DefaultBaseURL = "https://bytegrad.com/course-assets/projects/rmtdev/api/data"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "jobsearch/1.0"

// Options configures the client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string

	// RequestsPerSecond caps outgoing requests; 0 disables the limiter.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
	Verbose    bool
}

// DefaultOptions returns sensible defaults for the public API.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		RequestsPerSecond: 10,
		Burst:             10,
	}
}

// Client talks to the job API. It never retries.
type Client struct {
	baseURL   string
	userAgent string
	headers   map[string]string
	http      *http.Client
	limiter   *rate.Limiter
	verbose   bool
}

// NewClient creates a client; nil options use DefaultOptions.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := &Client{
		baseURL:   base,
		userAgent: userAgent,
		headers:   opts.Headers,
		http:      httpClient,
		verbose:   opts.Verbose,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchOne retrieves a single job item by id.
func (c *Client) FetchOne(ctx context.Context, id int) (*types.JobItemResponse, error) {
	endpoint := c.baseURL + "/" + strconv.Itoa(id)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.JobItemResponse, body); err != nil {
		return nil, &TransportError{URL: endpoint, Message: "invalid response", Cause: err}
	}

	var resp types.JobItemResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to decode response", Cause: err}
	}
	return &resp, nil
}

// FetchMany runs a text search and returns every matching job item.
func (c *Client) FetchMany(ctx context.Context, searchText string) (*types.JobItemsResponse, error) {
	endpoint := c.baseURL + "?search=" + url.QueryEscape(searchText)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.JobItemsResponse, body); err != nil {
		return nil, &TransportError{URL: endpoint, Message: "invalid response", Cause: err}
	}

	var resp types.JobItemsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to decode response", Cause: err}
	}
	return &resp, nil
}

// get issues one GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: endpoint, Message: "rate limiter wait aborted", Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to read response body", Cause: err}
	}

	if c.verbose {
		log.Printf("[jobapi] GET %s -> %d in %v", endpoint, resp.StatusCode, time.Since(start))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(endpoint, resp.StatusCode, body)
	}
	return body, nil
}

// decodeAPIError reads the {description} error body, falling back to the status text.
func decodeAPIError(endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{URL: endpoint, StatusCode: status}

	var errBody types.ErrorResponse
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Description != "" {
		apiErr.Description = errBody.Description
	} else {
		apiErr.Description = http.StatusText(status)
	}
	return apiErr
}

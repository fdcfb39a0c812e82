package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restcontract/users-contract-tests/framework"
)

// RequestIDHeader carries a unique ID for every request, so that a failure can be matched up
// with the service's own logs.
const RequestIDHeader = "X-Request-Id"

// Client sends requests to the API under test. It does not retry, and by default it does not
// time out: a slow response is reported by the latency assertion, not aborted.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// Config contains the options for NewClient.
type Config struct {
	// BaseURL is used to resolve request endpoints that are not absolute URLs.
	BaseURL string
	// Headers are added to every request.
	Headers http.Header
	// Timeout bounds each request, if nonzero.
	Timeout time.Duration
	// HTTPClient replaces the default client. Timeout is ignored if this is set.
	HTTPClient *http.Client
}

// Request describes one call to the API.
type Request struct {
	Method   string
	Endpoint string
	Query    url.Values
	// Body is encoded as JSON if it is non-nil.
	Body    interface{}
	Headers http.Header
}

// Response is everything the test suite needs to know about what the API returned.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Elapsed is the wall-clock time from sending the request to having read the whole body.
	Elapsed   time.Duration
	RequestID string
	URL       string
	Curl      string
}

func NewClient(config Config) (*Client, error) {
	c := &Client{
		httpClient: config.HTTPClient,
		headers:    config.Headers.Clone(),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: config.Timeout}
	}
	if c.headers == nil {
		c.headers = make(http.Header)
	}
	if config.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(config.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("base URL %q must be absolute", config.BaseURL)
		}
		c.baseURL = u
	}
	return c, nil
}

// BaseURL returns the configured base URL, or an empty string.
func (c *Client) BaseURL() string {
	if c.baseURL == nil {
		return ""
	}
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

// ResolveURL turns an endpoint into an absolute URL. Relative endpoints such as "/users" are
// appended to the base URL's path.
func (c *Client) ResolveURL(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.IsAbs() {
		return u, nil
	}
	if c.baseURL == nil {
		return nil, fmt.Errorf("endpoint %q is relative and no base URL was configured", endpoint)
	}
	return c.baseURL.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(u.Path, "/"),
		RawQuery: u.RawQuery,
	}), nil
}

// Do sends a request and reads the whole response. A non-nil error means that no HTTP response
// was received; any status code, including errors, is returned in the Response.
func (c *Client) Do(ctx context.Context, r Request, logger framework.Logger) (*Response, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	u, err := c.ResolveURL(r.Endpoint)
	if err != nil {
		return nil, err
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var bodyData []byte
	if r.Body != nil {
		if bodyData, err = json.Marshal(r.Body); err != nil {
			return nil, fmt.Errorf("cannot encode request body: %w", err)
		}
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(bodyData))
	if err != nil {
		return nil, err
	}
	if bodyData == nil {
		req.Body = http.NoBody
		req.ContentLength = 0
	}
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range r.Headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if bodyData != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)

	curl := Curl(req, bodyData)
	logger.Printf("%s %s (request ID %s)", method, u, requestID)
	logger.Printf("as curl: %s", curl)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, u, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	elapsed := time.Since(startTime)
	if err != nil {
		return nil, fmt.Errorf("error reading response body from %s: %w", u, err)
	}
	logger.Printf("response status %d after %s", resp.StatusCode, elapsed)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		Elapsed:    elapsed,
		RequestID:  requestID,
		URL:        u.String(),
		Curl:       curl,
	}, nil
}

// JSON parses the response body.
func (r *Response) JSON() (ldvalue.Value, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return ldvalue.Null(), errors.New("response body is empty")
	}
	var v ldvalue.Value
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return ldvalue.Null(), fmt.Errorf("response body is not valid JSON: %w", err)
	}
	return v, nil
}

// BodyExcerpt returns the body as a string, truncated to at most maxLength bytes.
func (r *Response) BodyExcerpt(maxLength int) string {
	if len(r.Body) <= maxLength {
		return string(r.Body)
	}
	return string(r.Body[:maxLength]) + "..."
}

// PrettyBody returns the body indented for logging, or as-is if it is not JSON.
func (r *Response) PrettyBody() string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Body, "", "  "); err != nil {
		return string(r.Body)
	}
	return buf.String()
}

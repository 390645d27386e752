// Package client is the single chokepoint for TaskFlow backend calls. It
// resolves the target URL, attaches bearer and CSRF credentials, encodes the
// body, enforces a per-call timeout and normalizes every outcome into a
// Response.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"

	"taskflow/pkg/logger"
)

const (
	// DefaultBaseURL is used when neither an override nor BaseURLEnv is set.
	DefaultBaseURL = "http://localhost:8080/api/v1"
	// DefaultTimeout bounds a call when no per-call timeout is given.
	DefaultTimeout = 20 * time.Second
	// BaseURLEnv names the environment variable holding the API base URL.
	BaseURLEnv = "TASKFLOW_API_BASE_URL"

	// CSRFHeader carries the double-submit CSRF token.
	CSRFHeader = "X-XSRF-TOKEN"
	// MethodOverrideHeader carries the intended verb of an overridden call.
	MethodOverrideHeader = "X-HTTP-Method-Override"

	contentTypeJSON       = "application/json"
	contentTypeMergePatch = "application/merge-patch+json"
)

// CSRFCookieNames lists the cookies checked for a CSRF token, in order.
var CSRFCookieNames = []string{"XSRF-TOKEN", "CSRF-TOKEN", "XSRF", "csrftoken"}

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// TokenSource supplies the bearer token for outgoing calls. An empty string
// means no Authorization header is sent.
type TokenSource interface {
	Token(ctx context.Context) string
}

// Options configures a Client.
type Options struct {
	// BaseURL overrides BaseURLEnv and DefaultBaseURL.
	BaseURL string
	// Timeout is the default per-call timeout.
	Timeout time.Duration
	// Tokens supplies bearer tokens; nil disables the Authorization header.
	Tokens TokenSource
	// HTTPClient is used for transport. A cookie jar is installed when it has none.
	HTTPClient *http.Client
}

// Client issues backend calls.
type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	http    *http.Client
}

// Response is the uniform result of a call. OK is true only for 2xx
// statuses; otherwise Err describes the failure and Status is 0 for
// transport failures.
type Response struct {
	OK      bool
	Status  int
	Data    any
	Raw     []byte
	Headers http.Header
	Err     *Error
}

// Decode unmarshals the raw response body into v.
func (r *Response) Decode(v any) error {
	if len(r.Raw) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.Raw, v)
}

// Error returns the failure as an error, or nil for a successful response.
func (r *Response) Error() error {
	if r.OK || r.Err == nil {
		return nil
	}
	return r.Err
}

// ResolveBaseURL picks the API base URL: override, then BaseURLEnv, then
// DefaultBaseURL. The result never ends with a slash.
func ResolveBaseURL(override string) string {
	base := strings.TrimSpace(override)
	if base == "" {
		base = strings.TrimSpace(os.Getenv(BaseURLEnv))
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// New creates a client.
func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	return &Client{
		baseURL: ResolveBaseURL(opts.BaseURL),
		timeout: timeout,
		tokens:  opts.Tokens,
		http:    httpClient,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar shared by all calls.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// RequestOption customizes a single call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	body           any
	headers        http.Header
	timeout        time.Duration
	methodOverride bool
}

// WithBody sets the request body: a plain value (JSON encoded), string,
// []byte, io.Reader, Blob or *FormData.
func WithBody(body any) RequestOption {
	return func(cfg *requestConfig) {
		cfg.body = body
	}
}

// WithHeader sets a request header, replacing any default.
func WithHeader(key, value string) RequestOption {
	return func(cfg *requestConfig) {
		cfg.headers.Set(key, value)
	}
}

// WithTimeout overrides the client timeout for one call.
func WithTimeout(d time.Duration) RequestOption {
	return func(cfg *requestConfig) {
		if d > 0 {
			cfg.timeout = d
		}
	}
}

// WithMethodOverride sends the call as POST and carries the intended verb
// in MethodOverrideHeader.
func WithMethodOverride() RequestOption {
	return func(cfg *requestConfig) {
		cfg.methodOverride = true
	}
}

// Do performs a call and never returns a Go error: every failure is
// captured in the Response.
func (c *Client) Do(ctx context.Context, method, path string, opts ...RequestOption) *Response {
	cfg := requestConfig{headers: http.Header{}, timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolveURL(path)

	headers := cfg.headers.Clone()
	contentType := headers.Get("Content-Type")
	if contentType == "" && !isPlatformTyped(cfg.body) {
		contentType = defaultContentType(method)
		headers.Set("Content-Type", contentType)
	}

	if c.tokens != nil && headers.Get("Authorization") == "" {
		if token := c.tokens.Token(ctx); token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	body, encodedType, err := encodeBody(cfg.body, contentType)
	if err != nil {
		return failed(&Error{Message: "failed to encode request body", cause: err})
	}
	if encodedType != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", encodedType)
	}

	wireMethod := method
	if cfg.methodOverride {
		headers.Set(MethodOverrideHeader, method)
		wireMethod = http.MethodPost
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, wireMethod, target, body)
	if err != nil {
		return failed(newNetworkError("invalid request", err))
	}
	req.Header = headers
	if token := c.csrfToken(req.URL); token != "" && req.Header.Get(CSRFHeader) == "" {
		req.Header.Set(CSRFHeader, token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug("%s %s failed after %s: %v", method, target, time.Since(start).Round(time.Millisecond), err)
		return failed(transportError(ctx, err))
	}
	defer resp.Body.Close()

	result, err := readResponse(resp)
	if err != nil {
		return failed(transportError(ctx, err))
	}
	logger.Debug("%s %s %d %s", method, target, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	return result
}

// Request performs a call and additionally returns the failure as an error.
// The Response is never nil.
func (c *Client) Request(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	resp := c.Do(ctx, method, path, opts...)
	return resp, resp.Error()
}

// Get issues a GET call.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) *Response {
	return c.Do(ctx, http.MethodGet, path, opts...)
}

// Post issues a POST call.
func (c *Client) Post(ctx context.Context, path string, opts ...RequestOption) *Response {
	return c.Do(ctx, http.MethodPost, path, opts...)
}

// Put issues a PUT call.
func (c *Client) Put(ctx context.Context, path string, opts ...RequestOption) *Response {
	return c.Do(ctx, http.MethodPut, path, opts...)
}

// Patch issues a PATCH call.
func (c *Client) Patch(ctx context.Context, path string, opts ...RequestOption) *Response {
	return c.Do(ctx, http.MethodPatch, path, opts...)
}

// Delete issues a DELETE call.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) *Response {
	return c.Do(ctx, http.MethodDelete, path, opts...)
}

func (c *Client) resolveURL(path string) string {
	if absoluteURL.MatchString(path) {
		return path
	}
	if path == "" {
		return c.baseURL
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) csrfToken(target *url.URL) string {
	if c.http.Jar == nil {
		return ""
	}
	cookies := c.http.Jar.Cookies(target)
	for _, name := range CSRFCookieNames {
		for _, cookie := range cookies {
			if cookie.Name == name && cookie.Value != "" {
				return cookie.Value
			}
		}
	}
	return ""
}

func defaultContentType(method string) string {
	if method == http.MethodPatch {
		return contentTypeMergePatch
	}
	return contentTypeJSON
}

func readResponse(resp *http.Response) (*Response, error) {
	result := &Response{
		OK:      resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status:  resp.StatusCode,
		Headers: resp.Header,
	}

	if resp.StatusCode != http.StatusNoContent {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		result.Raw = raw
		result.Data = parseBody(raw)
	}

	if !result.OK {
		result.Err = &Error{
			Status:  resp.StatusCode,
			Message: errorMessage(result.Raw, resp.StatusCode),
			Data:    result.Data,
		}
	}
	return result, nil
}

// parseBody returns the decoded JSON value, the raw text when the body is
// not JSON, or nil for an empty body.
func parseBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func errorMessage(raw []byte, status int) string {
	if gjson.ValidBytes(raw) {
		parsed := gjson.ParseBytes(raw)
		for _, field := range []string{"message", "error"} {
			if v := parsed.Get(field); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}

func transportError(ctx context.Context, err error) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newNetworkError("request timed out", err)
	case errors.Is(ctx.Err(), context.Canceled):
		return newNetworkError("request was cancelled", err)
	default:
		return newNetworkError("unable to reach the server", err)
	}
}

func failed(err *Error) *Response {
	return &Response{Status: err.Status, Data: err.Data, Headers: http.Header{}, Err: err}
}

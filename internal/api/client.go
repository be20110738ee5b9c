// Package api is a thin client for the Enso background process' local HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enso-settings/internal/auth"
	"enso-settings/internal/logging"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Doer is the subset of *http.Client the API client needs.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("enso api: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Client attaches the Basic auth header to every request.
type Client struct {
	BaseURL string
	Token   string
	HTTP    Doer
}

type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Retries is the number of extra attempts per request (0 = none).
	Retries int
	Log     zerolog.Logger
}

// NewClient builds a client on a retryablehttp transport.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		Token:   strings.TrimSpace(cfg.Token),
		HTTP:    NewHTTPClient(cfg.Timeout, cfg.Retries, cfg.Log),
	}
}

// NewHTTPClient returns a plain *http.Client backed by retryablehttp.
// Non-2xx responses are handed back unchanged.
func NewHTTPClient(timeout time.Duration, retries int, log zerolog.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.Logger = logging.Leveled{L: log}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if timeout > 0 {
		rc.HTTPClient.Timeout = timeout
	}
	return rc.StandardClient()
}

// Seg escapes one path segment (command names and namespaces may contain spaces).
func Seg(s string) string {
	return url.PathEscape(s)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if h := auth.BasicHeader(c.Token); h != "" {
		req.Header.Set("Authorization", h)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode}
	}
	return b, nil
}

// Get returns the response body as text.
func (c *Client) Get(ctx context.Context, path string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	b, err := c.do(req)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetJSON decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	b, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("enso api: decode %s: %w", path, err)
	}
	return nil
}

// PostForm posts url-encoded form values and discards the body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = c.do(req)
	return err
}

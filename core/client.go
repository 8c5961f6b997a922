package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultTimeout = 30 * time.Second

	RequestIDHeader = "X-Request-ID"

	// maxRetries bounds how often one logical request is resent after a 401.
	maxRetries = 1
)

type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	// Tokens supplies the bearer token. Nil sends every request anonymously.
	Tokens TokenStorage
	// Refresher recovers from 401 responses. Nil returns them unchanged.
	Refresher AccessTokenRefresher
	Logger    *slog.Logger
}

// Client is the authenticated request pipeline: it attaches the stored
// access token, and on a 401 refreshes through the Refresher and resends the
// request once.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	tokens     TokenStorage
	refresher  AccessTokenRefresher
	logger     *slog.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsedBaseURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsedBaseURL.Scheme == "" || parsedBaseURL.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    parsedBaseURL,
		tokens:     cfg.Tokens,
		refresher:  cfg.Refresher,
		logger:     logger,
	}, nil
}

func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Request() *RequestBuilder {
	return newRequestBuilder(c)
}

// outgoingRequest is one logical request. Its body is fully buffered so a
// retry resends the exact same bytes.
type outgoingRequest struct {
	method      string
	url         string
	header      http.Header
	body        []byte
	contentType string
	withToken   bool
	requestID   string
}

func (c *Client) do(ctx context.Context, out *outgoingRequest) (*Response, error) {
	if out.requestID == "" {
		out.requestID = uuid.NewString()
	}

	token := c.accessToken(ctx, out)
	for attempt := 0; ; attempt++ {
		resp, err := c.send(ctx, out, token, attempt)
		if err != nil {
			return nil, err
		}
		if !c.shouldRefresh(out, resp, attempt) {
			return resp, nil
		}

		fresh, err := c.refresher.Refresh(ctx, token)
		if err != nil {
			apiErr := decodeAPIError(resp.StatusCode, resp.Body)
			apiErr.Cause = err
			return nil, apiErr
		}
		token = fresh
	}
}

func (c *Client) accessToken(ctx context.Context, out *outgoingRequest) string {
	if !out.withToken || c.tokens == nil {
		return ""
	}
	token, _ := c.tokens.GetAccessToken(ctx)
	return token
}

func (c *Client) shouldRefresh(out *outgoingRequest, resp *Response, attempt int) bool {
	return resp.StatusCode == http.StatusUnauthorized &&
		out.withToken &&
		c.refresher != nil &&
		attempt < maxRetries
}

func (c *Client) send(ctx context.Context, out *outgoingRequest, token string, attempt int) (*Response, error) {
	var body io.Reader
	if out.body != nil {
		body = bytes.NewReader(out.body)
	}
	req, err := http.NewRequestWithContext(ctx, out.method, out.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range out.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, out.requestID)
	if out.contentType != "" {
		req.Header.Set("Content-Type", out.contentType)
	}
	if IsValidToken(token) {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logRequest(ctx, req, out.body, attempt)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: out.method, URL: out.url, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Method: out.method, URL: out.url, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logResponse(ctx, out.requestID, httpResp.StatusCode, respBody)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) buildURL(path string, query map[string]string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}

	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		values := u.Query()
		for key, value := range query {
			values.Set(key, value)
		}
		u.RawQuery = values.Encode()
	}

	return u.String(), nil
}

func (c *Client) logRequest(ctx context.Context, req *http.Request, body []byte, attempt int) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", RedactURLQuery(req.URL.String())),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Int("attempt", attempt),
		slog.Any("headers", RedactHeader(req.Header)),
	}
	switch {
	case len(body) == 0:
	case strings.HasPrefix(req.Header.Get("Content-Type"), "application/json"):
		attrs = append(attrs, slog.String("body", RedactJSONBody(body)))
	default:
		attrs = append(attrs, slog.Int("body_bytes", len(body)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http request", attrs...)
}

func (c *Client) logResponse(ctx context.Context, requestID string, statusCode int, body []byte) {
	if !c.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := []slog.Attr{
		slog.String("request_id", requestID),
		slog.Int("status", statusCode),
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.String("body", RedactJSONBody(body)))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "http response", attrs...)
}

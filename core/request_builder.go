package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is a raw HTTP response. Non-2xx statuses are not errors at this
// level; TypedRequest turns them into APIError. The one exception is a 401
// whose refresh failed: Do then returns a nil Response and an *APIError
// wrapping ErrRefreshFailed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type RequestBuilder struct {
	client    *Client
	path      string
	query     map[string]string
	header    http.Header
	body      any
	withToken bool

	rawBody        io.Reader
	rawContentType string
}

func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client:    client,
		query:     make(map[string]string),
		header:    make(http.Header),
		withToken: true,
	}
}

func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	return b
}

func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	b.query[key] = value
	return b
}

func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	for k, v := range query {
		b.query[k] = v
	}
	return b
}

func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	b.header.Set(key, value)
	return b
}

// Body sets a JSON request body.
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.body = body
	return b
}

// WithoutToken sends the request anonymously and disables 401 recovery.
// Used for login, signup and the refresh call itself.
func (b *RequestBuilder) WithoutToken() *RequestBuilder {
	b.withToken = false
	return b
}

func (b *RequestBuilder) WithToken() *RequestBuilder {
	b.withToken = true
	return b
}

// RawBody sends r as is with the given content type instead of a JSON body.
// The reader is drained when the request is sent.
func (b *RequestBuilder) RawBody(contentType string, r io.Reader) *RequestBuilder {
	b.rawBody = r
	b.rawContentType = contentType
	return b
}

func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	return b.Do(ctx, http.MethodGet)
}

func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	return b.Do(ctx, http.MethodPost)
}

func (b *RequestBuilder) Put(ctx context.Context) (*Response, error) {
	return b.Do(ctx, http.MethodPut)
}

func (b *RequestBuilder) Patch(ctx context.Context) (*Response, error) {
	return b.Do(ctx, http.MethodPatch)
}

func (b *RequestBuilder) Delete(ctx context.Context) (*Response, error) {
	return b.Do(ctx, http.MethodDelete)
}

// Do sends the request with the given method through the client pipeline.
func (b *RequestBuilder) Do(ctx context.Context, method string) (*Response, error) {
	reqURL, err := b.client.buildURL(b.path, b.query)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	payload, contentType, err := b.encodeBody()
	if err != nil {
		return nil, err
	}

	return b.client.do(ctx, &outgoingRequest{
		method:      method,
		url:         reqURL,
		header:      b.header.Clone(),
		body:        payload,
		contentType: contentType,
		withToken:   b.withToken,
	})
}

func (b *RequestBuilder) encodeBody() ([]byte, string, error) {
	if b.rawBody != nil {
		payload, err := io.ReadAll(b.rawBody)
		if err != nil {
			return nil, "", fmt.Errorf("read body: %w", err)
		}
		contentType := b.rawContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return payload, contentType, nil
	}
	if b.body == nil {
		return nil, "", nil
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal body: %w", err)
	}
	return payload, "application/json", nil
}

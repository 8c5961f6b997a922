package studyhive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/studyhive/studyhive-go/core"
)

// Get sends an authenticated GET and decodes the envelope's data into
// result. Meant for endpoints without a typed wrapper.
//
//	var stats UserStats
//	err := client.Get(ctx, "/api/users/me/stats", nil, &stats)
func (c *Client) Get(ctx context.Context, path string, query map[string]string, result any) error {
	if err := validateDecodeTarget(result); err != nil {
		return fmt.Errorf("invalid get result: %w", err)
	}

	resp, err := c.apiClient.Request().
		Path(path).
		QueryMap(query).
		Get(ctx)
	if err != nil {
		return err
	}
	return decodeInto(resp, result)
}

// Post sends an authenticated JSON POST and decodes the envelope's data
// into result. A nil result discards the data.
func (c *Client) Post(ctx context.Context, path string, reqBody any, result any) error {
	return c.send(ctx, http.MethodPost, path, reqBody, result)
}

func (c *Client) Put(ctx context.Context, path string, reqBody any, result any) error {
	return c.send(ctx, http.MethodPut, path, reqBody, result)
}

func (c *Client) Patch(ctx context.Context, path string, reqBody any, result any) error {
	return c.send(ctx, http.MethodPatch, path, reqBody, result)
}

func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.send(ctx, http.MethodDelete, path, nil, result)
}

func (c *Client) send(ctx context.Context, method, path string, reqBody any, result any) error {
	builder := c.apiClient.Request().Path(path)
	if reqBody != nil {
		builder = builder.Body(reqBody)
	}

	resp, err := builder.Do(ctx, method)
	if err != nil {
		return err
	}
	return decodeInto(resp, result)
}

func decodeInto(resp *core.Response, result any) error {
	env, err := core.ParseEnvelope[json.RawMessage](resp.StatusCode, resp.Body)
	if err != nil {
		return err
	}
	if result == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return core.NewResponseParseError(resp.StatusCode, resp.Body, err)
	}
	return nil
}

// message returns the envelope message of a data-less endpoint, or
// fallback when the backend sent none.
func message(resp *core.Response, fallback string) (string, error) {
	env, err := core.ParseEnvelope[json.RawMessage](resp.StatusCode, resp.Body)
	if err != nil {
		return "", err
	}
	if env.Message == "" {
		return fallback, nil
	}
	return env.Message, nil
}

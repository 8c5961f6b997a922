package core

import (
	"context"
	"net/http"
)

// TypedRequest decodes the response envelope's data field into T.
type TypedRequest[T any] struct {
	builder *RequestBuilder
}

func NewTypedRequest[T any](client *Client) *TypedRequest[T] {
	return &TypedRequest[T]{builder: newRequestBuilder(client)}
}

func (r *TypedRequest[T]) Path(path string) *TypedRequest[T] {
	r.builder.Path(path)
	return r
}

func (r *TypedRequest[T]) Query(key, value string) *TypedRequest[T] {
	r.builder.Query(key, value)
	return r
}

func (r *TypedRequest[T]) QueryMap(query map[string]string) *TypedRequest[T] {
	r.builder.QueryMap(query)
	return r
}

func (r *TypedRequest[T]) Header(key, value string) *TypedRequest[T] {
	r.builder.Header(key, value)
	return r
}

func (r *TypedRequest[T]) Body(body any) *TypedRequest[T] {
	r.builder.Body(body)
	return r
}

func (r *TypedRequest[T]) WithoutToken() *TypedRequest[T] {
	r.builder.WithoutToken()
	return r
}

func (r *TypedRequest[T]) Get(ctx context.Context) (T, error) {
	return r.Do(ctx, http.MethodGet)
}

func (r *TypedRequest[T]) Post(ctx context.Context) (T, error) {
	return r.Do(ctx, http.MethodPost)
}

func (r *TypedRequest[T]) Put(ctx context.Context) (T, error) {
	return r.Do(ctx, http.MethodPut)
}

func (r *TypedRequest[T]) Patch(ctx context.Context) (T, error) {
	return r.Do(ctx, http.MethodPatch)
}

func (r *TypedRequest[T]) Delete(ctx context.Context) (T, error) {
	return r.Do(ctx, http.MethodDelete)
}

func (r *TypedRequest[T]) Do(ctx context.Context, method string) (T, error) {
	resp, err := r.builder.Do(ctx, method)
	if err != nil {
		var zero T
		return zero, err
	}
	return DecodeEnvelope[T](resp.StatusCode, resp.Body)
}

package core

import (
	"bytes"
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

// Envelope is the wrapper every StudyHive endpoint responds with.
type Envelope[T any] struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Success    *bool  `json:"success,omitempty"`
	Message    string `json:"message,omitempty"`
	Data       T      `json:"data"`
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func ParseEnvelope[T any](statusCode int, body []byte) (*Envelope[T], error) {
	if statusCode < 200 || statusCode >= 300 {
		return nil, decodeAPIError(statusCode, body)
	}

	var out Envelope[T]
	if len(bytes.TrimSpace(body)) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, NewResponseParseError(statusCode, body, err)
	}
	if out.Success != nil && !*out.Success {
		apiErr := NewAPIError(statusCode, out.Message)
		apiErr.Body = body
		return nil, apiErr
	}
	return &out, nil
}

func DecodeEnvelope[T any](statusCode int, body []byte) (T, error) {
	env, err := ParseEnvelope[T](statusCode, body)
	if err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func decodeAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Message = envelope.Message
		if apiErr.Message == "" {
			apiErr.Message = envelope.Error
		}
	} else if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		apiErr.Message = truncateBody(trimmed, 256)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// truncateBody cuts body to at most max bytes without splitting a rune.
func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + "..."
}
